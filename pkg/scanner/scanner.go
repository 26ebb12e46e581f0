// Package scanner orchestrates one scan run: select the scope, collect the
// manifests in scope, build the environment inventory once, resolve every
// manifest against it and assemble the consolidated report. Per-plugin
// failures become error rows; only invocation-level misuse is fatal.
package scanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugscan/pkg/inventory"
	"github.com/jingkaihe/plugscan/pkg/logger"
	"github.com/jingkaihe/plugscan/pkg/manifest"
	"github.com/jingkaihe/plugscan/pkg/report"
	"github.com/jingkaihe/plugscan/pkg/resolver"
)

// Scope selects which plugins a scan validates.
type Scope string

// Scan scopes.
const (
	// ScopeEnabled validates enabled installed plugins. Default.
	ScopeEnabled Scope = "enabled"
	// ScopeInstalled validates all installed plugins, enabled or not.
	ScopeInstalled Scope = "installed"
	// ScopeAll additionally validates plugins in configured marketplaces.
	ScopeAll Scope = "all"
	// ScopePlugin validates a single named plugin.
	ScopePlugin Scope = "plugin"
)

// Scanner runs dependency scans.
type Scanner struct {
	builder *inventory.Builder
}

// Option configures a Scanner.
type Option func(*Scanner) error

// WithBuilder substitutes the inventory builder (for testing).
func WithBuilder(b *inventory.Builder) Option {
	return func(s *Scanner) error {
		s.builder = b
		return nil
	}
}

// New creates a Scanner with a default inventory builder unless one is
// supplied.
func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.builder == nil {
		builder, err := inventory.NewBuilder()
		if err != nil {
			return nil, err
		}
		s.builder = builder
	}

	return s, nil
}

// target is a plugin selected for validation together with its loaded
// manifest, or the load error when the manifest was unreadable.
type target struct {
	entry    inventory.Entry
	manifest *manifest.Manifest
	loadErr  *manifest.Error
}

// Scan runs one scan. pluginName is only consulted for ScopePlugin. The
// returned error is nil unless the invocation itself is unusable (unknown
// scope, or a named plugin without a manifest on disk).
func (s *Scanner) Scan(ctx context.Context, scope Scope, pluginName string) (*report.ScanReport, error) {
	inv := s.builder.Discover(ctx, scope == ScopeAll)

	targets, err := s.collectTargets(ctx, inv, scope, pluginName)
	if err != nil {
		return nil, err
	}

	s.builder.ProbeTools(ctx, inv, toolNames(targets))

	plugins := make([]report.PluginReport, 0, len(targets))
	for _, t := range targets {
		pr := report.PluginReport{
			Plugin:  t.entry.Name,
			Results: []resolver.Result{},
		}
		if t.loadErr != nil {
			pr.ManifestPath = t.loadErr.Path
			pr.Error = t.loadErr.Err.Error()
		} else {
			pr.ManifestPath = t.manifest.Path
			pr.Results = resolver.Resolve(t.manifest, inv)
		}
		plugins = append(plugins, pr)
	}

	return report.Build(plugins), nil
}

// collectTargets selects the plugins in scope and loads their manifests.
// Plugins without a manifest declare nothing and are skipped, except for an
// explicitly named plugin, where a missing or broken manifest is fatal.
func (s *Scanner) collectTargets(ctx context.Context, inv *inventory.Inventory, scope Scope, pluginName string) ([]target, error) {
	if scope == ScopePlugin {
		entry, found := inv.Plugin(pluginName)
		if !found {
			return nil, &manifest.Error{
				Path: filepath.Join(pluginName, manifest.FileName),
				Err:  errors.Errorf("plugin %q is not installed", pluginName),
			}
		}
		m, err := manifest.Load(filepath.Join(entry.Path, manifest.FileName))
		if err != nil {
			return nil, err
		}
		return []target{{entry: entry, manifest: m}}, nil
	}

	if scope != ScopeEnabled && scope != ScopeInstalled && scope != ScopeAll {
		return nil, errors.Errorf("unknown scan scope %q", scope)
	}

	var targets []target
	for _, entry := range inv.Plugins() {
		if scope == ScopeEnabled && !entry.Enabled {
			continue
		}

		manifestPath := filepath.Join(entry.Path, manifest.FileName)
		if _, err := os.Stat(manifestPath); err != nil {
			logger.G(ctx).WithField("plugin", entry.Name).Debug("no dependency manifest, skipping")
			continue
		}

		t := target{entry: entry}
		m, err := manifest.Load(manifestPath)
		if err != nil {
			var merr *manifest.Error
			if !errors.As(err, &merr) {
				merr = &manifest.Error{Path: manifestPath, Err: err}
			}
			t.loadErr = merr
		} else {
			t.manifest = m
		}
		targets = append(targets, t)
	}

	return targets, nil
}

// toolNames returns the distinct system tool names referenced across all
// loaded manifests, so each tool is probed at most once per run.
func toolNames(targets []target) []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range targets {
		if t.manifest == nil {
			continue
		}
		for _, name := range t.manifest.SystemToolNames() {
			if !seen[name] {
				names = append(names, name)
				seen[name] = true
			}
		}
	}
	return names
}
