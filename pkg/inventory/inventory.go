// Package inventory builds the per-run snapshot of what is actually
// available in the environment: installed plugins (with their declared
// versions and enabled state) and system tools (probed via subprocess
// version checks). The snapshot is built once per invocation and passed
// read-only into the resolver.
package inventory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jingkaihe/plugscan/pkg/logger"
	"github.com/jingkaihe/plugscan/pkg/semver"
)

const (
	plugscanDir    = ".plugscan"
	pluginsSubdir  = "plugins"
	pluginMetaFile = "plugin.json"
)

// Entry is one discovered plugin or system tool. Version is nil when the
// plugin/tool was found but its version could not be determined. Path is the
// plugin directory on disk (empty for system tools).
type Entry struct {
	Name    string
	Version *semver.Version
	Enabled bool
	Source  string
	Path    string
}

// Inventory is the read-only result of probing the environment.
type Inventory struct {
	plugins map[string]Entry
	tools   map[string]Entry
}

// Plugin looks up a plugin entry by name.
func (inv *Inventory) Plugin(name string) (Entry, bool) {
	e, ok := inv.plugins[name]
	return e, ok
}

// Tool looks up a probed system tool entry by name.
func (inv *Inventory) Tool(name string) (Entry, bool) {
	e, ok := inv.tools[name]
	return e, ok
}

// Plugins returns all plugin entries sorted by name.
func (inv *Inventory) Plugins() []Entry {
	entries := make([]Entry, 0, len(inv.plugins))
	for _, e := range inv.plugins {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// pluginMeta is the subset of plugin.json the prober cares about.
type pluginMeta struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Enabled *bool  `json:"enabled"`
}

// Builder discovers installed plugins and probes system tools.
type Builder struct {
	baseDir         string
	homeDir         string
	marketplaceDirs []string
	probe           ToolProbe
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithBaseDir sets a custom repo-local base directory (for testing).
func WithBaseDir(dir string) BuilderOption {
	return func(b *Builder) error {
		b.baseDir = dir
		return nil
	}
}

// WithHomeDir sets a custom home directory (for testing).
func WithHomeDir(dir string) BuilderOption {
	return func(b *Builder) error {
		b.homeDir = dir
		return nil
	}
}

// WithMarketplaceDirs adds marketplace directories scanned in "all" scope.
func WithMarketplaceDirs(dirs ...string) BuilderOption {
	return func(b *Builder) error {
		b.marketplaceDirs = append(b.marketplaceDirs, dirs...)
		return nil
	}
}

// WithToolProbe substitutes the system tool probe (for testing).
func WithToolProbe(probe ToolProbe) BuilderOption {
	return func(b *Builder) error {
		b.probe = probe
		return nil
	}
}

// NewBuilder creates an inventory builder rooted at the working directory's
// .plugscan and the user's ~/.plugscan.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}

	b := &Builder{
		baseDir: plugscanDir,
		homeDir: homeDir,
		probe:   &ExecProbe{},
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Discover enumerates installed plugins and returns a snapshot with an empty
// tool set. includeMarketplaces widens the scan to the configured marketplace
// directories. Tool probing happens afterwards via ProbeTools, once the set
// of referenced tool names is known.
func (b *Builder) Discover(ctx context.Context, includeMarketplaces bool) *Inventory {
	inv := &Inventory{
		plugins: make(map[string]Entry),
		tools:   make(map[string]Entry),
	}

	b.collectPlugins(ctx, filepath.Join(b.baseDir, pluginsSubdir), "local", inv)
	b.collectPlugins(ctx, filepath.Join(b.homeDir, plugscanDir, pluginsSubdir), "global", inv)

	if includeMarketplaces {
		for _, dir := range b.marketplaceDirs {
			b.collectPlugins(ctx, dir, filepath.Base(dir), inv)
		}
	}

	return inv
}

// ProbeTools checks each distinct tool name at most once and records the
// outcome in the inventory. A tool that cannot be located is simply absent;
// one that is present but has no parseable version is recorded with a nil
// Version.
func (b *Builder) ProbeTools(ctx context.Context, inv *Inventory, toolNames []string) {
	seen := make(map[string]bool)
	for _, name := range toolNames {
		if seen[name] {
			continue
		}
		seen[name] = true

		version, err := b.probe.Check(ctx, name)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("tool", name).Debug("tool probe failed")
			continue
		}
		inv.tools[name] = Entry{
			Name:    name,
			Version: version,
			Enabled: true,
			Source:  "system",
		}
	}
}

// collectPlugins scans one plugins directory. Entries discovered earlier win
// on name collision, so local plugins shadow global ones.
func (b *Builder) collectPlugins(ctx context.Context, pluginsDir, source string, inv *Inventory) {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("dir", pluginsDir).Debug("failed to read plugins directory")
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(pluginsDir, entry.Name())
		e, err := b.loadPlugin(ctx, pluginPath, source)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", pluginPath).Debug("skipping plugin")
			continue
		}

		if _, exists := inv.plugins[e.Name]; !exists {
			inv.plugins[e.Name] = e
		}
	}
}

// loadPlugin builds an Entry from a plugin directory. The name and version
// come from plugin.json; when plugin.json has no version the first skill's
// SKILL.md frontmatter version is used instead. An unparseable or absent
// version yields a nil Version, never an error.
func (b *Builder) loadPlugin(ctx context.Context, pluginPath, source string) (Entry, error) {
	content, err := os.ReadFile(filepath.Join(pluginPath, pluginMetaFile))
	if err != nil {
		return Entry{}, errors.Wrap(err, "failed to read plugin.json")
	}

	var meta pluginMeta
	if err := json.Unmarshal(content, &meta); err != nil {
		return Entry{}, errors.Wrap(err, "invalid plugin.json")
	}

	name := meta.Name
	if name == "" {
		name = filepath.Base(pluginPath)
	}

	rawVersion := meta.Version
	if rawVersion == "" {
		rawVersion = skillVersionFallback(pluginPath)
	}

	var version *semver.Version
	if rawVersion != "" {
		version, err = semver.Parse(rawVersion)
		if err != nil {
			logger.G(ctx).WithFields(logrus.Fields{
				"plugin":  name,
				"version": rawVersion,
			}).Debug("unparseable plugin version, recording as unknown")
			version = nil
		}
	}

	enabled := true
	if meta.Enabled != nil {
		enabled = *meta.Enabled
	}

	return Entry{
		Name:    name,
		Version: version,
		Enabled: enabled,
		Source:  source,
		Path:    pluginPath,
	}, nil
}
