// Package resolver evaluates a manifest's declared dependencies against an
// environment inventory. Resolve is a pure function: it takes the manifest
// and the inventory snapshot and produces one result row per declaration,
// required buckets before optional ones, declaration order preserved within
// each bucket.
package resolver

import (
	"github.com/jingkaihe/plugscan/pkg/inventory"
	"github.com/jingkaihe/plugscan/pkg/manifest"
	"github.com/jingkaihe/plugscan/pkg/semver"
)

// Kind distinguishes plugin dependencies from system tool dependencies.
type Kind string

// Dependency kinds.
const (
	KindPlugin Kind = "plugin"
	KindSystem Kind = "system"
)

// Status is the outcome of resolving one dependency.
type Status string

// Resolution statuses.
const (
	StatusSatisfied Status = "satisfied"
	StatusMissing   Status = "missing"
	StatusMismatch  Status = "version-mismatch"
)

// Result is one resolved dependency row.
type Result struct {
	Name             string  `json:"name"`
	Kind             Kind    `json:"kind"`
	Required         bool    `json:"required"`
	DeclaredRange    string  `json:"declaredRange"`
	InstalledVersion *string `json:"installedVersion"`
	Status           Status  `json:"status"`
	// Error carries a note when the declared range itself is invalid.
	Error string `json:"error,omitempty"`
}

// bucket ties one dependency map to its kind and requiredness. Iteration
// order of the buckets is the report's priority order.
type bucket struct {
	deps     *manifest.DepMap
	kind     Kind
	required bool
}

// Resolve classifies every dependency declared by the manifest against the
// inventory. It never fails; malformed ranges are surfaced on the row.
func Resolve(m *manifest.Manifest, inv *inventory.Inventory) []Result {
	buckets := []bucket{
		{m.Dependencies, KindPlugin, true},
		{m.SystemDependencies, KindSystem, true},
		{m.OptionalDependencies, KindPlugin, false},
		{m.OptionalSystemDependencies, KindSystem, false},
	}

	var results []Result
	for _, b := range buckets {
		for pair := b.deps.Oldest(); pair != nil; pair = pair.Next() {
			results = append(results, resolveOne(pair.Key, pair.Value, b, inv))
		}
	}
	return results
}

func resolveOne(name, declaredRange string, b bucket, inv *inventory.Inventory) Result {
	result := Result{
		Name:          name,
		Kind:          b.kind,
		Required:      b.required,
		DeclaredRange: declaredRange,
	}

	var entry inventory.Entry
	var found bool
	if b.kind == KindPlugin {
		entry, found = inv.Plugin(name)
	} else {
		entry, found = inv.Tool(name)
	}

	if !found {
		result.Status = StatusMissing
		return result
	}

	// Present but without a verifiable version: a range can never be
	// confirmed satisfied, so the dependency counts as missing.
	if entry.Version == nil {
		result.Status = StatusMissing
		return result
	}

	installed := entry.Version.String()
	result.InstalledVersion = &installed

	rng, err := semver.ParseRange(declaredRange)
	if err != nil {
		result.Status = StatusMismatch
		result.Error = err.Error()
		return result
	}

	if rng.Satisfied(entry.Version) {
		result.Status = StatusSatisfied
	} else {
		result.Status = StatusMismatch
	}
	return result
}
