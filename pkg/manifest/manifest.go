// Package manifest loads and validates extends-plugin.json dependency
// manifests. A manifest declares the plugins and system tools a plugin needs,
// each with a semantic version range. Declaration order matters for report
// output, so dependency maps are ordered maps rather than Go maps.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FileName is the manifest file name looked up inside a plugin directory.
const FileName = "extends-plugin.json"

// DepMap is an insertion-ordered mapping of dependency name to version range.
type DepMap = orderedmap.OrderedMap[string, string]

// Manifest is one plugin's declared dependencies. All four maps are optional
// in the JSON document; an absent key is an empty map after Load.
type Manifest struct {
	Dependencies               *DepMap `json:"dependencies,omitempty"`
	OptionalDependencies       *DepMap `json:"optionalDependencies,omitempty"`
	SystemDependencies         *DepMap `json:"systemDependencies,omitempty"`
	OptionalSystemDependencies *DepMap `json:"optionalSystemDependencies,omitempty"`

	// Plugin and Path identify where the manifest came from. Set by Load,
	// not part of the JSON document.
	Plugin string `json:"-"`
	Path   string `json:"-"`
}

// Error indicates a manifest that could not be read, parsed or validated.
// It always carries the offending path.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads and validates a manifest file. Any failure is returned as
// *Error so callers can decide whether it is fatal (named --plugin) or a
// report row (broad scan).
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	m := &Manifest{}
	if err := json.Unmarshal(content, m); err != nil {
		return nil, &Error{Path: path, Err: errors.Wrap(err, "invalid JSON")}
	}

	m.normalize()
	m.Path = path

	if err := m.validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return m, nil
}

// normalize replaces absent maps with empty ones so callers never see nil.
func (m *Manifest) normalize() {
	if m.Dependencies == nil {
		m.Dependencies = orderedmap.New[string, string]()
	}
	if m.OptionalDependencies == nil {
		m.OptionalDependencies = orderedmap.New[string, string]()
	}
	if m.SystemDependencies == nil {
		m.SystemDependencies = orderedmap.New[string, string]()
	}
	if m.OptionalSystemDependencies == nil {
		m.OptionalSystemDependencies = orderedmap.New[string, string]()
	}
}

// validate enforces that a name never appears in both the required and the
// optional map of the same dependency kind.
func (m *Manifest) validate() error {
	for pair := m.OptionalDependencies.Oldest(); pair != nil; pair = pair.Next() {
		if _, dup := m.Dependencies.Get(pair.Key); dup {
			return errors.Errorf("plugin dependency %q declared as both required and optional", pair.Key)
		}
	}
	for pair := m.OptionalSystemDependencies.Oldest(); pair != nil; pair = pair.Next() {
		if _, dup := m.SystemDependencies.Get(pair.Key); dup {
			return errors.Errorf("system dependency %q declared as both required and optional", pair.Key)
		}
	}
	return nil
}

// Empty reports whether the manifest declares no dependencies at all.
func (m *Manifest) Empty() bool {
	return m.Dependencies.Len() == 0 &&
		m.OptionalDependencies.Len() == 0 &&
		m.SystemDependencies.Len() == 0 &&
		m.OptionalSystemDependencies.Len() == 0
}

// SystemToolNames returns the distinct system tool names referenced by the
// manifest, required first, declaration order preserved.
func (m *Manifest) SystemToolNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, deps := range []*DepMap{m.SystemDependencies, m.OptionalSystemDependencies} {
		for pair := deps.Oldest(); pair != nil; pair = pair.Next() {
			if !seen[pair.Key] {
				names = append(names, pair.Key)
				seen[pair.Key] = true
			}
		}
	}
	return names
}
