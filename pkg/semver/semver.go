// Package semver wraps github.com/Masterminds/semver/v3 with a nullable
// version type. A nil *Version means "installed but version unknown", which
// never satisfies any range.
package semver

import (
	mm "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// Parse parses a version string such as "1.2.3" or "v1.2".
func Parse(raw string) (*Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version %q", raw)
	}
	return &Version{v: v}, nil
}

// MustParse parses a version string and panics on failure. Test helper.
func MustParse(raw string) *Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the canonical form of the version.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	return v.v.String()
}

// Compare returns -1, 0 or 1 when v is less than, equal to or greater than o.
// A nil version sorts before any parsed version.
func (v *Version) Compare(o *Version) int {
	switch {
	case v == nil && o == nil:
		return 0
	case v == nil:
		return -1
	case o == nil:
		return 1
	}
	return v.v.Compare(o.v)
}

// Range is a parsed semantic version constraint, e.g. "^1.2.0" or ">=2.0.0".
type Range struct {
	c   *mm.Constraints
	raw string
}

// ParseRange parses a constraint string using caret/tilde/comparison-operator
// semantics.
func ParseRange(raw string) (*Range, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version range %q", raw)
	}
	return &Range{c: c, raw: raw}, nil
}

// MustParseRange parses a constraint string and panics on failure. Test helper.
func MustParseRange(raw string) *Range {
	r, err := ParseRange(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the range exactly as it was declared.
func (r *Range) String() string {
	if r == nil {
		return ""
	}
	return r.raw
}

// Satisfied reports whether v falls inside the range. An unknown (nil)
// version never satisfies a range.
func (r *Range) Satisfied(v *Version) bool {
	if r == nil || v == nil {
		return false
	}
	return r.c.Check(v.v)
}
