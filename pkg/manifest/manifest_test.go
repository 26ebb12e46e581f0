package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func keys(m *DepMap) []string {
	var out []string
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `{
		"dependencies": {"flutter-base": "^1.0.0", "dart-tools": ">=2.1.0"},
		"systemDependencies": {"gh": ">=2.0.0"},
		"optionalDependencies": {"theme-pack": "~0.3.0"}
	}`)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, m.Path)
	assert.Equal(t, []string{"flutter-base", "dart-tools"}, keys(m.Dependencies))
	assert.Equal(t, []string{"gh"}, keys(m.SystemDependencies))
	assert.Equal(t, []string{"theme-pack"}, keys(m.OptionalDependencies))

	rng, ok := m.Dependencies.Get("flutter-base")
	require.True(t, ok)
	assert.Equal(t, "^1.0.0", rng)
}

func TestLoadPreservesDeclarationOrder(t *testing.T) {
	path := writeManifest(t, `{
		"dependencies": {"zeta": "1.0.0", "alpha": "1.0.0", "mid": "1.0.0"}
	}`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys(m.Dependencies))
}

func TestLoadAbsentKeysAreEmptyMaps(t *testing.T) {
	path := writeManifest(t, `{}`)

	m, err := Load(path)
	require.NoError(t, err)

	assert.NotNil(t, m.Dependencies)
	assert.NotNil(t, m.OptionalDependencies)
	assert.NotNil(t, m.SystemDependencies)
	assert.NotNil(t, m.OptionalSystemDependencies)
	assert.True(t, m.Empty())
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeManifest(t, `{not json`)

	_, err := Load(path)
	require.Error(t, err)

	var merr *Error
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, path, merr.Path)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	_, err := Load(path)
	require.Error(t, err)

	var merr *Error
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, path, merr.Path)
}

func TestLoadRejectsRequiredAndOptionalOverlap(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "plugin kind",
			content: `{
				"dependencies": {"foo": "^1.0.0"},
				"optionalDependencies": {"foo": "^1.0.0"}
			}`,
		},
		{
			name: "system kind",
			content: `{
				"systemDependencies": {"gh": ">=2.0.0"},
				"optionalSystemDependencies": {"gh": ">=1.0.0"}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)

			var merr *Error
			assert.True(t, errors.As(err, &merr))
		})
	}
}

func TestOverlapAcrossKindsIsAllowed(t *testing.T) {
	// The same name may be a plugin dependency and a system dependency.
	path := writeManifest(t, `{
		"dependencies": {"gh": "^1.0.0"},
		"systemDependencies": {"gh": ">=2.0.0"}
	}`)

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestSystemToolNames(t *testing.T) {
	path := writeManifest(t, `{
		"systemDependencies": {"gh": ">=2.0.0", "jq": "^1.6.0"},
		"optionalSystemDependencies": {"rg": ">=13.0.0"}
	}`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gh", "jq", "rg"}, m.SystemToolNames())
}
