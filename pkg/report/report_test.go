package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugscan/pkg/resolver"
)

func strPtr(s string) *string { return &s }

func sampleReport() *ScanReport {
	return Build([]PluginReport{
		{
			Plugin:       "flutter-pro",
			ManifestPath: "plugins/org@flutter-pro/extends-plugin.json",
			Results: []resolver.Result{
				{Name: "flutter-base", Kind: resolver.KindPlugin, Required: true, DeclaredRange: "^1.0.0", InstalledVersion: strPtr("1.3.0"), Status: resolver.StatusSatisfied},
				{Name: "gh", Kind: resolver.KindSystem, Required: true, DeclaredRange: ">=2.0.0", InstalledVersion: strPtr("1.9.0"), Status: resolver.StatusMismatch},
				{Name: "theme-pack", Kind: resolver.KindPlugin, Required: false, DeclaredRange: "~0.3.0", Status: resolver.StatusMissing},
			},
		},
		{
			Plugin:       "broken-plugin",
			ManifestPath: "plugins/org@broken-plugin/extends-plugin.json",
			Error:        "invalid JSON: unexpected end of JSON input",
			Results:      []resolver.Result{},
		},
	})
}

func TestBuildCounts(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, 1, r.SatisfiedCount)
	assert.Equal(t, 1, r.MissingCount)
	assert.Equal(t, 1, r.MismatchCount)
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil)
	assert.Equal(t, 0, r.SatisfiedCount)
	assert.Equal(t, 0, r.MissingCount)
	assert.Equal(t, 0, r.MismatchCount)
	assert.NotNil(t, r.Plugins)

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"plugins": []`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, float64(1), decoded["satisfiedCount"])
	assert.Equal(t, float64(1), decoded["missingCount"])
	assert.Equal(t, float64(1), decoded["mismatchCount"])

	plugins, ok := decoded["plugins"].([]any)
	require.True(t, ok)
	require.Len(t, plugins, 2)

	first := plugins[0].(map[string]any)
	assert.Equal(t, "flutter-pro", first["plugin"])
	results := first["results"].([]any)
	require.Len(t, results, 3)

	// installedVersion must serialize as JSON null when unknown.
	missing := results[2].(map[string]any)
	v, present := missing["installedVersion"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestWriteJSONDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	r := sampleReport()
	require.NoError(t, r.WriteJSON(&first))
	require.NoError(t, r.WriteJSON(&second))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteTable(&buf))

	out := buf.String()
	assert.Contains(t, out, "flutter-base")
	assert.Contains(t, out, "version-mismatch")
	assert.Contains(t, out, "error: invalid JSON")
	assert.Contains(t, out, "satisfied: 1, missing: 1, version-mismatch: 1")

	// Required row rendered before the optional row.
	assert.Less(t, strings.Index(out, "gh"), strings.Index(out, "theme-pack"))
}
