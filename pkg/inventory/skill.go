package inventory

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const (
	skillsSubdir  = "skills"
	skillFileName = "SKILL.md"
)

// skillVersionFallback returns the first version declared in any of the
// plugin's SKILL.md frontmatters, or "" when none declares one. Plugins that
// predate plugin.json versioning often carry the version on their skills.
func skillVersionFallback(pluginPath string) string {
	skillsDir := filepath.Join(pluginPath, skillsSubdir)
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillPath := filepath.Join(skillsDir, entry.Name(), skillFileName)
		if version := skillVersion(skillPath); version != "" {
			return version
		}
	}
	return ""
}

// skillVersion extracts the "version" frontmatter field from a SKILL.md file.
func skillVersion(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return ""
	}

	version, _ := metaData["version"].(string)
	return version
}
