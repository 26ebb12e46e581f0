// Package suggest implements a best-effort heuristic scan of a plugin
// directory for system tools that look like undeclared dependencies. It
// pattern-matches tool invocations in markdown and script files; false
// positives are expected and acceptable, the output is reviewed by a human
// before anything is added to a manifest.
package suggest

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
)

// filePatterns are the plugin files worth scanning for tool invocations.
var filePatterns = []string{
	"**/*.md",
	"**/*.sh",
	"**/*.py",
}

// knownTools are the commonly invoked system tools the heuristic looks for.
// The list is deliberately narrow; matching arbitrary words produces too
// much noise to be useful.
var knownTools = []string{
	"aws", "curl", "docker", "fd", "gcloud", "gh", "git", "helm", "jq",
	"kubectl", "make", "node", "npm", "npx", "pip", "pip3", "python",
	"python3", "rg", "terraform", "uv", "wget", "yq",
}

var toolPattern = buildToolPattern()

func buildToolPattern() *regexp.Regexp {
	pattern := `(?m)(?:^|[\s$(\x60|;&])(`
	for i, tool := range knownTools {
		if i > 0 {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(tool)
	}
	pattern += `)\s`
	return regexp.MustCompile(pattern)
}

// Suggestion is one tool name that appears to be used but is not declared,
// with the files it was seen in.
type Suggestion struct {
	Tool  string   `json:"tool"`
	Files []string `json:"files"`
}

// Scan walks dir for markdown and script files and reports tools that are
// invoked but absent from declared. Unreadable files are collected into the
// returned error while the scan continues; the suggestions are valid even
// when the error is non-nil.
func Scan(dir string, declared map[string]bool) ([]Suggestion, error) {
	fsys := os.DirFS(dir)

	var scanErrs *multierror.Error
	hits := make(map[string]map[string]bool)

	for _, pattern := range filePatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			scanErrs = multierror.Append(scanErrs, err)
			continue
		}

		for _, match := range matches {
			content, err := fs.ReadFile(fsys, match)
			if err != nil {
				scanErrs = multierror.Append(scanErrs, err)
				continue
			}

			for _, groups := range toolPattern.FindAllStringSubmatch(string(content), -1) {
				tool := groups[1]
				if declared[tool] {
					continue
				}
				if hits[tool] == nil {
					hits[tool] = make(map[string]bool)
				}
				hits[tool][filepath.ToSlash(match)] = true
			}
		}
	}

	suggestions := make([]Suggestion, 0, len(hits))
	for tool, files := range hits {
		s := Suggestion{Tool: tool}
		for file := range files {
			s.Files = append(s.Files, file)
		}
		sort.Strings(s.Files)
		suggestions = append(suggestions, s)
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Tool < suggestions[j].Tool })

	return suggestions, scanErrs.ErrorOrNil()
}
