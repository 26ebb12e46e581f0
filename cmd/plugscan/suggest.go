package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugscan/pkg/manifest"
	"github.com/jingkaihe/plugscan/pkg/presenter"
	"github.com/jingkaihe/plugscan/pkg/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <plugin-dir>",
	Short: "Suggest undeclared system dependencies for a plugin",
	Long: `Scan a plugin directory for system tools that look like undeclared
dependencies.

This is a best-effort heuristic over the plugin's markdown and script files;
expect false positives and review the output before editing the manifest.

Examples:
  plugscan suggest .plugscan/plugins/org@repo
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		declared := make(map[string]bool)
		m, err := manifest.Load(filepath.Join(dir, manifest.FileName))
		if err == nil {
			for _, name := range m.SystemToolNames() {
				declared[name] = true
			}
		}

		suggestions, err := suggest.Scan(dir, declared)
		if err != nil {
			presenter.Warning(fmt.Sprintf("some files could not be scanned: %v", err))
		}

		if len(suggestions) == 0 {
			presenter.Info("No undeclared system dependencies found")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TOOL\tSEEN IN")
		fmt.Fprintln(tw, "----\t-------")
		for _, s := range suggestions {
			files := s.Files
			if len(files) > 3 {
				files = append(files[:3:3], fmt.Sprintf("(+%d more)", len(s.Files)-3))
			}
			fmt.Fprintf(tw, "%s\t%s\n", s.Tool, strings.Join(files, ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		presenter.Info("")
		presenter.Info("Add confirmed tools to systemDependencies in extends-plugin.json")
		return nil
	},
}
