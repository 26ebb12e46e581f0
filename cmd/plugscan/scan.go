package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugscan/pkg/inventory"
	"github.com/jingkaihe/plugscan/pkg/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan plugin dependency manifests",
	Long: `Scan the dependency manifests of plugins in the selected scope and
report whether each declared dependency is satisfied.

The scan itself always exits 0; unmet dependencies are communicated through
the report, not the exit code. A non-zero exit means the invocation failed
(invalid flags, or a named plugin without a manifest).

Examples:
  plugscan scan                     # Scan enabled plugins (default)
  plugscan scan --installed         # Scan all installed plugins
  plugscan scan --all               # Also scan configured marketplaces
  plugscan scan --plugin my-plugin  # Scan a single plugin
  plugscan scan --format table      # Human-readable output
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		installed, _ := cmd.Flags().GetBool("installed")
		all, _ := cmd.Flags().GetBool("all")
		plugin, _ := cmd.Flags().GetString("plugin")

		scope, err := scopeFromFlags(installed, all, plugin)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "table" {
			return errors.Errorf("unknown format %q (want json or table)", format)
		}

		output, _ := cmd.Flags().GetString("output")

		return runScan(cmd.Context(), scanOptions{
			scope:  scope,
			plugin: plugin,
			format: format,
			output: output,
		})
	},
}

type scanOptions struct {
	scope  scanner.Scope
	plugin string
	format string
	output string
}

// defaultScope is the scope used when no flag narrows the scan.
func defaultScope() scanner.Scope {
	return scanner.ScopeEnabled
}

// scopeFromFlags maps the mutually exclusive scope flags to a scan scope.
func scopeFromFlags(installed, all bool, plugin string) (scanner.Scope, error) {
	selected := 0
	scope := defaultScope()

	if installed {
		selected++
		scope = scanner.ScopeInstalled
	}
	if all {
		selected++
		scope = scanner.ScopeAll
	}
	if plugin != "" {
		selected++
		scope = scanner.ScopePlugin
	}

	if selected > 1 {
		return "", errors.New("--installed, --all and --plugin are mutually exclusive")
	}
	return scope, nil
}

func runScan(ctx context.Context, opts scanOptions) error {
	builder, err := inventory.NewBuilder(
		inventory.WithMarketplaceDirs(viper.GetStringSlice("marketplaces")...),
	)
	if err != nil {
		return err
	}

	s, err := scanner.New(scanner.WithBuilder(builder))
	if err != nil {
		return err
	}

	scanReport, err := s.Scan(ctx, opts.scope, opts.plugin)
	if err != nil {
		return err
	}

	out := os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if opts.format == "table" {
		return scanReport.WriteTable(out)
	}
	return scanReport.WriteJSON(out)
}

func init() {
	scanCmd.Flags().Bool("installed", false, "Scan all installed plugins")
	scanCmd.Flags().Bool("all", false, "Scan installed plugins and configured marketplaces")
	scanCmd.Flags().String("plugin", "", "Scan a single plugin by name")
	scanCmd.Flags().String("format", "json", "Output format (json, table)")
	scanCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
}
