package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugscan/pkg/inventory"
	"github.com/jingkaihe/plugscan/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the plugin inventory",
	Long: `List the plugins plugscan can see, with their versions, enabled
state and source.

Shows local (.plugscan/plugins/) and global (~/.plugscan/plugins/) plugins,
plus configured marketplaces with --all.

Examples:
  plugscan list         # List installed plugins
  plugscan list --all   # Include configured marketplaces
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, _ := cmd.Flags().GetBool("all")

		builder, err := inventory.NewBuilder(
			inventory.WithMarketplaceDirs(viper.GetStringSlice("marketplaces")...),
		)
		if err != nil {
			return err
		}

		inv := builder.Discover(cmd.Context(), all)
		plugins := inv.Plugins()
		if len(plugins) == 0 {
			presenter.Info("No plugins installed")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tENABLED\tSOURCE")
		fmt.Fprintln(tw, "----\t-------\t-------\t------")

		for _, p := range plugins {
			version := "unknown"
			if p.Version != nil {
				version = p.Version.String()
			}
			enabled := "no"
			if p.Enabled {
				enabled = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, version, enabled, p.Source)
		}
		return tw.Flush()
	},
}

func init() {
	listCmd.Flags().Bool("all", false, "Include configured marketplaces")
}
