package main

import (
	"github.com/aretw0/tally/internal/cli"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a summary of the records and charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")
		raw, _ := cmd.Flags().GetBool("raw")
		width, _ := cmd.Flags().GetInt("width")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		return cli.RunReport(cmd.Context(), cmd.OutOrStdout(), cli.ReportOptions{
			Options: globalOptions(cmd),
			Style:   style,
			Raw:     raw,
			Width:   width,
			Banner:  !noBanner && !raw,
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("style", "", "Glamour style (dark, light, notty); detected when empty")
	reportCmd.Flags().Bool("raw", false, "Print markdown without rendering")
	reportCmd.Flags().Int("width", 80, "Word wrap width")
	reportCmd.Flags().Bool("no-banner", false, "Omit the banner")
}
