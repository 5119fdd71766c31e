package main

import (
	"github.com/aretw0/tally/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live dashboard over HTTP",
	Long: `Starts the dashboard server: a JSON API over the charts, an SSE stream
of chart updates at /events and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunServe(sigCtx, cli.ServeOptions{
			Options: globalOptions(cmd),
			Addr:    addr,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides the config)")
}
