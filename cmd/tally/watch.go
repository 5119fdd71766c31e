package main

import (
	"github.com/aretw0/tally/internal/cli"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Draw the dashboard in the terminal",
	Long:  `Draws the charts in the terminal and redraws them on record, theme and terminal size changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunWatch(sigCtx, cli.WatchOptions{Options: globalOptions(cmd)})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
