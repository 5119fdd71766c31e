package main

import (
	"github.com/aretw0/tally/internal/cli"
	"github.com/aretw0/tally/internal/smoke"
	"github.com/spf13/cobra"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Serve a fixed test payload at /api/test",
	Long:  `Starts a minimal server answering GET /api/test with {"message":"API is working"}, to check a deployment without a dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		cfg, err := cli.LoadConfig(globalOptions(cmd))
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return smoke.Serve(sigCtx, addr, cli.CreateLogger(cfg))
	},
}

func init() {
	rootCmd.AddCommand(smokeCmd)
	smokeCmd.Flags().StringP("addr", "a", smoke.DefaultAddr, "Address to listen on")
}
