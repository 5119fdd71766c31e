package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/tally/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "tally is a small business dashboard",
	Long: `tally keeps lead, project and payment charts up to date as records,
the theme and the viewport change. It serves them to browsers, draws them
in the terminal, or summarizes them as a report.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "tally.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Files with environment defaults")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// globalOptions reads the persistent flags.
func globalOptions(cmd *cobra.Command) cli.Options {
	path, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{ConfigPath: path, EnvFiles: envFiles, Debug: debug}
}
