package main

import (
	"context"
	"time"

	"github.com/aretw0/tally/internal/cli"
	"github.com/aretw0/tally/internal/config"
	"github.com/aretw0/tally/internal/mailcheck"
	"github.com/spf13/cobra"
)

var mailtestCmd = &cobra.Command{
	Use:   "mailtest",
	Short: "Send one diagnostic email",
	Long: `Reads SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, MAIL_FROM and MAIL_TO
from the environment (and the env files) and sends one test email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := globalOptions(cmd)
		timeout, _ := cmd.Flags().GetDuration("timeout")

		cfg, err := cli.LoadConfig(opts)
		if err != nil {
			return err
		}
		logger := cli.CreateLogger(cfg)

		env, err := config.Environ(opts.EnvFiles...)
		if err != nil {
			return err
		}
		settings, err := mailcheck.FromEnv(env)
		if err != nil {
			return err
		}
		sender, err := mailcheck.NewSMTPSender(settings, timeout)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout+5*time.Second)
		defer cancel()
		return mailcheck.Run(ctx, settings, sender, logger)
	},
}

func init() {
	rootCmd.AddCommand(mailtestCmd)
	mailtestCmd.Flags().Duration("timeout", 15*time.Second, "SMTP dial and send timeout")
}
