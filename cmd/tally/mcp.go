package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/tally/internal/cli"
	"github.com/aretw0/tally/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the dashboard as an MCP server so agents can refresh charts,
read them and switch the theme.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := cli.LoadConfig(globalOptions(cmd))
		if err != nil {
			return err
		}
		logger := cli.CreateLogger(cfg)

		app, err := cli.Build(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		d := app.Dashboard
		if err := d.Initialize(sigCtx); err != nil {
			return err
		}
		go func() {
			if err := d.Run(sigCtx, app.Sources...); err != nil {
				logger.Error("Trigger sources stopped", "err", err)
			}
		}()

		srv := mcp.NewServer(d, mcp.WithLogger(logger))
		switch transport {
		case "stdio":
			// Logs must not corrupt JSON-RPC on Stdout.
			log.SetOutput(os.Stderr)
			logger.Info("Starting tally MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting tally MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(sigCtx, port); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
