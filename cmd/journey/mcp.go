package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/journey/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes journey operations as MCP tools so AI agents can design,
simulate and analyze journeys.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		srv := mcp.NewServer(b.Engine, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("starting journey MCP server", "transport", transport)
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting journey MCP server", "transport", transport, "port", port)
			if err := srv.ServeSSE(cmd.Context(), port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "transport protocol: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "port to listen on (sse only)")
	rootCmd.AddCommand(mcpCmd)
}
