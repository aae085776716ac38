package cli

import (
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/comply/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Tools: check_compliance, retrieve_passages, improve_disclosure, draft_disclosure.
Resources: comply://frameworks, comply://frameworks/{name}.

Examples:
  # Stdio mode (default, for Claude Desktop)
  comply mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  comply mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "comply": {
        "command": "/path/to/comply",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if complianceService == nil {
		return errors.New("compliance service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Compliance: complianceService,
		Advisor:    advisorService,
		Corpus:     corpusService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port == 0 {
		// stdout carries the protocol; nothing else may be printed.
		return server.Serve(cmd.Context(), "", nil)
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	return server.Serve(cmd.Context(), addr, func(a net.Addr) {
		cmd.Printf("MCP server listening on http://%s\n", a)
	})
}
