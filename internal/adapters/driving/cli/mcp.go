package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/weldsafe/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
welding safety questions.

Tools:
  answer    - answer a question from the corpus
  retrieve  - return the nearest chunks without composing an answer

Resources:
  weldsafe://manifest - the manifest of the served index

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  weldsafe mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  weldsafe mcp serve --port 8081

Desktop assistant configuration:
  {
    "mcpServers": {
      "weldsafe": {
        "command": "/path/to/weldsafe",
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
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	answers, err := rt.Answers(ctx)
	if err != nil {
		return withHint("start answer engine", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{Answers: answers, Version: version})
	if err != nil {
		return err
	}

	go watchIndex(ctx, rt)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
