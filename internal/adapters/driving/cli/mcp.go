package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ppltr/internal/logger"
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

Tools: recommend_patterns, pattern_features, generate_requirements.
Resources: ppltr://patterns and ppltr://patterns/{patternId}.

The corpus file is watched; when it changes the feature engine is rebuilt
and swapped in without restarting the server.

Examples:
  # Stdio mode (default, for Claude Desktop)
  ppltr mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ppltr mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch", true, "rebuild the engine when the corpus file changes")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	if err := initEngine(cmd.Context()); err != nil {
		return err
	}
	initRequirements()

	ports := &mcp.Ports{
		Features:     featureService,
		Patterns:     patternService,
		Recommend:    recommendService,
		Requirements: requirementService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if watch && rt.features != nil {
		go func() {
			if err := watchCorpus(cmd.Context()); err != nil {
				logger.Warn("Corpus watch stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
