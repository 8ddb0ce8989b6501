package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugrca/commentlens/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing comment analysis as tools",
	Long: `Run a Model Context Protocol (MCP) server that exposes commentlens
functionality as tools.

The MCP server provides two tools:
- analyze_video_comments: translate and summarize a video's comments
- get_video_comments: fetch the raw comments without analysis

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  commentlens mcp

  # Run MCP server with HTTP transport on port 8080
  commentlens mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The stdio transport owns stdout, so keep it clean.
		config.Verbose = false
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		internal.InitMCPLogging(config)

		app := internal.NewApp(cmd.Context(), config, internal.DiscardLogger())
		mcpServer := internal.NewMCPServer(app)

		if transport == "http" {
			fmt.Printf("Starting commentlens MCP server on HTTP port %d...\n", port)
		}

		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
