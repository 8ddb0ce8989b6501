package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bugrca/commentlens/internal"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the streaming HTTP backend",
	Long: `Start the HTTP backend that powers the web frontend.

Endpoints:
  GET  /                  - Health check with status message
  GET  /health            - Liveness probe
  POST /api/process-video - Run the comment pipeline, streaming progress
                            as server-sent events

Clients supply their own YouTube and Groq API keys per request together
with a request_id used to deduplicate retries.`,
	Example: `  # Listen on the configured address (default :5000)
  commentlens serve

  # Listen on a specific address
  commentlens serve --addr :8080

  # Persist the dedup cache in Redis
  COMMENTLENS_REDIS_URL=redis://localhost:6379/0 commentlens serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.Addr = addr
		}

		logger := internal.SetupLogger(config.Verbose)
		app := internal.NewApp(cmd.Context(), config, logger)
		server := internal.NewServer(config.Addr, app.Pipeline(), logger)

		return server.ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :5000)")
	rootCmd.AddCommand(serveCmd)
}
