package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bugrca/commentlens/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commentlens",
	Short: "Translate and summarize YouTube comments with Groq",
	Long: `commentlens fetches the public comments of a YouTube video, translates
them to English and distills them into a structured report of main themes,
recurring feedback and root-cause hypotheses using Groq's LLaMA models.

Run it as a streaming HTTP backend (serve), as a one-shot terminal
analysis (analyze), or as an MCP server for AI assistants (mcp).`,
	Example: `  # Analyze a video from the terminal
  commentlens analyze "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Start the streaming HTTP backend on port 5000
  commentlens serve

  # Run the MCP server for AI assistant integration
  commentlens mcp`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Load .env file if present (silently ignore if missing)
	_ = godotenv.Load()

	// Cancel the application context on interrupt so servers shut down
	// gracefully.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config = internal.InitConfig()

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			config.Verbose = true
		}
	}
}
