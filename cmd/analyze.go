package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bugrca/commentlens/internal"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [YouTube URL]",
	Short: "Analyze a video's comments from the terminal",
	Long: `Run the comment pipeline once for a video and print the report.

Requires YOUTUBE_API_KEY and GROQ_API_KEY (environment, .env file or
config). Results are cached per video, so re-running the same URL is free.`,
	Example: `  # Analyze a video's comments
  commentlens analyze "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Copy the report to the clipboard as well
  commentlens analyze "https://youtu.be/tAP1eZYEuKA" --copy

  # Use a specific Groq model
  commentlens analyze tAP1eZYEuKA --model llama-3.1-8b-instant`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			config.Model = model
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		logger := internal.DiscardLogger()
		if config.Verbose {
			logger = internal.SetupLogger(true)
		}

		app := internal.NewApp(cmd.Context(), config, logger)

		videoURL := args[0]
		if _, err := internal.ExtractVideoID(videoURL); err != nil {
			// Accept bare video IDs the way the share dialog hands them out.
			videoURL = "https://www.youtube.com/watch?v=" + videoURL
		}

		req, err := app.AnalyzeRequest(videoURL)
		if err != nil {
			return err
		}
		if req.YouTubeAPIKey == "" || req.GroqAPIKey == "" {
			return fmt.Errorf("both YOUTUBE_API_KEY and GROQ_API_KEY are required")
		}

		ui := internal.NewUIManager(quiet)
		spinner := ui.NewSpinner("Starting analysis...")

		token := internal.NewCancelToken()
		token.CancelOnDone(cmd.Context())

		var result *internal.PipelineResult
		for ev := range app.Pipeline().Process(cmd.Context(), req, token) {
			switch {
			case ev.IsError():
				spinner.Finish()
				return fmt.Errorf("analysis failed: %s", ev.Err)
			case ev.Status == internal.StageComplete:
				result = ev.Results
			case ev.Message != "":
				spinner.Describe(ev.Message)
				spinner.Advance()
			}
		}
		spinner.Finish()

		if result == nil {
			return fmt.Errorf("analysis was cancelled before completion")
		}

		report := internal.FormatReport(result)

		if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
			if err := clipboard.WriteAll(report); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: copying report to clipboard: %v\n", err)
			} else {
				ui.Println("Report copied to clipboard")
			}
		}

		if isatty.IsTerminal(os.Stdout.Fd()) {
			rendered, err := internal.RenderMarkdown(report)
			if err == nil {
				fmt.Println(rendered)
				return nil
			}
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringP("model", "m", "", "Groq model to use")
	analyzeCmd.Flags().Bool("copy", false, "Copy the report to the clipboard")
	analyzeCmd.Flags().BoolP("quiet", "q", false, "Suppress progress output")
	rootCmd.AddCommand(analyzeCmd)
}
