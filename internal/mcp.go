package internal

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"commentlens-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("analyze_video_comments",
		mcp.WithDescription("Fetch the public comments of a YouTube video, translate them to English and distill them into a structured report of main themes, recurring issues and root-cause hypotheses. Requires YOUTUBE_API_KEY and GROQ_API_KEY to be configured. Calls the Groq API (costs money) unless a cached result for the video exists."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleAnalyzeComments)

	s.mcpServer.AddTool(mcp.NewTool("get_video_comments",
		mcp.WithDescription("Fetch the raw public comments of a YouTube video without translating or summarizing them (FREE apart from YouTube API quota). Requires YOUTUBE_API_KEY to be configured."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleGetComments)
}

// handleAnalyzeComments implements the analyze_video_comments tool
func (s *MCPServer) handleAnalyzeComments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	req, err := s.app.AnalyzeRequest(url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid video URL", err), nil
	}
	if req.YouTubeAPIKey == "" || req.GroqAPIKey == "" {
		return mcp.NewToolResultError("YOUTUBE_API_KEY and GROQ_API_KEY must be configured"), nil
	}

	token := NewCancelToken()
	token.CancelOnDone(ctx)

	var result *PipelineResult
	for ev := range s.app.Pipeline().Process(ctx, req, token) {
		switch {
		case ev.IsError():
			return mcp.NewToolResultError(ev.Err), nil
		case ev.Status == StageComplete:
			result = ev.Results
		default:
			mcpLogf("INFO", "pipeline: %s %s", ev.Status, ev.Message)
		}
	}
	if result == nil {
		return mcp.NewToolResultError("analysis was cancelled before completion"), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(FormatReport(result))},
	}, nil
}

// handleGetComments implements the get_video_comments tool
func (s *MCPServer) handleGetComments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	apiKey := s.app.Config().YouTubeAPIKey
	if apiKey == "" {
		return mcp.NewToolResultError("YOUTUBE_API_KEY must be configured"), nil
	}

	source := NewYouTubeSource(s.app.logger)
	comments, err := source.FetchComments(ctx, url, apiKey, NewCancelToken())
	if err != nil {
		return mcp.NewToolResultErrorFromErr("fetching comments", err), nil
	}
	if len(comments) == 0 {
		return mcp.NewToolResultError("No comments found for this video."), nil
	}

	var buf string
	for i, c := range comments {
		buf += fmt.Sprintf("%d. %s\n", i+1, c)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf)},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
