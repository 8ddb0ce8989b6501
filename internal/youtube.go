package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// CommentSource fetches the public comments for a video. Implementations
// must check the cancel token between pagination requests and return the
// comments collected so far when it is set.
type CommentSource interface {
	FetchComments(ctx context.Context, videoURL, apiKey string, token *CancelToken) ([]string, error)
}

// videoIDPattern matches the 11-character video ID in watch, share and
// embed URL forms.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID pulls the video ID out of a YouTube URL.
func ExtractVideoID(videoURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(strings.TrimSpace(videoURL))
	if m == nil {
		return "", fmt.Errorf("could not extract a valid YouTube video ID from %s", videoURL)
	}
	return m[1], nil
}

// YouTubeSource fetches top-level comments through the YouTube Data API v3.
type YouTubeSource struct {
	pageSize int64
	logger   *slog.Logger
}

// NewYouTubeSource returns a comment source using the Data API's maximum
// page size.
func NewYouTubeSource(logger *slog.Logger) *YouTubeSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTubeSource{pageSize: 100, logger: logger}
}

// FetchComments pages through the video's comment threads and returns all
// non-blank top-level comment texts in API order.
func (s *YouTubeSource) FetchComments(ctx context.Context, videoURL, apiKey string, token *CancelToken) ([]string, error) {
	if apiKey == "" {
		return nil, errors.New("YouTube API key not provided")
	}

	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating YouTube client: %w", err)
	}

	var comments []string
	pageToken := ""
	for {
		if token != nil && token.Cancelled() {
			s.logger.Info("comment extraction aborted", "video_id", videoID, "collected", len(comments))
			return comments, nil
		}

		call := svc.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			TextFormat("plainText").
			MaxResults(s.pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				return nil, fmt.Errorf("YouTube API error: %s", apiErr.Message)
			}
			return nil, fmt.Errorf("fetching comment threads: %w", err)
		}

		for _, item := range resp.Items {
			text := strings.TrimSpace(item.Snippet.TopLevelComment.Snippet.TextDisplay)
			if text != "" {
				comments = append(comments, text)
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	s.logger.Debug("comment extraction finished", "video_id", videoID, "count", len(comments))
	return comments, nil
}
