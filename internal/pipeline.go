package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pipeline orchestrates the extract → translate+summarize flow for one
// request and streams its progress as events. It is safe for concurrent
// use; each Process call runs independently and only the result cache is
// shared.
type Pipeline struct {
	source CommentSource
	lang   LanguagePipeline
	cache  ResultCache

	pollInterval time.Duration
	logger       *slog.Logger
}

// NewPipeline wires the orchestrator. pollInterval bounds how long the
// event stream stays silent before a keep-alive is emitted.
func NewPipeline(source CommentSource, lang LanguagePipeline, cache ResultCache, pollInterval time.Duration, logger *slog.Logger) *Pipeline {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:       source,
		lang:         lang,
		cache:        cache,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Process runs the pipeline for req and returns its event stream. The
// channel is closed after the terminal event, after a silent cancellation,
// or once the consumer stops reading (ctx done). Events arrive in
// production order; a previously seen request ID short-circuits to a
// two-event replay of the stored result without invoking either
// collaborator.
func (p *Pipeline) Process(ctx context.Context, req PipelineRequest, token *CancelToken) <-chan ProgressEvent {
	events := make(chan ProgressEvent)

	go func() {
		defer close(events)
		defer func() {
			// Any uncaught failure becomes an error event so the stream
			// always terminates cleanly instead of resetting the
			// connection.
			if r := recover(); r != nil {
				p.logger.Error("pipeline panic", "request_id", req.RequestID, "panic", r)
				select {
				case events <- ProgressEvent{Err: fmt.Sprint(r)}:
				case <-ctx.Done():
				}
			}
		}()

		emit := func(ev ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				token.Cancel()
				return false
			}
		}

		p.run(ctx, req, token, emit)
	}()

	return events
}

func (p *Pipeline) run(ctx context.Context, req PipelineRequest, token *CancelToken, emit func(ProgressEvent) bool) {
	if cached, ok, err := p.cache.Get(ctx, req.RequestID); err != nil {
		p.logger.Warn("cache lookup failed", "request_id", req.RequestID, "error", err)
	} else if ok {
		p.logger.Info("replaying cached result", "request_id", req.RequestID)
		if !emit(ProgressEvent{Status: StageExtracting, Message: "Loading results from cache..."}) {
			return
		}
		emit(ProgressEvent{Status: StageComplete, Results: cached})
		return
	}

	relay := NewRelay()

	// Stage 1: extract comments.
	if !emit(ProgressEvent{Status: StageExtracting, Message: "Fetching comments from YouTube..."}) {
		return
	}
	comments, err := runStage(StageExtracting, relay, p.pollInterval, emit, func() ([]string, error) {
		return p.source.FetchComments(ctx, req.URL, req.YouTubeAPIKey, token)
	})
	if token.Cancelled() {
		// The client already navigated away; no further events.
		p.logger.Info("pipeline cancelled during extraction", "request_id", req.RequestID)
		return
	}
	if err != nil {
		emit(ProgressEvent{Err: err.Error()})
		return
	}
	if len(comments) == 0 {
		emit(ProgressEvent{Err: "No comments found for this video."})
		return
	}
	if !emit(ProgressEvent{Status: StageExtracting, Message: "Extracted comments successfully."}) {
		return
	}

	// Stage 2: translate and summarize.
	if !emit(ProgressEvent{Status: StageTranslating, Message: fmt.Sprintf("Translating and summarizing %d comments with Groq LLaMA...", len(comments))}) {
		return
	}
	langResult, err := runStage(StageTranslating, relay, p.pollInterval, emit, func() (*LanguageResult, error) {
		return p.lang.TranslateAndSummarize(ctx, comments, req.GroqAPIKey, relay.Publish, token)
	})
	if token.Cancelled() {
		p.logger.Info("pipeline cancelled during translation", "request_id", req.RequestID)
		return
	}
	if err != nil {
		emit(ProgressEvent{Err: err.Error()})
		return
	}

	result := assembleResult(comments, langResult)
	if err := p.cache.Put(ctx, req.RequestID, result); err != nil {
		p.logger.Warn("storing result failed", "request_id", req.RequestID, "error", err)
	}

	emit(ProgressEvent{Status: StageComplete, Results: result})
}

// assembleResult truncates both comment sequences to the sample size while
// keeping the pre-truncation count.
func assembleResult(comments []string, lang *LanguageResult) *PipelineResult {
	result := &PipelineResult{
		ExtractedCount:     len(comments),
		Comments:           sample(comments),
		TranslatedComments: sample(lang.TranslatedComments),
		Summary:            lang.Summary,
	}
	if result.Summary == nil {
		result.Summary = "Summarization failed."
	}
	return result
}

func sample(items []string) []string {
	if len(items) > ResultSampleSize {
		items = items[:ResultSampleSize]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
