package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is the chat model used for translation and summarization.
const DefaultModel = "llama-3.3-70b-versatile"

// LanguageResult carries the output of the translate+summarize stage.
type LanguageResult struct {
	TranslatedComments []string
	// Summary is a *SummaryReport, or a plain string when the structured
	// pass failed or was skipped.
	Summary any
}

// LanguagePipeline translates comments and distills them into a summary.
// Implementations report human-readable progress through the progress
// callback and must check the cancel token at batch and chunk boundaries.
type LanguagePipeline interface {
	TranslateAndSummarize(ctx context.Context, comments []string, apiKey string, progress func(string), token *CancelToken) (*LanguageResult, error)
}

// ChatClient is the minimal chat-completion surface the pipeline needs,
// kept small so tests can substitute a scripted double.
type ChatClient interface {
	Complete(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

// GroqClient wraps the OpenAI Go SDK pointed at Groq's endpoint.
type GroqClient struct {
	client openai.Client
	model  string
}

// NewGroqClient creates a chat client for the given API key.
func NewGroqClient(apiKey, model string) *GroqClient {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(GroqBaseURL),
	)
	return &GroqClient{client: client, model: model}
}

// Complete sends a single-message chat completion and returns the response
// text. With jsonMode set, the model is constrained to emit a JSON object.
func (c *GroqClient) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices from Groq")
	}
	return resp.Choices[0].Message.Content, nil
}

// GroqPipeline implements LanguagePipeline against Groq's chat API.
type GroqPipeline struct {
	// newClient builds a chat client per request key; replaced in tests.
	newClient func(apiKey string) ChatClient

	batchSize int
	chunkSize int
	callPause time.Duration
	logger    *slog.Logger
}

// GroqOption customizes GroqPipeline creation.
type GroqOption func(*GroqPipeline)

// WithChatClientFactory substitutes the client constructor.
func WithChatClientFactory(f func(apiKey string) ChatClient) GroqOption {
	return func(p *GroqPipeline) { p.newClient = f }
}

// WithCallPause sets the pause between consecutive API calls.
func WithCallPause(d time.Duration) GroqOption {
	return func(p *GroqPipeline) { p.callPause = d }
}

// WithBatchSizes overrides the translation batch and summarization chunk
// sizes.
func WithBatchSizes(batch, chunk int) GroqOption {
	return func(p *GroqPipeline) {
		if batch > 0 {
			p.batchSize = batch
		}
		if chunk > 0 {
			p.chunkSize = chunk
		}
	}
}

// NewGroqPipeline returns a pipeline with the production defaults: batches
// of 20 comments per translation call, chunks of 500 per summary call, and
// a pause between calls to stay under Groq's rate limits.
func NewGroqPipeline(model string, logger *slog.Logger, opts ...GroqOption) *GroqPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &GroqPipeline{
		newClient: func(apiKey string) ChatClient { return NewGroqClient(apiKey, model) },
		batchSize: 20,
		chunkSize: 500,
		callPause: 5 * time.Second,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TranslateAndSummarize runs the two sequential passes. Translation
// failures degrade per batch (originals are kept); a cancellation mid-way
// returns the partial translations with an abort note instead of an error.
func (p *GroqPipeline) TranslateAndSummarize(ctx context.Context, comments []string, apiKey string, progress func(string), token *CancelToken) (*LanguageResult, error) {
	if apiKey == "" {
		return nil, errors.New("GROQ API key must be provided from frontend or environment variables")
	}
	if progress == nil {
		progress = func(string) {}
	}

	client := p.newClient(apiKey)

	translated := p.translate(ctx, client, comments, progress, token)

	if token != nil && token.Cancelled() {
		return &LanguageResult{
			TranslatedComments: translated,
			Summary:            "Process aborted by user.",
		}, nil
	}

	summary := p.summarize(ctx, client, translated, progress, token)

	return &LanguageResult{TranslatedComments: translated, Summary: summary}, nil
}

// numberedLine strips "1.", "2)" or "3:" style prefixes from a translated
// line.
var numberedLine = regexp.MustCompile(`^\d+[.):]\s*(.*)`)

func (p *GroqPipeline) translate(ctx context.Context, client ChatClient, comments []string, progress func(string), token *CancelToken) []string {
	var translated []string
	totalBatches := (len(comments) + p.batchSize - 1) / p.batchSize

	for start := 0; start < len(comments); start += p.batchSize {
		if token != nil && token.Cancelled() {
			p.logger.Info("translation aborted", "translated", len(translated))
			break
		}

		end := min(start+p.batchSize, len(comments))
		batch := comments[start:end]
		batchNum := start/p.batchSize + 1
		progress(fmt.Sprintf("Translating batch %d/%d...", batchNum, totalBatches))

		text, err := client.Complete(ctx, buildTranslatePrompt(batch), false)
		if err != nil {
			p.logger.Warn("translation batch failed, keeping originals", "batch", batchNum, "error", err)
			translated = append(translated, batch...)
			continue
		}

		parsed := parseNumberedBatch(text, batch)
		translated = append(translated, parsed...)
		p.pause(ctx)
	}

	return translated
}

// parseNumberedBatch extracts one translation per line, tolerating missing
// numbering. Missing trailing lines fall back to the original comments so
// the output always aligns 1:1 with the batch.
func parseNumberedBatch(text string, batch []string) []string {
	var parsed []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			parsed = append(parsed, m[1])
		} else {
			parsed = append(parsed, line)
		}
	}
	if len(parsed) < len(batch) {
		parsed = append(parsed, batch[len(parsed):]...)
	}
	return parsed[:len(batch)]
}

func (p *GroqPipeline) summarize(ctx context.Context, client ChatClient, translated []string, progress func(string), token *CancelToken) any {
	var chunkSummaries []string
	totalChunks := (len(translated) + p.chunkSize - 1) / p.chunkSize

	for start := 0; start < len(translated); start += p.chunkSize {
		if token != nil && token.Cancelled() {
			p.logger.Info("summarization aborted", "chunks_done", len(chunkSummaries))
			break
		}

		end := min(start+p.chunkSize, len(translated))
		chunkNum := start/p.chunkSize + 1
		progress(fmt.Sprintf("Summarising chunk %d/%d...", chunkNum, totalChunks))

		summary, err := client.Complete(ctx, buildChunkSummaryPrompt(translated[start:end]), false)
		if err != nil {
			p.logger.Warn("chunk summarization failed", "chunk", chunkNum, "error", err)
			continue
		}
		chunkSummaries = append(chunkSummaries, summary)
		p.pause(ctx)
	}

	if len(chunkSummaries) == 0 {
		return "Not enough data or summarization failed."
	}
	if token != nil && token.Cancelled() {
		return "Not enough data or summarization aborted."
	}

	progress("Generating comprehensive final summary...")
	raw, err := client.Complete(ctx, buildFinalSummaryPrompt(chunkSummaries), true)
	if err != nil {
		p.logger.Warn("final summary failed, returning chunk summaries", "error", err)
		return strings.Join(chunkSummaries, "\n\n")
	}

	var report SummaryReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		p.logger.Warn("final summary was not valid JSON, returning chunk summaries", "error", err)
		return strings.Join(chunkSummaries, "\n\n")
	}
	return &report
}

// pause sleeps between API calls unless the context ends first.
func (p *GroqPipeline) pause(ctx context.Context) {
	if p.callPause <= 0 {
		return
	}
	select {
	case <-time.After(p.callPause):
	case <-ctx.Done():
	}
}
