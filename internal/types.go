package internal

import (
	"context"
	"sync/atomic"
)

// Stage identifies which phase of the pipeline produced an event.
type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageTranslating Stage = "translating"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// ResultSampleSize caps how many raw and translated comments are carried in
// the final result payload. The full count is still reported separately.
const ResultSampleSize = 20

// PipelineRequest describes one inbound processing request. RequestID is a
// client-generated idempotency key; repeated submissions with the same ID
// replay the stored result instead of re-running the pipeline.
type PipelineRequest struct {
	URL           string `json:"url"`
	YouTubeAPIKey string `json:"youtube_api_key"`
	GroqAPIKey    string `json:"groq_api_key"`
	RequestID     string `json:"request_id"`
}

// PipelineResult is the final payload of a successful run.
type PipelineResult struct {
	ExtractedCount     int      `json:"extracted_count"`
	Comments           []string `json:"comments"`
	TranslatedComments []string `json:"translated_comments"`
	// Summary is either a *SummaryReport or a plain string when structured
	// summarization was not possible.
	Summary any `json:"summary"`
}

// SummaryReport is the structured analysis produced by the final
// summarization call.
type SummaryReport struct {
	OverallSummary      []string    `json:"overall_summary"`
	MainIssues          []MainIssue `json:"main_issues"`
	RootCauseHypotheses []string    `json:"root_cause_hypotheses"`
}

// MainIssue is one recurring theme found in the comments.
type MainIssue struct {
	Title                 string   `json:"title"`
	Frequency             string   `json:"frequency"`
	Keywords              []string `json:"keywords"`
	RepresentativeComment string   `json:"representative_comment"`
}

// ProgressEvent is one record on the event stream. Exactly one of the
// optional fields is populated depending on the event kind; keep-alive
// markers carry no payload at all and are rendered as SSE comments, never
// as data records.
type ProgressEvent struct {
	Status  Stage           `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Results *PipelineResult `json:"results,omitempty"`
	Err     string          `json:"error,omitempty"`

	KeepAlive bool `json:"-"`
}

// IsError reports whether the event signals pipeline failure. Consumers
// must treat any record with an error field as terminal regardless of
// which stage produced it.
func (e ProgressEvent) IsError() bool { return e.Err != "" }

// CancelToken is a write-once shared flag for cooperative cancellation.
// It is set when the client disconnects; stages poll it at loop boundaries
// (pagination page, translation batch, summarization chunk) and return
// whatever partial results they have. An external API call already in
// flight cannot be aborted.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken returns an unset token.
func NewCancelToken() *CancelToken { return &CancelToken{} }

// Cancel sets the token. Setting an already-set token is a no-op.
func (t *CancelToken) Cancel() { t.flag.Store(true) }

// Cancelled reports whether the token has been set.
func (t *CancelToken) Cancelled() bool { return t.flag.Load() }

// CancelOnDone arranges for the token to be set when ctx is cancelled,
// wiring transport-level disconnect notification into the shared flag.
func (t *CancelToken) CancelOnDone(ctx context.Context) {
	context.AfterFunc(ctx, func() { t.Cancel() })
}
