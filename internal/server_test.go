package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(source *fakeSource, lang *fakeLang) *Server {
	pipeline := newTestPipeline(source, lang, nil)
	return NewServer(":0", pipeline, DiscardLogger())
}

func processVideoBody(url, requestID string) string {
	return fmt.Sprintf(`{"url":%q,"youtube_api_key":"yt","groq_api_key":"gq","request_id":%q}`, url, requestID)
}

// decodeSSE parses a text/event-stream body into its data records, counting
// comment (keep-alive) records separately.
func decodeSSE(t *testing.T, body string) (records []ProgressEvent, comments int) {
	t.Helper()
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		switch {
		case chunk == "":
		case strings.HasPrefix(chunk, ":"):
			comments++
		case strings.HasPrefix(chunk, "data: "):
			var ev ProgressEvent
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(chunk, "data: ")), &ev))
			records = append(records, ev)
		default:
			t.Fatalf("unexpected SSE chunk: %q", chunk)
		}
	}
	return records, comments
}

func TestHomeAndHealthEndpoints(t *testing.T) {
	srv := newTestServer(&fakeSource{}, &fakeLang{})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "commentlens backend is running!")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"awake"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessVideoValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "malformed json",
			body:    "{not json",
			wantErr: "URL is required",
		},
		{
			name:    "missing url",
			body:    `{"youtube_api_key":"yt","groq_api_key":"gq","request_id":"r1"}`,
			wantErr: "URL is required",
		},
		{
			name:    "missing youtube key",
			body:    `{"url":"https://youtu.be/dQw4w9WgXcQ","groq_api_key":"gq","request_id":"r1"}`,
			wantErr: "Both YouTube and Groq API keys are required.",
		},
		{
			name:    "missing groq key",
			body:    `{"url":"https://youtu.be/dQw4w9WgXcQ","youtube_api_key":"yt","request_id":"r1"}`,
			wantErr: "Both YouTube and Groq API keys are required.",
		},
		{
			name:    "missing request id",
			body:    `{"url":"https://youtu.be/dQw4w9WgXcQ","youtube_api_key":"yt","groq_api_key":"gq"}`,
			wantErr: "request_id is required to prevent duplicate processing.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{comments: numberedComments(3)}
			lang := &fakeLang{}
			srv := newTestServer(source, lang)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/process-video", strings.NewReader(tt.body))
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantErr), rec.Body.String())

			// Rejected before any work started.
			assert.Zero(t, source.calls.Load())
			assert.Zero(t, lang.calls.Load())
		})
	}
}

func TestProcessVideoStreamsProgress(t *testing.T) {
	source := &fakeSource{comments: numberedComments(37)}
	srv := newTestServer(source, &fakeLang{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process-video",
		strings.NewReader(processVideoBody("https://youtu.be/dQw4w9WgXcQ", "r1")))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	records, _ := decodeSSE(t, rec.Body.String())
	require.NotEmpty(t, records)

	final := records[len(records)-1]
	assert.Equal(t, StageComplete, final.Status)
	require.NotNil(t, final.Results)
	assert.Equal(t, 37, final.Results.ExtractedCount)
	assert.Len(t, final.Results.Comments, ResultSampleSize)

	// No terminal error anywhere in the stream.
	for _, ev := range records {
		assert.False(t, ev.IsError())
	}
}

func TestProcessVideoReplayIsIdempotent(t *testing.T) {
	source := &fakeSource{comments: numberedComments(4)}
	srv := newTestServer(source, &fakeLang{})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-video",
		strings.NewReader(processVideoBody("https://youtu.be/dQw4w9WgXcQ", "r1"))))
	require.Equal(t, http.StatusOK, rec.Code)
	firstRecords, _ := decodeSSE(t, rec.Body.String())
	first := firstRecords[len(firstRecords)-1]
	require.Equal(t, StageComplete, first.Status)

	// Resubmitting the same request ID, even with another URL, replays the
	// stored result as a two-record stream.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-video",
		strings.NewReader(processVideoBody("https://youtu.be/zzzzzzzzzzz", "r1"))))
	require.Equal(t, http.StatusOK, rec.Code)

	records, _ := decodeSSE(t, rec.Body.String())
	require.Len(t, records, 2)
	assert.Equal(t, "Loading results from cache...", records[0].Message)
	assert.Equal(t, StageComplete, records[1].Status)
	assert.Equal(t, first.Results, records[1].Results)

	assert.Equal(t, int32(1), source.calls.Load())
}

func TestProcessVideoErrorTravelsInStream(t *testing.T) {
	source := &fakeSource{comments: nil} // no comments on the video
	srv := newTestServer(source, &fakeLang{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-video",
		strings.NewReader(processVideoBody("https://youtu.be/dQw4w9WgXcQ", "r1"))))

	// The stream itself is a 200; the failure is an in-band record.
	require.Equal(t, http.StatusOK, rec.Code)
	records, _ := decodeSSE(t, rec.Body.String())
	final := records[len(records)-1]
	require.True(t, final.IsError())
	assert.Equal(t, "No comments found for this video.", final.Err)
}

func TestProcessVideoEmitsKeepAliveComments(t *testing.T) {
	source := &fakeSource{comments: numberedComments(2), delay: 80 * time.Millisecond}
	pipeline := NewPipeline(source, &fakeLang{}, NewMemoryCache(), 10*time.Millisecond, DiscardLogger())
	srv := NewServer(":0", pipeline, DiscardLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-video",
		strings.NewReader(processVideoBody("https://youtu.be/dQw4w9WgXcQ", "r1"))))

	records, comments := decodeSSE(t, rec.Body.String())
	assert.GreaterOrEqual(t, comments, 1)
	assert.Equal(t, StageComplete, records[len(records)-1].Status)
}
