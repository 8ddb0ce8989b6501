package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Addr:          ":0",
		Model:         DefaultModel,
		BatchSize:     20,
		ChunkSize:     500,
		PollInterval:  50 * time.Millisecond,
		YouTubeAPIKey: "yt-config",
		GroqAPIKey:    "gq-config",
	}
}

func TestAnalyzeRequestDerivesIdempotencyKey(t *testing.T) {
	app := NewApp(context.Background(), testConfig(), DiscardLogger())

	req, err := app.AnalyzeRequest("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "local-dQw4w9WgXcQ", req.RequestID)
	assert.Equal(t, "yt-config", req.YouTubeAPIKey)
	assert.Equal(t, "gq-config", req.GroqAPIKey)

	_, err = app.AnalyzeRequest("not a video url")
	assert.Error(t, err)
}

func TestAppRunsWithInjectedDependencies(t *testing.T) {
	source := &fakeSource{comments: numberedComments(3)}
	lang := &fakeLang{}
	app := NewApp(context.Background(), testConfig(), DiscardLogger(),
		WithCommentSource(source),
		WithLanguagePipeline(lang),
		WithResultCache(NewMemoryCache()),
	)

	req, err := app.AnalyzeRequest("https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	records, _ := collect(app.Pipeline().Process(context.Background(), req, NewCancelToken()))
	final := records[len(records)-1]
	require.Equal(t, StageComplete, final.Status)
	assert.Equal(t, 3, final.Results.ExtractedCount)
}
