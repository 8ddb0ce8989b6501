package internal

import (
	"context"
	"log/slog"
)

// App holds the application state and dependencies.
type App struct {
	config   *Config
	pipeline *Pipeline
	cache    ResultCache
	logger   *slog.Logger
}

// AppOption customizes App creation.
type AppOption func(*appDeps)

type appDeps struct {
	source CommentSource
	lang   LanguagePipeline
	cache  ResultCache
}

// WithCommentSource sets a custom comment source.
func WithCommentSource(source CommentSource) AppOption {
	return func(d *appDeps) { d.source = source }
}

// WithLanguagePipeline sets a custom language pipeline.
func WithLanguagePipeline(lang LanguagePipeline) AppOption {
	return func(d *appDeps) { d.lang = lang }
}

// WithResultCache sets a custom result cache.
func WithResultCache(cache ResultCache) AppOption {
	return func(d *appDeps) { d.cache = cache }
}

// NewApp wires the pipeline from configuration. When a Redis URL is
// configured the dedup cache lives there; otherwise results are held in
// process memory and vanish on restart.
func NewApp(ctx context.Context, config *Config, logger *slog.Logger, options ...AppOption) *App {
	if logger == nil {
		logger = slog.Default()
	}

	deps := &appDeps{}
	for _, option := range options {
		option(deps)
	}

	if deps.cache == nil {
		deps.cache = NewMemoryCache()
		if config.RedisURL != "" {
			if rc, err := NewRedisCache(ctx, config.RedisURL, config.CacheTTL); err != nil {
				logger.Warn("redis unavailable, falling back to in-memory cache", "error", err)
			} else {
				deps.cache = rc
			}
		}
	}
	if deps.source == nil {
		deps.source = NewYouTubeSource(logger)
	}
	if deps.lang == nil {
		deps.lang = NewGroqPipeline(config.Model, logger,
			WithCallPause(config.CallPause),
			WithBatchSizes(config.BatchSize, config.ChunkSize),
		)
	}

	return &App{
		config:   config,
		pipeline: NewPipeline(deps.source, deps.lang, deps.cache, config.PollInterval, logger),
		cache:    deps.cache,
		logger:   logger,
	}
}

// Pipeline returns the orchestrator.
func (app *App) Pipeline() *Pipeline { return app.pipeline }

// Config returns the loaded configuration.
func (app *App) Config() *Config { return app.config }

// AnalyzeRequest builds a pipeline request for local (non-HTTP) use,
// filling in fallback API keys from configuration and deriving a
// deterministic request ID from the video so repeated runs replay the
// cached result.
func (app *App) AnalyzeRequest(videoURL string) (PipelineRequest, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return PipelineRequest{}, err
	}
	return PipelineRequest{
		URL:           videoURL,
		YouTubeAPIKey: app.config.YouTubeAPIKey,
		GroqAPIKey:    app.config.GroqAPIKey,
		RequestID:     "local-" + videoID,
	}, nil
}
