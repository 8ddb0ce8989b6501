package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
)

// Server exposes the pipeline over HTTP with a server-sent event stream for
// progress delivery.
type Server struct {
	pipeline *Pipeline
	logger   *slog.Logger
	http     *http.Server
}

// NewServer builds the server for the given listen address.
func NewServer(addr string, pipeline *Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{pipeline: pipeline, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler, exported for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/process-video", s.handleProcessVideo)

	// Open CORS so a browser frontend on any origin can talk to us.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return c.Handler(s.logRequests(mux))
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "commentlens backend is running!",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("health probe", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]string{"status": "awake"})
}

// handleProcessVideo validates the request synchronously, then hands off to
// the pipeline and streams its events. Client input errors never start a
// stream; once streaming begins, all failures travel as error records
// inside the stream.
func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	var req PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "URL is required"})
		return
	}
	if req.YouTubeAPIKey == "" || req.GroqAPIKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Both YouTube and Groq API keys are required."})
		return
	}
	if req.RequestID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request_id is required to prevent duplicate processing."})
		return
	}

	s.logger.Info("processing video", "request_id", req.RequestID, "url", req.URL)

	token := NewCancelToken()
	token.CancelOnDone(r.Context())

	events := s.pipeline.Process(r.Context(), req, token)
	StreamEvents(w, r, events)
}

// logRequests logs every request with its duration, skipping the noisy
// health endpoint at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if r.URL.Path == "/health" {
			s.logger.Debug("request completed", attrs...)
			return
		}
		s.logger.Info("request completed", attrs...)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
