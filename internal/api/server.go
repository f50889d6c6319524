package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/startupconnect/harvester/internal/config"
	"github.com/startupconnect/harvester/internal/harvest"
	"github.com/startupconnect/harvester/internal/metrics"
)

// Harvester runs one harvest batch per request.
type Harvester interface {
	HarvestStartup(ctx context.Context, startupID string) (harvest.Result, error)
}

// Server wires HTTP handlers to the orchestrator and stores.
type Server struct {
	router    chi.Router
	harvester Harvester
	emails    harvest.EmailStore
	cfg       config.Config
	logger    *zap.Logger
}

// requestTimeout bounds a whole request. Harvest batches fan out over many
// sites, so this is far looser than the per-fetch deadline.
const requestTimeout = 5 * time.Minute

// NewServer constructs a Server with middleware and routes.
func NewServer(harvester Harvester, emails harvest.EmailStore, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		harvester: harvester,
		emails:    emails,
		cfg:       cfg,
		logger:    logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(requestTimeout))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/crawlemails", s.crawlEmails)
	r.Get("/startups/{startup_id}/emails", s.listEmails)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type crawlRequest struct {
	StartupID string `json:"startupId"`
}

type crawlResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Count    int      `json:"count"`
	Emails   []string `json:"emails"`
	Errors   []string `json:"errors,omitempty"`
	Progress int      `json:"progress"`
}

func (s *Server) crawlEmails(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StartupID == "" {
		writeError(w, http.StatusBadRequest, "Startup ID is required")
		return
	}

	result, err := s.harvester.HarvestStartup(r.Context(), req.StartupID)
	if err != nil {
		if errors.Is(err, harvest.ErrNoMatches) {
			writeError(w, http.StatusNotFound, "No matches found for this startup")
			return
		}
		s.logger.Error("harvest batch failed", zap.String("startup_id", req.StartupID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to collect emails. Please try again later.")
		return
	}

	emails := result.Emails
	if emails == nil {
		emails = []string{}
	}
	writeJSON(w, http.StatusOK, crawlResponse{
		Success:  true,
		Message:  "Email collection completed",
		Count:    result.Count,
		Emails:   emails,
		Errors:   result.Errors,
		Progress: 100,
	})
}

func (s *Server) listEmails(w http.ResponseWriter, r *http.Request) {
	startupID := chi.URLParam(r, "startup_id")
	rows, err := s.emails.ListValidByStartup(r.Context(), startupID)
	if err != nil {
		s.logger.Error("list emails failed", zap.String("startup_id", startupID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list emails")
		return
	}
	if rows == nil {
		rows = []harvest.HarvestedEmail{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(rows),
		"emails":  rows,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			dur := time.Since(start)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", dur.Milliseconds()),
			)
			metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, dur)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
