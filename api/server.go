// Package api serves equilibrium queries and simulation runs over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pthm-cable/hawkdove/store"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// RunStore is the archive the runs endpoints read and write.
// *store.SQLiteStore satisfies it.
type RunStore interface {
	Save(ctx context.Context, rec store.Record) (store.Run, error)
	List(ctx context.Context, limit int) ([]store.Run, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Run, error)
	Rounds(ctx context.Context, id uuid.UUID) ([]telemetry.RoundStats, error)
}

// Limits bound the synchronous runs a client may request.
type Limits struct {
	MaxRounds     int
	MaxPopulation int
	RunTimeout    time.Duration
}

// DefaultLimits keeps a single request to a few seconds of work.
var DefaultLimits = Limits{
	MaxRounds:     5000,
	MaxPopulation: 20000,
	RunTimeout:    60 * time.Second,
}

// Server handles HTTP requests.
type Server struct {
	store     RunStore // nil disables the archive
	logger    *slog.Logger
	limits    Limits
	startTime time.Time
}

// NewServer creates an API server. runs may be nil. Zero limits fall back
// to DefaultLimits.
func NewServer(runs RunStore, logger *slog.Logger, limits Limits) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxRounds <= 0 {
		limits.MaxRounds = DefaultLimits.MaxRounds
	}
	if limits.MaxPopulation <= 0 {
		limits.MaxPopulation = DefaultLimits.MaxPopulation
	}
	if limits.RunTimeout <= 0 {
		limits.RunTimeout = DefaultLimits.RunTimeout
	}
	return &Server{
		store:     runs,
		logger:    logger,
		limits:    limits,
		startTime: time.Now(),
	}
}

// Routes sets up the router and middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.limits.RunTimeout + 5*time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/presets", s.handleListPresets)
		r.Post("/equilibrium", s.handleEquilibrium)

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleCreateRun)
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
			r.Get("/{id}/rounds", s.handleGetRounds)
		})
	})

	return r
}

// logRequests logs one line per request through the server's logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeFieldError writes a validation error naming the offending field.
func (s *Server) writeFieldError(w http.ResponseWriter, r *http.Request, status int, field, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Type:      ErrTypeValidation,
		Message:   message,
		Field:     field,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Archive: s.store != nil,
	})
}
