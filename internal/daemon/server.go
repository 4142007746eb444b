package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/metadata"
)

// Server exposes /health, /ready and /stats for the watch daemon.
type Server struct {
	httpServer  *http.Server
	handler     *MediaHandler
	cacheStats  func() metadata.CacheStats
	corsOrigins []string
	startTime   time.Time
	logger      *logging.Logger

	mu      sync.RWMutex
	healthy bool
}

type ServerOption func(*Server)

// WithCacheStats adds resolver cache counters to /stats.
func WithCacheStats(fn func() metadata.CacheStats) ServerOption {
	return func(s *Server) {
		s.cacheStats = fn
	}
}

func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func WithServerLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	Pending   int       `json:"pending"`
}

type StatsResponse struct {
	Processed     int64                `json:"processed"`
	Movies        int64                `json:"movies"`
	Series        int64                `json:"series"`
	Other         int64                `json:"other"`
	Renamed       int64                `json:"renamed"`
	AlreadyNamed  int64                `json:"already_named"`
	Failed        int64                `json:"failed"`
	Resolved      int64                `json:"resolved"`
	Skipped       int64                `json:"skipped"`
	Pending       int                  `json:"pending"`
	UptimeSeconds float64              `json:"uptime_seconds"`
	LastProcessed string               `json:"last_processed,omitempty"`
	Cache         *metadata.CacheStats `json:"cache,omitempty"`
}

func NewServer(handler *MediaHandler, addr string, opts ...ServerOption) *Server {
	s := &Server{
		handler:   handler,
		startTime: time.Now(),
		healthy:   true,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Get("/stats", s.handleStats)
		r.Get("/metrics", s.handleStats)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("server", "Request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", ww.Status()),
			logging.F("duration", time.Since(start).String()))
	})
}

func (s *Server) Start() error {
	s.logger.Info("server", "Health server starting", logging.F("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

func (s *Server) isHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
	if s.handler != nil {
		response.Pending = s.handler.Pending()
	}

	status := http.StatusOK
	if !s.isHealthy() {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.isHealthy() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("not ready"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var response StatsResponse
	if s.handler != nil {
		stats := s.handler.Stats()
		response = StatsResponse{
			Processed:     stats.Processed(),
			Movies:        stats.Movies,
			Series:        stats.Series,
			Other:         stats.Other,
			Renamed:       stats.Renamed,
			AlreadyNamed:  stats.AlreadyNamed,
			Failed:        stats.Failed,
			Resolved:      stats.Resolved,
			Skipped:       stats.Skipped,
			Pending:       s.handler.Pending(),
			UptimeSeconds: stats.Uptime.Seconds(),
		}
		if !stats.LastProcessed.IsZero() {
			response.LastProcessed = stats.LastProcessed.Format(time.RFC3339)
		}
	}
	if s.cacheStats != nil {
		cs := s.cacheStats()
		response.Cache = &cs
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
