// Package httpapi exposes the trending labels over HTTP.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdulachik/hashtrend/internal/scheduler"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// TrendReader answers reader queries against the published snapshot.
type TrendReader interface {
	TrendingLabels() []string
	Snapshot() *trend.Snapshot
	Ready() bool
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	trends  TrendReader
	health  *scheduler.Health
	metrics http.Handler
}

// Config holds server configuration.
type Config struct {
	Trends  TrendReader
	Health  *scheduler.Health
	Metrics http.Handler
}

// NewServer creates a new server.
func NewServer(cfg Config) *Server {
	return &Server{
		trends:  cfg.Trends,
		health:  cfg.Health,
		metrics: cfg.Metrics,
	}
}

// Routes configures all routes and middleware.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger)

	router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	router.Route("/api/trends", func(r chi.Router) {
		r.Get("/", s.handleTrends)
		r.Get("/scores", s.handleScores)
	})

	return router
}

type trendsResponse struct {
	Labels []string `json:"labels"`
}

type scoresResponse struct {
	ComputedAt *time.Time          `json:"computed_at"`
	Trends     []trend.ScoredLabel `json:"trends"`
}

type componentHealth struct {
	Healthy     bool       `json:"healthy"`
	Message     string     `json:"message,omitempty"`
	LastCheck   time.Time  `json:"last_check"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	Failures    int        `json:"failures,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Ready      bool                       `json:"ready"`
	Components map[string]componentHealth `json:"components"`
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	labels := s.trends.TrendingLabels()
	if labels == nil {
		labels = []string{}
	}
	respondJSON(w, http.StatusOK, trendsResponse{Labels: labels})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	snap := s.trends.Snapshot()

	resp := scoresResponse{Trends: snap.Entries()}
	if resp.Trends == nil {
		resp.Trends = []trend.ScoredLabel{}
	}
	if s.trends.Ready() {
		at := snap.ComputedAt()
		resp.ComputedAt = &at
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "ok",
		Ready:      s.trends.Ready(),
		Components: map[string]componentHealth{},
	}

	healthy := resp.Ready
	if s.health != nil {
		for name, st := range s.health.GetAllStatuses() {
			c := componentHealth{
				Healthy:   st.Healthy,
				Message:   st.Message,
				LastCheck: st.LastCheck,
				Failures:  st.Failures,
			}
			if !st.LastSuccess.IsZero() {
				last := st.LastSuccess
				c.LastSuccess = &last
			}
			resp.Components[name] = c
		}
		healthy = healthy && s.health.IsOverallHealthy()
	}

	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// requestLogger logs each request once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
