// Package api serves the review workflow as a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/monitoring"
	"github.com/sells-group/intake-cli/internal/review"
)

// Backend is the record collaborator the API drives.
type Backend interface {
	review.Mutator
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	Ping(ctx context.Context) error
}

// StatsSource reports queue health for GET /api/stats.
type StatsSource interface {
	Collect(ctx context.Context) (*monitoring.QueueSnapshot, error)
}

// Options configures the API handler.
type Options struct {
	AllowedOrigins []string
	ListLimit      int
	BulkLimit      int

	// Stats enables /api/stats when set.
	Stats StatsSource
}

// Server holds the API dependencies.
type Server struct {
	backend Backend
	opts    Options
}

// NewServer creates a Server.
func NewServer(b Backend, opts Options) *Server {
	if opts.ListLimit <= 0 {
		opts.ListLimit = 200
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{backend: b, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/phone/format", s.formatPhone)
		if s.opts.Stats != nil {
			r.Get("/stats", s.stats)
		}

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.listRecords)
			r.Post("/bulk", s.bulk)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getRecord)
				r.Get("/draft", s.getDraft)
				r.Post("/status", s.setStatus)
				r.Post("/promote", s.promote)
				r.Post("/refresh", s.refresh)
			})
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.backend.Ping(ctx); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs each request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
