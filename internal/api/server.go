// Package api exposes a reachability pipeline over HTTP as JSON.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/reach-cli/internal/model"
	"github.com/sells-group/reach-cli/internal/pipeline"
)

const maxBodyBytes = 1 << 20

// Saver persists the session after a successful mutation.
type Saver interface {
	SaveSession(ctx context.Context, s *model.Session) error
}

// Option configures a Server.
type Option func(*Server)

// WithSaver persists the session after every mutating request.
func WithSaver(s Saver) Option {
	return func(srv *Server) {
		srv.saver = s
	}
}

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins []string) Option {
	return func(srv *Server) {
		if len(origins) > 0 {
			srv.allowedOrigins = origins
		}
	}
}

// WithCredentialMissing marks the service credential as absent so clients
// can show it.
func WithCredentialMissing(missing bool) Option {
	return func(srv *Server) {
		srv.credentialMissing = missing
	}
}

// Server serves one pipeline. Requests touching the pipeline are serialised.
type Server struct {
	mu                sync.Mutex
	pipeline          *pipeline.Pipeline
	saver             Saver
	validate          *validator.Validate
	allowedOrigins    []string
	credentialMissing bool
}

// NewServer creates a Server around p.
func NewServer(p *pipeline.Pipeline, opts ...Option) *Server {
	s := &Server{
		pipeline:       p,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/session", s.handleGetSession)
	r.Put("/origin", s.handlePutOrigin)
	r.Put("/params", s.handlePutParams)
	r.Post("/isochrone", s.handleComputeIsochrone)
	r.Get("/isochrone", s.handleGetIsochrone)
	r.Post("/addresses", s.handleSubmitAddresses)
	r.Post("/evaluate", s.handleEvaluate)

	return r
}

// persist saves the session if a saver is configured. A failed save is logged;
// the in-memory session stays authoritative.
func (s *Server) persist(ctx context.Context) {
	if s.saver == nil {
		return
	}
	if err := s.saver.SaveSession(ctx, s.pipeline.Session()); err != nil {
		zap.L().Error("api: save session", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
