// Package server provides the HTTP API over a directory of month folders.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/internal/server/cache"
	"github.com/agentstation/scoremerge/internal/server/handlers"
	"github.com/agentstation/scoremerge/internal/server/middleware"
	"github.com/agentstation/scoremerge/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       appcontext.Interface
	pipeline  ingest.Config
	cache     *cache.Cache
	limiter   *middleware.RateLimiter
	logger    *zerolog.Logger
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// New creates a server. The pipeline settings are validated here so a bad
// configuration fails at startup rather than on the first request.
func New(app appcontext.Interface, cfg Config) (*Server, error) {
	pipeline, err := app.Settings().PipelineConfig()
	if err != nil {
		return nil, err
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = constants.DefaultPathPrefix
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:       app,
		pipeline:  pipeline,
		logger:    app.Logger(),
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(ctx, cfg.RateLimit, s.logger)
	}
	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background work of the server.
func (s *Server) Shutdown(_ context.Context) error {
	s.cancel()
	if s.cache != nil {
		s.cache.Clear()
	}
	s.logger.Info().Dur("uptime", time.Since(s.startTime)).Msg("Server background services stopped")
	return nil
}

func (s *Server) handlers() *handlers.Handlers {
	settings := s.app.Settings()
	return handlers.New(handlers.Deps{
		Pipeline:       s.pipeline,
		Layout:         settings.Layout(),
		ExportTemplate: settings.ExportTemplate,
		DataDir:        s.config.DataDir,
		Cache:          s.cache,
		Logger:         s.logger,
		Version:        s.app.Version(),
	})
}
