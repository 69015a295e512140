// Package serve provides the serve command, which exposes a directory of
// month folders over HTTP.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/internal/server"
	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "server",
		Short:   "Serve merged months over a REST API",
		Args:    cobra.NoArgs,
		Long: `Serve starts an HTTP server over a directory of month folders.

Endpoints (prefix /api/v1):
  GET  /health                     Liveness and version
  GET  /api/v1/months              Months under the data directory
  GET  /api/v1/months/{month}      Merged table as JSON (?filter=&top=)
  GET  /api/v1/months/{month}/export   CSV download
  POST /api/v1/archives            Merge an uploaded .zip archive

Merged months are cached for --cache-ttl and archive uploads are rate
limited per client.`,
		Example: `  scoremerge serve --data ./scores
  scoremerge serve --data ./scores --port 3000 --cors-origins https://app.example.com
  scoremerge serve --rate-limit 0 --cache-ttl 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := serverConfig(cmd, app)
			if err != nil {
				return err
			}
			return run(cmd.Context(), app, cfg)
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().String("data", "", "directory of month folders (default from config data_dir)")
	cmd.Flags().IntP("port", "p", 0, "server port (default from config port)")
	cmd.Flags().String("host", defaults.Host, "bind address")
	cmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (comma-separated)")
	cmd.Flags().Int("rate-limit", 0, "archive uploads per minute per client, 0 to disable (default from config rate_limit)")
	cmd.Flags().Duration("cache-ttl", 0, "how long merged months are reused, 0 to disable (default from config cache_ttl)")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")

	return cmd
}

// serverConfig combines flags with the settings. Flags win when set.
func serverConfig(cmd *cobra.Command, app appcontext.Interface) (server.Config, error) {
	settings := app.Settings()
	cfg := server.DefaultConfig()
	cfg.DataDir = settings.DataDir
	cfg.Port = settings.Port
	cfg.CacheTTL = settings.CacheTTL
	cfg.RateLimit = settings.RateLimit

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir, _ = flags.GetString("data")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	cfg.Host, _ = flags.GetString("host")
	cfg.PathPrefix, _ = flags.GetString("prefix")
	cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, errors.NewValidationError("port", cfg.Port, "must be between 1 and 65535")
	}
	if cfg.RateLimit < 0 {
		return cfg, errors.NewValidationError("rate-limit", cfg.RateLimit, "must not be negative")
	}
	info, err := os.Stat(cfg.DataDir)
	if err != nil {
		return cfg, errors.WrapIO("stat", cfg.DataDir, err)
	}
	if !info.IsDir() {
		return cfg, errors.NewValidationError("data", cfg.DataDir, "must be a directory")
	}
	return cfg, nil
}

func run(ctx context.Context, app appcontext.Interface, cfg server.Config) error {
	logger := app.Logger()
	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              srv.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	logger.Info().
		Str("addr", httpServer.Addr).
		Str("data", cfg.DataDir).
		Str("prefix", cfg.PathPrefix).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting API server")

	return serveWithGracefulShutdown(ctx, httpServer, srv, logger)
}

// serveWithGracefulShutdown runs the server until ctx is canceled by a
// signal, then drains connections.
func serveWithGracefulShutdown(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Dur("timeout", constants.ShutdownTimeout).Msg("Server stopped gracefully")
	return nil
}
