// Package app provides the application context and dependency management
// for the scoremerge CLI. Configuration, logging and build information are
// owned here and handed to the commands through appcontext.Interface.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/internal/config"
	"github.com/agentstation/scoremerge/pkg/errors"
)

// App represents the scoremerge application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized from the environment and config file and can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load configuration", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Settings returns the domain settings resolved from defaults, config file
// and environment.
func (a *App) Settings() config.Settings {
	return a.config.Settings()
}

// OutputFormat returns the requested output format, empty for auto-detect.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// Shutdown performs graceful shutdown of the application. Pipeline runs
// clean up their own scratch arenas, so nothing is left to release here.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Application shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
