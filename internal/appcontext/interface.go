// Package appcontext provides the shared application context interface
// used by all commands, so command packages depend on an interface rather
// than on the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/scoremerge/internal/config"
)

// Interface defines what commands need from the application. The App in
// cmd/scoremerge/app implements it; tests use Mock.
type Interface interface {
	// Settings returns a copy of the resolved domain settings. Commands
	// apply their own flags on top of it.
	Settings() config.Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, ...).
	// Empty means auto-detect.
	OutputFormat() string

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
