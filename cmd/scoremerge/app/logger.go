package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/scoremerge/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -v/--verbose flag (debug)
//  3. -q/--quiet flag (warn)
//  4. LOG_LEVEL environment variable
//  5. info
func NewLogger(cfg *Config) zerolog.Logger {
	level := determineLogLevel(cfg)

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:      level,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		TimeFormat: "kitchen",
		NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
		AddCaller:  level == "debug" || level == "trace",
	})
}

func determineLogLevel(cfg *Config) string {
	if cfg.LogLevel != "" {
		validated := validateLogLevel(cfg.LogLevel)
		if validated != strings.ToLower(cfg.LogLevel) {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", cfg.LogLevel, validated)
		}
		return validated
	}

	if cfg.Verbose && cfg.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if cfg.Verbose {
		return "debug"
	}
	if cfg.Quiet {
		return "warn"
	}

	if cfg.EnvLogLevel != "" {
		return validateLogLevel(cfg.EnvLogLevel)
	}
	return "info"
}

// validateLogLevel returns the level if it is known and "info" otherwise.
func validateLogLevel(level string) string {
	switch level = strings.ToLower(strings.TrimSpace(level)); level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
