package server

import (
	"time"

	"github.com/agentstation/scoremerge/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	// PathPrefix is prepended to every API route.
	PathPrefix string

	// DataDir is the directory of month folders served read-only.
	DataDir string

	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string

	// CacheTTL is how long a merged month is reused. Zero disables caching.
	CacheTTL time.Duration

	// RateLimit caps archive uploads per minute and client (0 to disable).
	RateLimit int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         constants.DefaultPort,
		PathPrefix:   constants.DefaultPathPrefix,
		DataDir:      ".",
		CacheTTL:     constants.DefaultCacheTTL,
		RateLimit:    constants.DefaultRateLimit,
		ReadTimeout:  constants.RequestTimeout,
		WriteTimeout: constants.RequestTimeout,
		IdleTimeout:  120 * time.Second,
	}
}
