package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/scoremerge/internal/config"
	"github.com/agentstation/scoremerge/pkg/errors"
)

// EnvPrefix prefixes every environment variable read into the settings.
const EnvPrefix = "SCOREMERGE"

// Config holds the application configuration loaded from config files,
// environment variables and .env files, plus the global flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration. LogLevel comes from --log-level and
	// EnvLogLevel from LOG_LEVEL.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string

	v *viper.Viper
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (SCOREMERGE_*)
//  3. .env files
//  4. Config file (~/.scoremerge.yaml or ./.scoremerge.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := newViper()
	if err := readConfigFile(v, ""); err != nil {
		return nil, err
	}

	return &Config{
		ConfigFile:  v.ConfigFileUsed(),
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		v:           v,
	}, nil
}

// Settings returns the domain settings.
func (c *Config) Settings() config.Settings {
	if c.v == nil {
		return config.Defaults()
	}
	return config.FromViper(c.v)
}

// Viper exposes the underlying viper instance so commands can bind flags.
func (c *Config) Viper() *viper.Viper {
	if c.v == nil {
		c.v = newViper()
	}
	return c.v
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// UseConfigFile reloads settings from an explicit config file. A missing
// explicit file is an error, unlike the search locations.
func (c *Config) UseConfigFile(path string) error {
	if err := readConfigFile(c.Viper(), path); err != nil {
		return err
	}
	c.ConfigFile = c.v.ConfigFileUsed()
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	return v
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(filepath.Clean(path))
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError("config", "cannot read "+path, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".scoremerge")

	// search locations are optional
	_ = v.ReadInConfig()
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
