package logger

import (
	"os"
	"strings"
)

// Environment variables read by ConfigFromEnv.
const (
	envLevel      = "DAILYAGI_LOG_LEVEL"
	envFormat     = "DAILYAGI_LOG_FORMAT"
	envCaller     = "DAILYAGI_LOG_CALLER"
	envStacktrace = "DAILYAGI_LOG_STACKTRACE"
	envVerbosity  = "DAILYAGI_VERBOSITY"
)

// Config holds logger configuration
type Config struct {
	Level      Level
	Format     string // "console" or "json"
	Caller     bool
	Stacktrace string // "error", "panic" or "fatal"
}

// ConfigFromEnv creates a logger configuration from environment variables.
// DAILYAGI_LOG_LEVEL wins over DAILYAGI_VERBOSITY.
func ConfigFromEnv() *Config {
	cfg := &Config{
		Level:      InfoLevel,
		Format:     "console",
		Stacktrace: "",
	}

	if levelStr := os.Getenv(envLevel); levelStr != "" {
		cfg.Level = LevelFromString(levelStr)
	} else {
		cfg.Level = levelFromVerbosity(os.Getenv(envVerbosity))
	}

	if format := os.Getenv(envFormat); format != "" {
		cfg.Format = strings.ToLower(format)
	}

	cfg.Caller = os.Getenv(envCaller) == "true"

	if stacktrace := os.Getenv(envStacktrace); stacktrace != "" {
		cfg.Stacktrace = strings.ToLower(stacktrace)
	}

	return cfg
}

// IsDevelopment returns true if the logger is configured for development mode
func (c *Config) IsDevelopment() bool {
	return c.Format != "json"
}

func levelFromVerbosity(verbosity string) Level {
	switch verbosity {
	case "debug":
		return DebugLevel
	case "verbose":
		return InfoLevel
	default:
		return ErrorLevel
	}
}
