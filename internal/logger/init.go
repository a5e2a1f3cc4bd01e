package logger

import (
	"os"

	"github.com/Backland-Labs/dailyagi/internal/config"
)

// InitializeFromConfig rebuilds the global logger for cfg. The configured
// verbosity picks the level unless DAILYAGI_LOG_LEVEL is set. The previous
// logger is flushed before it is replaced.
func InitializeFromConfig(cfg *config.Config) {
	logCfg := ConfigFromEnv()
	if os.Getenv(envLevel) == "" {
		logCfg.Level = levelFromVerbosity(string(cfg.Verbosity))
	}

	next := New(logCfg.Level)
	if zapLogger, err := NewZapLogger(logCfg); err == nil {
		next = &Logger{zap: zapLogger}
	}

	_ = GetLogger().Sync()
	SetLogger(next)
}

// Sync flushes the global logger. Commands call it before exiting.
func Sync() error {
	return GetLogger().Sync()
}

func Debug(msg string) { GetLogger().Debug(msg) }
func Info(msg string) { GetLogger().Info(msg) }
func Warn(msg string) { GetLogger().Warn(msg) }
func Error(msg string) { GetLogger().Error(msg) }

// Errorf logs a formatted error through the global logger.
func Errorf(format string, args ...interface{}) {
	GetLogger().Errorf(format, args...)
}

// WithField returns the global logger with one field attached.
func WithField(key string, value interface{}) *Logger {
	return GetLogger().WithField(key, value)
}

// WithFields returns the global logger with fields attached.
func WithFields(fields map[string]interface{}) *Logger {
	return GetLogger().WithFields(fields)
}

// WithStream returns the global logger tagged with a stream session.
func WithStream(endpoint, wallet string) *Logger {
	return GetLogger().WithStream(endpoint, wallet)
}
