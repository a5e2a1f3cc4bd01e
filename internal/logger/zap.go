package logger

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger wraps zap.Logger to provide our logging interface
type ZapLogger struct {
	*zap.Logger
}

func wrapZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{Logger: l}
}

// NewZapLogger creates a new ZapLogger from cfg
func NewZapLogger(cfg *Config) (*ZapLogger, error) {
	var zcfg zap.Config

	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		zcfg.DisableStacktrace = true
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.DisableCaller = !cfg.Caller

	switch cfg.Level {
	case DebugLevel:
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case InfoLevel:
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case WarnLevel:
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case ErrorLevel:
		zcfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	opts := []zap.Option{zap.AddCallerSkip(2)}
	switch cfg.Stacktrace {
	case "error":
		opts = append(opts, zap.AddStacktrace(zap.ErrorLevel))
	case "panic":
		opts = append(opts, zap.AddStacktrace(zap.PanicLevel))
	case "fatal":
		opts = append(opts, zap.AddStacktrace(zap.FatalLevel))
	}

	logger, err := zcfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return wrapZap(logger), nil
}

// NewZapLoggerFromEnv creates a logger configured from environment variables
func NewZapLoggerFromEnv() (*ZapLogger, error) {
	return NewZapLogger(ConfigFromEnv())
}

// WithHTTPRequest adds HTTP request context to the logger
func (l *ZapLogger) WithHTTPRequest(r *http.Request) *ZapLogger {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	}

	if r.URL.RawQuery != "" {
		fields = append(fields, zap.String("query", r.URL.RawQuery))
	}
	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	return wrapZap(l.With(fields...))
}

// WithStream adds agent stream context to the logger
func (l *ZapLogger) WithStream(endpoint, wallet string) *ZapLogger {
	return wrapZap(l.With(
		zap.String("endpoint", endpoint),
		zap.String("wallet", wallet),
	))
}

// WithDuration adds a duration field to the logger
func (l *ZapLogger) WithDuration(duration time.Duration) *ZapLogger {
	return wrapZap(l.With(
		zap.Duration("duration", duration),
		zap.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	))
}

// WithError adds error context to the logger
func (l *ZapLogger) WithError(err error) *ZapLogger {
	if err == nil {
		return l
	}
	return wrapZap(l.With(
		zap.Error(err),
		zap.String("error_type", fmt.Sprintf("%T", err)),
	))
}

// WithField adds a single field to the logger context
func (l *ZapLogger) WithField(key string, value interface{}) *Logger {
	return &Logger{zap: wrapZap(l.With(zap.Any(key, value)))}
}

// WithFields adds multiple fields to the logger context
func (l *ZapLogger) WithFields(fields map[string]interface{}) *Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return &Logger{zap: wrapZap(l.With(zapFields...))}
}
