// Package logger provides the process-wide structured logger for dailyagi.
// It fronts a zap backend and falls back to a plain line logger when zap
// cannot be built.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is a logging threshold. Entries below the logger's level are dropped.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// tag is the plain-format prefix of an entry at level l.
func (l Level) tag() string {
	switch l {
	case DebugLevel:
		return "[DEBUG]"
	case InfoLevel:
		return "[INFO]"
	case WarnLevel:
		return "[WARN]"
	default:
		return "[ERROR]"
	}
}

// Logger writes entries through zap when a backend is attached, otherwise
// as timestamped lines with sorted key=value fields.
type Logger struct {
	level  Level
	output io.Writer
	fields map[string]interface{}
	mu     sync.Mutex
	zap    *ZapLogger
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

func init() {
	if zapLogger, err := NewZapLoggerFromEnv(); err == nil {
		globalLogger = &Logger{zap: zapLogger}
	} else {
		globalLogger = New(ConfigFromEnv().Level)
	}
}

// New creates a plain logger at level writing to stderr.
func New(level Level) *Logger {
	return &Logger{level: level, output: os.Stderr}
}

// WithField returns a logger that adds key to every entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger that adds fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if l.zap != nil {
		return l.zap.WithFields(fields)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, output: l.output, fields: merged}
}

// WithError attaches err. A nil err returns l unchanged.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	if l.zap != nil {
		return &Logger{zap: l.zap.WithError(err)}
	}
	return l.WithField("error", err.Error())
}

// WithDuration attaches an elapsed time.
func (l *Logger) WithDuration(d time.Duration) *Logger {
	if l.zap != nil {
		return &Logger{zap: l.zap.WithDuration(d)}
	}
	return l.WithField("duration_ms", float64(d.Nanoseconds())/1e6)
}

// WithStream attaches the agent endpoint and wallet of a stream session.
func (l *Logger) WithStream(endpoint, wallet string) *Logger {
	if l.zap != nil {
		return &Logger{zap: l.zap.WithStream(endpoint, wallet)}
	}
	return l.WithFields(map[string]interface{}{"endpoint": endpoint, "wallet": wallet})
}

func (l *Logger) Debug(msg string) { l.emit(DebugLevel, msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.emit(DebugLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Info(msg string) { l.emit(InfoLevel, msg) }
func (l *Logger) Infof(format string, args ...interface{}) { l.emit(InfoLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(msg string) { l.emit(WarnLevel, msg) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.emit(WarnLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Error(msg string) { l.emit(ErrorLevel, msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.emit(ErrorLevel, fmt.Sprintf(format, args...)) }

// emit writes one entry. It is the only caller of the zap backend so the
// configured caller skip stays correct.
func (l *Logger) emit(level Level, msg string) {
	if l.zap != nil {
		switch level {
		case DebugLevel:
			l.zap.Debug(msg)
		case InfoLevel:
			l.zap.Info(msg)
		case WarnLevel:
			l.zap.Warn(msg)
		default:
			l.zap.Error(msg)
		}
		return
	}

	if level < l.level {
		return
	}

	var line strings.Builder
	line.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	line.WriteByte(' ')
	line.WriteString(level.tag())
	line.WriteByte(' ')
	line.WriteString(msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&line, " %s=%v", k, l.fields[k])
	}

	_, _ = fmt.Fprintln(l.output, line.String())
}

// Sync flushes entries buffered by the zap backend.
func (l *Logger) Sync() error {
	if l.zap != nil {
		return l.zap.Sync()
	}
	return nil
}

// GetLogger returns the global logger.
func GetLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalLogger
}

// SetLogger replaces the global logger.
func SetLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// LevelFromString parses a DAILYAGI_LOG_LEVEL value. Unknown values mean info.
func LevelFromString(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}
