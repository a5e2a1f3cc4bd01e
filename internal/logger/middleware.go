package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	return size, err
}

// Flush implements the http.Flusher interface so streaming handlers keep working
func (w *responseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func requestLogger(logger *Logger, r *http.Request, extra map[string]interface{}) *Logger {
	if logger.zap != nil {
		l := &Logger{zap: logger.zap.WithHTTPRequest(r)}
		if len(extra) > 0 {
			l = l.WithFields(extra)
		}
		return l
	}

	fields := map[string]interface{}{
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": r.RemoteAddr,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return logger.WithFields(fields)
}

// HTTPMiddleware creates a logging middleware for HTTP requests
func HTTPMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := requestLogger(logger, r, nil)
			reqLogger.Debug("Request received")

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			if reqLogger.zap != nil {
				reqLogger = &Logger{zap: wrapZap(reqLogger.zap.WithDuration(duration).With(
					zap.Int("status", wrapped.status),
					zap.Int("size", wrapped.size),
				))}
			} else {
				reqLogger = reqLogger.WithFields(map[string]interface{}{
					"status":      wrapped.status,
					"size":        wrapped.size,
					"duration_ms": float64(duration.Nanoseconds()) / 1e6,
				})
			}

			switch {
			case wrapped.status >= 500:
				reqLogger.Error("Request failed with server error")
			case wrapped.status >= 400:
				reqLogger.Warn("Request failed with client error")
			default:
				reqLogger.Info("Request completed")
			}

			if duration > time.Second {
				reqLogger.Warnf("Slow request detected: %v", duration)
			}
		})
	}
}

// SSEMiddleware creates a logging middleware for streaming endpoints. It logs
// the connection open and close instead of a single completion line.
func SSEMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sseLogger := requestLogger(logger, r, map[string]interface{}{"connection_type": "sse"})
			sseLogger.Info("SSE connection initiated")

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			sseLogger.WithDuration(time.Since(start)).WithFields(map[string]interface{}{
				"status": wrapped.status,
				"bytes":  wrapped.size,
			}).Info("SSE connection closed")
		})
	}
}
