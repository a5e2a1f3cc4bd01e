package server

import (
	"sync"
	"time"
)

// Metrics counts agent streams served by the demo server.
type Metrics struct {
	mu           sync.RWMutex
	streamCount  int64
	errorCount   int64
	lastStreamAt string
	startTime    time.Time
}

// NewMetrics creates a zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// StreamServed records a finished stream.
func (m *Metrics) StreamServed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamCount++
	m.lastStreamAt = time.Now().Format(time.RFC3339)
}

// StreamFailed records a stream that ended with an error frame.
func (m *Metrics) StreamFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount++
}

// Snapshot returns the counters and uptime.
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorRate := 0.0
	if m.streamCount > 0 {
		errorRate = float64(m.errorCount) / float64(m.streamCount) * 100.0
	}
	return map[string]interface{}{
		"stream_count":   m.streamCount,
		"error_count":    m.errorCount,
		"error_rate":     errorRate,
		"last_stream_at": m.lastStreamAt,
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}
