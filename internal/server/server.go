// Package server implements the dailyagi demo backend: the streaming chat
// endpoint consumed by the stream package plus in-memory versions of the
// reminders, spending, grocery and premium REST endpoints. It lets the CLI
// run end to end without the hosted agent.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

// shutdownTimeout bounds graceful shutdown once the start context ends.
const shutdownTimeout = 5 * time.Second

// ErrServerRunning is returned when attempting to start an already running server.
var ErrServerRunning = errors.New("server is already running")

// Server is the demo HTTP server.
type Server struct {
	port       int
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	running    bool

	store      *Store
	agent      *Agent
	metrics    *Metrics
	frameDelay time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithFrameDelay paces streamed frames.
func WithFrameDelay(d time.Duration) Option {
	return func(s *Server) {
		s.frameDelay = d
	}
}

// WithStore replaces the server's in-memory store.
func WithStore(store *Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// NewServer creates a server for port; 0 picks a free port on localhost.
// The server is not started until Start is called.
func NewServer(port int, opts ...Option) *Server {
	s := &Server{
		port:    port,
		store:   NewStore(),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.agent = NewAgent(s.store)

	logger.WithFields(map[string]interface{}{
		"port":        port,
		"frame_delay": s.frameDelay.String(),
	}).Debug("Created demo server")
	return s
}

// Store returns the server's backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the routed handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	log := logger.GetLogger()
	middleware := logger.HTTPMiddleware(log)

	mux := http.NewServeMux()
	mux.Handle("POST /sentient/agent", logger.SSEMiddleware(log)(http.HandlerFunc(s.agentHandler)))
	mux.Handle("GET /health", middleware(http.HandlerFunc(s.healthHandler)))
	mux.Handle("GET /agent/reminders", middleware(http.HandlerFunc(s.listRemindersHandler)))
	mux.Handle("POST /agent/reminders", middleware(http.HandlerFunc(s.createReminderHandler)))
	mux.Handle("DELETE /agent/reminders/{id}", middleware(http.HandlerFunc(s.deleteReminderHandler)))
	mux.Handle("POST /agent/spending", middleware(http.HandlerFunc(s.spendingHandler)))
	mux.Handle("POST /agent/grocery", middleware(http.HandlerFunc(s.groceryUploadHandler)))
	mux.Handle("GET /agent/grocery/{cid}", middleware(http.HandlerFunc(s.groceryGetHandler)))
	mux.Handle("GET /premium/status/{address}", middleware(http.HandlerFunc(s.premiumHandler)))
	mux.Handle("POST /agent/run", middleware(http.HandlerFunc(s.runAgentHandler)))
	return mux
}

// Start listens and serves until ctx is canceled. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warn("Attempted to start already running server")
		return ErrServerRunning
	}
	s.running = true
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		s.setStopped()
		logger.Info("Server start canceled due to context cancellation")
		return ctx.Err()
	default:
	}

	addr := fmt.Sprintf("0.0.0.0:%d", s.port)
	if s.port == 0 {
		addr = "localhost:0"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.setStopped()
		logger.WithFields(map[string]interface{}{
			"error":   err.Error(),
			"address": addr,
		}).Error("Failed to create listener")
		return fmt.Errorf("failed to listen: %w", err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	logger.WithField("address", listener.Addr().String()).Info("Demo server listening")

	go func() {
		<-ctx.Done()
		logger.Info("Server shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithField("error", err.Error()).Error("Error during server shutdown")
		}
	}()

	err = httpServer.Serve(listener)
	s.setStopped()

	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shut down gracefully")
		return err
	}
	if err != nil {
		logger.WithField("error", err.Error()).Error("Server error")
	}
	return err
}

// Address returns the listening address, or "" when not running.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.running = false
	s.listener = nil
	s.mu.Unlock()
}
