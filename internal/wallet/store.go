package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Backland-Labs/dailyagi/internal/logger"
)

// Session is a snapshot of the wallet state.
type Session struct {
	Address     string    `yaml:"address"`
	Provider    string    `yaml:"provider,omitempty"`
	ChainID     int       `yaml:"chain_id,omitempty"`
	Connected   bool      `yaml:"-"`
	ConnectedAt time.Time `yaml:"connected_at,omitempty"`
}

// Store holds the current Session, persists it to a YAML file and notifies
// subscribers on every change. An empty path keeps the store in memory.
type Store struct {
	path string

	mu      sync.Mutex
	current Session
	subs    map[int]func(Session)
	nextID  int
}

// NewStore creates a store persisted at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		subs: make(map[int]func(Session)),
	}
}

// Load restores the saved session. A restored session carries the address
// but is not marked connected until a provider connects again. A missing
// file is not an error.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read wallet session: %w", err)
	}

	var saved Session
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("failed to parse wallet session %s: %w", s.path, err)
	}
	if saved.Address != "" && !IsValidAddress(saved.Address) {
		logger.WithField("path", s.path).Warn("Ignoring saved wallet session with invalid address")
		return nil
	}

	saved.Connected = false
	s.update(saved)
	return nil
}

// Snapshot returns the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set persists sess and notifies subscribers.
func (s *Store) Set(sess Session) error {
	if err := s.persist(sess); err != nil {
		return err
	}
	s.update(sess)
	return nil
}

// Clear removes the persisted session and notifies subscribers.
func (s *Store) Clear() error {
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove wallet session: %w", err)
		}
	}
	s.update(Session{})
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) update(sess Session) {
	s.mu.Lock()
	s.current = sess
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}

func (s *Store) persist(sess Session) error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write wallet session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to save wallet session: %w", err)
	}
	return nil
}
