// Package session gives each connected client its own isolated intent
// store and geographic filter state. Sessions are purely in-memory and
// created lazily on first use; nothing is shared across them except the
// geocoding resolver, whose cache is safe to share because resolved
// coordinates are not session data.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/circleworks/beacon/internal/geo"
	"github.com/circleworks/beacon/internal/intent"
)

const (
	// MaxSessionIDLength is the maximum length of a session ID.
	MaxSessionIDLength = 128
	// DefaultSessionID is used when a client supplies no session ID.
	DefaultSessionID = "default"
)

// ErrInvalidSessionID indicates a session ID failed validation.
var ErrInvalidSessionID = errors.New("invalid session ID")

// sessionIDPattern matches a valid session ID: starts and ends with an
// alphanumeric, hyphens allowed in the middle.
var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// ValidateSessionID validates a session ID against format rules.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty session ID", ErrInvalidSessionID)
	}
	if len(id) > MaxSessionIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidSessionID, MaxSessionIDLength)
	}
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q (must be alphanumeric with hyphens)", ErrInvalidSessionID, id)
	}
	return nil
}

// Session is one client's private state.
type Session struct {
	ID     string
	Store  *intent.Store
	Search *geo.Search

	mu           sync.Mutex
	created      time.Time
	lastAccessed time.Time
}

// TouchAccessed records session activity for idle pruning.
func (s *Session) TouchAccessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = time.Now().UTC()
}

// LastAccessed returns the time of the most recent activity.
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// Manager hands out sessions by ID, creating them on first use.
type Manager struct {
	resolver geo.Resolver

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose sessions share the given resolver.
func NewManager(resolver geo.Resolver) *Manager {
	return &Manager{
		resolver: resolver,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for the given ID, creating it if necessary.
func (m *Manager) Get(id string) (*Session, error) {
	if err := ValidateSessionID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if s, ok := m.sessions[id]; ok {
		m.mu.RUnlock()
		s.TouchAccessed()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := m.sessions[id]; ok {
		s.TouchAccessed()
		return s, nil
	}

	now := time.Now().UTC()
	s := &Session{
		ID:           id,
		Store:        intent.NewStore(),
		Search:       geo.NewSearch(m.resolver),
		created:      now,
		lastAccessed: now,
	}
	m.sessions[id] = s

	slog.Info("session created", "session_id", id)
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneIdle drops sessions idle for longer than ttl and returns how many
// were removed. Session state is in-memory only, so pruning discards it.
func (m *Manager) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, s := range m.sessions {
		if s.LastAccessed().Before(cutoff) {
			delete(m.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		slog.Info("idle sessions pruned", "count", pruned)
	}
	return pruned
}
