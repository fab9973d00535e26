// internal/store/memory.go
//
// In-memory registry of live puzzle sessions.
//
// Characteristics:
//   - Stores *Session values keyed by controller ID in a map.
//   - Get is for reads; Update runs fn under the session's own lock, so
//     intents on one game never interleave while other games proceed.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordladder/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("not found")

// Session is one live game and who is playing it.
type Session struct {
	Game    *game.Controller
	Owner   string    // user ID or anonymous cookie ID
	Puzzle  int       // catalog index, -1 for custom definitions
	Daily   string    // date key for daily games, "" otherwise
	Started time.Time // first persisted; used for elapsed time

	mu sync.Mutex // held by Update
}

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by game ID.
	Get(ctx context.Context, id string) (*Session, error)

	// Update runs fn with exclusive access to the session.
	Update(ctx context.Context, id string, fn func(*Session) error) error
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	if s == nil || s.Game == nil {
		return errors.New("nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Game.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*Session) error) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}
