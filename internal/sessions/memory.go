package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/coursepath/backend/internal/player"
)

type memoryEntry struct {
	state     player.State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Expired entries are dropped
// on access and swept on every create.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

// Get returns the session stored under id
func (s *MemoryStore) Get(ctx context.Context, id string) (player.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return player.State{}, ErrNotFound
	}
	return e.state, nil
}

// Create stores a new session
func (s *MemoryStore) Create(ctx context.Context, id string, state player.State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	if _, ok := s.items[id]; ok {
		return ErrExists
	}
	s.items[id] = memoryEntry{state: state, expiresAt: s.now().Add(ttl)}
	return nil
}

// Replace stores state if the stored session still has expectedVersion and
// extends its lifetime
func (s *MemoryStore) Replace(ctx context.Context, id string, expectedVersion int64, state player.State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return ErrNotFound
	}
	if e.state.Version != expectedVersion {
		return ErrConflict
	}
	s.items[id] = memoryEntry{state: state, expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes a session; deleting an unknown session is not an error
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	return len(s.items)
}

// live returns the entry of id, dropping it when expired. Callers hold mu.
func (s *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := s.items[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.items, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) sweep() {
	now := s.now()
	for id, e := range s.items {
		if !now.Before(e.expiresAt) {
			delete(s.items, id)
		}
	}
}
