package coach

import (
	"sync"
	"time"

	"github.com/m-mizutani/pacer/pkg/model"
)

// DefaultSessionTTL is how long an idle session survives.
const DefaultSessionTTL = time.Hour

// Clock supplies the current time. Injected so eviction is testable.
type Clock func() time.Time

// Store owns every session. All mutation goes through the store lock, so
// concurrent requests on the same session id cannot lose appends. History
// is append-only; only Reset rewrites it.
type Store struct {
	mu       sync.Mutex
	sessions map[model.SessionID]*model.Session
	ttl      time.Duration
	now      Clock
}

type StoreOption func(*Store)

// WithClock replaces the wall clock, for deterministic eviction tests.
func WithClock(clock Clock) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// WithTTL overrides the idle timeout.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[model.SessionID]*model.Session),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the id of an existing session, or creates a new one
// when id is empty or unknown. New ids are random unique tokens.
func (s *Store) GetOrCreate(id model.SessionID) model.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if ssn, ok := s.sessions[id]; ok {
			ssn.LastAccess = s.now()
			return id
		}
	}

	if id == "" {
		id = model.NewSessionID()
	}
	s.sessions[id] = &model.Session{
		ID:         id,
		LastAccess: s.now(),
	}
	return id
}

// Append adds a turn to the session history and refreshes its last access
// time. Unknown ids are ignored.
func (s *Store) Append(id model.SessionID, turn *model.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ssn, ok := s.sessions[id]
	if !ok {
		return
	}
	ssn.History = append(ssn.History, turn)
	ssn.LastAccess = s.now()
}

// History returns a copy of the session's turn sequence.
func (s *Store) History(id model.SessionID) []*model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	ssn, ok := s.sessions[id]
	if !ok {
		return nil
	}
	history := make([]*model.Turn, len(ssn.History))
	copy(history, ssn.History)
	return history
}

// Reset clears the history in place. The session id stays valid and the
// last access time is refreshed.
func (s *Store) Reset(id model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ssn, ok := s.sessions[id]
	if !ok {
		return
	}
	ssn.History = nil
	ssn.LastAccess = s.now()
}

// Sweep evicts sessions idle past the timeout and returns how many were
// removed. It runs at the start of each request, not on a timer.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, ssn := range s.sessions {
		if now.Sub(ssn.LastAccess) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Now returns the store's current time, honoring an injected clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
