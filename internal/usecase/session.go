package usecase

import (
	"sync"

	"github.com/google/uuid"

	"donation-agent/internal/domain"
)

// Session owns one conversation's state and organization cache. Route
// serializes turns through mu, so each session is single-writer even when
// the store serves many sessions concurrently.
type Session struct {
	ID string

	mu    sync.Mutex
	state domain.ConversationState
	cache []domain.Organization
}

// State returns a copy of the current conversation state.
func (s *Session) State() domain.ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cached returns a copy of the current organization cache.
func (s *Session) Cached() []domain.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Organization, len(s.cache))
	copy(out, s.cache)
	return out
}

// SessionStore keys sessions by ID and creates them lazily.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it if needed. An empty id mints
// a fresh session with a generated ID.
func (st *SessionStore) Get(id string) *Session {
	if id == "" {
		id = newUUID()
	}

	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[id]; ok {
		return sess
	}
	sess = &Session{ID: id}
	st.sessions[id] = sess
	return sess
}

var newUUID = func() string {
	return uuid.NewString()
}
