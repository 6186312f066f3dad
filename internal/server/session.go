package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tabula/internal/table"
)

type session struct {
	id string

	mu   sync.Mutex
	view table.View
}

// apply replaces the view with fn's result. On error the view is kept.
func (s *session) apply(fn func(table.View) (table.View, error)) (table.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.view)
	if err != nil {
		return s.view, err
	}
	s.view = next
	return next, nil
}

func (s *session) current() table.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (st *sessionStore) create(v table.View) *session {
	s := &session{id: uuid.NewString(), view: v}
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
