package session

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("session not found")

// Store is the in-memory registry of open sessions, keyed by session id.
// One session per project: opening a project that already has one returns
// the existing session.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	byProject map[string]*Session
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		byProject: make(map[string]*Session),
	}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	st.byProject[s.ProjectID] = s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) GetByProject(projectID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.byProject[projectID]
	return s, ok
}

func (st *Store) Close(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		delete(st.byProject, s.ProjectID)
		delete(st.sessions, id)
	}
}

// All returns a snapshot of the open sessions.
func (st *Store) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
