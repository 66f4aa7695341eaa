package filterstate

import (
	"sync"
	"time"
)

type entry struct {
	state    *State
	lastUsed time.Time
}

// Store holds one State per dashboard session. Sessions are isolated; only
// the saved workbook files are shared across them.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxIdle time.Duration
}

func NewStore(maxIdle time.Duration) *Store {
	if maxIdle <= 0 {
		maxIdle = 8 * time.Hour
	}
	return &Store{
		entries: make(map[string]*entry),
		maxIdle: maxIdle,
	}
}

// Get returns the session's state, creating a fresh default one on first
// use. readOnly reflects the session's role and is reapplied on every access
// so a role change takes effect immediately.
func (st *Store) Get(sessionID string, readOnly bool) *State {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[sessionID]
	if !ok {
		e = &entry{state: New()}
		st.entries[sessionID] = e
	}
	e.lastUsed = time.Now()
	e.state.SetRoleReadOnly(readOnly)
	return e.state
}

// Seed replaces the session's state with one parsed from a shared URL. Used
// when a link with filters is opened; later mutations go through Get.
func (st *Store) Seed(sessionID string, s *State, readOnly bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s.SetRoleReadOnly(readOnly)
	st.entries[sessionID] = &entry{state: s, lastUsed: time.Now()}
}

// Adopt carries the filter state across a login role upgrade: the state
// captured under the pre-login session becomes the state of the new session,
// unchanged. The old session entry is removed.
func (st *Store) Adopt(oldSessionID, newSessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[oldSessionID]
	if !ok {
		return
	}
	delete(st.entries, oldSessionID)
	e.lastUsed = time.Now()
	st.entries[newSessionID] = e
}

// Reset restores the session's filters to defaults.
func (st *Store) Reset(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if e, ok := st.entries[sessionID]; ok {
		e.state.Reset()
		e.lastUsed = time.Now()
	}
}

// ResetAll drops every session's filters. Paired with the admin
// clear-saved-files action.
func (st *Store) ResetAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries = make(map[string]*entry)
}

// CleanupExpired removes states idle beyond the store's limit and returns
// how many were dropped.
func (st *Store) CleanupExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().Add(-st.maxIdle)
	n := 0
	for id, e := range st.entries {
		if e.lastUsed.Before(cutoff) {
			delete(st.entries, id)
			n++
		}
	}
	return n
}
