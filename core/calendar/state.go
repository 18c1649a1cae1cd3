// Package calendar renders the month-grid and day-detail views of the
// schedule. All views derive from an owned session cache (State): the grid is
// never fetched per interaction, only recomputed from the cache, so month
// navigation and day selection stay synchronous.
package calendar

import (
	"sync"

	"github.com/crescendoapp/crescendo/core/session"
)

// State is the session cache backing the calendar views. It is rebuilt
// wholesale on Load and patched incrementally after each confirmed mutation;
// there is no reconciliation beyond that. A late Load response simply
// overwrites the cache (last response wins).
type State struct {
	mu       sync.RWMutex
	sessions []session.Session
}

func NewState() *State {
	return &State{sessions: []session.Session{}}
}

// Load replaces the whole cache.
func (st *State) Load(sessions []session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = make([]session.Session, len(sessions))
	copy(st.sessions, sessions)
}

// Sessions returns a snapshot copy of the cache.
func (st *State) Sessions() []session.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]session.Session, len(st.sessions))
	copy(out, st.sessions)
	return out
}

// ApplyCreate appends a server-confirmed session. For a recurring series the
// server echoes only the parent instance; the spawned instances enter the
// cache on the next Load.
func (st *State) ApplyCreate(s session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = append(st.sessions, s)
}

// ApplyUpdate shallow-merges the mutable display fields of the confirmed
// update into the cached record with the same id. Unknown ids are ignored.
func (st *State) ApplyUpdate(s session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.sessions {
		if st.sessions[i].ID == s.ID {
			st.sessions[i].Title = s.Title
			st.sessions[i].Date = s.Date
			st.sessions[i].Time = s.Time
			st.sessions[i].Duration = s.Duration
			st.sessions[i].Notes = s.Notes
			st.sessions[i].UpdatedAt = s.UpdatedAt
			return
		}
	}
}

// ApplyDelete drops the cached records with the given ids.
func (st *State) ApplyDelete(ids ...int) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	kept := st.sessions[:0]
	for _, s := range st.sessions {
		if !drop[s.ID] {
			kept = append(kept, s)
		}
	}
	st.sessions = kept
}
