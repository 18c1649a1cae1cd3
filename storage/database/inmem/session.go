package inmemdb

import (
	"sort"

	"github.com/crescendoapp/crescendo/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

// query returns sessions ordered by date then time, matching the SQL repos.
func (repo *sessionRepository) query() []session.Session {
	sessions := make([]session.Session, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		if sessions[i].Time != sessions[j].Time {
			return sessions[i].Time < sessions[j].Time
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}

func (repo *sessionRepository) CreateSession(s session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	s.ID = repo.db.pk
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *sessionRepository) CreateSessions(ss []session.Session) ([]session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]session.Session, 0, len(ss))
	for _, s := range ss {
		s := s // each stored record needs its own backing struct
		repo.db.pk++
		s.ID = repo.db.pk
		repo.db.table[s.ID] = &s
		created = append(created, s)
	}
	return created, nil
}

func (repo *sessionRepository) QueryAllSessions() ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *sessionRepository) GetSessionByID(id int) (session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (repo *sessionRepository) FilterSessions(filter session.QueryFilter) ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sessions []session.Session
	for _, s := range repo.query() {
		if filter.Matches(s) {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (repo *sessionRepository) QuerySeries(parentID int) ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var series []session.Session
	for _, s := range repo.query() {
		if s.ID == parentID || (s.ParentSessionID != nil && *s.ParentSessionID == parentID) {
			series = append(series, s)
		}
	}
	return series, nil
}

func (repo *sessionRepository) UpdateSession(s session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[s.ID]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	orig.Title = s.Title
	orig.Date = s.Date
	orig.Time = s.Time
	orig.Duration = s.Duration
	orig.Notes = s.Notes
	orig.UpdatedAt = s.UpdatedAt
	return *orig, nil
}

func (repo *sessionRepository) DeleteSessionsByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
