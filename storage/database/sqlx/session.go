package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core/session"
)

type (
	sessionRow struct {
		ID                int          `db:"id"`
		Title             string       `db:"title"`
		Date              string       `db:"date"`
		Time              string       `db:"time"`
		Duration          int          `db:"duration"`
		Kind              string       `db:"kind"`
		UserID            *int         `db:"user_id"`
		GroupID           *int         `db:"group_id"`
		RoomID            *int         `db:"room_id"`
		InstrumentID      *int         `db:"instrument_id"`
		Notes             string       `db:"notes"`
		IsRecurring       bool         `db:"is_recurring"`
		RecurrenceType    string       `db:"recurrence_type"`
		RecurrenceEndDate string       `db:"recurrence_end_date"`
		ParentSessionID   *int         `db:"parent_session_id"`
		SeriesID          uuid.UUID    `db:"series_id"`
		Reason            string       `db:"reason"`
		IsAllDay          bool         `db:"is_all_day"`
		CreatedAt         sql.NullTime `db:"created_at"`
		UpdatedAt         sql.NullTime `db:"updated_at"`
	}

	sessionRepository struct {
		db *sqlx.DB
	}
)

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{db: db}
}

func (r sessionRow) toSession() session.Session {
	return session.Session{
		ID:                r.ID,
		Title:             r.Title,
		Date:              r.Date,
		Time:              r.Time,
		Duration:          r.Duration,
		Kind:              r.Kind,
		UserID:            r.UserID,
		GroupID:           r.GroupID,
		RoomID:            r.RoomID,
		InstrumentID:      r.InstrumentID,
		Notes:             r.Notes,
		IsRecurring:       r.IsRecurring,
		RecurrenceType:    r.RecurrenceType,
		RecurrenceEndDate: r.RecurrenceEndDate,
		ParentSessionID:   r.ParentSessionID,
		SeriesID:          r.SeriesID,
		Reason:            r.Reason,
		IsAllDay:          r.IsAllDay,
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}

func toSessions(rows []sessionRow) []session.Session {
	sessions := make([]session.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toSession())
	}
	return sessions
}

const sessionCols = `id, title, date, time, duration, kind, user_id, group_id, room_id, instrument_id,
	notes, is_recurring, recurrence_type, recurrence_end_date, parent_session_id, series_id,
	reason, is_all_day, created_at, updated_at`

const insertSession = `INSERT INTO session
	(title, date, time, duration, kind, user_id, group_id, room_id, instrument_id,
	 notes, is_recurring, recurrence_type, recurrence_end_date, parent_session_id, series_id,
	 reason, is_all_day, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING id`

func (repo *sessionRepository) insertArgs(s session.Session) []interface{} {
	var seriesID interface{}
	if s.SeriesID != uuid.Nil {
		seriesID = s.SeriesID
	}
	return []interface{}{
		s.Title, s.Date, s.Time, s.Duration, s.Kind, s.UserID, s.GroupID, s.RoomID, s.InstrumentID,
		s.Notes, s.IsRecurring, s.RecurrenceType, s.RecurrenceEndDate, s.ParentSessionID, seriesID,
		s.Reason, s.IsAllDay, s.CreatedAt, s.UpdatedAt,
	}
}

func (repo *sessionRepository) CreateSession(s session.Session) (session.Session, error) {
	if err := repo.db.Get(&s.ID, insertSession, repo.insertArgs(s)...); err != nil {
		return session.Session{}, wrapDBErr(err, "inserting session")
	}
	return s, nil
}

func (repo *sessionRepository) CreateSessions(ss []session.Session) ([]session.Session, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return nil, wrapDBErr(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]session.Session, 0, len(ss))
	for _, s := range ss {
		if err = tx.Get(&s.ID, insertSession, repo.insertArgs(s)...); err != nil {
			return nil, wrapDBErr(err, "inserting session batch")
		}
		created = append(created, s)
	}
	if err = tx.Commit(); err != nil {
		return nil, wrapDBErr(err, "committing tx")
	}
	return created, nil
}

func (repo *sessionRepository) QueryAllSessions() ([]session.Session, error) {
	var rows []sessionRow
	q := `SELECT ` + sessionCols + ` FROM session ORDER BY date, time, id`
	if err := repo.db.Select(&rows, q); err != nil {
		return nil, wrapDBErr(err, "querying sessions")
	}
	return toSessions(rows), nil
}

func (repo *sessionRepository) GetSessionByID(id int) (session.Session, error) {
	var row sessionRow
	if err := repo.db.Get(&row, `SELECT `+sessionCols+` FROM session WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, wrapDBErr(err, "getting session")
	}
	return row.toSession(), nil
}

func (repo *sessionRepository) FilterSessions(filter session.QueryFilter) ([]session.Session, error) {
	q := `SELECT ` + sessionCols + ` FROM session WHERE 1=1`
	var args []interface{}

	if filter.GroupID != nil {
		q += ` AND group_id = ?`
		args = append(args, *filter.GroupID)
	}
	if filter.InstrumentID != nil {
		q += ` AND instrument_id = ?`
		args = append(args, *filter.InstrumentID)
	}
	if filter.DateFrom != "" {
		q += ` AND date >= ?`
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		q += ` AND date <= ?`
		args = append(args, filter.DateTo)
	}
	if filter.UserID != nil {
		// student scoping: own sessions, group sessions, and blocked dates
		scope := ` AND (user_id = ? OR kind = 'block'`
		args = append(args, *filter.UserID)
		if len(filter.UserGroupIDs) > 0 {
			scope += ` OR group_id IN (?`
			args = append(args, filter.UserGroupIDs[0])
			for _, gid := range filter.UserGroupIDs[1:] {
				scope += `, ?`
				args = append(args, gid)
			}
			scope += `)`
		}
		q += scope + `)`
	}
	q += ` ORDER BY date, time, id`

	var rows []sessionRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, wrapDBErr(err, "filtering sessions")
	}
	return toSessions(rows), nil
}

func (repo *sessionRepository) QuerySeries(parentID int) ([]session.Session, error) {
	var rows []sessionRow
	q := `SELECT ` + sessionCols + ` FROM session WHERE id = $1 OR parent_session_id = $1 ORDER BY date, time, id`
	if err := repo.db.Select(&rows, q, parentID); err != nil {
		return nil, wrapDBErr(err, "querying series")
	}
	return toSessions(rows), nil
}

func (repo *sessionRepository) UpdateSession(s session.Session) (session.Session, error) {
	var row sessionRow
	q := `UPDATE session SET title = $1, date = $2, time = $3, duration = $4, notes = $5, updated_at = $6
		WHERE id = $7 RETURNING ` + sessionCols
	if err := repo.db.Get(&row, q, s.Title, s.Date, s.Time, s.Duration, s.Notes, s.UpdatedAt, s.ID); err != nil {
		if err == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, wrapDBErr(err, "updating session")
	}
	return row.toSession(), nil
}

func (repo *sessionRepository) DeleteSessionsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM session WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return wrapDBErr(err, "deleting sessions")
	}
	return nil
}
