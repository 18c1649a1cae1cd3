package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core/user"
)

type (
	userRow struct {
		ID           int          `db:"id"`
		Username     string       `db:"username"`
		Email        string       `db:"email"`
		Role         string       `db:"role"`
		Instrument   string       `db:"instrument"`
		IsActive     bool         `db:"is_active"`
		PasswordHash []byte       `db:"password_hash"`
		CreatedAt    sql.NullTime `db:"created_at"`
		UpdatedAt    sql.NullTime `db:"updated_at"`
		LastLogin    sql.NullTime `db:"last_login"`
	}

	userRepository struct {
		db *sqlx.DB
	}
)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		Role:         r.Role,
		Instrument:   r.Instrument,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users
}

const userCols = `id, username, email, role, instrument, is_active, password_hash, created_at, updated_at, last_login`

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		var err error
		q, args, err = sqlx.In(`SELECT username, email FROM "user" WHERE (username = ? OR email = ?) AND id NOT IN (?)`, username, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		q = repo.db.Rebind(q)
	}

	var matches []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.db.Select(&matches, q, args...); err != nil {
		return wrapDBErr(err, "checking uniqueness")
	}
	for _, m := range matches {
		if m.Username == username {
			return user.ErrUsernameExists
		}
		if m.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	q := `INSERT INTO "user" (username, email, role, instrument, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := repo.db.Get(&usr.ID, q,
		usr.Username, usr.Email, usr.Role, usr.Instrument, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	); err != nil {
		return user.User{}, wrapDBErr(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT `+userCols+` FROM "user" ORDER BY id`); err != nil {
		return nil, wrapDBErr(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT `+userCols+` FROM "user" WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, wrapDBErr(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	var row userRow
	q := `SELECT ` + userCols + ` FROM "user" WHERE username = $1 OR email = $1`
	if err := repo.db.Get(&row, q, username); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, wrapDBErr(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	q := `SELECT ` + userCols + ` FROM "user" WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		q += ` AND (username ILIKE ? OR email ILIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Role != "" {
		q += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.IsActive != nil {
		q += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	q += ` ORDER BY id`

	var rows []userRow
	if err := repo.db.Select(&rows, repo.db.Rebind(q), args...); err != nil {
		return nil, wrapDBErr(err, "filtering users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) SetLastLogin(usr user.User) (user.User, error) {
	var row userRow
	q := `UPDATE "user" SET last_login = NOW() WHERE id = $1 RETURNING ` + userCols
	if err := repo.db.Get(&row, q, usr.ID); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, wrapDBErr(err, "setting last login")
	}
	return row.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return wrapDBErr(err, "deleting users")
	}
	return nil
}
