package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/crescendoapp/crescendo/core/group"
)

type (
	groupRow struct {
		ID          int    `db:"id"`
		Name        string `db:"name"`
		Description string `db:"description"`
	}

	groupRepository struct {
		db *sqlx.DB
	}
)

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{db: db}
}

func (r groupRow) toGroup() group.Group {
	return group.Group{ID: r.ID, Name: r.Name, Description: r.Description}
}

func (repo *groupRepository) CreateGroup(g group.Group) (group.Group, error) {
	q := `INSERT INTO "group" (name, description) VALUES ($1, $2) RETURNING id`
	if err := repo.db.Get(&g.ID, q, g.Name, g.Description); err != nil {
		return group.Group{}, wrapDBErr(err, "inserting group")
	}
	return g, nil
}

func (repo *groupRepository) QueryAllGroups() ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.Select(&rows, `SELECT id, name, description FROM "group" ORDER BY id`); err != nil {
		return nil, wrapDBErr(err, "querying groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toGroup())
	}
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(id int) (group.Group, error) {
	var row groupRow
	if err := repo.db.Get(&row, `SELECT id, name, description FROM "group" WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, wrapDBErr(err, "getting group")
	}
	return row.toGroup(), nil
}

func (repo *groupRepository) QueryMembers(groupID int) ([]int, error) {
	var ids []int
	q := `SELECT student_id FROM group_member WHERE group_id = $1 ORDER BY student_id`
	if err := repo.db.Select(&ids, q, groupID); err != nil {
		return nil, wrapDBErr(err, "querying members")
	}
	return ids, nil
}

func (repo *groupRepository) GroupIDsForStudent(studentID int) ([]int, error) {
	var ids []int
	q := `SELECT group_id FROM group_member WHERE student_id = $1 ORDER BY group_id`
	if err := repo.db.Select(&ids, q, studentID); err != nil {
		return nil, wrapDBErr(err, "querying student groups")
	}
	return ids, nil
}

func (repo *groupRepository) AddMember(m group.Member) error {
	q := `INSERT INTO group_member (group_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := repo.db.Exec(q, m.GroupID, m.StudentID); err != nil {
		return wrapDBErr(err, "adding member")
	}
	return nil
}

func (repo *groupRepository) RemoveMember(m group.Member) error {
	q := `DELETE FROM group_member WHERE group_id = $1 AND student_id = $2`
	if _, err := repo.db.Exec(q, m.GroupID, m.StudentID); err != nil {
		return wrapDBErr(err, "removing member")
	}
	return nil
}
