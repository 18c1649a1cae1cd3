package inmemdb

import (
	"sort"

	"github.com/crescendoapp/crescendo/core/group"
)

type groupRepository struct {
	db *groupTable
}

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db.group}
}

func (repo *groupRepository) CreateGroup(g group.Group) (group.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	g.ID = repo.db.pk
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *groupRepository) QueryAllGroups() ([]group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(id int) (group.Group, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) QueryMembers(groupID int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for _, m := range repo.db.members {
		if m.GroupID == groupID {
			ids = append(ids, m.StudentID)
		}
	}
	return ids, nil
}

func (repo *groupRepository) GroupIDsForStudent(studentID int) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for _, m := range repo.db.members {
		if m.StudentID == studentID {
			ids = append(ids, m.GroupID)
		}
	}
	return ids, nil
}

func (repo *groupRepository) AddMember(m group.Member) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, cur := range repo.db.members {
		if cur == m {
			return nil
		}
	}
	repo.db.members = append(repo.db.members, m)
	return nil
}

func (repo *groupRepository) RemoveMember(m group.Member) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, cur := range repo.db.members {
		if cur == m {
			repo.db.members = append(repo.db.members[:i], repo.db.members[i+1:]...)
			return nil
		}
	}
	return nil
}
