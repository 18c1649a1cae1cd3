package group

import (
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("group not found")
)

type (
	Repository interface {
		CreateGroup(g Group) (Group, error)
		QueryAllGroups() ([]Group, error)
		GetGroupByID(id int) (Group, error)
		// QueryMembers returns the student ids enrolled in the group.
		QueryMembers(groupID int) ([]int, error)
		// GroupIDsForStudent returns the ids of every group the student
		// belongs to, used for read scoping.
		GroupIDsForStudent(studentID int) ([]int, error)
		AddMember(m Member) error
		RemoveMember(m Member) error
	}

	ServiceInterface interface {
		Create(ng NewGroup) (Group, error)
		QueryAll() ([]Group, error)
		GetByID(id int) (Group, error)
		Members(groupID int) ([]int, error)
		GroupIDsForStudent(studentID int) ([]int, error)
		AddMember(groupID, studentID int) error
		RemoveMember(groupID, studentID int) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ng NewGroup) (Group, error) {
	g := Group{Name: ng.Name, Description: ng.Description}
	created, err := svc.repo.CreateGroup(g)
	if err != nil {
		return Group{}, errors.Wrap(err, "creating group")
	}
	return created, nil
}

func (svc *Service) QueryAll() ([]Group, error) {
	return svc.repo.QueryAllGroups()
}

func (svc *Service) GetByID(id int) (Group, error) {
	return svc.repo.GetGroupByID(id)
}

func (svc *Service) Members(groupID int) ([]int, error) {
	if _, err := svc.repo.GetGroupByID(groupID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMembers(groupID)
}

func (svc *Service) GroupIDsForStudent(studentID int) ([]int, error) {
	return svc.repo.GroupIDsForStudent(studentID)
}

func (svc *Service) AddMember(groupID, studentID int) error {
	if _, err := svc.repo.GetGroupByID(groupID); err != nil {
		return err
	}
	return svc.repo.AddMember(Member{GroupID: groupID, StudentID: studentID})
}

func (svc *Service) RemoveMember(groupID, studentID int) error {
	return svc.repo.RemoveMember(Member{GroupID: groupID, StudentID: studentID})
}
