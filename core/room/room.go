// Package room holds the teaching-room lookup used when scheduling sessions.
package room

import "github.com/pkg/errors"

var ErrNotFound = errors.New("room not found")

type (
	Room struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity,omitempty"`
	}

	Repository interface {
		QueryAllRooms() ([]Room, error)
		GetRoomByID(id int) (Room, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll() ([]Room, error)    { return svc.repo.QueryAllRooms() }
func (svc *Service) GetByID(id int) (Room, error) { return svc.repo.GetRoomByID(id) }
