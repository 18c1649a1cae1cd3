// Package instrument holds the instrument lookup used to tag individual
// sessions and filter calendar views.
package instrument

import "github.com/pkg/errors"

var ErrNotFound = errors.New("instrument not found")

type (
	Instrument struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	Repository interface {
		QueryAllInstruments() ([]Instrument, error)
		GetInstrumentByID(id int) (Instrument, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll() ([]Instrument, error)    { return svc.repo.QueryAllInstruments() }
func (svc *Service) GetByID(id int) (Instrument, error) { return svc.repo.GetInstrumentByID(id) }
