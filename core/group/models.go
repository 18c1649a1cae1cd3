package group

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/crescendoapp/crescendo/core"
)

type (
	// Group is a named ensemble of students taught together.
	Group struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}

	// Member ties a student to a group.
	Member struct {
		GroupID   int `json:"group_id"`
		StudentID int `json:"student_id"`
	}

	NewGroup struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
)

func (ng *NewGroup) Validate(validate *validator.Validate, _ ut.Translator) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return validate.Struct(ng)
}
