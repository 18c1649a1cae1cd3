package session

import (
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/crescendoapp/crescendo/core"
)

// Session kinds
const (
	KindIndividual = "individual"
	KindGroup      = "group"
	KindBlock      = "block"
)

// Recurrence types
const (
	RecurWeekly   = "weekly"
	RecurBiweekly = "biweekly"
	RecurMonthly  = "monthly"
)

const (
	// DateLayout is the wire format for session dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for session times; zero-padded so that
	// lexicographic order matches chronological order.
	TimeLayout = "15:04"

	allDayTime     = "00:00"
	allDayDuration = 24 * 60
)

// Session is one schedulable calendar entry: an individual lesson, a group
// lesson, or an admin-placed blocked date.
type Session struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Date              string     `json:"date"` // YYYY-MM-DD
	Time              string     `json:"time"` // HH:MM
	Duration          int        `json:"duration"` // minutes
	Kind              string     `json:"kind"`
	UserID            *int       `json:"user_id,omitempty"`
	GroupID           *int       `json:"group_id,omitempty"`
	RoomID            *int       `json:"room_id,omitempty"`
	InstrumentID      *int       `json:"instrument_id,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrenceType    string     `json:"recurrence_type,omitempty"`
	RecurrenceEndDate string     `json:"recurrence_end_date,omitempty"`
	ParentSessionID   *int       `json:"parent_session_id"`
	SeriesID          uuid.UUID  `json:"series_id,omitempty"`
	Reason            string     `json:"reason,omitempty"` // block only
	IsAllDay          bool       `json:"is_all_day,omitempty"`
	CreatedAt         time.Time  `json:"created_at"` // UTC
	UpdatedAt         time.Time  `json:"updated_at"` // UTC
}

// IsSeriesInstance reports whether the session belongs to a recurring series,
// either as the parent or as a spawned instance.
func (s *Session) IsSeriesInstance() bool {
	return s.IsRecurring || s.ParentSessionID != nil
}

func (s *Session) IsBlock() bool { return s.Kind == KindBlock }

// SeriesParentID resolves the id anchoring the session's series: its parent's
// id for spawned instances, its own id otherwise.
func (s *Session) SeriesParentID() int {
	if s.ParentSessionID != nil {
		return *s.ParentSessionID
	}
	return s.ID
}

// Day parses the session date in the local timezone.
func (s *Session) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, s.Date, time.Local)
}

// NewSession contains information needed to schedule a new Session.
// The payload shape is discriminated by Kind.
type NewSession struct {
	Kind              string `json:"kind" validate:"required,oneof=individual group block"`
	Title             string `json:"title"`
	Date              string `json:"date" validate:"required,isodate"`
	Time              string `json:"time" validate:"omitempty,hhmm"`
	Duration          int    `json:"duration" validate:"omitempty,min=1"`
	UserID            *int   `json:"user_id"`
	GroupID           *int   `json:"group_id"`
	RoomID            *int   `json:"room_id"`
	InstrumentID      *int   `json:"instrument_id"`
	Notes             string `json:"notes"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrenceType    string `json:"recurrence_type" validate:"omitempty,oneof=weekly biweekly monthly"`
	RecurrenceEndDate string `json:"recurrence_end_date" validate:"omitempty,isodate"`
	Reason            string `json:"reason"`
	IsAllDay          bool   `json:"is_all_day"`
}

// Validate applies struct tags plus the kind-discriminated rules. All rules
// fail before any repository call is made.
func (ns *NewSession) Validate(validate *validator.Validate, _ ut.Translator) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Notes = core.CleanString(ns.Notes)
	ns.Reason = core.CleanString(ns.Reason)

	if ns.Duration == 0 {
		ns.Duration = 60
	}
	if ns.Kind == KindBlock && ns.IsAllDay {
		ns.Time = allDayTime
		ns.Duration = allDayDuration
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}

	switch ns.Kind {
	case KindIndividual:
		if ns.UserID == nil {
			return requiredField("user_id")
		}
		if ns.GroupID != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "group_id", Error: "must not be set on an individual session"})
		}
		if ns.InstrumentID == nil {
			return requiredField("instrument_id")
		}
	case KindGroup:
		if ns.GroupID == nil {
			return requiredField("group_id")
		}
		if ns.UserID != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "must not be set on a group session"})
		}
	case KindBlock:
		if ns.Reason == "" {
			return requiredField("reason")
		}
		if ns.UserID != nil || ns.GroupID != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "a blocked date cannot reference a student or group"})
		}
	}

	if ns.Time == "" {
		return requiredField("time")
	}

	if ns.IsRecurring {
		if ns.RecurrenceType == "" {
			ns.RecurrenceType = RecurWeekly
		}
		if ns.RecurrenceEndDate == "" {
			return requiredField("recurrence_end_date")
		}
		if ns.RecurrenceEndDate < ns.Date {
			return core.NewValidationError(nil, core.FieldError{Field: "recurrence_end_date", Error: "must not be before the start date"})
		}
	}
	return nil
}

// UpdateSession defines the mutable display fields of an existing Session.
// Structural fields (kind, references, recurrence) cannot be edited.
type UpdateSession struct {
	Title    string `json:"title"`
	Date     string `json:"date" validate:"omitempty,isodate"`
	Time     string `json:"time" validate:"omitempty,hhmm"`
	Duration int    `json:"duration" validate:"omitempty,min=1"`
	Notes    string `json:"notes"`
}

func (us *UpdateSession) Validate(orig Session, validate *validator.Validate, _ ut.Translator) error {
	us.Title = core.CleanString(us.Title)
	if us.Title == "" {
		us.Title = orig.Title
	}
	if us.Date == "" {
		us.Date = orig.Date
	}
	if us.Time == "" {
		us.Time = orig.Time
	}
	if us.Duration == 0 {
		us.Duration = orig.Duration
	}
	return validate.Struct(us)
}

// QueryFilter narrows session listings. Fields combine with AND.
type QueryFilter struct {
	GroupID      *int   `query:"group_id"`
	InstrumentID *int   `query:"instrument_id"`
	DateFrom     string `query:"date_from"`
	DateTo       string `query:"date_to"`

	// student scoping: only sessions owned by the user or belonging to one
	// of their groups. Set server-side, never bound from the request.
	UserID       *int
	UserGroupIDs []int
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.GroupID == nil && qf.InstrumentID == nil && qf.DateFrom == "" && qf.DateTo == "" && qf.UserID == nil
}

// Matches reports whether the session passes the filter; shared by the
// in-memory repository and tests.
func (qf *QueryFilter) Matches(s Session) bool {
	if qf.GroupID != nil && (s.GroupID == nil || *s.GroupID != *qf.GroupID) {
		return false
	}
	if qf.InstrumentID != nil && (s.InstrumentID == nil || *s.InstrumentID != *qf.InstrumentID) {
		return false
	}
	if qf.DateFrom != "" && s.Date < qf.DateFrom {
		return false
	}
	if qf.DateTo != "" && s.Date > qf.DateTo {
		return false
	}
	if qf.UserID != nil {
		if s.UserID != nil && *s.UserID == *qf.UserID {
			return true
		}
		if s.GroupID != nil {
			for _, gid := range qf.UserGroupIDs {
				if gid == *s.GroupID {
					return true
				}
			}
		}
		// blocked dates stay visible to everyone
		return s.IsBlock()
	}
	return true
}

func requiredField(field string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: fmt.Sprintf("%s is required", field)})
}
