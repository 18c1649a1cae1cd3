package session

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type (
	Repository interface {
		CreateSession(s Session) (Session, error)
		// CreateSessions persists a batch of spawned series instances.
		CreateSessions(ss []Session) ([]Session, error)
		QueryAllSessions() ([]Session, error)
		GetSessionByID(id int) (Session, error)
		// FilterSessions applies AND on available QueryFilter fields.
		FilterSessions(filter QueryFilter) ([]Session, error)
		// QuerySeries returns every session with id == parentID or
		// parent_session_id == parentID.
		QuerySeries(parentID int) ([]Session, error)
		UpdateSession(s Session) (Session, error)
		DeleteSessionsByID(ids ...int) error
	}

	// Directory resolves display names and notification recipients for the
	// students and groups a session references.
	Directory interface {
		StudentName(id int) (string, error)
		GroupName(id int) (string, error)
		Recipients(s Session) ([]mail.Address, error)
	}

	ServiceInterface interface {
		Create(ns NewSession) (Session, error)
		QueryAll() ([]Session, error)
		Filter(filter QueryFilter) ([]Session, error)
		GetByID(id int) (Session, error)
		Update(id int, us UpdateSession) (Session, error)
		// Delete removes the target session; with deleteAll, its whole
		// series. It returns the ids of every removed record.
		Delete(id int, deleteAll bool) ([]int, error)
	}

	Service struct {
		repo    Repository
		dir     Directory
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, dir Directory, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, dir: dir, mailSvc: mailSvc}
}

func (svc *Service) Create(ns NewSession) (Session, error) {
	now := time.Now().UTC()
	s := Session{
		Title:        ns.Title,
		Date:         ns.Date,
		Time:         ns.Time,
		Duration:     ns.Duration,
		Kind:         ns.Kind,
		UserID:       ns.UserID,
		GroupID:      ns.GroupID,
		RoomID:       ns.RoomID,
		InstrumentID: ns.InstrumentID,
		Notes:        ns.Notes,
		Reason:       ns.Reason,
		IsAllDay:     ns.IsAllDay,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.Title == "" {
		s.Title = svc.defaultTitle(s)
	}

	if !ns.IsRecurring {
		created, err := svc.repo.CreateSession(s)
		if err != nil {
			return Session{}, errors.Wrap(err, "creating session")
		}
		svc.notify(created, "Session scheduled",
			fmt.Sprintf("%s on %s at %s (%d minutes).", created.Title, created.Date, created.Time, created.Duration))
		return created, nil
	}

	// recurring: persist the parent first, then spawn dated instances up to
	// the end date
	s.IsRecurring = true
	s.RecurrenceType = ns.RecurrenceType
	s.RecurrenceEndDate = ns.RecurrenceEndDate
	s.SeriesID = uuid.New()

	parent, err := svc.repo.CreateSession(s)
	if err != nil {
		return Session{}, errors.Wrap(err, "creating parent session")
	}

	dates, err := ExpandRecurrence(parent.Date, parent.RecurrenceEndDate, parent.RecurrenceType)
	if err != nil {
		return Session{}, errors.Wrap(err, "expanding recurrence")
	}
	children := make([]Session, 0, len(dates))
	for _, date := range dates {
		child := parent
		child.ID = 0
		child.Date = date
		child.ParentSessionID = &parent.ID
		children = append(children, child)
	}
	if len(children) > 0 {
		if _, err = svc.repo.CreateSessions(children); err != nil {
			return Session{}, errors.Wrap(err, "creating series instances")
		}
	}

	svc.notify(parent, "Recurring sessions scheduled",
		fmt.Sprintf("%s, %s from %s at %s until %s.",
			parent.Title, parent.RecurrenceType, parent.Date, parent.Time, parent.RecurrenceEndDate))
	return parent, nil
}

func (svc *Service) QueryAll() ([]Session, error) {
	return svc.repo.QueryAllSessions()
}

func (svc *Service) Filter(filter QueryFilter) ([]Session, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllSessions()
	}
	return svc.repo.FilterSessions(filter)
}

func (svc *Service) GetByID(id int) (Session, error) {
	return svc.repo.GetSessionByID(id)
}

func (svc *Service) Update(id int, us UpdateSession) (Session, error) {
	orig, err := svc.repo.GetSessionByID(id)
	if err != nil {
		return Session{}, err
	}
	orig.Title = us.Title
	orig.Date = us.Date
	orig.Time = us.Time
	orig.Duration = us.Duration
	orig.Notes = us.Notes
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSession(orig)
}

func (svc *Service) Delete(id int, deleteAll bool) ([]int, error) {
	s, err := svc.repo.GetSessionByID(id)
	if err != nil {
		return nil, err
	}

	ids := []int{s.ID}
	if deleteAll && (s.IsSeriesInstance() || s.IsBlock()) {
		series, err := svc.repo.QuerySeries(s.SeriesParentID())
		if err != nil {
			return nil, errors.Wrap(err, "querying series")
		}
		ids = ids[:0]
		for _, inst := range series {
			ids = append(ids, inst.ID)
		}
	}

	if err = svc.repo.DeleteSessionsByID(ids...); err != nil {
		return nil, errors.Wrap(err, "deleting sessions")
	}

	svc.notify(s, "Session cancelled",
		fmt.Sprintf("%s on %s at %s has been cancelled.", s.Title, s.Date, s.Time))
	return ids, nil
}

func (svc *Service) defaultTitle(s Session) string {
	switch s.Kind {
	case KindGroup:
		if s.GroupID != nil {
			if name, err := svc.dir.GroupName(*s.GroupID); err == nil {
				return "Group Session: " + name
			}
		}
		return "Group Session"
	case KindBlock:
		reason := s.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		return "Blocked: " + reason
	default:
		if s.UserID != nil {
			if name, err := svc.dir.StudentName(*s.UserID); err == nil {
				return "Session with " + name
			}
		}
		return "Untitled Session"
	}
}

// noticeTemplate is the email template rendering schedule notices.
const noticeTemplate = "schedule_notice"

type noticeData struct {
	Name string
	Body string
}

// notify emails the referenced students, one message per recipient so the
// template can greet each by name. Failures only skip the notice; scheduling
// already succeeded.
func (svc *Service) notify(s Session, subject, body string) {
	if svc.mailSvc == nil || s.IsBlock() {
		return
	}
	to, err := svc.dir.Recipients(s)
	if err != nil || len(to) == 0 {
		return
	}
	msgs := make([]*core.EmailMessage, 0, len(to))
	for _, addr := range to {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{addr},
			Subject:      subject,
			TemplateName: noticeTemplate,
			TemplateData: noticeData{Name: addr.Name, Body: body},
		})
	}
	svc.mailSvc.SendMessages(msgs...)
}
