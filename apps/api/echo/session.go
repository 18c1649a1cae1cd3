package echoapi

import (
	"net/http"
	"sort"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core"
	"github.com/crescendoapp/crescendo/core/calendar"
	"github.com/crescendoapp/crescendo/core/group"
	"github.com/crescendoapp/crescendo/core/session"
)

type sessionApi struct {
	svc        session.ServiceInterface
	groupSvc   group.ServiceInterface
	state      *calendar.State
	validate   *validator.Validate
	translator ut.Translator
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := sessionApi{
		svc:        deps.SessionSvc,
		groupSvc:   deps.GroupSvc,
		state:      deps.CalState,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	sg := g.Group("/sessions", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, staffMiddleware())
	sg.DELETE("", api.destroy, staffMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, staffMiddleware())
}

// Handlers

func (api *sessionApi) query(ctx echo.Context) error {
	filter := new(session.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []session.Session{})
	}

	if err := api.scopeFilter(ctx, filter); err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	sessions, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	applyOrdering(sessions, ordering.Orderings)
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	s, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}

	if s.IsRecurring {
		// spawned instances live server-side only; rebuild the cache
		if all, qErr := api.svc.QueryAll(); qErr == nil {
			api.state.Load(all)
		}
	} else {
		api.state.ApplyCreate(s)
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	s, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting session")
	}

	// students only see their own sessions, group sessions and blocked dates
	filter := new(session.QueryFilter)
	if err = api.scopeFilter(ctx, filter); err != nil {
		return err
	}
	if !filter.Matches(s) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *sessionApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	orig, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting session")
	}

	var data session.UpdateSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err = data.Validate(orig, api.validate, api.translator); err != nil {
		return err
	}

	s, err := api.svc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	api.state.ApplyUpdate(s)
	return ctx.JSON(http.StatusOK, s)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	var query DestroySessionRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroySessionRequest")
	}
	if query.ID == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "id is required"})
	}

	ids, err := api.svc.Delete(query.ID, query.DeleteAll)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session")
	}
	api.state.ApplyDelete(ids...)
	return ctx.JSON(http.StatusOK, DestroySessionResponse{Deleted: ids})
}

// scopeFilter restricts the filter for student users. Admin and staff see
// everything.
func (api *sessionApi) scopeFilter(ctx echo.Context, filter *session.QueryFilter) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStudent() {
		return nil
	}

	uid := claims.UserID()
	filter.UserID = &uid

	gids, err := api.groupSvc.GroupIDsForStudent(uid)
	if err != nil {
		return errors.Wrap(err, "querying student groups")
	}
	filter.UserGroupIDs = gids
	return nil
}

// applyOrdering sorts sessions on the requested fields; unknown fields are
// ignored. Default repo order is date then time.
func applyOrdering(sessions []session.Session, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		less := func(a, b session.Session) bool { return false }
		switch ord.Field {
		case "date":
			less = func(a, b session.Session) bool { return a.Date < b.Date }
		case "time":
			less = func(a, b session.Session) bool { return a.Time < b.Time }
		case "title":
			less = func(a, b session.Session) bool { return a.Title < b.Title }
		case "duration":
			less = func(a, b session.Session) bool { return a.Duration < b.Duration }
		default:
			continue
		}
		sort.SliceStable(sessions, func(i, j int) bool {
			if ord.Ascending {
				return less(sessions[i], sessions[j])
			}
			return less(sessions[j], sessions[i])
		})
	}
}

type (
	DestroySessionRequest struct {
		ID        int  `query:"id"`
		DeleteAll bool `query:"delete_all"`
	}

	DestroySessionResponse struct {
		Deleted []int `json:"deleted"`
	}
)
