package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core"
	"github.com/crescendoapp/crescendo/core/calendar"
	"github.com/crescendoapp/crescendo/core/group"
	"github.com/crescendoapp/crescendo/core/session"
)

type calendarApi struct {
	state    *calendar.State
	renderer *calendar.Renderer
	svc      session.ServiceInterface
	groupSvc group.ServiceInterface
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := calendarApi{
		state:    deps.CalState,
		renderer: calendar.NewRenderer(),
		svc:      deps.SessionSvc,
		groupSvc: deps.GroupSvc,
	}

	cg := g.Group("/calendar", jwt)
	cg.GET("/:year/:month", api.monthGrid)
	cg.GET("/day/:date", api.daySessions)
	cg.GET("/print", api.printout)
	cg.POST("/refresh", api.refresh)
}

// Handlers

func (api *calendarApi) monthGrid(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return errHttpNotFound
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return errHttpNotFound
	}

	st, err := api.scopedState(ctx)
	if err != nil {
		return err
	}
	grid := st.MonthGrid(year, time.Month(month))

	if wantsHTML(ctx) {
		sb := new(strings.Builder)
		if err = api.renderer.RenderGrid(sb, grid); err != nil {
			return errors.Wrap(err, "rendering month grid")
		}
		return ctx.HTML(http.StatusOK, sb.String())
	}
	return ctx.JSON(http.StatusOK, grid)
}

func (api *calendarApi) daySessions(ctx echo.Context) error {
	date := ctx.Param("date")
	if _, err := time.Parse(session.DateLayout, date); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a valid date in YYYY-MM-DD format"})
	}

	var instrumentID *int
	if raw := ctx.QueryParam("instrument_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "instrument_id", Error: "must be an integer"})
		}
		instrumentID = &id
	}

	st, err := api.scopedState(ctx)
	if err != nil {
		return err
	}
	sessions := st.DaySessions(date, instrumentID)

	if wantsHTML(ctx) {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		view := calendar.DayView{
			Date:      date,
			Sessions:  sessions,
			CanManage: claims.CanManageSessions(),
		}
		sb := new(strings.Builder)
		if err = api.renderer.RenderDay(sb, view); err != nil {
			return errors.Wrap(err, "rendering day detail")
		}
		return ctx.HTML(http.StatusOK, sb.String())
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *calendarApi) printout(ctx echo.Context) error {
	var filter calendar.PrintFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to PrintFilter")
	}

	st, err := api.scopedState(ctx)
	if err != nil {
		return err
	}
	printout := st.BuildPrintout(filter)

	if wantsHTML(ctx) {
		sb := new(strings.Builder)
		if err = api.renderer.RenderPrintout(sb, printout); err != nil {
			return errors.Wrap(err, "rendering printout")
		}
		return ctx.HTML(http.StatusOK, sb.String())
	}
	return ctx.JSON(http.StatusOK, printout)
}

// refresh rebuilds the session cache from storage, staff only.
func (api *calendarApi) refresh(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.CanManageSessions() {
		return errHttpForbidden
	}

	sessions, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	api.state.Load(sessions)
	return ctx.NoContent(http.StatusNoContent)
}

// scopedState narrows the cache for student users; admin and staff render
// from the shared cache directly.
func (api *calendarApi) scopedState(ctx echo.Context) (*calendar.State, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting context claims")
	}
	if !claims.IsStudent() {
		return api.state, nil
	}

	uid := claims.UserID()
	gids, err := api.groupSvc.GroupIDsForStudent(uid)
	if err != nil {
		return nil, errors.Wrap(err, "querying student groups")
	}
	filter := session.QueryFilter{UserID: &uid, UserGroupIDs: gids}

	var scoped []session.Session
	for _, s := range api.state.Sessions() {
		if filter.Matches(s) {
			scoped = append(scoped, s)
		}
	}
	st := calendar.NewState()
	st.Load(scoped)
	return st, nil
}

func wantsHTML(ctx echo.Context) bool {
	return ctx.QueryParam("html") == "1"
}
