package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendoapp/crescendo/core/calendar"
)

func Test_calendarApi_monthGrid(t *testing.T) {
	app := setup(t)
	f := seedSessions(t, app)

	t.Run("anonymous", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/calendar/2024/3")
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("invalid month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2024/13", f.staffTk)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("staff grid marks session days", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2024/3", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var grid calendar.Grid
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
		assert.Equal(t, 2024, grid.Year)
		assert.Equal(t, "March 2024", grid.Label)
		// March 1st 2024 is a Friday: five leading blanks plus 31 days
		require.Len(t, grid.Cells, 36)

		byDate := make(map[string]calendar.Cell, len(grid.Cells))
		for _, c := range grid.Cells {
			byDate[c.Date] = c
		}
		assert.True(t, byDate["2024-03-15"].HasSessions)
		assert.True(t, byDate["2024-03-16"].HasSessions)
		assert.True(t, byDate["2024-03-20"].HasBlocked)
		assert.False(t, byDate["2024-03-10"].HasSessions)
	})

	t.Run("student grid omits other students' days", func(t *testing.T) {
		// bob's 09:00 lesson shares the 15th with ann's, so the day stays
		// marked; a day with only bob's sessions would not be
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2024/3", f.annTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var grid calendar.Grid
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
		for _, c := range grid.Cells {
			switch c.Date {
			case "2024-03-15", "2024-03-16", "2024-03-20":
				assert.True(t, c.HasSessions, c.Date)
			default:
				assert.False(t, c.HasSessions, c.Date)
			}
		}
	})

	t.Run("html rendering", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2024/3?html=1", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		html := rec.Body.String()
		assert.Contains(t, html, "March 2024")
		assert.Contains(t, html, `class="calendar-date has-sessions" data-date="2024-03-15"`)
		assert.Contains(t, html, `data-date="2024-03-20"`)
	})
}

func Test_calendarApi_daySessions(t *testing.T) {
	app := setup(t)
	f := seedSessions(t, app)

	t.Run("invalid date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/day/2024-3-15", f.staffTk)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "must be a valid date in YYYY-MM-DD format"}),
		}, rec)
	})

	t.Run("staff sees the full day sorted by time", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/day/2024-03-15", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeSessions(t, rec.Body.Bytes())
		assert.Equal(t, []int{f.bobLesson.ID, f.annLesson.ID}, sessionTestIDs(got))
	})

	t.Run("student day is scoped", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/day/2024-03-15", f.annTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []int{f.annLesson.ID}, sessionTestIDs(decodeSessions(t, rec.Body.Bytes())))
	})

	t.Run("empty day", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/day/2024-03-10", f.staffTk)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
	})

	t.Run("html for staff has action buttons", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/day/2024-03-15?html=1", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		html := rec.Body.String()
		assert.Contains(t, html, "Sessions for March 15, 2024")
		assert.Contains(t, html, f.annLesson.Title)
		assert.Contains(t, html, `data-action="delete"`)
	})

	t.Run("html for students has no action buttons", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/day/2024-03-15?html=1", f.annTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `data-action=`)
	})
}

func Test_calendarApi_printout(t *testing.T) {
	app := setup(t)
	f := seedSessions(t, app)

	t.Run("grouped by date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/print?start=2024-03-15&end=2024-03-16", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var p calendar.Printout
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		require.Len(t, p.Groups, 2)
		assert.Equal(t, "2024-03-15", p.Groups[0].Date)
		assert.Equal(t, []int{f.bobLesson.ID, f.annLesson.ID}, sessionTestIDs(p.Groups[0].Sessions))
		assert.Equal(t, "2024-03-16", p.Groups[1].Date)
	})

	t.Run("html rendering", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/print?html=1", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		html := rec.Body.String()
		assert.Contains(t, html, "Schedule Printout")
		assert.Contains(t, html, "March 15, 2024")
	})
}

func Test_calendarApi_refresh(t *testing.T) {
	app := setup(t)
	f := seedSessions(t, app)

	t.Run("student forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/refresh", f.annTk)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)
	})

	t.Run("staff rebuilds the cache from storage", func(t *testing.T) {
		app.state.Load(nil) // simulate a stale cache
		require.Empty(t, app.state.Sessions())

		req, rec := newAuthRequest(http.MethodPost, "/v1/calendar/refresh", f.staffTk)
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		assert.Len(t, app.state.Sessions(), 4)
	})
}
