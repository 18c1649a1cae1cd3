package calendar

import (
	"fmt"
	"time"

	"github.com/crescendoapp/crescendo/core/session"
)

type (
	// Cell is one slot of the month grid. Leading blanks (padding before the
	// first day of the month) have Day == 0 and an empty Date.
	Cell struct {
		Day          int    `json:"day"`
		Date         string `json:"date,omitempty"` // YYYY-MM-DD
		HasSessions  bool   `json:"has_sessions"`
		HasRecurring bool   `json:"has_recurring"`
		HasBlocked   bool   `json:"has_blocked"`
		IsToday      bool   `json:"is_today"`
	}

	Grid struct {
		Year  int        `json:"year"`
		Month time.Month `json:"month"`
		Label string     `json:"label"` // e.g. "March 2024"
		Cells []Cell     `json:"cells"`
	}
)

// MonthGrid builds the grid for the given year/month from the cached
// sessions: weekday(1st) leading blanks (Sunday-first week), then one cell
// per day. An optional reference time pins "today" for tests.
func (st *State) MonthGrid(year int, month time.Month, now ...time.Time) Grid {
	today := time.Now()
	if len(now) > 0 {
		today = now[0]
	}

	sessions := st.Sessions()
	byDate := make(map[string][]session.Session, len(sessions))
	for _, s := range sessions {
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	cells := make([]Cell, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		cell := Cell{
			Day:  day,
			Date: fmt.Sprintf("%04d-%02d-%02d", year, int(month), day),
		}
		for _, s := range byDate[cell.Date] {
			cell.HasSessions = true
			if s.IsSeriesInstance() {
				cell.HasRecurring = true
			}
			if s.IsBlock() {
				cell.HasBlocked = true
			}
		}
		if day == today.Day() && month == today.Month() && year == today.Year() {
			cell.IsToday = true
		}
		cells = append(cells, cell)
	}

	return Grid{
		Year:  year,
		Month: month,
		Label: fmt.Sprintf("%s %d", month.String(), year),
		Cells: cells,
	}
}

// NextMonth advances a grid position one month, wrapping the year.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth moves a grid position one month back, wrapping the year.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
