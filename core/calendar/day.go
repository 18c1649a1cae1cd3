package calendar

import (
	"sort"
	"time"

	"github.com/crescendoapp/crescendo/core/session"
)

// DaySessions returns the cached sessions on the given ISO date, optionally
// narrowed to one instrument, ordered by time-of-day ascending. Zero-padded
// "HH:MM" strings compare lexicographically in chronological order. The
// result is never nil so an empty day renders an explicit empty state.
func (st *State) DaySessions(date string, instrumentID *int) []session.Session {
	matches := []session.Session{}
	for _, s := range st.Sessions() {
		if s.Date != date {
			continue
		}
		if instrumentID != nil && (s.InstrumentID == nil || *s.InstrumentID != *instrumentID) {
			continue
		}
		matches = append(matches, s)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Time < matches[j].Time })
	return matches
}

// DayLabel formats an ISO date for display, e.g. "March 15, 2024". Unparsable
// dates come back unchanged.
func DayLabel(date string) string {
	day, err := time.ParseInLocation(session.DateLayout, date, time.Local)
	if err != nil {
		return date
	}
	return day.Format("January 2, 2006")
}
