package session

import (
	"time"

	"github.com/pkg/errors"
)

// ExpandRecurrence returns the dates of the spawned instances of a recurring
// series: every step after `start` up to and including `end`. The start date
// itself is excluded (it belongs to the parent session).
func ExpandRecurrence(start, end, recurrenceType string) ([]string, error) {
	startDay, err := time.ParseInLocation(DateLayout, start, time.Local)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing start date %q", start)
	}
	endDay, err := time.ParseInLocation(DateLayout, end, time.Local)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing end date %q", end)
	}

	var dates []string
	for day := next(startDay, recurrenceType); !day.After(endDay); day = next(day, recurrenceType) {
		dates = append(dates, day.Format(DateLayout))
	}
	return dates, nil
}

// next advances one recurrence step. Unknown types fall back to weekly.
func next(day time.Time, recurrenceType string) time.Time {
	switch recurrenceType {
	case RecurBiweekly:
		return day.AddDate(0, 0, 14)
	case RecurMonthly:
		if day.Month() == time.December {
			return time.Date(day.Year()+1, time.January, day.Day(), 0, 0, 0, 0, day.Location())
		}
		return time.Date(day.Year(), day.Month()+1, day.Day(), 0, 0, 0, 0, day.Location())
	default:
		return day.AddDate(0, 0, 7)
	}
}
