package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendoapp/crescendo/core/session"
)

func intPtr(i int) *int { return &i }

func TestState_MonthGrid(t *testing.T) {
	t.Run("leading blanks and day count", func(t *testing.T) {
		st := NewState()
		// March 2024 starts on a Friday (weekday 5) and has 31 days
		grid := st.MonthGrid(2024, time.March)

		assert.Equal(t, 2024, grid.Year)
		assert.Equal(t, time.March, grid.Month)
		assert.Equal(t, "March 2024", grid.Label)
		require.Len(t, grid.Cells, 5+31)

		for i := 0; i < 5; i++ {
			assert.Equal(t, 0, grid.Cells[i].Day)
			assert.Empty(t, grid.Cells[i].Date)
		}
		assert.Equal(t, 1, grid.Cells[5].Day)
		assert.Equal(t, "2024-03-01", grid.Cells[5].Date)
		assert.Equal(t, 31, grid.Cells[len(grid.Cells)-1].Day)
		assert.Equal(t, "2024-03-31", grid.Cells[len(grid.Cells)-1].Date)
	})

	t.Run("no leading blanks when month starts on Sunday", func(t *testing.T) {
		st := NewState()
		// September 2024 starts on a Sunday
		grid := st.MonthGrid(2024, time.September)
		require.Len(t, grid.Cells, 30)
		assert.Equal(t, 1, grid.Cells[0].Day)
	})

	t.Run("session marks", func(t *testing.T) {
		st := NewState()
		parentID := 1
		st.Load([]session.Session{
			{ID: 1, Kind: session.KindIndividual, Date: "2024-03-15", Time: "14:30", UserID: intPtr(7)},
			{ID: 2, Kind: session.KindIndividual, Date: "2024-03-20", Time: "10:00", IsRecurring: true},
			{ID: 3, Kind: session.KindIndividual, Date: "2024-03-27", Time: "10:00", ParentSessionID: &parentID},
			{ID: 4, Kind: session.KindBlock, Date: "2024-03-25", Time: "00:00", Reason: "holiday"},
		})
		grid := st.MonthGrid(2024, time.March)

		cellFor := func(date string) Cell {
			for _, c := range grid.Cells {
				if c.Date == date {
					return c
				}
			}
			t.Fatalf("no cell for %s", date)
			return Cell{}
		}

		plain := cellFor("2024-03-15")
		assert.True(t, plain.HasSessions)
		assert.False(t, plain.HasRecurring)
		assert.False(t, plain.HasBlocked)

		recurring := cellFor("2024-03-20")
		assert.True(t, recurring.HasSessions)
		assert.True(t, recurring.HasRecurring)

		spawned := cellFor("2024-03-27")
		assert.True(t, spawned.HasRecurring, "spawned instances mark as recurring too")

		blocked := cellFor("2024-03-25")
		assert.True(t, blocked.HasBlocked)

		empty := cellFor("2024-03-10")
		assert.False(t, empty.HasSessions)
	})

	t.Run("today mark", func(t *testing.T) {
		st := NewState()
		now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local)
		grid := st.MonthGrid(2024, time.March, now)

		var todays []string
		for _, c := range grid.Cells {
			if c.IsToday {
				todays = append(todays, c.Date)
			}
		}
		assert.Equal(t, []string{"2024-03-15"}, todays)

		// other months get no today mark
		grid = st.MonthGrid(2024, time.April, now)
		for _, c := range grid.Cells {
			assert.False(t, c.IsToday)
		}
	})
}

func TestMonthNavigation(t *testing.T) {
	y, m := NextMonth(2024, time.December)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)

	y, m = NextMonth(2024, time.March)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.April, m)

	y, m = PrevMonth(2024, time.January)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)

	y, m = PrevMonth(2024, time.March)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.February, m)
}
