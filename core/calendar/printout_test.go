package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendoapp/crescendo/core/session"
)

func TestState_BuildPrintout(t *testing.T) {
	st := NewState()
	st.Load([]session.Session{
		{ID: 1, Title: "Piano", Date: "2024-03-16", Time: "14:30", InstrumentID: intPtr(1)},
		{ID: 2, Title: "Violin", Date: "2024-03-15", Time: "09:00", InstrumentID: intPtr(2)},
		{ID: 3, Title: "Theory", Date: "2024-03-15", Time: "11:15"},
		{ID: 4, Title: "Guitar", Date: "2024-03-20", Time: "08:00", InstrumentID: intPtr(1)},
	})

	t.Run("grouped by date, sorted date then time", func(t *testing.T) {
		p := st.BuildPrintout(PrintFilter{Start: "2024-03-15", End: "2024-03-16"})
		require.Len(t, p.Groups, 2)

		assert.Equal(t, "2024-03-15", p.Groups[0].Date)
		assert.Equal(t, "March 15, 2024", p.Groups[0].Label)
		assert.Equal(t, []int{2, 3}, sessionIDs(p.Groups[0].Sessions))

		assert.Equal(t, "2024-03-16", p.Groups[1].Date)
		assert.Equal(t, []int{1}, sessionIDs(p.Groups[1].Sessions))
	})

	t.Run("instrument filter", func(t *testing.T) {
		p := st.BuildPrintout(PrintFilter{InstrumentID: intPtr(1)})
		require.Len(t, p.Groups, 2)
		assert.Equal(t, []int{1}, sessionIDs(p.Groups[0].Sessions))
		assert.Equal(t, []int{4}, sessionIDs(p.Groups[1].Sessions))
	})

	t.Run("open ended range", func(t *testing.T) {
		p := st.BuildPrintout(PrintFilter{Start: "2024-03-16"})
		require.Len(t, p.Groups, 2)
		assert.Equal(t, "2024-03-16", p.Groups[0].Date)
		assert.Equal(t, "2024-03-20", p.Groups[1].Date)
	})

	t.Run("no matches", func(t *testing.T) {
		p := st.BuildPrintout(PrintFilter{Start: "2025-01-01"})
		assert.Empty(t, p.Groups)
	})
}
