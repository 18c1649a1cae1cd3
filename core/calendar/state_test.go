package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendoapp/crescendo/core/session"
)

func seriesFixture() []session.Session {
	parentID := 3
	return []session.Session{
		{ID: 1, Kind: session.KindIndividual, Date: "2024-03-01", Time: "09:00"},
		{ID: 2, Kind: session.KindGroup, Date: "2024-03-02", Time: "10:00"},
		{ID: 3, Kind: session.KindIndividual, Date: "2024-03-04", Time: "11:00", IsRecurring: true},
		{ID: 4, Kind: session.KindIndividual, Date: "2024-03-11", Time: "11:00", ParentSessionID: &parentID},
		{ID: 5, Kind: session.KindIndividual, Date: "2024-03-18", Time: "11:00", ParentSessionID: &parentID},
	}
}

func sessionIDs(sessions []session.Session) []int {
	ids := make([]int, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestState_Load(t *testing.T) {
	st := NewState()
	st.Load(seriesFixture())
	assert.Len(t, st.Sessions(), 5)

	// load replaces wholesale
	st.Load(seriesFixture()[:2])
	assert.Len(t, st.Sessions(), 2)
}

func TestState_ApplyCreate(t *testing.T) {
	st := NewState()
	st.ApplyCreate(session.Session{ID: 9, Date: "2024-03-20", Time: "15:00"})
	require.Len(t, st.Sessions(), 1)
	assert.Equal(t, 9, st.Sessions()[0].ID)
}

func TestState_ApplyUpdate(t *testing.T) {
	st := NewState()
	st.Load(seriesFixture())

	now := time.Now().UTC()
	st.ApplyUpdate(session.Session{ID: 2, Title: "Moved", Date: "2024-03-05", Time: "16:00", Duration: 30, UpdatedAt: now})

	var got session.Session
	for _, s := range st.Sessions() {
		if s.ID == 2 {
			got = s
		}
	}
	assert.Equal(t, "Moved", got.Title)
	assert.Equal(t, "2024-03-05", got.Date)
	assert.Equal(t, "16:00", got.Time)
	assert.Equal(t, 30, got.Duration)
	assert.Equal(t, session.KindGroup, got.Kind, "structural fields untouched")

	// unknown ids are ignored
	st.ApplyUpdate(session.Session{ID: 99, Title: "ghost"})
	assert.Len(t, st.Sessions(), 5)
}

func TestState_ApplyDelete(t *testing.T) {
	st := NewState()
	st.Load(seriesFixture())

	st.ApplyDelete(1, 4)
	assert.ElementsMatch(t, []int{2, 3, 5}, sessionIDs(st.Sessions()))

	st.ApplyDelete()
	assert.Len(t, st.Sessions(), 3)

	// delete_all passes the server-returned ids of the whole series
	st.Load(seriesFixture())
	st.ApplyDelete(3, 4, 5)
	assert.ElementsMatch(t, []int{1, 2}, sessionIDs(st.Sessions()))
}
