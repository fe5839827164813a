package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = SlotKey{Date: "2024-05-01", TimeSlot: "18:00"}

func TestSlotKey_String(t *testing.T) {
	assert.Equal(t, "2024-05-01|18:00", key.String())
}

func TestSlot_AssignLowestVenueFirst(t *testing.T) {
	s := NewSlot(key, 3)

	v, err := s.Assign("A")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = s.Assign("B")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	s.Remove("A")
	v, err = s.Assign("C")
	require.NoError(t, err)
	assert.Equal(t, 1, v, "freed lower venue is reused first")
	assert.Equal(t, map[string]int{"C": 1, "B": 2}, s.Assignments())
}

func TestSlot_AssignFullAndAlreadyHeld(t *testing.T) {
	s := NewSlot(key, 1)

	_, err := s.Assign("A")
	require.NoError(t, err)

	_, err = s.Assign("A")
	assert.ErrorIs(t, err, ErrAlreadyHeld)

	before := s.Clone()
	_, err = s.Assign("B")
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, before, s, "full slot is not mutated")
}

func TestSlot_FillFromWaitlistBeforeAssign(t *testing.T) {
	s := NewSlot(key, 2)
	_, _ = s.Assign("A")
	_, _ = s.Assign("B")
	for _, team := range []string{"C", "D"} {
		_, _, err := s.Enqueue(team)
		require.NoError(t, err)
	}
	s.Remove("A")

	promotions := s.FillFromWaitlist()
	assert.Equal(t, []Promotion{{TeamID: "C", Venue: 1}}, promotions)
	assert.Equal(t, []string{"D"}, s.Waitlist)

	_, err := s.Assign("E")
	assert.ErrorIs(t, err, ErrSlotFull, "no venue left after the queue is served")

	s.Remove("B")
	s.Remove("C")
	promotions = s.FillFromWaitlist()
	assert.Equal(t, []Promotion{{TeamID: "D", Venue: 1}}, promotions)
	assert.Empty(t, s.FillFromWaitlist())

	v, err := s.Assign("E")
	require.NoError(t, err)
	assert.Equal(t, 2, v, "a free venue with an empty queue goes to the newcomer")
}

func TestSlot_AssignTakesFreeVenue(t *testing.T) {
	s := NewSlot(key, 1)
	_, _ = s.Assign("A")
	_, _, _ = s.Enqueue("B")
	s.Remove("A")

	v, err := s.Assign("C")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSlot_EnqueueIdempotent(t *testing.T) {
	s := NewSlot(key, 1)
	_, _ = s.Assign("A")

	pos, added, err := s.Enqueue("B")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, pos)

	pos, added, err = s.Enqueue("C")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, pos)

	pos, added, err = s.Enqueue("B")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"B", "C"}, s.Waitlist)

	_, _, err = s.Enqueue("A")
	assert.ErrorIs(t, err, ErrAlreadyHeld)
}

func TestSlot_Remove(t *testing.T) {
	s := NewSlot(key, 2)
	_, _ = s.Assign("A")
	_, _ = s.Assign("B")
	_, _, _ = s.Enqueue("C")
	_, _, _ = s.Enqueue("D")

	assert.Equal(t, Removal{Kind: RemovalWaitlisted}, s.Remove("C"))
	assert.Equal(t, []string{"D"}, s.Waitlist)

	assert.Equal(t, Removal{Kind: RemovalAssigned, Venue: 2}, s.Remove("B"))
	assert.Equal(t, 1, s.FreeVenues())

	before := s.Clone()
	assert.Equal(t, Removal{Kind: RemovalNotFound}, s.Remove("Z"))
	assert.Equal(t, before, s)
}

func TestSlot_PromoteNextFIFO(t *testing.T) {
	s := NewSlot(key, 2)
	_, _ = s.Assign("A")
	_, _ = s.Assign("B")
	for _, team := range []string{"C", "D", "E"} {
		_, _, err := s.Enqueue(team)
		require.NoError(t, err)
	}

	_, ok := s.PromoteNext()
	assert.False(t, ok, "no free venue")

	s.Remove("A")
	s.Remove("B")

	p, ok := s.PromoteNext()
	require.True(t, ok)
	assert.Equal(t, Promotion{TeamID: "C", Venue: 1}, p)

	p, ok = s.PromoteNext()
	require.True(t, ok)
	assert.Equal(t, Promotion{TeamID: "D", Venue: 2}, p)

	_, ok = s.PromoteNext()
	assert.False(t, ok)
	assert.Equal(t, []string{"E"}, s.Waitlist)
}

func TestSlot_ConsistentAfterMixedOperations(t *testing.T) {
	s := NewSlot(key, 2)
	ops := []func(){
		func() { _, _ = s.Assign("A") },
		func() { _, _ = s.Assign("B") },
		func() { _, _ = s.Assign("C") },
		func() { _, _, _ = s.Enqueue("C") },
		func() { _, _, _ = s.Enqueue("A") },
		func() { s.Remove("A") },
		func() { s.PromoteNext() },
		func() { _, _, _ = s.Enqueue("D") },
		func() { s.Remove("C") },
		func() { s.PromoteNext() },
	}
	for _, op := range ops {
		op()
		assert.LessOrEqual(t, len(s.Assignments()), len(s.Venues))
		for team := range s.Assignments() {
			assert.False(t, s.IsWaitlisted(team), "team %s both assigned and waitlisted", team)
		}
		seen := map[string]bool{}
		for _, team := range s.Waitlist {
			assert.False(t, seen[team], "duplicate waitlist entry %s", team)
			seen[team] = true
		}
	}
	assert.Equal(t, map[string]int{"D": 1, "B": 2}, s.Assignments())
}

func TestSlot_NormalizeAndClone(t *testing.T) {
	s := &Slot{Date: key.Date, TimeSlot: key.TimeSlot, Venues: []string{"A"}}
	s.Normalize(3)
	assert.Equal(t, []string{"A", "", ""}, s.Venues)
	assert.NotNil(t, s.Waitlist)

	c := s.Clone()
	c.Venues[1] = "B"
	c.Waitlist = append(c.Waitlist, "C")
	assert.Equal(t, "", s.Venues[1])
	assert.Empty(t, s.Waitlist)
}
