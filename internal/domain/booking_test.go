package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingPending, BookingPaid, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingExpired, true},
		{BookingPaid, BookingCancelled, true},
		{BookingConfirmed, BookingCancelled, true},

		{BookingPaid, BookingPending, false},
		{BookingPaid, BookingExpired, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingPaid, false},
		{BookingExpired, BookingPending, false},
		{BookingExpired, BookingCancelled, false},
		// nothing transitions into CONFIRMED
		{BookingPending, BookingConfirmed, false},
		{BookingPaid, BookingConfirmed, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, BookingCancelled.Terminal())
	assert.True(t, BookingExpired.Terminal())
	assert.False(t, BookingPending.Terminal())
	assert.False(t, BookingPaid.Terminal())
}

func TestOverlapsHalfOpen(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC) }
	b := Booking{StartDate: day(10), EndDate: day(15)}

	assert.True(t, b.Overlaps(day(12), day(13)), "contained range")
	assert.True(t, b.Overlaps(day(8), day(11)), "overlaps the start")
	assert.True(t, b.Overlaps(day(14), day(20)), "overlaps the end")
	assert.True(t, b.Overlaps(day(1), day(30)), "covering range")

	// back-to-back stays share a boundary day but do not conflict
	assert.False(t, b.Overlaps(day(15), day(18)))
	assert.False(t, b.Overlaps(day(5), day(10)))
	assert.False(t, b.Overlaps(day(1), day(2)))
}
