package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingPaid      BookingStatus = "PAID"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingExpired   BookingStatus = "EXPIRED"
)

// Statuses that make a booking block overlapping date ranges on its unit.
// CANCELLED and EXPIRED are historical and never block.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingPaid}

// validNext is the closed transition table. CONFIRMED is part of the status
// domain but nothing transitions into it yet.
var validNext = map[BookingStatus]map[BookingStatus]bool{
	BookingPending:   {BookingPaid: true, BookingCancelled: true, BookingExpired: true},
	BookingPaid:      {BookingCancelled: true},
	BookingConfirmed: {BookingCancelled: true},
	BookingCancelled: {},
	BookingExpired:   {},
}

func CanTransition(from, to BookingStatus) bool {
	return validNext[from][to]
}

// Terminal reports whether a status has no outgoing transitions.
func (s BookingStatus) Terminal() bool {
	return len(validNext[s]) == 0
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Booking claims a unit for the half-open date interval [StartDate, EndDate).
// Rows are never deleted; lifecycle changes are status transitions only.
type Booking struct {
	ID        int64
	UnitID    int64
	UserID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    BookingStatus
	CreatedAt time.Time
}

// Overlaps applies the half-open intersection test: [s1,e1) and [s2,e2)
// intersect iff s1 < e2 && s2 < e1. Back-to-back stays do not conflict.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}

// Payment is the 1:1 companion of a Booking and shares its id.
type Payment struct {
	BookingID   int64
	Amount      decimal.Decimal
	Status      PaymentStatus
	PaymentTime *time.Time
	CreatedAt   time.Time
}
