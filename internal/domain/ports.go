package domain

import (
	"context"
	"time"
)

// LedgerStore is the single source of truth. All multi-record writes within
// one business operation happen in one transaction.
type LedgerStore interface {
	// Units & users
	CreateUnit(ctx context.Context, u Unit) (Unit, error)
	GetUnit(ctx context.Context, id int64) (Unit, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	SearchUnits(ctx context.Context, f UnitFilter) ([]Unit, int64, error)
	GetUser(ctx context.Context, id int64) (User, error)

	// Bookings & payments
	//
	// CreateBooking must serialize the overlap check and the insert against
	// concurrent callers targeting the same unit (the implementation locks
	// the unit row for the duration of the transaction) and returns
	// ErrConflict when the range is taken. The booking and its payment are
	// written atomically.
	CreateBooking(ctx context.Context, b Booking, p Payment) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	GetPayment(ctx context.Context, bookingID int64) (Payment, error)
	FindOverlapping(ctx context.Context, unitID int64, statuses []BookingStatus, start, end time.Time) ([]Booking, error)
	ListBookings(ctx context.Context) ([]Booking, error)

	// UpdateBooking persists a status transition atomically with the
	// optional payment update. The write is guarded by the expected current
	// status; a concurrent transition makes the guard fail with
	// ErrInvalidState, which keeps per-booking transitions linearizable.
	UpdateBooking(ctx context.Context, b Booking, expect BookingStatus, p *Payment) error
}

// AvailabilityCache is a non-authoritative projection of the booking set.
// Implementations absorb backend failures entirely: a failed read is a miss,
// a failed write or invalidation is dropped. Nothing here may fail the
// enclosing business operation.
type AvailabilityCache interface {
	GetCount(ctx context.Context, start, end time.Time) (int64, bool)
	PutCount(ctx context.Context, start, end time.Time, count int64)
	Invalidate(ctx context.Context, start, end time.Time)
}
