package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"unit_booking/internal/domain"
)

// surcharge applied on top of costPerDay * nights.
var surcharge = decimal.NewFromFloat(0.15)

// perItemTimeout bounds each store interaction during a sweep so one slow
// booking cannot stall the rest of the batch.
const perItemTimeout = 5 * time.Second

type BookingService struct {
	store  domain.LedgerStore
	cache  domain.AvailabilityCache
	window time.Duration

	now func() time.Time // injectable for expiry-boundary tests
}

func NewBookingService(store domain.LedgerStore, cache domain.AvailabilityCache, expiryWindow time.Duration) *BookingService {
	return &BookingService{store: store, cache: cache, window: expiryWindow, now: time.Now}
}

// Create books a unit for the half-open range [start, end). The overlap
// pre-check here gives fast failure; the authoritative check runs inside the
// store's transaction under the per-unit lock, so two concurrent calls for
// the same unit and overlapping dates cannot both commit.
func (s *BookingService) Create(ctx context.Context, unitID, userID int64, start, end time.Time) (domain.Booking, error) {
	if !start.Before(end) {
		return domain.Booking{}, domain.ErrInvalidRange
	}

	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("unit %d: %w", unitID, err)
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("user %d: %w", userID, err)
	}

	overlapping, err := s.store.FindOverlapping(ctx, unit.ID, domain.ActiveStatuses, start, end)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("conflict check: %w", err)
	}
	if len(overlapping) > 0 {
		return domain.Booking{}, domain.ErrConflict
	}

	now := s.now().UTC()
	booking := domain.Booking{
		UnitID:    unit.ID,
		UserID:    user.ID,
		StartDate: start,
		EndDate:   end,
		Status:    domain.BookingPending,
		CreatedAt: now,
	}
	payment := domain.Payment{
		Amount:    bookingCost(unit.CostPerDay, start, end),
		Status:    domain.PaymentPending,
		CreatedAt: now,
	}

	created, err := s.store.CreateBooking(ctx, booking, payment)
	if err != nil {
		return domain.Booking{}, err
	}
	s.cache.Invalidate(ctx, start, end)

	log.Info().
		Int64("booking_id", created.ID).
		Int64("unit_id", unit.ID).
		Int64("user_id", user.ID).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("booking created")
	return created, nil
}

// Cancel is idempotent: a booking already CANCELLED or EXPIRED is left
// untouched and reported as success.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int64) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %d: %w", bookingID, err)
	}
	if b.UserID != userID {
		return domain.ErrForbidden
	}
	if b.Status.Terminal() {
		log.Info().Int64("booking_id", b.ID).Str("status", string(b.Status)).Msg("cancel is a no-op")
		return nil
	}
	if !domain.CanTransition(b.Status, domain.BookingCancelled) {
		return domain.ErrInvalidState
	}

	prev := b.Status
	b.Status = domain.BookingCancelled
	if err := s.store.UpdateBooking(ctx, b, prev, nil); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, b.StartDate, b.EndDate)

	log.Info().Int64("booking_id", b.ID).Msg("booking cancelled")
	return nil
}

// Pay moves a PENDING booking to PAID and settles its payment in the same
// transaction. The cache is untouched: the unit was already blocked while
// PENDING, so capacity does not change.
func (s *BookingService) Pay(ctx context.Context, bookingID, userID int64) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %d: %w", bookingID, err)
	}
	if b.UserID != userID {
		return domain.ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return domain.ErrInvalidState
	}

	p, err := s.store.GetPayment(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("payment %d: %w", b.ID, err)
	}

	now := s.now().UTC()
	b.Status = domain.BookingPaid
	p.Status = domain.PaymentPaid
	p.PaymentTime = &now
	if err := s.store.UpdateBooking(ctx, b, domain.BookingPending, &p); err != nil {
		return err
	}

	log.Info().Int64("booking_id", b.ID).Str("amount", p.Amount.StringFixed(2)).Msg("booking paid")
	return nil
}

// Expire reclaims a PENDING booking whose hold has outlived the expiry
// window. Anything else (wrong status, not yet stale, lost race against a
// concurrent pay or cancel) is a no-op so re-invocation is always safe.
// Returns whether the booking was expired by this call.
func (s *BookingService) Expire(ctx context.Context, bookingID int64) (bool, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("booking %d: %w", bookingID, err)
	}
	if b.Status != domain.BookingPending {
		return false, nil
	}
	now := s.now().UTC()
	if now.Sub(b.CreatedAt) < s.window {
		return false, nil
	}

	p, err := s.store.GetPayment(ctx, b.ID)
	if err != nil {
		return false, fmt.Errorf("payment %d: %w", b.ID, err)
	}

	b.Status = domain.BookingExpired
	p.Status = domain.PaymentFailed
	p.PaymentTime = &now
	if err := s.store.UpdateBooking(ctx, b, domain.BookingPending, &p); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// someone paid or cancelled between our read and write
			return false, nil
		}
		return false, err
	}
	s.cache.Invalidate(ctx, b.StartDate, b.EndDate)

	log.Info().Int64("booking_id", b.ID).Msg("booking expired")
	return true, nil
}

// ExpireStale runs one sweep pass over the ledger. Each expiry is its own
// atomic unit; a failure on one booking is logged and the sweep continues.
func (s *BookingService) ExpireStale(ctx context.Context) (int, error) {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}

	expired := 0
	for _, b := range bookings {
		if b.Status != domain.BookingPending {
			continue
		}
		itemCtx, cancel := context.WithTimeout(ctx, perItemTimeout)
		ok, err := s.Expire(itemCtx, b.ID)
		cancel()
		if err != nil {
			log.Error().Int64("booking_id", b.ID).Err(err).Msg("expire failed, continuing sweep")
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

// bookingCost computes costPerDay * nights plus the fixed 15% surcharge.
func bookingCost(costPerDay decimal.Decimal, start, end time.Time) decimal.Decimal {
	nights := int64(end.Sub(start).Hours() / 24)
	base := costPerDay.Mul(decimal.NewFromInt(nights))
	return base.Add(base.Mul(surcharge))
}
