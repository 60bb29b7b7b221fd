package app

import (
	"context"
	"testing"
	"time"

	"unit_booking/internal/domain"
)

func TestSweeper_ExpiresStaleBookings(t *testing.T) {
	svc, store, _ := newBookingFixture()
	ctx := context.Background()

	created := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }
	b, err := svc.Create(ctx, 100, 1, day(10), day(12))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	svc.now = func() time.Time { return created.Add(16 * time.Minute) }

	sw := NewExpirySweeper(svc, 10*time.Millisecond)
	sw.Start()
	defer sw.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := store.GetBooking(ctx, b.ID)
		if got.Status == domain.BookingExpired {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("booking not expired by sweeper, status=%s", got.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSweeper_StartStopIdempotent(t *testing.T) {
	svc, _, _ := newBookingFixture()
	sw := NewExpirySweeper(svc, time.Hour)

	sw.Start()
	sw.Start() // second start is a no-op
	sw.Stop()
	sw.Stop() // second stop is a no-op
}

func TestSweeper_RunOnce(t *testing.T) {
	svc, store, _ := newBookingFixture()
	ctx := context.Background()

	created := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }
	b, _ := svc.Create(ctx, 100, 1, day(10), day(12))

	svc.now = func() time.Time { return created.Add(15 * time.Minute) }
	sw := NewExpirySweeper(svc, time.Hour)
	sw.RunOnce(ctx)

	got, _ := store.GetBooking(ctx, b.ID)
	if got.Status != domain.BookingExpired {
		t.Fatalf("status: %s", got.Status)
	}
}
