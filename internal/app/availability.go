package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"unit_booking/internal/domain"
)

// AvailabilityService answers "how many units are free for [start, end)".
// Read-mostly: a cache hit short-circuits the ledger entirely; a miss does a
// full scan over units and repopulates the cache.
type AvailabilityService struct {
	store domain.LedgerStore
	cache domain.AvailabilityCache
}

func NewAvailabilityService(store domain.LedgerStore, cache domain.AvailabilityCache) *AvailabilityService {
	return &AvailabilityService{store: store, cache: cache}
}

func (s *AvailabilityService) Count(ctx context.Context, start, end time.Time) (int64, error) {
	if !start.Before(end) {
		return 0, domain.ErrInvalidRange
	}

	if n, ok := s.cache.GetCount(ctx, start, end); ok {
		return n, nil
	}

	// O(units x bookings-per-unit); the cache is the only mitigation, which
	// is acceptable at catalog scale.
	units, err := s.store.ListUnits(ctx)
	if err != nil {
		return 0, fmt.Errorf("list units: %w", err)
	}

	var count int64
	for _, u := range units {
		overlapping, err := s.store.FindOverlapping(ctx, u.ID, domain.ActiveStatuses, start, end)
		if err != nil {
			return 0, fmt.Errorf("unit %d bookings: %w", u.ID, err)
		}
		if len(overlapping) == 0 {
			count++
		}
	}

	s.cache.PutCount(ctx, start, end, count)
	log.Debug().
		Time("start", start).
		Time("end", end).
		Int64("count", count).
		Msg("availability recomputed")
	return count, nil
}
