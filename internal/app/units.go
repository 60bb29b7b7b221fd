package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"unit_booking/internal/domain"
)

type UnitService struct {
	store domain.LedgerStore
}

func NewUnitService(store domain.LedgerStore) *UnitService {
	return &UnitService{store: store}
}

func (s *UnitService) Add(ctx context.Context, u domain.Unit) (domain.Unit, error) {
	if strings.TrimSpace(u.Title) == "" {
		return domain.Unit{}, fmt.Errorf("title is required")
	}
	if !u.CostPerDay.GreaterThan(decimal.Zero) {
		return domain.Unit{}, fmt.Errorf("costPerDay must be positive")
	}
	switch u.Type {
	case domain.UnitHome, domain.UnitFlat, domain.UnitApartments:
	default:
		return domain.Unit{}, fmt.Errorf("unknown unit type %q", u.Type)
	}
	if _, err := s.store.GetUser(ctx, u.OwnerID); err != nil {
		return domain.Unit{}, fmt.Errorf("owner %d: %w", u.OwnerID, err)
	}

	created, err := s.store.CreateUnit(ctx, u)
	if err != nil {
		return domain.Unit{}, err
	}
	log.Info().Int64("unit_id", created.ID).Str("title", created.Title).Msg("unit added")
	return created, nil
}

// Search filters the catalog, then drops units that are booked for the
// requested date range. The availability predicate is the same half-open
// overlap test the booking path uses.
func (s *UnitService) Search(ctx context.Context, f domain.UnitFilter) (domain.UnitPage, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = 10
	}
	if !f.StartDate.IsZero() && !f.StartDate.Before(f.EndDate) {
		return domain.UnitPage{}, domain.ErrInvalidRange
	}

	units, total, err := s.store.SearchUnits(ctx, f)
	if err != nil {
		return domain.UnitPage{}, fmt.Errorf("search units: %w", err)
	}

	items := units
	if !f.StartDate.IsZero() {
		items = items[:0]
		for _, u := range units {
			overlapping, err := s.store.FindOverlapping(ctx, u.ID, domain.ActiveStatuses, f.StartDate, f.EndDate)
			if err != nil {
				return domain.UnitPage{}, fmt.Errorf("unit %d bookings: %w", u.ID, err)
			}
			if len(overlapping) == 0 {
				items = append(items, u)
			}
		}
	}

	return domain.UnitPage{Items: items, Total: total, Page: f.Page, Size: f.Size}, nil
}
