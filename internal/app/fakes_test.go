package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"unit_booking/internal/domain"
)

// fakeStore is an in-memory LedgerStore. CreateBooking holds the mutex across
// the overlap re-check and the insert, matching the per-unit serialization
// the MySQL store gets from its row lock.
type fakeStore struct {
	mu       sync.Mutex
	units    map[int64]domain.Unit
	users    map[int64]domain.User
	bookings map[int64]domain.Booking
	payments map[int64]domain.Payment
	nextID   int64

	listUnitsCalls int
	paymentErr     map[int64]error // per-booking failure injection
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		units:      map[int64]domain.Unit{},
		users:      map[int64]domain.User{},
		bookings:   map[int64]domain.Booking{},
		payments:   map[int64]domain.Payment{},
		paymentErr: map[int64]error{},
	}
}

func (f *fakeStore) addUnit(id int64, costPerDay string) {
	f.units[id] = domain.Unit{
		ID: id, OwnerID: 1, Title: fmt.Sprintf("Unit %d", id),
		Type: domain.UnitFlat, CostPerDay: decimal.RequireFromString(costPerDay),
		NumberOfRooms: 2, Floor: 1,
	}
}

func (f *fakeStore) addUser(id int64, name string) {
	f.users[id] = domain.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (f *fakeStore) CreateUnit(ctx context.Context, u domain.Unit) (domain.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.units[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetUnit(ctx context.Context, id int64) (domain.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[id]
	if !ok {
		return domain.Unit{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listUnitsCalls++
	out := make([]domain.Unit, 0, len(f.units))
	for _, u := range f.units {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) SearchUnits(ctx context.Context, q domain.UnitFilter) ([]domain.Unit, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Unit
	for _, u := range f.units {
		if q.Type != nil && u.Type != *q.Type {
			continue
		}
		if q.MinCost != nil && u.CostPerDay.LessThan(*q.MinCost) {
			continue
		}
		if q.MaxCost != nil && u.CostPerDay.GreaterThan(*q.MaxCost) {
			continue
		}
		if q.NumberOfRooms != nil && u.NumberOfRooms != *q.NumberOfRooms {
			continue
		}
		if q.Floor != nil && u.Floor != *q.Floor {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, b domain.Booking, p domain.Payment) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.bookings {
		if other.UnitID != b.UnitID || !activeStatus(other.Status) {
			continue
		}
		if other.Overlaps(b.StartDate, b.EndDate) {
			return domain.Booking{}, domain.ErrConflict
		}
	}
	f.nextID++
	b.ID = f.nextID
	p.BookingID = b.ID
	f.bookings[b.ID] = b
	f.payments[b.ID] = p
	return b, nil
}

func (f *fakeStore) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) GetPayment(ctx context.Context, bookingID int64) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.paymentErr[bookingID]; err != nil {
		return domain.Payment{}, err
	}
	p, ok := f.payments[bookingID]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) FindOverlapping(ctx context.Context, unitID int64, statuses []domain.BookingStatus, start, end time.Time) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.UnitID != unitID || !statusIn(b.Status, statuses) {
			continue
		}
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) UpdateBooking(ctx context.Context, b domain.Booking, expect domain.BookingStatus, p *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.bookings[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != expect {
		return domain.ErrInvalidState
	}
	f.bookings[b.ID] = b
	if p != nil {
		f.payments[b.ID] = *p
	}
	return nil
}

func activeStatus(s domain.BookingStatus) bool {
	return statusIn(s, domain.ActiveStatuses)
}

func statusIn(s domain.BookingStatus, set []domain.BookingStatus) bool {
	for _, c := range set {
		if s == c {
			return true
		}
	}
	return false
}

// fakeCache mimics the generation-based adapter: Invalidate drops every
// cached range.
type fakeCache struct {
	mu            sync.Mutex
	counts        map[string]int64
	invalidations int
}

func newFakeCache() *fakeCache { return &fakeCache{counts: map[string]int64{}} }

func cacheKey(start, end time.Time) string {
	return start.Format("2006-01-02") + ":" + end.Format("2006-01-02")
}

func (c *fakeCache) GetCount(ctx context.Context, start, end time.Time) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[cacheKey(start, end)]
	return n, ok
}

func (c *fakeCache) PutCount(ctx context.Context, start, end time.Time, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[cacheKey(start, end)] = count
}

func (c *fakeCache) Invalidate(ctx context.Context, start, end time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = map[string]int64{}
	c.invalidations++
}
