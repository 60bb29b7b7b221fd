package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"unit_booking/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateUnit(ctx context.Context, u domain.Unit) (domain.Unit, error) {
	res, err := r.db.ExecContext(ctx, insertUnitSQL,
		u.OwnerID, u.Title, u.Description, string(u.Type), u.CostPerDay, u.NumberOfRooms, u.Floor)
	if err != nil {
		return domain.Unit{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Unit{}, err
	}
	u.ID = id
	return u, nil
}

func (r *Repo) GetUnit(ctx context.Context, id int64) (domain.Unit, error) {
	return scanUnit(r.db.QueryRowContext(ctx, getUnitSQL, id))
}

func (r *Repo) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	rows, err := r.db.QueryContext(ctx, listUnitsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) SearchUnits(ctx context.Context, f domain.UnitFilter) ([]domain.Unit, int64, error) {
	where := []string{"1=1"}
	var args []any
	if f.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*f.Type))
	}
	if f.MinCost != nil {
		where = append(where, "cost_per_day >= ?")
		args = append(args, *f.MinCost)
	}
	if f.MaxCost != nil {
		where = append(where, "cost_per_day <= ?")
		args = append(args, *f.MaxCost)
	}
	if f.NumberOfRooms != nil {
		where = append(where, "number_of_rooms = ?")
		args = append(args, *f.NumberOfRooms)
	}
	if f.Floor != nil {
		where = append(where, "floor = ?")
		args = append(args, *f.Floor)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM units WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := f.Page, f.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	q := `
SELECT id, owner_id, title, description, type, cost_per_day, number_of_rooms, floor, created_at
FROM units WHERE ` + cond + ` ORDER BY cost_per_day, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, getUserSQL, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// CreateBooking runs the correctness-critical sequence: lock the unit row,
// re-check for overlapping active bookings, insert the booking and its
// payment. Everything commits or nothing does.
func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking, p domain.Payment) (domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, err
	}
	defer tx.Rollback()

	var unitID int64
	if err := tx.QueryRowContext(ctx, lockUnitSQL, b.UnitID).Scan(&unitID); err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	in, args := statusSet(domain.ActiveStatuses)
	var n int
	checkArgs := append([]any{b.UnitID, b.EndDate, b.StartDate}, args...)
	if err := tx.QueryRowContext(ctx, countOverlappingPrefix+in, checkArgs...).Scan(&n); err != nil {
		return domain.Booking{}, err
	}
	if n > 0 {
		return domain.Booking{}, domain.ErrConflict
	}

	res, err := tx.ExecContext(ctx, insertBookingSQL,
		b.UnitID, b.UserID, b.StartDate, b.EndDate, string(b.Status), b.CreatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Booking{}, err
	}
	b.ID = id
	p.BookingID = id

	if _, err := tx.ExecContext(ctx, insertPaymentSQL,
		p.BookingID, p.Amount, string(p.Status), nullTime(p.PaymentTime), p.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	if err := appendEvent(ctx, tx, "booking", b.ID, "created", map[string]any{
		"unit_id": b.UnitID, "user_id": b.UserID,
		"start": b.StartDate.Format("2006-01-02"), "end": b.EndDate.Format("2006-01-02"),
	}); err != nil {
		return domain.Booking{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
}

func (r *Repo) GetPayment(ctx context.Context, bookingID int64) (domain.Payment, error) {
	var (
		p  domain.Payment
		st string
		pt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, getPaymentSQL, bookingID).
		Scan(&p.BookingID, &p.Amount, &st, &pt, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Payment{}, err
	}
	p.Status = domain.PaymentStatus(st)
	if pt.Valid {
		t := pt.Time
		p.PaymentTime = &t
	}
	return p, nil
}

func (r *Repo) FindOverlapping(ctx context.Context, unitID int64, statuses []domain.BookingStatus, start, end time.Time) ([]domain.Booking, error) {
	in, args := statusSet(statuses)
	queryArgs := append([]any{unitID, end, start}, args...)
	rows, err := r.db.QueryContext(ctx, findOverlappingPrefix+in, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateBooking(ctx context.Context, b domain.Booking, expect domain.BookingStatus, p *domain.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, transitionBookingSQL, string(b.Status), b.ID, string(expect))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var n int
		if err := tx.QueryRowContext(ctx, bookingExistsSQL, b.ID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}

	if p != nil {
		if _, err := tx.ExecContext(ctx, updatePaymentSQL,
			string(p.Status), nullTime(p.PaymentTime), p.BookingID); err != nil {
			return err
		}
	}
	if err := appendEvent(ctx, tx, "booking", b.ID, strings.ToLower(string(b.Status)), map[string]any{
		"from": string(expect), "to": string(b.Status),
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// ---- helpers ----

type rowScanner interface{ Scan(dest ...any) error }

func scanUnit(row rowScanner) (domain.Unit, error) {
	var (
		u    domain.Unit
		typ  string
		desc sql.NullString
	)
	err := row.Scan(&u.ID, &u.OwnerID, &u.Title, &desc, &typ, &u.CostPerDay,
		&u.NumberOfRooms, &u.Floor, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Unit{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Unit{}, err
	}
	u.Type = domain.UnitType(typ)
	if desc.Valid {
		u.Description = desc.String
	}
	return u, nil
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var (
		b  domain.Booking
		st string
	)
	err := row.Scan(&b.ID, &b.UnitID, &b.UserID, &b.StartDate, &b.EndDate, &st, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(st)
	return b, nil
}

func statusSet(statuses []domain.BookingStatus) (string, []any) {
	ph := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		ph[i] = "?"
		args[i] = string(s)
	}
	return "(" + strings.Join(ph, ",") + ")", args
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func appendEvent(ctx context.Context, tx *sql.Tx, entityType string, entityID int64, eventType string, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, insertEventSQL, entityType, entityID, eventType, string(raw))
	return err
}

var _ domain.LedgerStore = (*Repo)(nil)
