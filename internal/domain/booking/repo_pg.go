package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonhub/salonhub/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingCols = `id, vendor_id, service_id, staff_id, customer_id, start_time, end_time,
	duration_min, price_cents, discount_cents, coupon_code, status, notes, cancelled_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.VendorID, &b.ServiceID, &b.StaffID, &b.CustomerID,
		&b.StartTime, &b.EndTime, &b.DurationMin, &b.PriceCents, &b.DiscountCents,
		&b.CouponCode, &b.Status, &b.Notes, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking (id, vendor_id, service_id, staff_id, customer_id, start_time, end_time,
			duration_min, price_cents, discount_cents, coupon_code, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		b.ID, b.VendorID, b.ServiceID, b.StaffID, b.CustomerID, b.StartTime, b.EndTime,
		b.DurationMin, b.PriceCents, b.DiscountCents, b.CouponCode, b.Status, b.Notes)
	if err != nil {
		// The exclusion constraint on (staff_id, time range) closes the race
		// between two writers that both saw the slot free: 23P01 is the
		// exclusion violation, 23505 covers any unique constraint.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505") {
			return NewConflictError("slot is no longer available")
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := scanBooking(r.conn(ctx).QueryRow(ctx, `SELECT `+bookingCols+` FROM booking WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NewNotFoundError("booking %s not found", id)
	}
	return b, err
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	sql := `UPDATE booking SET status=$2, updated_at=NOW() WHERE id = $1`
	if status == StatusCancelled {
		sql = `UPDATE booking SET status=$2, cancelled_at=NOW(), updated_at=NOW() WHERE id = $1`
	}
	tag, err := r.conn(ctx).Exec(ctx, sql, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NewNotFoundError("booking %s not found", id)
	}
	return nil
}

func (r *repoPG) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking WHERE customer_id = $1`, customerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx,
		`SELECT `+bookingCols+` FROM booking WHERE customer_id = $1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	return items, total, err
}

func (r *repoPG) ListByVendor(ctx context.Context, vendorID uuid.UUID, date *time.Time, limit, offset int) ([]*Booking, int, error) {
	where := `WHERE vendor_id = $1`
	args := []interface{}{vendorID}
	if date != nil {
		where += ` AND start_time >= $2 AND start_time < $3`
		args = append(args, *date, date.Add(24*time.Hour))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+bookingCols+` FROM booking `+where+
		` ORDER BY start_time ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	items, err := r.list(ctx, query, args...)
	return items, total, err
}

func (r *repoPG) ListHolding(ctx context.Context, staffIDs []uuid.UUID, from, to time.Time) ([]*Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE staff_id = ANY($1) AND status IN ('pending','confirmed')
		  AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC`,
		staffIDs, from, to)
}

func (r *repoPG) LockHolding(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE staff_id = $1 AND status IN ('pending','confirmed')
		  AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
		FOR UPDATE`,
		staffID, from, to)
}

func (r *repoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
