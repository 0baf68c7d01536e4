package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonhub/salonhub/internal/domain/booking"
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

const reviewCols = `id, booking_id, vendor_id, customer_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.BookingID, &rv.VendorID, &rv.CustomerID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repoPG) Create(ctx context.Context, rv *Review) error {
	rv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO review (id, booking_id, vendor_id, customer_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rv.ID, rv.BookingID, rv.VendorID, rv.CustomerID, rv.Rating, rv.Comment)
	if err != nil {
		// Unique index on booking_id: one review per booking.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return booking.NewConflictError("booking already has a review")
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Review, error) {
	return scanReview(r.conn(ctx).QueryRow(ctx, `SELECT `+reviewCols+` FROM review WHERE booking_id = $1`, bookingID))
}

func (r *repoPG) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM review WHERE vendor_id = $1`, vendorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reviewCols+` FROM review WHERE vendor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		vendorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rv)
	}
	return items, total, rows.Err()
}

func (r *repoPG) RecomputeVendorRating(ctx context.Context, vendorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE vendor SET
			rating_avg = COALESCE((SELECT AVG(rating) FROM review WHERE vendor_id = $1), 0),
			rating_count = (SELECT COUNT(*) FROM review WHERE vendor_id = $1),
			updated_at = NOW()
		WHERE id = $1`, vendorID)
	return err
}
