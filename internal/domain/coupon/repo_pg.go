package coupon

import (
	"context"
	"fmt"

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

const couponCols = `id, vendor_id, code, type, value, min_amount_cents, max_redemptions,
	per_customer_limit, redeemed, valid_from, valid_until, active, created_at, updated_at`

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var c Coupon
	err := row.Scan(&c.ID, &c.VendorID, &c.Code, &c.Type, &c.Value, &c.MinAmountCents,
		&c.MaxRedemptions, &c.PerCustomerLimit, &c.Redeemed, &c.ValidFrom, &c.ValidUntil,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Coupon) error {
	c.ID = uuid.New()
	c.Code = NormalizeCode(c.Code)
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO coupon (id, vendor_id, code, type, value, min_amount_cents, max_redemptions,
			per_customer_limit, valid_from, valid_until, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.VendorID, c.Code, c.Type, c.Value, c.MinAmountCents, c.MaxRedemptions,
		c.PerCustomerLimit, c.ValidFrom, c.ValidUntil, c.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return scanCoupon(r.conn(ctx).QueryRow(ctx, `SELECT `+couponCols+` FROM coupon WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, vendorID uuid.UUID, code string) (*Coupon, error) {
	return scanCoupon(r.conn(ctx).QueryRow(ctx,
		`SELECT `+couponCols+` FROM coupon WHERE vendor_id = $1 AND code = $2`,
		vendorID, NormalizeCode(code)))
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE coupon SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Coupon, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM coupon WHERE vendor_id = $1`, vendorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+couponCols+` FROM coupon WHERE vendor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		vendorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountRedemptions(ctx context.Context, couponID uuid.UUID, customerID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemption WHERE coupon_id = $1 AND customer_id = $2`,
		couponID, customerID).Scan(&n)
	return n, err
}

func (r *repoPG) Redeem(ctx context.Context, couponID uuid.UUID, customerID string, bookingID uuid.UUID) error {
	// Guarded increment: the WHERE clause re-checks the cap so two concurrent
	// redemptions cannot overshoot it.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE coupon SET redeemed = redeemed + 1, updated_at = NOW()
		WHERE id = $1 AND active AND (max_redemptions = 0 OR redeemed < max_redemptions)`,
		couponID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("coupon is no longer redeemable")
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO coupon_redemption (id, coupon_id, customer_id, booking_id)
		VALUES ($1,$2,$3,$4)`,
		uuid.New(), couponID, customerID, bookingID)
	return err
}
