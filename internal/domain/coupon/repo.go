package coupon

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides persistence for coupons and their redemptions.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetByCode(ctx context.Context, vendorID uuid.UUID, code string) (*Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Coupon, int, error)
	CountRedemptions(ctx context.Context, couponID uuid.UUID, customerID string) (int, error)
	// Redeem records a redemption and bumps the counter, failing when the
	// redemption cap is already reached. Runs inside the caller's transaction.
	Redeem(ctx context.Context, couponID uuid.UUID, customerID string, bookingID uuid.UUID) error
}
