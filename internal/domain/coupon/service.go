package coupon

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhub/salonhub/internal/domain/booking"
)

// Service implements coupon management and satisfies booking.CouponRedeemer.
type Service struct {
	coupons Repository
	now     func() time.Time
}

func NewService(coupons Repository) *Service {
	return &Service{coupons: coupons, now: time.Now}
}

func (s *Service) Create(ctx context.Context, c *Coupon) error {
	if err := c.Validate(); err != nil {
		return booking.NewValidationError("%v", err)
	}
	if c.ValidFrom.IsZero() {
		c.ValidFrom = s.now()
	}
	c.Active = true
	return s.coupons.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.coupons.SetActive(ctx, id, false)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Coupon, int, error) {
	return s.coupons.ListByVendor(ctx, vendorID, limit, offset)
}

// Quote validates a code against every redemption rule and returns the
// discount in cents. It changes nothing; Redeem burns the code.
func (s *Service) Quote(ctx context.Context, code string, vendorID uuid.UUID, customerID string, amountCents int64) (int64, error) {
	c, err := s.lookup(ctx, code, vendorID, customerID, amountCents)
	if err != nil {
		return 0, err
	}
	return c.DiscountFor(amountCents), nil
}

// Redeem records the redemption. Callers run it in the same transaction as
// the booking insert so a failed booking never burns the code.
func (s *Service) Redeem(ctx context.Context, code string, vendorID uuid.UUID, customerID string, bookingID uuid.UUID) error {
	c, err := s.coupons.GetByCode(ctx, vendorID, code)
	if err != nil {
		return booking.NewValidationError("invalid coupon code")
	}
	if err := s.coupons.Redeem(ctx, c.ID, customerID, bookingID); err != nil {
		return booking.NewConflictError("coupon %s is no longer redeemable", NormalizeCode(code))
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, code string, vendorID uuid.UUID, customerID string, amountCents int64) (*Coupon, error) {
	c, err := s.coupons.GetByCode(ctx, vendorID, code)
	if err != nil {
		return nil, booking.NewValidationError("invalid coupon code")
	}
	now := s.now()
	switch {
	case !c.Active:
		return nil, booking.NewValidationError("coupon %s is not active", c.Code)
	case now.Before(c.ValidFrom):
		return nil, booking.NewValidationError("coupon %s is not yet valid", c.Code)
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return nil, booking.NewValidationError("coupon %s has expired", c.Code)
	case amountCents < c.MinAmountCents:
		return nil, booking.NewValidationError("order does not meet the coupon minimum")
	case c.MaxRedemptions > 0 && c.Redeemed >= c.MaxRedemptions:
		return nil, booking.NewValidationError("coupon %s is fully redeemed", c.Code)
	}
	if c.PerCustomerLimit > 0 {
		n, err := s.coupons.CountRedemptions(ctx, c.ID, customerID)
		if err != nil {
			return nil, err
		}
		if n >= c.PerCustomerLimit {
			return nil, booking.NewValidationError("coupon %s already used", c.Code)
		}
	}
	return c, nil
}
