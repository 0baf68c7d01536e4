package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Discount types.
const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

// Coupon maps to the coupon table. Codes are unique per vendor and stored
// upper-case.
type Coupon struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	VendorID         uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	Code             string     `db:"code" json:"code"`
	Type             string     `db:"type" json:"type"`
	Value            int64      `db:"value" json:"value"` // percent (1..100) or cents
	MinAmountCents   int64      `db:"min_amount_cents" json:"min_amount_cents"`
	MaxRedemptions   int        `db:"max_redemptions" json:"max_redemptions"` // 0 = unlimited
	PerCustomerLimit int        `db:"per_customer_limit" json:"per_customer_limit"`
	Redeemed         int        `db:"redeemed" json:"redeemed"`
	ValidFrom        time.Time  `db:"valid_from" json:"valid_from"`
	ValidUntil       *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	Active           bool       `db:"active" json:"active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// NormalizeCode canonicalizes a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *Coupon) Validate() error {
	if c.VendorID == uuid.Nil {
		return fmt.Errorf("vendor_id is required")
	}
	if NormalizeCode(c.Code) == "" {
		return fmt.Errorf("code is required")
	}
	switch c.Type {
	case TypePercent:
		if c.Value < 1 || c.Value > 100 {
			return fmt.Errorf("percent value must be between 1 and 100")
		}
	case TypeFixed:
		if c.Value <= 0 {
			return fmt.Errorf("fixed value must be positive")
		}
	default:
		return fmt.Errorf("type must be %q or %q", TypePercent, TypeFixed)
	}
	if c.MinAmountCents < 0 {
		return fmt.Errorf("min_amount_cents must not be negative")
	}
	if c.ValidUntil != nil && !c.ValidUntil.After(c.ValidFrom) {
		return fmt.Errorf("valid_until must be after valid_from")
	}
	return nil
}

// DiscountFor computes the discount in cents for a given amount. The discount
// never exceeds the amount itself.
func (c *Coupon) DiscountFor(amountCents int64) int64 {
	var d int64
	switch c.Type {
	case TypePercent:
		d = amountCents * c.Value / 100
	case TypeFixed:
		d = c.Value
	}
	if d > amountCents {
		d = amountCents
	}
	return d
}

// Redemption records one customer burning a coupon on a booking.
type Redemption struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CouponID   uuid.UUID `db:"coupon_id" json:"coupon_id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	BookingID  uuid.UUID `db:"booking_id" json:"booking_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
