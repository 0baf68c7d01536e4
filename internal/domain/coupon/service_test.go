package coupon

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/salonhub/salonhub/internal/domain/booking"
)

type mockCouponRepo struct {
	coupons     map[uuid.UUID]*Coupon
	redemptions []Redemption
}

func newMockCouponRepo() *mockCouponRepo {
	return &mockCouponRepo{coupons: make(map[uuid.UUID]*Coupon)}
}

func (m *mockCouponRepo) Create(_ context.Context, c *Coupon) error {
	c.ID = uuid.New()
	c.Code = NormalizeCode(c.Code)
	m.coupons[c.ID] = c
	return nil
}

func (m *mockCouponRepo) GetByID(_ context.Context, id uuid.UUID) (*Coupon, error) {
	c, ok := m.coupons[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockCouponRepo) GetByCode(_ context.Context, vendorID uuid.UUID, code string) (*Coupon, error) {
	for _, c := range m.coupons {
		if c.VendorID == vendorID && c.Code == NormalizeCode(code) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockCouponRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	c, ok := m.coupons[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	c.Active = active
	return nil
}

func (m *mockCouponRepo) ListByVendor(_ context.Context, vendorID uuid.UUID, _, _ int) ([]*Coupon, int, error) {
	var out []*Coupon
	for _, c := range m.coupons {
		if c.VendorID == vendorID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *mockCouponRepo) CountRedemptions(_ context.Context, couponID uuid.UUID, customerID string) (int, error) {
	n := 0
	for _, r := range m.redemptions {
		if r.CouponID == couponID && r.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *mockCouponRepo) Redeem(_ context.Context, couponID uuid.UUID, customerID string, bookingID uuid.UUID) error {
	c, ok := m.coupons[couponID]
	if !ok {
		return fmt.Errorf("not found")
	}
	if !c.Active || (c.MaxRedemptions > 0 && c.Redeemed >= c.MaxRedemptions) {
		return fmt.Errorf("coupon is no longer redeemable")
	}
	c.Redeemed++
	m.redemptions = append(m.redemptions, Redemption{CouponID: couponID, CustomerID: customerID, BookingID: bookingID})
	return nil
}

func newTestService(repo *mockCouponRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDiscountFor(t *testing.T) {
	percent := &Coupon{Type: TypePercent, Value: 20}
	if got := percent.DiscountFor(5000); got != 1000 {
		t.Errorf("20%% of 5000 = %d, want 1000", got)
	}
	fixed := &Coupon{Type: TypeFixed, Value: 700}
	if got := fixed.DiscountFor(5000); got != 700 {
		t.Errorf("fixed 700 = %d", got)
	}
	// Discount never exceeds the amount.
	if got := fixed.DiscountFor(500); got != 500 {
		t.Errorf("capped discount = %d, want 500", got)
	}
}

func TestQuoteRules(t *testing.T) {
	repo := newMockCouponRepo()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	vendorID := uuid.New()
	ctx := context.Background()

	until := now.Add(30 * 24 * time.Hour)
	base := &Coupon{
		VendorID:         vendorID,
		Code:             "summer20",
		Type:             TypePercent,
		Value:            20,
		MinAmountCents:   2000,
		MaxRedemptions:   2,
		PerCustomerLimit: 1,
		ValidFrom:        now.Add(-time.Hour),
		ValidUntil:       &until,
	}
	if err := svc.Create(ctx, base); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Happy path, case-insensitive code.
	discount, err := svc.Quote(ctx, "SUMMER20", vendorID, "cust-1", 5000)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if discount != 1000 {
		t.Errorf("discount = %d, want 1000", discount)
	}

	if _, err := svc.Quote(ctx, "NOPE", vendorID, "cust-1", 5000); booking.KindOf(err) != booking.KindValidation {
		t.Errorf("unknown code: err = %v, want validation", err)
	}
	if _, err := svc.Quote(ctx, "summer20", vendorID, "cust-1", 1000); booking.KindOf(err) != booking.KindValidation {
		t.Errorf("below minimum: err = %v, want validation", err)
	}

	// Per-customer limit.
	if err := svc.Redeem(ctx, "summer20", vendorID, "cust-1", uuid.New()); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if _, err := svc.Quote(ctx, "summer20", vendorID, "cust-1", 5000); booking.KindOf(err) != booking.KindValidation {
		t.Errorf("per-customer limit: err = %v, want validation", err)
	}
	// Another customer can still use it.
	if _, err := svc.Quote(ctx, "summer20", vendorID, "cust-2", 5000); err != nil {
		t.Errorf("second customer should still quote: %v", err)
	}

	// Global cap.
	if err := svc.Redeem(ctx, "summer20", vendorID, "cust-2", uuid.New()); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if _, err := svc.Quote(ctx, "summer20", vendorID, "cust-3", 5000); booking.KindOf(err) != booking.KindValidation {
		t.Errorf("fully redeemed: err = %v, want validation", err)
	}
	if err := svc.Redeem(ctx, "summer20", vendorID, "cust-3", uuid.New()); booking.KindOf(err) != booking.KindConflict {
		t.Errorf("redeem past cap: err = %v, want conflict", err)
	}
}

func TestQuoteValidityWindow(t *testing.T) {
	repo := newMockCouponRepo()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	vendorID := uuid.New()
	ctx := context.Background()

	until := now.Add(-time.Hour)
	expired := &Coupon{
		VendorID: vendorID, Code: "OLD", Type: TypeFixed, Value: 500,
		ValidFrom: now.Add(-48 * time.Hour), ValidUntil: &until,
	}
	expired.Active = true
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Quote(ctx, "OLD", vendorID, "cust", 5000); booking.KindOf(err) != booking.KindValidation {
		t.Errorf("expired coupon: err = %v, want validation", err)
	}

	future := &Coupon{
		VendorID: vendorID, Code: "SOON", Type: TypeFixed, Value: 500,
		ValidFrom: now.Add(time.Hour), Active: true,
	}
	if err := repo.Create(ctx, future); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Quote(ctx, "SOON", vendorID, "cust", 5000); booking.KindOf(err) != booking.KindValidation {
		t.Errorf("not-yet-valid coupon: err = %v, want validation", err)
	}
}

func TestCouponValidate(t *testing.T) {
	vendorID := uuid.New()
	bad := []*Coupon{
		{Code: "X", Type: TypePercent, Value: 10},                      // missing vendor
		{VendorID: vendorID, Type: TypePercent, Value: 10},             // missing code
		{VendorID: vendorID, Code: "X", Type: TypePercent, Value: 0},   // percent out of range
		{VendorID: vendorID, Code: "X", Type: TypePercent, Value: 101}, // percent out of range
		{VendorID: vendorID, Code: "X", Type: TypeFixed, Value: 0},     // non-positive fixed
		{VendorID: vendorID, Code: "X", Type: "bogo", Value: 10},       // unknown type
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	good := &Coupon{VendorID: vendorID, Code: "ok10", Type: TypePercent, Value: 10}
	if err := good.Validate(); err != nil {
		t.Errorf("valid coupon rejected: %v", err)
	}
}
