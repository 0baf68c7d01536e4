package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses. Pending and confirmed bookings hold their slot; completed
// and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// transitions is the booking lifecycle: who may move a booking where is
// enforced in the service layer, this is only the shape of the graph.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a status change is legal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// HoldsSlot reports whether a booking in this status still blocks its time
// window for other customers.
func HoldsSlot(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// Booking maps to the booking table. Times are stored UTC; the duration and
// price are copied from the service at creation so later catalog edits do not
// rewrite history.
type Booking struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	VendorID      uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	ServiceID     uuid.UUID  `db:"service_id" json:"service_id"`
	StaffID       uuid.UUID  `db:"staff_id" json:"staff_id"`
	CustomerID    string     `db:"customer_id" json:"customer_id"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       time.Time  `db:"end_time" json:"end_time"`
	DurationMin   int        `db:"duration_min" json:"duration_min"`
	PriceCents    int64      `db:"price_cents" json:"price_cents"`
	DiscountCents int64      `db:"discount_cents" json:"discount_cents"`
	CouponCode    *string    `db:"coupon_code" json:"coupon_code,omitempty"`
	Status        string     `db:"status" json:"status"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CancelledAt   *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// TotalCents is the amount due after any coupon discount.
func (b *Booking) TotalCents() int64 {
	total := b.PriceCents - b.DiscountCents
	if total < 0 {
		return 0
	}
	return total
}
