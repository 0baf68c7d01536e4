package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository provides persistence for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*Booking, int, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, date *time.Time, limit, offset int) ([]*Booking, int, error)
	// ListHolding returns slot-holding bookings for the staff members in the
	// half-open window [from, to).
	ListHolding(ctx context.Context, staffIDs []uuid.UUID, from, to time.Time) ([]*Booking, error)
	// LockHolding is ListHolding for a single staff member with the rows
	// locked FOR UPDATE. Must run inside a transaction.
	LockHolding(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*Booking, error)
}
