package review

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides persistence for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Review, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Review, int, error)
	// RecomputeVendorRating refreshes the vendor's cached rating aggregate
	// from the review rows. Runs inside the caller's transaction.
	RecomputeVendorRating(ctx context.Context, vendorID uuid.UUID) error
}
