package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/salonhub/salonhub/internal/domain/booking"
)

// BookingLookup is the read-side view of bookings this package needs.
type BookingLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

type Service struct {
	reviews  Repository
	bookings BookingLookup
	runTx    booking.TxRunner
}

func NewService(reviews Repository, bookings BookingLookup, runTx booking.TxRunner) *Service {
	return &Service{reviews: reviews, bookings: bookings, runTx: runTx}
}

// Create files a review for a completed booking owned by the customer and
// refreshes the vendor's rating aggregate in the same transaction.
func (s *Service) Create(ctx context.Context, customerID string, rv *Review) error {
	if err := rv.Validate(); err != nil {
		return booking.NewValidationError("%v", err)
	}
	b, err := s.bookings.Get(ctx, rv.BookingID)
	if err != nil {
		return err
	}
	if b.CustomerID != customerID {
		return booking.NewValidationError("booking does not belong to you")
	}
	if b.Status != booking.StatusCompleted {
		return booking.NewValidationError("only completed bookings can be reviewed")
	}
	rv.VendorID = b.VendorID
	rv.CustomerID = customerID

	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.reviews.Create(ctx, rv); err != nil {
			return err
		}
		return s.reviews.RecomputeVendorRating(ctx, rv.VendorID)
	})
}

func (s *Service) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	return s.reviews.ListByVendor(ctx, vendorID, limit, offset)
}
