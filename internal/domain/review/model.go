package review

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review maps to the review table. One review per completed booking.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BookingID  uuid.UUID `db:"booking_id" json:"booking_id"`
	VendorID   uuid.UUID `db:"vendor_id" json:"vendor_id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (r *Review) Validate() error {
	if r.BookingID == uuid.Nil {
		return fmt.Errorf("booking_id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
