package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MinDurationMin is the shortest bookable service. Durations shorter than the
// slot grid would make adjacent slots indistinguishable.
const MinDurationMin = 15

// Service maps to the service table. A service belongs to exactly one vendor.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VendorID    uuid.UUID `db:"vendor_id" json:"vendor_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Service) Validate() error {
	if s.VendorID == uuid.Nil {
		return fmt.Errorf("vendor_id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.DurationMin < MinDurationMin {
		return fmt.Errorf("duration_min must be at least %d minutes", MinDurationMin)
	}
	if s.PriceCents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	return nil
}
