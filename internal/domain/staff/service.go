package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	staff Repository
}

func NewService(staff Repository) *Service {
	return &Service{staff: staff}
}

func (s *Service) Create(ctx context.Context, st *Staff) error {
	if st.VendorID == uuid.Nil {
		return fmt.Errorf("vendor_id is required")
	}
	if st.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := ValidateSchedule(st.Schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	st.Active = true
	return s.staff.Create(ctx, st)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, st *Staff) error {
	if err := ValidateSchedule(st.Schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	return s.staff.Update(ctx, st)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.staff.SetActive(ctx, id, false)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*Staff, error) {
	return s.staff.ListByVendor(ctx, vendorID)
}

// ListEligible returns the vendor's active staff who can perform the service,
// ordered by id ascending. With serviceID == uuid.Nil every active member
// qualifies.
func (s *Service) ListEligible(ctx context.Context, vendorID, serviceID uuid.UUID) ([]*Staff, error) {
	all, err := s.staff.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if serviceID == uuid.Nil {
		return all, nil
	}
	eligible := make([]*Staff, 0, len(all))
	for _, st := range all {
		if st.CanPerform(serviceID) {
			eligible = append(eligible, st)
		}
	}
	return eligible, nil
}
