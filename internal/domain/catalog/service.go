package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type CatalogService struct {
	services Repository
}

func NewCatalogService(services Repository) *CatalogService {
	return &CatalogService{services: services}
}

func (s *CatalogService) Create(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	svc.Active = true
	return s.services.Create(ctx, svc)
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*Service, error) {
	return s.services.GetByID(ctx, id)
}

// GetService is the directory lookup used by the booking writer. Inactive
// services are not bookable.
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, fmt.Errorf("service %s is not active", id)
	}
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	return s.services.Update(ctx, svc)
}

func (s *CatalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.services.SetActive(ctx, id, false)
}

func (s *CatalogService) ListByVendor(ctx context.Context, vendorID uuid.UUID, activeOnly bool, limit, offset int) ([]*Service, int, error) {
	return s.services.ListByVendor(ctx, vendorID, activeOnly, limit, offset)
}
