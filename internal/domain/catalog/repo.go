package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides persistence for the service catalog.
type Repository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Update(ctx context.Context, s *Service) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, activeOnly bool, limit, offset int) ([]*Service, int, error)
}
