package staff

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides persistence for staff members.
type Repository interface {
	Create(ctx context.Context, st *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	Update(ctx context.Context, st *Staff) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// ListByVendor returns active staff ordered by id ascending so that
	// callers resolving ties pick a deterministic member.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*Staff, error)
}
