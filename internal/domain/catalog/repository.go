package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines persistence operations for the service catalog.
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	FindBySlug(ctx context.Context, slug string) (*Service, error)
	ListActive(ctx context.Context) ([]*Service, error)
	ListAll(ctx context.Context) ([]*Service, error)
	Save(ctx context.Context, service *Service) error
	Update(ctx context.Context, service *Service) error
}
