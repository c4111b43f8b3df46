package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiloutout/service-booking/internal/domain/catalog"
)

// PriceOptionInput is the admin representation of a price modifier.
type PriceOptionInput struct {
	Name         string  `json:"name" binding:"required"`
	Modifier     float64 `json:"modifier" binding:"required"`
	ModifierType string  `json:"modifier_type" binding:"required"`
}

// ServiceOptionInput is the admin representation of a flat-fee add-on.
type ServiceOptionInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required"`
}

// CreateServiceRequest holds the data needed to create a catalog service.
type CreateServiceRequest struct {
	Slug           string               `json:"slug" binding:"required"`
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	Icon           string               `json:"icon"`
	BasePriceCents int64                `json:"base_price_cents" binding:"required"`
	Unit           string               `json:"unit" binding:"required"`
	MinDuration    float64              `json:"min_duration" binding:"required"`
	MaxDuration    *float64             `json:"max_duration"`
	PriceOptions   []PriceOptionInput   `json:"price_options"`
	ServiceOptions []ServiceOptionInput `json:"service_options"`
}

// UpdateServiceRequest is the admin patch for a catalog service.
// Zero-valued fields keep their current value; option lists replace the
// existing collections when present.
type UpdateServiceRequest struct {
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Icon           string               `json:"icon"`
	BasePriceCents int64                `json:"base_price_cents"`
	Unit           string               `json:"unit"`
	MinDuration    float64              `json:"min_duration"`
	MaxDuration    *float64             `json:"max_duration"`
	PriceOptions   []PriceOptionInput   `json:"price_options"`
	ServiceOptions []ServiceOptionInput `json:"service_options"`
}

// ServiceDTO is the response representation of a catalog service.
type ServiceDTO struct {
	ID             uuid.UUID               `json:"id"`
	Slug           string                  `json:"slug"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description,omitempty"`
	Icon           string                  `json:"icon,omitempty"`
	BasePriceCents int64                   `json:"base_price_cents"`
	Unit           string                  `json:"unit"`
	MinDuration    float64                 `json:"min_duration"`
	MaxDuration    *float64                `json:"max_duration,omitempty"`
	Active         bool                    `json:"active"`
	PriceOptions   []catalog.PriceOption   `json:"price_options,omitempty"`
	ServiceOptions []catalog.ServiceOption `json:"service_options,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// CatalogService is the application service for the bookable catalog.
type CatalogService struct {
	repo   catalog.ServiceRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo catalog.ServiceRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListServices returns the active catalog, as shown to clients.
func (s *CatalogService) ListServices(ctx context.Context) ([]ServiceDTO, error) {
	services, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return toServiceDTOs(services), nil
}

// ListAllServices returns the full catalog including inactive services
// (admin).
func (s *CatalogService) ListAllServices(ctx context.Context) ([]ServiceDTO, error) {
	services, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return toServiceDTOs(services), nil
}

// GetServiceBySlug retrieves a single service by its URL slug.
func (s *CatalogService) GetServiceBySlug(ctx context.Context, slug string) (*ServiceDTO, error) {
	svc, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	result := toServiceDTO(svc)
	return &result, nil
}

// CreateService adds a new service to the catalog (admin).
func (s *CatalogService) CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceDTO, error) {
	svc, err := catalog.NewService(
		req.Slug,
		req.Name,
		req.Description,
		req.Icon,
		req.BasePriceCents,
		req.Unit,
		req.MinDuration,
		req.MaxDuration,
		buildPriceOptions(req.PriceOptions),
		buildServiceOptions(req.ServiceOptions),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to save service: %w", err)
	}

	s.logger.Info("service created",
		zap.String("slug", svc.Slug()),
		zap.String("service_id", svc.ID().String()),
	)

	result := toServiceDTO(svc)
	return &result, nil
}

// UpdateService patches an existing service (admin).
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*ServiceDTO, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := svc.Update(req.Name, req.Description, req.Icon, req.BasePriceCents, req.Unit, req.MinDuration, req.MaxDuration); err != nil {
		return nil, err
	}
	if req.PriceOptions != nil || req.ServiceOptions != nil {
		priceOptions := svc.PriceOptions()
		serviceOptions := svc.ServiceOptions()
		if req.PriceOptions != nil {
			priceOptions = buildPriceOptions(req.PriceOptions)
		}
		if req.ServiceOptions != nil {
			serviceOptions = buildServiceOptions(req.ServiceOptions)
		}
		if err := svc.ReplaceOptions(priceOptions, serviceOptions); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, err
	}

	result := toServiceDTO(svc)
	return &result, nil
}

// DeactivateService hides a service from the public catalog (admin).
func (s *CatalogService) DeactivateService(ctx context.Context, id uuid.UUID) error {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	svc.Deactivate()
	if err := s.repo.Update(ctx, svc); err != nil {
		return err
	}

	s.logger.Info("service deactivated", zap.String("slug", svc.Slug()))
	return nil
}

// --- Helpers ---

func buildPriceOptions(inputs []PriceOptionInput) []catalog.PriceOption {
	options := make([]catalog.PriceOption, len(inputs))
	for i, in := range inputs {
		options[i] = catalog.PriceOption{
			ID:           uuid.New(),
			Name:         in.Name,
			Modifier:     in.Modifier,
			ModifierType: catalog.ModifierType(in.ModifierType),
		}
	}
	return options
}

func buildServiceOptions(inputs []ServiceOptionInput) []catalog.ServiceOption {
	options := make([]catalog.ServiceOption, len(inputs))
	for i, in := range inputs {
		options[i] = catalog.ServiceOption{
			ID:          uuid.New(),
			Name:        in.Name,
			Description: in.Description,
			PriceCents:  in.PriceCents,
		}
	}
	return options
}

func toServiceDTO(svc *catalog.Service) ServiceDTO {
	return ServiceDTO{
		ID:             svc.ID(),
		Slug:           svc.Slug(),
		Name:           svc.Name(),
		Description:    svc.Description(),
		Icon:           svc.Icon(),
		BasePriceCents: svc.BasePriceCents(),
		Unit:           svc.Unit(),
		MinDuration:    svc.MinDuration(),
		MaxDuration:    svc.MaxDuration(),
		Active:         svc.Active(),
		PriceOptions:   svc.PriceOptions(),
		ServiceOptions: svc.ServiceOptions(),
		CreatedAt:      svc.CreatedAt(),
		UpdatedAt:      svc.UpdatedAt(),
	}
}

func toServiceDTOs(services []*catalog.Service) []ServiceDTO {
	dtos := make([]ServiceDTO, len(services))
	for i, svc := range services {
		dtos[i] = toServiceDTO(svc)
	}
	return dtos
}
