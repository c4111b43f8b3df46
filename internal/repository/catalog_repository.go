package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiloutout/service-booking/internal/domain/catalog"
	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// ServiceModel is the GORM model for the services table. The option
// collections are stored as JSONB documents; they are always read and
// written together with the service.
type ServiceModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Slug           string          `gorm:"uniqueIndex;not null;size:100"`
	Name           string          `gorm:"not null;size:200"`
	Description    string          `gorm:"size:2000"`
	Icon           string          `gorm:"size:100"`
	BasePriceCents int64           `gorm:"not null"`
	Unit           string          `gorm:"not null;size:20"`
	MinDuration    float64         `gorm:"not null"`
	MaxDuration    *float64        `gorm:""`
	Active         bool            `gorm:"not null;default:true;index"`
	PriceOptions   json.RawMessage `gorm:"type:jsonb"`
	ServiceOptions json.RawMessage `gorm:"type:jsonb"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// GormServiceRepository is the GORM-based implementation of
// ServiceRepository.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository.
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID retrieves a service by its unique identifier.
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return toDomainService(&model)
}

// FindBySlug retrieves a service by its URL slug.
func (r *GormServiceRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Service", slug)
		}
		return nil, fmt.Errorf("failed to find service by slug: %w", err)
	}
	return toDomainService(&model)
}

// ListActive retrieves the active catalog ordered by name.
func (r *GormServiceRepository) ListActive(ctx context.Context) ([]*catalog.Service, error) {
	var models []ServiceModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active services: %w", err)
	}
	return toDomainServices(models)
}

// ListAll retrieves the full catalog including inactive services.
func (r *GormServiceRepository) ListAll(ctx context.Context) ([]*catalog.Service, error) {
	var models []ServiceModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return toDomainServices(models)
}

// Save persists a new service.
func (r *GormServiceRepository) Save(ctx context.Context, svc *catalog.Service) error {
	model, err := toServiceModel(svc)
	if err != nil {
		return fmt.Errorf("failed to convert service to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

// Update persists changes to an existing service with optimistic locking.
func (r *GormServiceRepository) Update(ctx context.Context, svc *catalog.Service) error {
	model, err := toServiceModel(svc)
	if err != nil {
		return fmt.Errorf("failed to convert service to model: %w", err)
	}

	expectedVersion := svc.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"description":      model.Description,
			"icon":             model.Icon,
			"base_price_cents": model.BasePriceCents,
			"unit":             model.Unit,
			"min_duration":     model.MinDuration,
			"max_duration":     model.MaxDuration,
			"active":           model.Active,
			"price_options":    model.PriceOptions,
			"service_options":  model.ServiceOptions,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update service: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return shared.NewConflictError("service was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toServiceModel(svc *catalog.Service) (*ServiceModel, error) {
	priceOptionsJSON, err := json.Marshal(svc.PriceOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price options: %w", err)
	}
	serviceOptionsJSON, err := json.Marshal(svc.ServiceOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service options: %w", err)
	}

	return &ServiceModel{
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
		PriceOptions:   priceOptionsJSON,
		ServiceOptions: serviceOptionsJSON,
		Version:        svc.Version(),
		CreatedAt:      svc.CreatedAt(),
		UpdatedAt:      svc.UpdatedAt(),
	}, nil
}

func toDomainService(m *ServiceModel) (*catalog.Service, error) {
	var priceOptions []catalog.PriceOption
	if len(m.PriceOptions) > 0 {
		if err := json.Unmarshal(m.PriceOptions, &priceOptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal price options: %w", err)
		}
	}
	var serviceOptions []catalog.ServiceOption
	if len(m.ServiceOptions) > 0 {
		if err := json.Unmarshal(m.ServiceOptions, &serviceOptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal service options: %w", err)
		}
	}

	return catalog.Reconstruct(
		m.ID,
		m.Slug,
		m.Name,
		m.Description,
		m.Icon,
		m.BasePriceCents,
		m.Unit,
		m.MinDuration,
		m.MaxDuration,
		m.Active,
		priceOptions,
		serviceOptions,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainServices(models []ServiceModel) ([]*catalog.Service, error) {
	services := make([]*catalog.Service, len(models))
	for i := range models {
		svc, err := toDomainService(&models[i])
		if err != nil {
			return nil, err
		}
		services[i] = svc
	}
	return services, nil
}
