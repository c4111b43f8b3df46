package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// ModifierType distinguishes how a price option alters the base amount.
type ModifierType string

const (
	ModifierMultiplier ModifierType = "MULTIPLIER"
	ModifierFixed      ModifierType = "FIXED"
)

// IsValid returns true if the modifier type is recognized.
func (m ModifierType) IsValid() bool {
	return m == ModifierMultiplier || m == ModifierFixed
}

// PriceOption is a selectable per-service price modifier. At most one may
// be applied to a booking. For MULTIPLIER the modifier is a scale factor
// applied to the base subtotal; for FIXED it is an additive amount in
// currency units.
type PriceOption struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Modifier     float64      `json:"modifier"`
	ModifierType ModifierType `json:"modifier_type"`
}

// ServiceOption is a selectable flat-fee add-on. Any number may be applied
// to a booking.
type ServiceOption struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
}

// Service is the aggregate root for a bookable offering.
type Service struct {
	id             uuid.UUID
	slug           string
	name           string
	description    string
	icon           string
	basePriceCents int64
	unit           string
	minDuration    float64
	maxDuration    *float64
	active         bool
	priceOptions   []PriceOption
	serviceOptions []ServiceOption
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewService creates a new active service with validated fields.
func NewService(
	slug, name, description, icon string,
	basePriceCents int64,
	unit string,
	minDuration float64,
	maxDuration *float64,
	priceOptions []PriceOption,
	serviceOptions []ServiceOption,
) (*Service, error) {
	if slug == "" {
		return nil, shared.NewValidationError("service slug is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("service name is required")
	}
	if basePriceCents <= 0 {
		return nil, shared.NewValidationError("base price must be positive")
	}
	if unit == "" {
		return nil, shared.NewValidationError("billing unit is required")
	}
	if minDuration <= 0 {
		return nil, shared.NewValidationError("minimum duration must be positive")
	}
	if maxDuration != nil && *maxDuration < minDuration {
		return nil, shared.NewValidationError("maximum duration must not be below minimum duration")
	}
	for _, po := range priceOptions {
		if !po.ModifierType.IsValid() {
			return nil, shared.NewValidationError("invalid price option modifier type: " + string(po.ModifierType))
		}
	}

	now := time.Now().UTC()
	return &Service{
		id:             uuid.New(),
		slug:           slug,
		name:           name,
		description:    description,
		icon:           icon,
		basePriceCents: basePriceCents,
		unit:           unit,
		minDuration:    minDuration,
		maxDuration:    maxDuration,
		active:         true,
		priceOptions:   priceOptions,
		serviceOptions: serviceOptions,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Service from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	slug, name, description, icon string,
	basePriceCents int64,
	unit string,
	minDuration float64,
	maxDuration *float64,
	active bool,
	priceOptions []PriceOption,
	serviceOptions []ServiceOption,
	version int64,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:             id,
		slug:           slug,
		name:           name,
		description:    description,
		icon:           icon,
		basePriceCents: basePriceCents,
		unit:           unit,
		minDuration:    minDuration,
		maxDuration:    maxDuration,
		active:         active,
		priceOptions:   priceOptions,
		serviceOptions: serviceOptions,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (s *Service) ID() uuid.UUID                   { return s.id }
func (s *Service) Slug() string                    { return s.slug }
func (s *Service) Name() string                    { return s.name }
func (s *Service) Description() string             { return s.description }
func (s *Service) Icon() string                    { return s.icon }
func (s *Service) BasePriceCents() int64           { return s.basePriceCents }
func (s *Service) Unit() string                    { return s.unit }
func (s *Service) MinDuration() float64            { return s.minDuration }
func (s *Service) MaxDuration() *float64           { return s.maxDuration }
func (s *Service) Active() bool                    { return s.active }
func (s *Service) PriceOptions() []PriceOption     { return s.priceOptions }
func (s *Service) ServiceOptions() []ServiceOption { return s.serviceOptions }
func (s *Service) Version() int64                  { return s.version }
func (s *Service) CreatedAt() time.Time            { return s.createdAt }
func (s *Service) UpdatedAt() time.Time            { return s.updatedAt }

// --- Behavior ---

// PriceOptionByID returns the price option with the given id, if it
// belongs to this service.
func (s *Service) PriceOptionByID(id uuid.UUID) (*PriceOption, bool) {
	for i := range s.priceOptions {
		if s.priceOptions[i].ID == id {
			return &s.priceOptions[i], true
		}
	}
	return nil, false
}

// ServiceOptionByID returns the service option with the given id, if it
// belongs to this service.
func (s *Service) ServiceOptionByID(id uuid.UUID) (*ServiceOption, bool) {
	for i := range s.serviceOptions {
		if s.serviceOptions[i].ID == id {
			return &s.serviceOptions[i], true
		}
	}
	return nil, false
}

// DurationInRange reports whether the requested duration falls within the
// service's booking bounds.
func (s *Service) DurationInRange(duration float64) bool {
	if duration < s.minDuration {
		return false
	}
	if s.maxDuration != nil && duration > *s.maxDuration {
		return false
	}
	return true
}

// Update applies partial updates to the service definition.
func (s *Service) Update(
	name, description, icon string,
	basePriceCents int64,
	unit string,
	minDuration float64,
	maxDuration *float64,
) error {
	if maxDuration != nil && minDuration > 0 && *maxDuration < minDuration {
		return shared.NewValidationError("maximum duration must not be below minimum duration")
	}
	if name != "" {
		s.name = name
	}
	if description != "" {
		s.description = description
	}
	if icon != "" {
		s.icon = icon
	}
	if basePriceCents > 0 {
		s.basePriceCents = basePriceCents
	}
	if unit != "" {
		s.unit = unit
	}
	if minDuration > 0 {
		s.minDuration = minDuration
	}
	if maxDuration != nil {
		s.maxDuration = maxDuration
	}
	s.version++
	s.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate hides the service from the public catalog. Existing bookings
// keep their snapshotted amounts.
func (s *Service) Deactivate() {
	s.active = false
	s.version++
	s.updatedAt = time.Now().UTC()
}

// ReplaceOptions swaps the full option collections (admin edit).
func (s *Service) ReplaceOptions(priceOptions []PriceOption, serviceOptions []ServiceOption) error {
	for _, po := range priceOptions {
		if !po.ModifierType.IsValid() {
			return shared.NewValidationError("invalid price option modifier type: " + string(po.ModifierType))
		}
	}
	s.priceOptions = priceOptions
	s.serviceOptions = serviceOptions
	s.version++
	s.updatedAt = time.Now().UTC()
	return nil
}
