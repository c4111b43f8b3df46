package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/kiloutout/service-booking/internal/domain/booking"
	"github.com/kiloutout/service-booking/internal/domain/shared"
	"github.com/kiloutout/service-booking/internal/geo"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber      string          `gorm:"uniqueIndex;not null;size:20"`
	UserID             uuid.UUID       `gorm:"type:uuid;index;not null"`
	CustomerName       string          `gorm:"not null;size:200"`
	CustomerEmail      string          `gorm:"not null;size:320"`
	ServiceID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	ServiceName        string          `gorm:"not null;size:200"`
	Status             string          `gorm:"not null;size:20;index"`
	RequestedDate      time.Time       `gorm:"not null;index"`
	RequestedTime      string          `gorm:"not null;size:5"`
	Duration           float64         `gorm:"not null"`
	Address            string          `gorm:"not null;size:300"`
	City               string          `gorm:"not null;size:100"`
	PostalCode         string          `gorm:"not null;size:10"`
	Latitude           *float64        `gorm:""`
	Longitude          *float64        `gorm:""`
	DistanceKm         *float64        `gorm:""`
	BaseAmountCents    int64           `gorm:"not null"`
	OptionsAmountCents int64           `gorm:"not null"`
	DistanceFeeCents   int64           `gorm:"not null"`
	TotalAmountCents   int64           `gorm:"not null"`
	UnitPriceCents     int64           `gorm:"not null;default:0"`
	PriceOption        json.RawMessage `gorm:"type:jsonb"`
	Options            json.RawMessage `gorm:"type:jsonb"`
	Notes              string          `gorm:"size:1000"`
	AdminNotes         string          `gorm:"size:1000"`
	CalendarEventID    *string         `gorm:"size:200"`
	ConfirmedAt        *time.Time      `gorm:""`
	CompletedAt        *time.Time      `gorm:""`
	CancelledAt        *time.Time      `gorm:""`
	Version            int64           `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of
// BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings for a specific user with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the stored version matches (current version - 1,
	// since IncrementVersion was called).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"requested_date":       model.RequestedDate,
			"requested_time":       model.RequestedTime,
			"duration":             model.Duration,
			"latitude":             model.Latitude,
			"longitude":            model.Longitude,
			"distance_km":          model.DistanceKm,
			"base_amount_cents":    model.BaseAmountCents,
			"options_amount_cents": model.OptionsAmountCents,
			"distance_fee_cents":   model.DistanceFeeCents,
			"total_amount_cents":   model.TotalAmountCents,
			"unit_price_cents":     model.UnitPriceCents,
			"price_option":         model.PriceOption,
			"options":              model.Options,
			"admin_notes":          model.AdminNotes,
			"calendar_event_id":    model.CalendarEventID,
			"confirmed_at":         model.ConfirmedAt,
			"completed_at":         model.CompletedAt,
			"cancelled_at":         model.CancelledAt,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return shared.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	var optionsJSON json.RawMessage
	if len(bk.Options()) > 0 {
		data, err := json.Marshal(bk.Options())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal booking options: %w", err)
		}
		optionsJSON = data
	}

	var priceOptionJSON json.RawMessage
	if bk.PriceOption() != nil {
		data, err := json.Marshal(bk.PriceOption())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal booking price option: %w", err)
		}
		priceOptionJSON = data
	}

	model := &BookingModel{
		ID:                 bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		UserID:             bk.UserID(),
		CustomerName:       bk.CustomerName(),
		CustomerEmail:      bk.CustomerEmail(),
		ServiceID:          bk.ServiceID(),
		ServiceName:        bk.ServiceName(),
		Status:             string(bk.Status()),
		RequestedDate:      bk.RequestedDate(),
		RequestedTime:      bk.RequestedTime(),
		Duration:           bk.Duration(),
		Address:            bk.Address(),
		City:               bk.City(),
		PostalCode:         bk.PostalCode(),
		DistanceKm:         bk.DistanceKm(),
		BaseAmountCents:    bk.BaseAmountCents(),
		OptionsAmountCents: bk.OptionsAmountCents(),
		DistanceFeeCents:   bk.DistanceFeeCents(),
		TotalAmountCents:   bk.TotalAmountCents(),
		UnitPriceCents:     bk.UnitPriceCents(),
		PriceOption:        priceOptionJSON,
		Options:            optionsJSON,
		Notes:              bk.Notes(),
		AdminNotes:         bk.AdminNotes(),
		CalendarEventID:    bk.CalendarEventID(),
		ConfirmedAt:        bk.ConfirmedAt(),
		CompletedAt:        bk.CompletedAt(),
		CancelledAt:        bk.CancelledAt(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
	if loc := bk.Location(); loc != nil {
		model.Latitude = &loc.Latitude
		model.Longitude = &loc.Longitude
	}
	return model, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var options []bookingDomain.SelectedOption
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal booking options: %w", err)
		}
	}

	var priceOption *bookingDomain.SelectedPriceOption
	if len(m.PriceOption) > 0 {
		priceOption = &bookingDomain.SelectedPriceOption{}
		if err := json.Unmarshal(m.PriceOption, priceOption); err != nil {
			return nil, fmt.Errorf("failed to unmarshal booking price option: %w", err)
		}
	}

	var location *geo.Coordinates
	if m.Latitude != nil && m.Longitude != nil {
		location = &geo.Coordinates{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.UserID,
		m.CustomerName,
		m.CustomerEmail,
		m.ServiceID,
		m.ServiceName,
		status,
		m.RequestedDate,
		m.RequestedTime,
		m.Duration,
		m.Address,
		m.City,
		m.PostalCode,
		location,
		m.DistanceKm,
		m.BaseAmountCents,
		m.OptionsAmountCents,
		m.DistanceFeeCents,
		m.TotalAmountCents,
		m.UnitPriceCents,
		priceOption,
		options,
		m.Notes,
		m.AdminNotes,
		m.CalendarEventID,
		m.ConfirmedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
