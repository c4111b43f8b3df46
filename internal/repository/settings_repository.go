package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kiloutout/service-booking/internal/domain/settings"
)

// settingsRowID pins the settings table to a single row.
const settingsRowID = 1

// SettingsModel is the GORM model for the singleton settings table.
type SettingsModel struct {
	ID                 int     `gorm:"primaryKey"`
	BusinessName       string  `gorm:"size:200"`
	BusinessAddress    string  `gorm:"size:300"`
	BusinessCity       string  `gorm:"size:100"`
	BusinessPostalCode string  `gorm:"size:10"`
	BusinessPhone      string  `gorm:"size:30"`
	BusinessEmail      string  `gorm:"size:320"`
	BusinessLatitude   float64 `gorm:"not null"`
	BusinessLongitude  float64 `gorm:"not null"`

	DistanceThresholdKm float64 `gorm:"not null"`
	PricePerKmCents     int64   `gorm:"not null"`

	DefaultBookingBufferMin int `gorm:"not null"`
	MaxAdvanceBookingDays   int `gorm:"not null"`

	CalendarID         string     `gorm:"size:200"`
	GoogleAccessToken  string     `gorm:"size:2048"`
	GoogleRefreshToken string     `gorm:"size:2048"`
	GoogleTokenExpiry  *time.Time `gorm:""`

	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SettingsModel) TableName() string {
	return "settings"
}

// GormSettingsRepository is the GORM-based implementation of the settings
// Repository.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository.
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the current settings, falling back to defaults when the
// record has never been written.
func (r *GormSettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var model SettingsModel
	if err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return toDomainSettings(&model), nil
}

// Update writes the settings row, creating it on first use.
func (r *GormSettingsRepository) Update(ctx context.Context, s *settings.Settings) error {
	s.UpdatedAt = time.Now().UTC()
	model := toSettingsModel(s)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// defaultSettings mirrors the seed values used before any admin edit.
func defaultSettings() *settings.Settings {
	return &settings.Settings{
		BusinessLatitude:      43.9833,
		BusinessLongitude:     1.2667,
		DistanceThresholdKm:   10,
		PricePerKmCents:       50,
		MaxAdvanceBookingDays: 365,
	}
}

// --- Conversion Helpers ---

func toSettingsModel(s *settings.Settings) *SettingsModel {
	return &SettingsModel{
		ID:                      settingsRowID,
		BusinessName:            s.BusinessName,
		BusinessAddress:         s.BusinessAddress,
		BusinessCity:            s.BusinessCity,
		BusinessPostalCode:      s.BusinessPostalCode,
		BusinessPhone:           s.BusinessPhone,
		BusinessEmail:           s.BusinessEmail,
		BusinessLatitude:        s.BusinessLatitude,
		BusinessLongitude:       s.BusinessLongitude,
		DistanceThresholdKm:     s.DistanceThresholdKm,
		PricePerKmCents:         s.PricePerKmCents,
		DefaultBookingBufferMin: s.DefaultBookingBufferMin,
		MaxAdvanceBookingDays:   s.MaxAdvanceBookingDays,
		CalendarID:              s.CalendarID,
		GoogleAccessToken:       s.GoogleAccessToken,
		GoogleRefreshToken:      s.GoogleRefreshToken,
		GoogleTokenExpiry:       s.GoogleTokenExpiry,
		UpdatedAt:               s.UpdatedAt,
	}
}

func toDomainSettings(m *SettingsModel) *settings.Settings {
	return &settings.Settings{
		BusinessName:            m.BusinessName,
		BusinessAddress:         m.BusinessAddress,
		BusinessCity:            m.BusinessCity,
		BusinessPostalCode:      m.BusinessPostalCode,
		BusinessPhone:           m.BusinessPhone,
		BusinessEmail:           m.BusinessEmail,
		BusinessLatitude:        m.BusinessLatitude,
		BusinessLongitude:       m.BusinessLongitude,
		DistanceThresholdKm:     m.DistanceThresholdKm,
		PricePerKmCents:         m.PricePerKmCents,
		DefaultBookingBufferMin: m.DefaultBookingBufferMin,
		MaxAdvanceBookingDays:   m.MaxAdvanceBookingDays,
		CalendarID:              m.CalendarID,
		GoogleAccessToken:       m.GoogleAccessToken,
		GoogleRefreshToken:      m.GoogleRefreshToken,
		GoogleTokenExpiry:       m.GoogleTokenExpiry,
		UpdatedAt:               m.UpdatedAt,
	}
}
