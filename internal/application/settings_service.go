package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kiloutout/service-booking/internal/domain/settings"
)

// UpdateSettingsRequest is the admin patch for the business settings.
// Pointer fields distinguish "leave unchanged" from explicit zero values.
type UpdateSettingsRequest struct {
	BusinessName       *string  `json:"business_name"`
	BusinessAddress    *string  `json:"business_address"`
	BusinessCity       *string  `json:"business_city"`
	BusinessPostalCode *string  `json:"business_postal_code"`
	BusinessPhone      *string  `json:"business_phone"`
	BusinessEmail      *string  `json:"business_email"`
	BusinessLatitude   *float64 `json:"business_latitude"`
	BusinessLongitude  *float64 `json:"business_longitude"`

	DistanceThresholdKm *float64 `json:"distance_threshold_km"`
	PricePerKmCents     *int64   `json:"price_per_km_cents"`

	DefaultBookingBufferMin *int `json:"default_booking_buffer_min"`
	MaxAdvanceBookingDays   *int `json:"max_advance_booking_days"`

	CalendarID *string `json:"calendar_id"`
}

// SettingsService manages the singleton business configuration.
type SettingsService struct {
	repo   settings.Repository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo settings.Repository, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// GetSettings returns the current business settings.
func (s *SettingsService) GetSettings(ctx context.Context) (*settings.Settings, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return cfg, nil
}

// UpdateSettings applies an admin patch to the business settings.
func (s *SettingsService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*settings.Settings, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if req.BusinessName != nil {
		cfg.BusinessName = *req.BusinessName
	}
	if req.BusinessAddress != nil {
		cfg.BusinessAddress = *req.BusinessAddress
	}
	if req.BusinessCity != nil {
		cfg.BusinessCity = *req.BusinessCity
	}
	if req.BusinessPostalCode != nil {
		cfg.BusinessPostalCode = *req.BusinessPostalCode
	}
	if req.BusinessPhone != nil {
		cfg.BusinessPhone = *req.BusinessPhone
	}
	if req.BusinessEmail != nil {
		cfg.BusinessEmail = *req.BusinessEmail
	}
	if req.BusinessLatitude != nil {
		cfg.BusinessLatitude = *req.BusinessLatitude
	}
	if req.BusinessLongitude != nil {
		cfg.BusinessLongitude = *req.BusinessLongitude
	}
	if req.DistanceThresholdKm != nil {
		cfg.DistanceThresholdKm = *req.DistanceThresholdKm
	}
	if req.PricePerKmCents != nil {
		cfg.PricePerKmCents = *req.PricePerKmCents
	}
	if req.DefaultBookingBufferMin != nil {
		cfg.DefaultBookingBufferMin = *req.DefaultBookingBufferMin
	}
	if req.MaxAdvanceBookingDays != nil {
		cfg.MaxAdvanceBookingDays = *req.MaxAdvanceBookingDays
	}
	if req.CalendarID != nil {
		cfg.CalendarID = *req.CalendarID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.logger.Info("settings updated")
	return cfg, nil
}

// StoreCalendarTokens saves the OAuth tokens after the admin connects the
// external calendar.
func (s *SettingsService) StoreCalendarTokens(ctx context.Context, accessToken, refreshToken string, expiry *time.Time) error {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cfg.GoogleAccessToken = accessToken
	cfg.GoogleRefreshToken = refreshToken
	cfg.GoogleTokenExpiry = expiry

	if err := s.repo.Update(ctx, cfg); err != nil {
		return fmt.Errorf("failed to store calendar tokens: %w", err)
	}

	s.logger.Info("calendar connected")
	return nil
}

// DisconnectCalendar drops the stored OAuth tokens.
func (s *SettingsService) DisconnectCalendar(ctx context.Context) error {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cfg.GoogleAccessToken = ""
	cfg.GoogleRefreshToken = ""
	cfg.GoogleTokenExpiry = nil

	if err := s.repo.Update(ctx, cfg); err != nil {
		return fmt.Errorf("failed to disconnect calendar: %w", err)
	}

	s.logger.Info("calendar disconnected")
	return nil
}
