package settings

import (
	"time"

	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// Settings is the single business configuration record. It is loaded fresh
// for each operation that needs it and passed in explicitly, so pricing and
// distance computation stay pure.
type Settings struct {
	BusinessName       string  `json:"business_name"`
	BusinessAddress    string  `json:"business_address"`
	BusinessCity       string  `json:"business_city"`
	BusinessPostalCode string  `json:"business_postal_code"`
	BusinessPhone      string  `json:"business_phone,omitempty"`
	BusinessEmail      string  `json:"business_email,omitempty"`
	BusinessLatitude   float64 `json:"business_latitude"`
	BusinessLongitude  float64 `json:"business_longitude"`

	// Free travel up to DistanceThresholdKm; beyond it each km costs
	// PricePerKmCents.
	DistanceThresholdKm float64 `json:"distance_threshold_km"`
	PricePerKmCents     int64   `json:"price_per_km_cents"`

	// Booking policy knobs.
	DefaultBookingBufferMin int `json:"default_booking_buffer_min"`
	MaxAdvanceBookingDays   int `json:"max_advance_booking_days"`

	// External calendar credentials, opaque to everything but the calendar
	// client.
	CalendarID          string     `json:"calendar_id,omitempty"`
	GoogleAccessToken   string     `json:"-"`
	GoogleRefreshToken  string     `json:"-"`
	GoogleTokenExpiry   *time.Time `json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarConnected reports whether external calendar credentials are
// stored.
func (s *Settings) CalendarConnected() bool {
	return s.GoogleAccessToken != "" && s.GoogleRefreshToken != ""
}

// Validate checks the pricing knobs an administrator may change.
func (s *Settings) Validate() error {
	if s.DistanceThresholdKm < 0 {
		return shared.NewValidationError("distance threshold cannot be negative")
	}
	if s.PricePerKmCents < 0 {
		return shared.NewValidationError("price per km cannot be negative")
	}
	if s.MaxAdvanceBookingDays < 0 {
		return shared.NewValidationError("max advance booking days cannot be negative")
	}
	return nil
}
