package calendar

import (
	"context"
	"time"

	"github.com/kiloutout/service-booking/internal/domain/settings"
)

// Event carries the booking details mirrored onto the external calendar.
type Event struct {
	ServiceName   string
	CustomerName  string
	RequestedDate time.Time
	RequestedTime string
	DurationHours float64
	Address       string
	City          string
	PostalCode    string
	Notes         string
}

// Client is the external calendar collaborator. All methods may fail when
// the calendar service is unreachable; callers catch and continue, the
// local state transition never depends on the calendar.
type Client interface {
	// CreateEvent inserts an event and returns its opaque reference.
	CreateEvent(ctx context.Context, cfg *settings.Settings, ev Event) (string, error)

	// UpdateEvent rewrites an existing event in place.
	UpdateEvent(ctx context.Context, cfg *settings.Settings, eventID string, ev Event) error

	// DeleteEvent removes an event. Deleting an event that no longer
	// exists is treated as already satisfied and returns nil.
	DeleteEvent(ctx context.Context, cfg *settings.Settings, eventID string) error
}
