package events

import "time"

// EventSource identifies this service in published event envelopes.
const EventSource = "service-booking"

// TopicBookingEvents carries the booking lifecycle stream.
const TopicBookingEvents = "booking.events"

// Booking lifecycle event types.
const (
	BookingCreated     = "booking.created"
	BookingConfirmed   = "booking.confirmed"
	BookingCancelled   = "booking.cancelled"
	BookingCompleted   = "booking.completed"
	BookingRescheduled = "booking.rescheduled"
)

// BookingEventPayload is the data carried by every booking lifecycle event.
// Customer identity travels in the payload because this service keeps no
// user table; the authenticated token is the source of truth.
type BookingEventPayload struct {
	BookingID     string    `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	ServiceName   string    `json:"service_name"`
	Status        string    `json:"status"`
	RequestedDate time.Time `json:"requested_date"`
	RequestedTime string    `json:"requested_time"`
	DurationHours float64   `json:"duration_hours"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	TotalCents    int64     `json:"total_cents"`
	AdminEmail    string    `json:"admin_email,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}
