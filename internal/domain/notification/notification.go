package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// Kind identifies the lifecycle event a notification reports.
type Kind string

const (
	KindBookingCreated     Kind = "BOOKING_CREATED"
	KindBookingConfirmed   Kind = "BOOKING_CONFIRMED"
	KindBookingCancelled   Kind = "BOOKING_CANCELLED"
	KindBookingCompleted   Kind = "BOOKING_COMPLETED"
	KindBookingRescheduled Kind = "BOOKING_RESCHEDULED"
)

// Notification is an append-only record of a booking event relevant to a
// user. Only the read flag is ever mutated after creation.
type Notification struct {
	id        uuid.UUID
	userID    uuid.UUID
	bookingID uuid.UUID
	kind      Kind
	title     string
	message   string
	read      bool
	createdAt time.Time
}

// New creates an unread notification.
func New(userID, bookingID uuid.UUID, kind Kind, title, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user ID is required")
	}
	if title == "" {
		return nil, shared.NewValidationError("notification title is required")
	}

	return &Notification{
		id:        uuid.New(),
		userID:    userID,
		bookingID: bookingID,
		kind:      kind,
		title:     title,
		message:   message,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Notification from persistence.
func Reconstruct(id, userID, bookingID uuid.UUID, kind Kind, title, message string, read bool, createdAt time.Time) *Notification {
	return &Notification{
		id:        id,
		userID:    userID,
		bookingID: bookingID,
		kind:      kind,
		title:     title,
		message:   message,
		read:      read,
		createdAt: createdAt,
	}
}

// Getters.
func (n *Notification) ID() uuid.UUID        { return n.id }
func (n *Notification) UserID() uuid.UUID    { return n.userID }
func (n *Notification) BookingID() uuid.UUID { return n.bookingID }
func (n *Notification) Kind() Kind           { return n.kind }
func (n *Notification) Title() string        { return n.title }
func (n *Notification) Message() string      { return n.message }
func (n *Notification) Read() bool           { return n.read }
func (n *Notification) CreatedAt() time.Time { return n.createdAt }

// MarkRead flags the notification as read.
func (n *Notification) MarkRead() {
	n.read = true
}
