package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/kiloutout/service-booking/internal/domain/shared"
	"github.com/kiloutout/service-booking/internal/geo"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a customer's service request. Its
// computed amounts always satisfy total = base + options + distance fee;
// they are only ever replaced wholesale from a Quote, never patched.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	userID        uuid.UUID

	// Customer identity snapshotted from the authenticated token; there is
	// no local user table.
	customerName  string
	customerEmail string

	serviceID   uuid.UUID
	serviceName string
	status      BookingStatus

	requestedDate time.Time
	requestedTime string
	duration      float64

	address    string
	city       string
	postalCode string

	// Resolved geolocation; nil when geocoding failed or found nothing.
	location   *geo.Coordinates
	distanceKm *float64

	baseAmountCents    int64
	optionsAmountCents int64
	distanceFeeCents   int64
	totalAmountCents   int64

	// Pricing inputs snapshotted from the quote so the amounts can be
	// recomputed later without consulting the live catalog.
	unitPriceCents int64
	priceOption    *SelectedPriceOption
	options        []SelectedOption

	notes           string
	adminNotes      string
	calendarEventID *string

	confirmedAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking in PENDING state with amounts taken
// from a computed quote.
func NewBooking(
	userID uuid.UUID,
	customerName, customerEmail string,
	serviceID uuid.UUID,
	serviceName string,
	requestedDate time.Time,
	requestedTime string,
	duration float64,
	address, city, postalCode string,
	location *geo.Coordinates,
	distanceKm *float64,
	quote *Quote,
	notes string,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user ID is required")
	}
	if serviceID == uuid.Nil {
		return nil, shared.NewValidationError("service ID is required")
	}
	if requestedDate.IsZero() {
		return nil, shared.NewValidationError("requested date is required")
	}
	if requestedTime == "" {
		return nil, shared.NewValidationError("requested time is required")
	}
	if address == "" || city == "" || postalCode == "" {
		return nil, shared.NewValidationError("address, city and postal code are required")
	}
	if quote == nil {
		return nil, shared.NewValidationError("quote is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		userID:        userID,
		customerName:  customerName,
		customerEmail: customerEmail,
		serviceID:     serviceID,
		serviceName:   serviceName,
		status:        StatusPending,
		requestedDate: requestedDate,
		requestedTime: requestedTime,
		duration:      duration,
		address:       address,
		city:          city,
		postalCode:    postalCode,
		location:      location,
		distanceKm:    distanceKm,
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}
	b.applyQuote(quote)
	return b, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no
// validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	userID uuid.UUID,
	customerName, customerEmail string,
	serviceID uuid.UUID,
	serviceName string,
	status BookingStatus,
	requestedDate time.Time,
	requestedTime string,
	duration float64,
	address, city, postalCode string,
	location *geo.Coordinates,
	distanceKm *float64,
	baseAmountCents, optionsAmountCents, distanceFeeCents, totalAmountCents int64,
	unitPriceCents int64,
	priceOption *SelectedPriceOption,
	options []SelectedOption,
	notes, adminNotes string,
	calendarEventID *string,
	confirmedAt, completedAt, cancelledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		bookingNumber:      bookingNumber,
		userID:             userID,
		customerName:       customerName,
		customerEmail:      customerEmail,
		serviceID:          serviceID,
		serviceName:        serviceName,
		status:             status,
		requestedDate:      requestedDate,
		requestedTime:      requestedTime,
		duration:           duration,
		address:            address,
		city:               city,
		postalCode:         postalCode,
		location:           location,
		distanceKm:         distanceKm,
		baseAmountCents:    baseAmountCents,
		optionsAmountCents: optionsAmountCents,
		distanceFeeCents:   distanceFeeCents,
		totalAmountCents:   totalAmountCents,
		unitPriceCents:     unitPriceCents,
		priceOption:        priceOption,
		options:            options,
		notes:              notes,
		adminNotes:         adminNotes,
		calendarEventID:    calendarEventID,
		confirmedAt:        confirmedAt,
		completedAt:        completedAt,
		cancelledAt:        cancelledAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID              { return b.id }
func (b *Booking) BookingNumber() string      { return b.bookingNumber }
func (b *Booking) UserID() uuid.UUID          { return b.userID }
func (b *Booking) CustomerName() string       { return b.customerName }
func (b *Booking) CustomerEmail() string      { return b.customerEmail }
func (b *Booking) ServiceID() uuid.UUID       { return b.serviceID }
func (b *Booking) ServiceName() string        { return b.serviceName }
func (b *Booking) Status() BookingStatus      { return b.status }
func (b *Booking) RequestedDate() time.Time   { return b.requestedDate }
func (b *Booking) RequestedTime() string      { return b.requestedTime }
func (b *Booking) Duration() float64          { return b.duration }
func (b *Booking) Address() string            { return b.address }
func (b *Booking) City() string               { return b.city }
func (b *Booking) PostalCode() string         { return b.postalCode }
func (b *Booking) Location() *geo.Coordinates { return b.location }
func (b *Booking) DistanceKm() *float64       { return b.distanceKm }
func (b *Booking) BaseAmountCents() int64     { return b.baseAmountCents }
func (b *Booking) OptionsAmountCents() int64  { return b.optionsAmountCents }
func (b *Booking) DistanceFeeCents() int64    { return b.distanceFeeCents }
func (b *Booking) TotalAmountCents() int64    { return b.totalAmountCents }
func (b *Booking) UnitPriceCents() int64      { return b.unitPriceCents }

func (b *Booking) PriceOption() *SelectedPriceOption { return b.priceOption }
func (b *Booking) Options() []SelectedOption         { return b.options }

func (b *Booking) Notes() string              { return b.notes }
func (b *Booking) AdminNotes() string         { return b.adminNotes }
func (b *Booking) CalendarEventID() *string   { return b.calendarEventID }
func (b *Booking) ConfirmedAt() *time.Time    { return b.confirmedAt }
func (b *Booking) CompletedAt() *time.Time    { return b.completedAt }
func (b *Booking) CancelledAt() *time.Time    { return b.cancelledAt }
func (b *Booking) Version() int64             { return b.version }
func (b *Booking) CreatedAt() time.Time       { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time       { return b.updatedAt }

// IsOwnedBy checks if the booking belongs to the given user.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

// FullAddress returns the destination as a single geocodable line.
func (b *Booking) FullAddress() string {
	return fmt.Sprintf("%s, %s %s, France", b.address, b.postalCode, b.city)
}

// --- Behavior ---

// Confirm transitions the booking from PENDING to CONFIRMED.
func (b *Booking) Confirm(policy TransitionPolicy) error {
	if !b.status.CanTransitionTo(StatusConfirmed, policy) {
		return shared.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to CANCELLED, recording the reason in the
// admin notes. Covers both admin rejection of a PENDING booking and
// cancellation of a CONFIRMED one.
func (b *Booking) Cancel(reason string, policy TransitionPolicy) error {
	if !b.status.CanTransitionTo(StatusCancelled, policy) {
		return shared.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	if reason != "" {
		b.adminNotes = reason
	}
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking to COMPLETED.
func (b *Booking) Complete(policy TransitionPolicy) error {
	if !b.status.CanTransitionTo(StatusCompleted, policy) {
		return shared.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Reschedule updates the requested slot. A changed duration requires a
// freshly computed quote so the stored amounts never drift from the
// invariant.
func (b *Booking) Reschedule(requestedDate time.Time, requestedTime string, duration float64, quote *Quote) error {
	if b.status.IsTerminal() {
		return shared.NewInvalidStateError(string(b.status), string(b.status))
	}
	if !requestedDate.IsZero() {
		b.requestedDate = requestedDate
	}
	if requestedTime != "" {
		b.requestedTime = requestedTime
	}
	if duration > 0 {
		if quote == nil {
			return shared.NewValidationError("a recomputed quote is required when the duration changes")
		}
		b.duration = duration
	}
	if quote != nil {
		b.applyQuote(quote)
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// SetAdminNotes replaces the administrator notes.
func (b *Booking) SetAdminNotes(notes string) {
	b.adminNotes = notes
	b.updatedAt = time.Now().UTC()
}

// SetCalendarEventID records the external calendar event reference.
func (b *Booking) SetCalendarEventID(eventID string) {
	b.calendarEventID = &eventID
	b.updatedAt = time.Now().UTC()
}

// ClearCalendarEventID drops the external calendar event reference.
func (b *Booking) ClearCalendarEventID() {
	b.calendarEventID = nil
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// applyQuote replaces all computed amounts and pricing snapshots at once.
func (b *Booking) applyQuote(q *Quote) {
	b.baseAmountCents = q.BaseAmountCents
	b.optionsAmountCents = q.OptionsAmountCents
	b.distanceFeeCents = q.DistanceFeeCents
	b.totalAmountCents = q.TotalAmountCents
	b.unitPriceCents = q.UnitPriceCents
	b.priceOption = q.PriceOption
	b.options = q.SelectedOptions
}
