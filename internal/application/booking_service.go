package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiloutout/service-booking/internal/calendar"
	bookingDomain "github.com/kiloutout/service-booking/internal/domain/booking"
	"github.com/kiloutout/service-booking/internal/domain/catalog"
	"github.com/kiloutout/service-booking/internal/domain/notification"
	"github.com/kiloutout/service-booking/internal/domain/settings"
	"github.com/kiloutout/service-booking/internal/domain/shared"
	"github.com/kiloutout/service-booking/internal/events"
	"github.com/kiloutout/service-booking/internal/geo"
	"github.com/kiloutout/service-booking/internal/kafka"
)

const dateLayout = "2006-01-02"

// Actor is the authenticated caller, taken from the verified token.
type Actor struct {
	UserID uuid.UUID
	Role   string
	Email  string
	Name   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == "admin" }

// EventPublisher abstracts the event bus producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceID        uuid.UUID   `json:"service_id" binding:"required"`
	RequestedDate    string      `json:"requested_date" binding:"required"`
	RequestedTime    string      `json:"requested_time" binding:"required"`
	Duration         float64     `json:"duration" binding:"required"`
	Address          string      `json:"address" binding:"required"`
	City             string      `json:"city" binding:"required"`
	PostalCode       string      `json:"postal_code" binding:"required"`
	PriceOptionID    *uuid.UUID  `json:"price_option_id"`
	ServiceOptionIDs []uuid.UUID `json:"service_option_ids"`
	Notes            string      `json:"notes"`
}

// QuoteRequest holds the data needed for a price preview. The address is
// optional; without it the quote carries no distance fee.
type QuoteRequest struct {
	ServiceID        uuid.UUID   `json:"service_id" binding:"required"`
	Duration         float64     `json:"duration" binding:"required"`
	PriceOptionID    *uuid.UUID  `json:"price_option_id"`
	ServiceOptionIDs []uuid.UUID `json:"service_option_ids"`
	Address          string      `json:"address"`
	City             string      `json:"city"`
	PostalCode       string      `json:"postal_code"`
}

// RescheduleBookingRequest moves a booking to a new slot. Zero-valued
// fields keep their current value.
type RescheduleBookingRequest struct {
	RequestedDate string  `json:"requested_date"`
	RequestedTime string  `json:"requested_time"`
	Duration      float64 `json:"duration"`
}

// UpdateBookingRequest is the admin patch for a booking. A status change
// goes through the same transitions as the dedicated endpoints.
type UpdateBookingRequest struct {
	Status        *string  `json:"status"`
	AdminNotes    *string  `json:"admin_notes"`
	RequestedDate *string  `json:"requested_date"`
	RequestedTime *string  `json:"requested_time"`
	Duration      *float64 `json:"duration"`
}

// QuoteDTO is the response representation of a computed quote.
type QuoteDTO struct {
	BaseAmountCents    int64                          `json:"base_amount_cents"`
	OptionsAmountCents int64                          `json:"options_amount_cents"`
	DistanceFeeCents   int64                          `json:"distance_fee_cents"`
	TotalAmountCents   int64                          `json:"total_amount_cents"`
	DistanceKm         *float64                       `json:"distance_km,omitempty"`
	Lines              []bookingDomain.QuoteLine      `json:"lines"`
	SelectedOptions    []bookingDomain.SelectedOption `json:"selected_options,omitempty"`
}

// DistanceDTO is the response of a standalone distance computation. It
// echoes the pricing parameters so the client can display the fee rule.
type DistanceDTO struct {
	DistanceKm          float64         `json:"distance_km"`
	DistanceFeeCents    int64           `json:"distance_fee_cents"`
	DistanceThresholdKm float64         `json:"distance_threshold_km"`
	PricePerKmCents     int64           `json:"price_per_km_cents"`
	BusinessLocation    geo.Coordinates `json:"business_location"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID                      `json:"id"`
	BookingNumber      string                         `json:"booking_number"`
	UserID             uuid.UUID                      `json:"user_id"`
	CustomerName       string                         `json:"customer_name"`
	ServiceID          uuid.UUID                      `json:"service_id"`
	ServiceName        string                         `json:"service_name"`
	Status             string                         `json:"status"`
	RequestedDate      time.Time                      `json:"requested_date"`
	RequestedTime      string                         `json:"requested_time"`
	Duration           float64                        `json:"duration"`
	Address            string                         `json:"address"`
	City               string                         `json:"city"`
	PostalCode         string                         `json:"postal_code"`
	Latitude           *float64                       `json:"latitude,omitempty"`
	Longitude          *float64                       `json:"longitude,omitempty"`
	DistanceKm         *float64                       `json:"distance_km,omitempty"`
	BaseAmountCents    int64                          `json:"base_amount_cents"`
	OptionsAmountCents int64                          `json:"options_amount_cents"`
	DistanceFeeCents   int64                          `json:"distance_fee_cents"`
	TotalAmountCents   int64                          `json:"total_amount_cents"`
	Options            []bookingDomain.SelectedOption `json:"options,omitempty"`
	Notes              string                         `json:"notes,omitempty"`
	AdminNotes         string                         `json:"admin_notes,omitempty"`
	CalendarEventID    *string                        `json:"calendar_event_id,omitempty"`
	ConfirmedAt        *time.Time                     `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time                     `json:"completed_at,omitempty"`
	CancelledAt        *time.Time                     `json:"cancelled_at,omitempty"`
	Version            int64                          `json:"version"`
	CreatedAt          time.Time                      `json:"created_at"`
	UpdatedAt          time.Time                      `json:"updated_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use
// cases. Geocoding, calendar and notification side effects are best-effort:
// their failure never rolls back a persisted state transition.
type BookingService struct {
	bookings      bookingDomain.BookingRepository
	services      catalog.ServiceRepository
	settings      settings.Repository
	notifications notification.Repository
	geocoder      geo.Geocoder
	calendar      calendar.Client
	producer      EventPublisher
	policy        bookingDomain.TransitionPolicy
	logger        *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	services catalog.ServiceRepository,
	settingsRepo settings.Repository,
	notifications notification.Repository,
	geocoder geo.Geocoder,
	calendarClient calendar.Client,
	producer EventPublisher,
	policy bookingDomain.TransitionPolicy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:      bookings,
		services:      services,
		settings:      settingsRepo,
		notifications: notifications,
		geocoder:      geocoder,
		calendar:      calendarClient,
		producer:      producer,
		policy:        policy,
		logger:        logger,
	}
}

// CreateBooking creates a new PENDING booking for the actor, with amounts
// computed from the current catalog and settings.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingDTO, error) {
	requestedDate, err := time.Parse(dateLayout, req.RequestedDate)
	if err != nil {
		return nil, shared.NewValidationError("requested date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.RequestedTime); err != nil {
		return nil, shared.NewValidationError("requested time must be HH:MM")
	}

	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active() {
		return nil, shared.NewValidationError("service is not available for booking")
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := s.validateRequestedDate(requestedDate, cfg); err != nil {
		return nil, err
	}

	fullAddress := fmt.Sprintf("%s, %s %s, France", req.Address, req.PostalCode, req.City)
	location, distanceKm := s.resolveDistance(ctx, fullAddress, cfg)

	quote, err := bookingDomain.ComputeQuote(svc, req.Duration, req.PriceOptionID, req.ServiceOptionIDs, distanceKm, cfg)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		actor.UserID,
		actor.Name,
		actor.Email,
		svc.ID(),
		svc.Name(),
		requestedDate,
		req.RequestedTime,
		req.Duration,
		req.Address,
		req.City,
		req.PostalCode,
		location,
		distanceKm,
		quote,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.notify(ctx, bk, notification.KindBookingCreated,
		"Réservation créée",
		fmt.Sprintf("Votre demande de réservation %s a bien été enregistrée.", bk.BookingNumber()))
	s.publishBookingEvent(ctx, events.BookingCreated, bk, cfg.BusinessEmail, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a booking the actor is allowed to see.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, bk); err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a booking by its human-readable number.
func (s *BookingService) GetBookingByNumber(ctx context.Context, actor Actor, number string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, bk); err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetUserBookings retrieves paginated bookings for the actor.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*shared.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := shared.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ConfirmBooking transitions a PENDING booking to CONFIRMED (admin). The
// calendar event is created best-effort before persisting, so the event
// reference lands in the same update.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Confirm(s.policy); err != nil {
		return nil, err
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if cfg.CalendarConnected() {
		eventID, err := s.calendar.CreateEvent(ctx, cfg, toCalendarEvent(bk))
		if err != nil {
			s.logger.Warn("failed to create calendar event",
				zap.String("booking_number", bk.BookingNumber()),
				zap.Error(err),
			)
		} else {
			bk.SetCalendarEventID(eventID)
		}
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notify(ctx, bk, notification.KindBookingConfirmed,
		"Réservation confirmée",
		fmt.Sprintf("Votre réservation %s est confirmée.", bk.BookingNumber()))
	s.publishBookingEvent(ctx, events.BookingConfirmed, bk, "", "")

	result := toBookingDTO(bk)
	return &result, nil
}

// RejectBooking cancels a PENDING booking with a reason (admin).
func (s *BookingService) RejectBooking(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.cancel(ctx, bookingID, reason)
}

// CancelBooking cancels a booking on behalf of its owner or an admin.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, bk); err != nil {
		return nil, err
	}
	return s.cancel(ctx, bookingID, reason)
}

func (s *BookingService) cancel(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(reason, s.policy); err != nil {
		return nil, err
	}

	s.removeCalendarEvent(ctx, bk)

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notify(ctx, bk, notification.KindBookingCancelled,
		"Réservation annulée",
		cancellationMessage(bk.BookingNumber(), reason))
	s.publishBookingEvent(ctx, events.BookingCancelled, bk, "", reason)

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking transitions a booking to COMPLETED (admin).
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(s.policy); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notify(ctx, bk, notification.KindBookingCompleted,
		"Prestation terminée",
		fmt.Sprintf("Votre réservation %s est terminée. Merci de votre confiance !", bk.BookingNumber()))
	s.publishBookingEvent(ctx, events.BookingCompleted, bk, "", "")

	result := toBookingDTO(bk)
	return &result, nil
}

// RescheduleBooking moves a non-terminal booking to a new slot. A changed
// duration recomputes the amounts against the current catalog and settings.
func (s *BookingService) RescheduleBooking(ctx context.Context, actor Actor, bookingID uuid.UUID, req RescheduleBookingRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, bk); err != nil {
		return nil, err
	}

	var requestedDate time.Time
	if req.RequestedDate != "" {
		requestedDate, err = time.Parse(dateLayout, req.RequestedDate)
		if err != nil {
			return nil, shared.NewValidationError("requested date must be YYYY-MM-DD")
		}
	}
	if req.RequestedTime != "" {
		if _, err := time.Parse("15:04", req.RequestedTime); err != nil {
			return nil, shared.NewValidationError("requested time must be HH:MM")
		}
	}

	var quote *bookingDomain.Quote
	if req.Duration > 0 && req.Duration != bk.Duration() {
		svc, err := s.services.FindByID(ctx, bk.ServiceID())
		if err != nil {
			return nil, err
		}
		cfg, err := s.settings.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		// Amounts come from the snapshots stored on the booking; the
		// service only bounds the new duration.
		quote, err = bookingDomain.RequoteBooking(bk, svc, req.Duration, cfg)
		if err != nil {
			return nil, err
		}
	}

	if err := bk.Reschedule(requestedDate, req.RequestedTime, req.Duration, quote); err != nil {
		return nil, err
	}

	s.syncCalendarEvent(ctx, bk)

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.notify(ctx, bk, notification.KindBookingRescheduled,
		"Réservation modifiée",
		fmt.Sprintf("Votre réservation %s a été reprogrammée.", bk.BookingNumber()))
	s.publishBookingEvent(ctx, events.BookingRescheduled, bk, "", "")

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking applies an admin patch: notes, a status transition and,
// when slot fields are present, a reschedule.
func (s *BookingService) UpdateBooking(ctx context.Context, actor Actor, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	if req.RequestedDate != nil || req.RequestedTime != nil || req.Duration != nil {
		reschedule := RescheduleBookingRequest{}
		if req.RequestedDate != nil {
			reschedule.RequestedDate = *req.RequestedDate
		}
		if req.RequestedTime != nil {
			reschedule.RequestedTime = *req.RequestedTime
		}
		if req.Duration != nil {
			reschedule.Duration = *req.Duration
		}
		if _, err := s.RescheduleBooking(ctx, actor, bookingID, reschedule); err != nil {
			return nil, err
		}
	}

	notesHandled := false
	if req.Status != nil {
		status, err := bookingDomain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, shared.NewValidationError("invalid status: " + *req.Status)
		}
		switch status {
		case bookingDomain.StatusConfirmed:
			if _, err := s.ConfirmBooking(ctx, bookingID); err != nil {
				return nil, err
			}
		case bookingDomain.StatusCancelled:
			reason := ""
			if req.AdminNotes != nil {
				reason = *req.AdminNotes
				notesHandled = true
			}
			if _, err := s.cancel(ctx, bookingID, reason); err != nil {
				return nil, err
			}
		case bookingDomain.StatusCompleted:
			if _, err := s.CompleteBooking(ctx, bookingID); err != nil {
				return nil, err
			}
		default:
			return nil, shared.NewValidationError("status cannot be set to " + *req.Status)
		}
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if req.AdminNotes != nil && !notesHandled {
		bk.SetAdminNotes(*req.AdminNotes)
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			return nil, err
		}
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ComputeQuote returns a price preview without creating a booking.
func (s *BookingService) ComputeQuote(ctx context.Context, req QuoteRequest) (*QuoteDTO, error) {
	svc, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active() {
		return nil, shared.NewValidationError("service is not available for booking")
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var distanceKm *float64
	if req.Address != "" && req.City != "" && req.PostalCode != "" {
		fullAddress := fmt.Sprintf("%s, %s %s, France", req.Address, req.PostalCode, req.City)
		_, distanceKm = s.resolveDistance(ctx, fullAddress, cfg)
	}

	quote, err := bookingDomain.ComputeQuote(svc, req.Duration, req.PriceOptionID, req.ServiceOptionIDs, distanceKm, cfg)
	if err != nil {
		return nil, err
	}

	return &QuoteDTO{
		BaseAmountCents:    quote.BaseAmountCents,
		OptionsAmountCents: quote.OptionsAmountCents,
		DistanceFeeCents:   quote.DistanceFeeCents,
		TotalAmountCents:   quote.TotalAmountCents,
		DistanceKm:         distanceKm,
		Lines:              quote.Lines,
		SelectedOptions:    quote.SelectedOptions,
	}, nil
}

// CalculateDistance returns the distance between the client's coordinates
// and the business location, with the resulting travel fee and the fee
// parameters.
func (s *BookingService) CalculateDistance(ctx context.Context, client geo.Coordinates) (*DistanceDTO, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	business := geo.Coordinates{
		Latitude:  cfg.BusinessLatitude,
		Longitude: cfg.BusinessLongitude,
	}
	distance := geo.Round2(geo.DistanceKm(business, client))

	return &DistanceDTO{
		DistanceKm:          distance,
		DistanceFeeCents:    bookingDomain.DistanceFeeCents(&distance, cfg),
		DistanceThresholdKm: cfg.DistanceThresholdKm,
		PricePerKmCents:     cfg.PricePerKmCents,
		BusinessLocation:    business,
	}, nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) authorize(actor Actor, bk *bookingDomain.Booking) error {
	if actor.IsAdmin() || bk.IsOwnedBy(actor.UserID) {
		return nil
	}
	return shared.NewForbiddenError("booking does not belong to this user")
}

func (s *BookingService) validateRequestedDate(requestedDate time.Time, cfg *settings.Settings) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if requestedDate.Before(today) {
		return shared.NewValidationError("requested date cannot be in the past")
	}
	if cfg.MaxAdvanceBookingDays > 0 {
		horizon := today.AddDate(0, 0, cfg.MaxAdvanceBookingDays)
		if requestedDate.After(horizon) {
			return shared.NewValidationError(fmt.Sprintf(
				"requested date cannot be more than %d days ahead", cfg.MaxAdvanceBookingDays))
		}
	}
	return nil
}

// resolveDistance geocodes the destination and measures the road-free
// distance from the business location. Both values are nil when the
// address cannot be resolved; an unknown distance is never an error.
func (s *BookingService) resolveDistance(ctx context.Context, fullAddress string, cfg *settings.Settings) (*geo.Coordinates, *float64) {
	location, err := s.geocoder.Geocode(ctx, fullAddress)
	if err != nil {
		s.logger.Warn("geocoding failed",
			zap.String("address", fullAddress),
			zap.Error(err),
		)
		return nil, nil
	}
	if location == nil {
		return nil, nil
	}

	business := geo.Coordinates{
		Latitude:  cfg.BusinessLatitude,
		Longitude: cfg.BusinessLongitude,
	}
	distance := geo.Round2(geo.DistanceKm(business, *location))
	return location, &distance
}

func (s *BookingService) notify(ctx context.Context, bk *bookingDomain.Booking, kind notification.Kind, title, message string) {
	n, err := notification.New(bk.UserID(), bk.ID(), kind, title, message)
	if err == nil {
		err = s.notifications.Save(ctx, n)
	}
	if err != nil {
		s.logger.Error("failed to create notification",
			zap.String("booking_number", bk.BookingNumber()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, adminEmail, reason string) {
	payload := events.BookingEventPayload{
		BookingID:     bk.ID().String(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID().String(),
		CustomerName:  bk.CustomerName(),
		CustomerEmail: bk.CustomerEmail(),
		ServiceName:   bk.ServiceName(),
		Status:        string(bk.Status()),
		RequestedDate: bk.RequestedDate(),
		RequestedTime: bk.RequestedTime(),
		DurationHours: bk.Duration(),
		Address:       bk.Address(),
		City:          bk.City(),
		PostalCode:    bk.PostalCode(),
		TotalCents:    bk.TotalAmountCents(),
		AdminEmail:    adminEmail,
		Reason:        reason,
	}

	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, payload)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *BookingService) removeCalendarEvent(ctx context.Context, bk *bookingDomain.Booking) {
	if bk.CalendarEventID() == nil {
		return
	}
	cfg, err := s.settings.Get(ctx)
	if err == nil {
		err = s.calendar.DeleteEvent(ctx, cfg, *bk.CalendarEventID())
	}
	if err != nil {
		s.logger.Warn("failed to delete calendar event",
			zap.String("booking_number", bk.BookingNumber()),
			zap.Error(err),
		)
	}
	// The reference is cleared either way; it has no use on a booking
	// that is leaving the calendar.
	bk.ClearCalendarEventID()
}

func (s *BookingService) syncCalendarEvent(ctx context.Context, bk *bookingDomain.Booking) {
	if bk.CalendarEventID() == nil {
		return
	}
	cfg, err := s.settings.Get(ctx)
	if err == nil {
		err = s.calendar.UpdateEvent(ctx, cfg, *bk.CalendarEventID(), toCalendarEvent(bk))
	}
	if err != nil {
		s.logger.Warn("failed to update calendar event",
			zap.String("booking_number", bk.BookingNumber()),
			zap.Error(err),
		)
	}
}

func cancellationMessage(bookingNumber, reason string) string {
	if reason != "" {
		return fmt.Sprintf("Votre réservation %s a été annulée : %s", bookingNumber, reason)
	}
	return fmt.Sprintf("Votre réservation %s a été annulée.", bookingNumber)
}

func toCalendarEvent(bk *bookingDomain.Booking) calendar.Event {
	return calendar.Event{
		ServiceName:   bk.ServiceName(),
		CustomerName:  bk.CustomerName(),
		RequestedDate: bk.RequestedDate(),
		RequestedTime: bk.RequestedTime(),
		DurationHours: bk.Duration(),
		Address:       bk.Address(),
		City:          bk.City(),
		PostalCode:    bk.PostalCode(),
		Notes:         bk.Notes(),
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	dto := BookingDTO{
		ID:                 bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		UserID:             bk.UserID(),
		CustomerName:       bk.CustomerName(),
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
		Options:            bk.Options(),
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
		dto.Latitude = &loc.Latitude
		dto.Longitude = &loc.Longitude
	}
	return dto
}
