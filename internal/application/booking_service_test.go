package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

// --- Fakes ---

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, shared.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return bk, nil
		}
	}
	return nil, shared.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UserID() == userID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.ID()]; !ok {
		return shared.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = bk
	return nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*catalog.Service
}

func (r *fakeServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, shared.NewNotFoundError("Service", id.String())
	}
	return svc, nil
}

func (r *fakeServiceRepo) FindBySlug(_ context.Context, slug string) (*catalog.Service, error) {
	for _, svc := range r.services {
		if svc.Slug() == slug {
			return svc, nil
		}
	}
	return nil, shared.NewNotFoundError("Service", slug)
}

func (r *fakeServiceRepo) ListActive(_ context.Context) ([]*catalog.Service, error) { return nil, nil }
func (r *fakeServiceRepo) ListAll(_ context.Context) ([]*catalog.Service, error)    { return nil, nil }
func (r *fakeServiceRepo) Save(_ context.Context, svc *catalog.Service) error {
	r.services[svc.ID()] = svc
	return nil
}
func (r *fakeServiceRepo) Update(_ context.Context, svc *catalog.Service) error {
	r.services[svc.ID()] = svc
	return nil
}

type fakeSettingsRepo struct {
	cfg *settings.Settings
}

func (r *fakeSettingsRepo) Get(_ context.Context) (*settings.Settings, error) { return r.cfg, nil }
func (r *fakeSettingsRepo) Update(_ context.Context, s *settings.Settings) error {
	r.cfg = s
	return nil
}

type fakeNotificationRepo struct {
	saved []*notification.Notification
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *notification.Notification) error {
	r.saved = append(r.saved, n)
	return nil
}
func (r *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	return nil, shared.NewNotFoundError("Notification", id.String())
}
func (r *fakeNotificationRepo) FindByUserID(_ context.Context, _ uuid.UUID, _, _ int) ([]*notification.Notification, int64, error) {
	return nil, 0, nil
}
func (r *fakeNotificationRepo) CountUnread(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}
func (r *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }

type fakeGeocoder struct {
	coords *geo.Coordinates
	err    error
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) (*geo.Coordinates, error) {
	return g.coords, g.err
}

type fakeCalendar struct {
	created []calendar.Event
	deleted []string
	updated []string
	err     error
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ *settings.Settings, ev calendar.Event) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.created = append(c.created, ev)
	return "evt-" + uuid.NewString()[:8], nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, _ *settings.Settings, eventID string, _ calendar.Event) error {
	c.updated = append(c.updated, eventID)
	return c.err
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, _ *settings.Settings, eventID string) error {
	if c.err != nil {
		return c.err
	}
	c.deleted = append(c.deleted, eventID)
	return nil
}

type fakePublisher struct {
	published []kafka.CloudEvent
	err       error
}

func (p *fakePublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

// --- Fixture ---

type serviceFixture struct {
	svc           *BookingService
	bookings      *fakeBookingRepo
	services      *fakeServiceRepo
	settings      *fakeSettingsRepo
	notifications *fakeNotificationRepo
	geocoder      *fakeGeocoder
	calendar      *fakeCalendar
	publisher     *fakePublisher
	catalogSvc    *catalog.Service
	client        Actor
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	maxDuration := 8.0
	now := time.Now().UTC()
	catalogSvc := catalog.Reconstruct(
		uuid.New(), "menage", "Ménage à domicile", "", "",
		2200, "heure", 1, &maxDuration, true, nil, nil, 1, now, now,
	)

	f := &serviceFixture{
		bookings:      newFakeBookingRepo(),
		services:      &fakeServiceRepo{services: map[uuid.UUID]*catalog.Service{catalogSvc.ID(): catalogSvc}},
		notifications: &fakeNotificationRepo{},
		geocoder:      &fakeGeocoder{coords: &geo.Coordinates{Latitude: 44.0221, Longitude: 1.3529}},
		calendar:      &fakeCalendar{},
		publisher:     &fakePublisher{},
		catalogSvc:    catalogSvc,
		client: Actor{
			UserID: uuid.New(),
			Role:   "client",
			Email:  "marie@example.com",
			Name:   "Marie Dupont",
		},
	}
	f.settings = &fakeSettingsRepo{cfg: &settings.Settings{
		BusinessEmail:         "contact@example.com",
		BusinessLatitude:      43.9833,
		BusinessLongitude:     1.2667,
		DistanceThresholdKm:   10,
		PricePerKmCents:       50,
		MaxAdvanceBookingDays: 365,
	}}

	f.svc = NewBookingService(
		f.bookings,
		f.services,
		f.settings,
		f.notifications,
		f.geocoder,
		f.calendar,
		f.publisher,
		bookingDomain.TransitionPolicy{},
		zap.NewNop(),
	)
	return f
}

func (f *serviceFixture) createRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ServiceID:     f.catalogSvc.ID(),
		RequestedDate: time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		RequestedTime: "14:00",
		Duration:      2,
		Address:       "12 rue des Lilas",
		City:          "Montauban",
		PostalCode:    "82000",
	}
}

func (f *serviceFixture) createBooking(t *testing.T) *BookingDTO {
	t.Helper()
	dto, err := f.svc.CreateBooking(context.Background(), f.client, f.createRequest())
	require.NoError(t, err)
	return dto
}

func connectCalendar(f *serviceFixture) {
	f.settings.cfg.GoogleAccessToken = "access"
	f.settings.cfg.GoogleRefreshToken = "refresh"
}

// --- Tests ---

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	dto := f.createBooking(t)

	assert.Equal(t, "PENDING", dto.Status)
	assert.Equal(t, "Marie Dupont", dto.CustomerName)
	assert.Regexp(t, `^BK-`, dto.BookingNumber)
	assert.Equal(t, int64(4400), dto.BaseAmountCents)
	require.NotNil(t, dto.DistanceKm)
	assert.Greater(t, *dto.DistanceKm, 0.0)
	assert.Equal(t, dto.TotalAmountCents,
		dto.BaseAmountCents+dto.OptionsAmountCents+dto.DistanceFeeCents)

	// One in-app notification for the client, one event for the bus.
	require.Len(t, f.notifications.saved, 1)
	assert.Equal(t, notification.KindBookingCreated, f.notifications.saved[0].Kind())
	assert.Equal(t, "Réservation créée", f.notifications.saved[0].Title())

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.BookingCreated, f.publisher.published[0].Type)

	var payload events.BookingEventPayload
	require.NoError(t, f.publisher.published[0].ParseData(&payload))
	assert.Equal(t, "marie@example.com", payload.CustomerEmail)
	assert.Equal(t, "contact@example.com", payload.AdminEmail)
}

func TestCreateBooking_GeocodingFailureIsTolerated(t *testing.T) {
	f := newFixture(t)
	f.geocoder.err = assert.AnError

	dto := f.createBooking(t)

	assert.Nil(t, dto.DistanceKm)
	assert.Equal(t, int64(0), dto.DistanceFeeCents)
	assert.Equal(t, "PENDING", dto.Status)
}

func TestCreateBooking_UnresolvedAddress(t *testing.T) {
	f := newFixture(t)
	f.geocoder.coords = nil

	dto := f.createBooking(t)

	assert.Nil(t, dto.DistanceKm)
	assert.Equal(t, int64(0), dto.DistanceFeeCents)
}

func TestCreateBooking_InactiveService(t *testing.T) {
	f := newFixture(t)
	f.catalogSvc.Deactivate()

	_, err := f.svc.CreateBooking(context.Background(), f.client, f.createRequest())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCreateBooking_PastDate(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest()
	req.RequestedDate = "2020-01-01"

	_, err := f.svc.CreateBooking(context.Background(), f.client, req)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCreateBooking_MalformedDate(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest()
	req.RequestedDate = "07/06/2026"

	_, err := f.svc.CreateBooking(context.Background(), f.client, req)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	connectCalendar(f)
	dto := f.createBooking(t)
	f.publisher.published = nil
	f.notifications.saved = nil

	confirmed, err := f.svc.ConfirmBooking(context.Background(), dto.ID)
	require.NoError(t, err)

	assert.Equal(t, "CONFIRMED", confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, dto.Version+1, confirmed.Version)
	require.NotNil(t, confirmed.CalendarEventID)
	require.Len(t, f.calendar.created, 1)
	assert.Equal(t, "Ménage à domicile", f.calendar.created[0].ServiceName)

	require.Len(t, f.notifications.saved, 1)
	assert.Equal(t, notification.KindBookingConfirmed, f.notifications.saved[0].Kind())
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.BookingConfirmed, f.publisher.published[0].Type)
}

func TestConfirmBooking_CalendarFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	connectCalendar(f)
	f.calendar.err = assert.AnError
	dto := f.createBooking(t)

	confirmed, err := f.svc.ConfirmBooking(context.Background(), dto.ID)
	require.NoError(t, err)

	assert.Equal(t, "CONFIRMED", confirmed.Status)
	assert.Nil(t, confirmed.CalendarEventID)
}

func TestConfirmBooking_AlreadyConfirmed(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	_, err := f.svc.ConfirmBooking(context.Background(), dto.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmBooking(context.Background(), dto.ID)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestRejectBooking(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)
	f.publisher.published = nil
	f.notifications.saved = nil

	rejected, err := f.svc.RejectBooking(context.Background(), dto.ID, "créneau indisponible")
	require.NoError(t, err)

	assert.Equal(t, "CANCELLED", rejected.Status)
	assert.Equal(t, "créneau indisponible", rejected.AdminNotes)

	// Exactly one notification for the rejection.
	require.Len(t, f.notifications.saved, 1)
	assert.Equal(t, notification.KindBookingCancelled, f.notifications.saved[0].Kind())

	require.Len(t, f.publisher.published, 1)
	var payload events.BookingEventPayload
	require.NoError(t, f.publisher.published[0].ParseData(&payload))
	assert.Equal(t, "créneau indisponible", payload.Reason)
}

func TestCancelBooking_ByOwner(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	cancelled, err := f.svc.CancelBooking(context.Background(), f.client, dto.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestCancelBooking_ForbiddenForStranger(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	stranger := Actor{UserID: uuid.New(), Role: "client"}
	_, err := f.svc.CancelBooking(context.Background(), stranger, dto.ID, "")
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
}

func TestCancelBooking_AdminMayCancelAny(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	admin := Actor{UserID: uuid.New(), Role: "admin"}
	cancelled, err := f.svc.CancelBooking(context.Background(), admin, dto.ID, "fermeture exceptionnelle")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
}

func TestCancelBooking_RemovesCalendarEvent(t *testing.T) {
	f := newFixture(t)
	connectCalendar(f)
	dto := f.createBooking(t)

	confirmed, err := f.svc.ConfirmBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NotNil(t, confirmed.CalendarEventID)
	eventID := *confirmed.CalendarEventID

	cancelled, err := f.svc.CancelBooking(context.Background(), f.client, dto.ID, "")
	require.NoError(t, err)

	assert.Nil(t, cancelled.CalendarEventID)
	assert.Contains(t, f.calendar.deleted, eventID)
}

func TestCompleteBooking_RequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	_, err := f.svc.CompleteBooking(context.Background(), dto.ID)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestCompleteBooking_FromPendingUnderPolicy(t *testing.T) {
	f := newFixture(t)
	f.svc.policy = bookingDomain.TransitionPolicy{AllowCompletionFromPending: true}
	dto := f.createBooking(t)

	completed, err := f.svc.CompleteBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", completed.Status)
}

func TestCompleteBooking(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)
	_, err := f.svc.ConfirmBooking(context.Background(), dto.ID)
	require.NoError(t, err)

	completed, err := f.svc.CompleteBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", completed.Status)
	assert.NotNil(t, completed.CompletedAt)
}

func TestRescheduleBooking_NewDurationRecomputesAmounts(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	rescheduled, err := f.svc.RescheduleBooking(context.Background(), f.client, dto.ID, RescheduleBookingRequest{
		Duration: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(3), rescheduled.Duration)
	assert.Equal(t, int64(6600), rescheduled.BaseAmountCents)
	// Distance fee kept: the address did not change.
	assert.Equal(t, dto.DistanceFeeCents, rescheduled.DistanceFeeCents)
	assert.Equal(t, rescheduled.TotalAmountCents,
		rescheduled.BaseAmountCents+rescheduled.OptionsAmountCents+rescheduled.DistanceFeeCents)
}

func TestRescheduleBooking_KeepsSelectedPriceOption(t *testing.T) {
	f := newFixture(t)
	optionID := uuid.New()
	maxDuration := 8.0
	now := time.Now().UTC()
	svcWithOption := catalog.Reconstruct(
		uuid.New(), "menage-xl", "Ménage à domicile", "", "",
		2200, "heure", 1, &maxDuration, true,
		[]catalog.PriceOption{
			{ID: optionID, Name: "Grand logement", Modifier: 1.2, ModifierType: catalog.ModifierMultiplier},
		},
		nil, 1, now, now,
	)
	f.services.services[svcWithOption.ID()] = svcWithOption

	req := f.createRequest()
	req.ServiceID = svcWithOption.ID()
	req.PriceOptionID = &optionID
	dto, err := f.svc.CreateBooking(context.Background(), f.client, req)
	require.NoError(t, err)
	// 2200 * 2 = 4400, then * 1.2 = 5280
	require.Equal(t, int64(5280), dto.BaseAmountCents)

	rescheduled, err := f.svc.RescheduleBooking(context.Background(), f.client, dto.ID, RescheduleBookingRequest{
		Duration: 3,
	})
	require.NoError(t, err)

	// The stored modifier still applies: 2200 * 3 = 6600, then * 1.2 = 7920.
	assert.Equal(t, int64(7920), rescheduled.BaseAmountCents)
	assert.Equal(t, rescheduled.TotalAmountCents,
		rescheduled.BaseAmountCents+rescheduled.OptionsAmountCents+rescheduled.DistanceFeeCents)
}

func TestRescheduleBooking_SurvivesCatalogChanges(t *testing.T) {
	f := newFixture(t)
	addonID := uuid.New()
	maxDuration := 8.0
	now := time.Now().UTC()
	svcWithAddon := catalog.Reconstruct(
		uuid.New(), "menage-addon", "Ménage à domicile", "", "",
		2200, "heure", 1, &maxDuration, true, nil,
		[]catalog.ServiceOption{{ID: addonID, Name: "Repassage", PriceCents: 800}},
		1, now, now,
	)
	f.services.services[svcWithAddon.ID()] = svcWithAddon

	req := f.createRequest()
	req.ServiceID = svcWithAddon.ID()
	req.ServiceOptionIDs = []uuid.UUID{addonID}
	dto, err := f.svc.CreateBooking(context.Background(), f.client, req)
	require.NoError(t, err)
	require.Equal(t, int64(800), dto.OptionsAmountCents)

	// The catalog moves on: the base price doubles and the add-on is removed.
	f.services.services[svcWithAddon.ID()] = catalog.Reconstruct(
		svcWithAddon.ID(), "menage-addon", "Ménage à domicile", "", "",
		4400, "heure", 1, &maxDuration, true, nil, nil, 2, now, now,
	)

	rescheduled, err := f.svc.RescheduleBooking(context.Background(), f.client, dto.ID, RescheduleBookingRequest{
		Duration: 3,
	})
	require.NoError(t, err)

	// Amounts are recomputed from the booking's snapshots, not the catalog.
	assert.Equal(t, int64(6600), rescheduled.BaseAmountCents)
	assert.Equal(t, int64(800), rescheduled.OptionsAmountCents)
}

func TestUpdateBooking_StatusTransition(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)
	admin := Actor{UserID: uuid.New(), Role: "admin"}

	status := "CONFIRMED"
	updated, err := f.svc.UpdateBooking(context.Background(), admin, dto.ID, UpdateBookingRequest{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", updated.Status)
	assert.NotNil(t, updated.ConfirmedAt)
}

func TestUpdateBooking_StatusCancelledUsesNotesAsReason(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)
	admin := Actor{UserID: uuid.New(), Role: "admin"}

	status := "CANCELLED"
	reason := "client absent"
	updated, err := f.svc.UpdateBooking(context.Background(), admin, dto.ID, UpdateBookingRequest{
		Status:     &status,
		AdminNotes: &reason,
	})
	require.NoError(t, err)

	assert.Equal(t, "CANCELLED", updated.Status)
	assert.Equal(t, "client absent", updated.AdminNotes)
}

func TestUpdateBooking_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)
	admin := Actor{UserID: uuid.New(), Role: "admin"}

	status := "SHIPPED"
	_, err := f.svc.UpdateBooking(context.Background(), admin, dto.ID, UpdateBookingRequest{
		Status: &status,
	})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestUpdateBooking_StatusPendingRejected(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)
	admin := Actor{UserID: uuid.New(), Role: "admin"}

	status := "PENDING"
	_, err := f.svc.UpdateBooking(context.Background(), admin, dto.ID, UpdateBookingRequest{
		Status: &status,
	})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCancelBooking_ClearsEventReferenceOnDeleteFailure(t *testing.T) {
	f := newFixture(t)
	connectCalendar(f)
	dto := f.createBooking(t)

	confirmed, err := f.svc.ConfirmBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NotNil(t, confirmed.CalendarEventID)

	f.calendar.err = assert.AnError
	cancelled, err := f.svc.CancelBooking(context.Background(), f.client, dto.ID, "")
	require.NoError(t, err)

	// The delete is best-effort; the reference is dropped either way.
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Nil(t, cancelled.CalendarEventID)
	assert.Empty(t, f.calendar.deleted)
}

func TestGetBooking_Authorization(t *testing.T) {
	f := newFixture(t)
	dto := f.createBooking(t)

	_, err := f.svc.GetBooking(context.Background(), f.client, dto.ID)
	assert.NoError(t, err)

	admin := Actor{UserID: uuid.New(), Role: "admin"}
	_, err = f.svc.GetBooking(context.Background(), admin, dto.ID)
	assert.NoError(t, err)

	stranger := Actor{UserID: uuid.New(), Role: "client"}
	_, err = f.svc.GetBooking(context.Background(), stranger, dto.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
}

func TestComputeQuote_NoBookingPersisted(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.ComputeQuote(context.Background(), QuoteRequest{
		ServiceID: f.catalogSvc.ID(),
		Duration:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6600), quote.BaseAmountCents)
	assert.Empty(t, f.bookings.bookings)
	assert.Empty(t, f.publisher.published)
}

func TestCalculateDistance(t *testing.T) {
	f := newFixture(t)

	// Toulouse is well beyond the 10 km free-travel threshold.
	dto, err := f.svc.CalculateDistance(context.Background(), geo.Coordinates{
		Latitude:  43.6045,
		Longitude: 1.4442,
	})
	require.NoError(t, err)

	assert.Greater(t, dto.DistanceKm, 10.0)
	assert.Greater(t, dto.DistanceFeeCents, int64(0))
	assert.Equal(t, 10.0, dto.DistanceThresholdKm)
	assert.Equal(t, int64(50), dto.PricePerKmCents)
	assert.Equal(t, geo.Coordinates{Latitude: 43.9833, Longitude: 1.2667}, dto.BusinessLocation)
}

func TestCalculateDistance_WithinThreshold(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.CalculateDistance(context.Background(), geo.Coordinates{
		Latitude:  43.9833,
		Longitude: 1.2667,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, dto.DistanceKm)
	assert.Equal(t, int64(0), dto.DistanceFeeCents)
}

func TestGetBookingStats(t *testing.T) {
	f := newFixture(t)
	first := f.createBooking(t)
	f.createBooking(t)
	_, err := f.svc.ConfirmBooking(context.Background(), first.ID)
	require.NoError(t, err)

	stats, err := f.svc.GetBookingStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["PENDING"])
	assert.Equal(t, int64(1), stats.ByStatus["CONFIRMED"])
}
