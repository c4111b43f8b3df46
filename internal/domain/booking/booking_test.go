package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiloutout/service-booking/internal/domain/shared"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	quote := &Quote{
		BaseAmountCents:    4400,
		OptionsAmountCents: 800,
		DistanceFeeCents:   265,
		TotalAmountCents:   5465,
	}
	bk, err := NewBooking(
		uuid.New(),
		"Marie Dupont",
		"marie@example.com",
		uuid.New(),
		"Ménage à domicile",
		time.Now().UTC().AddDate(0, 0, 7),
		"14:00",
		2,
		"12 rue des Lilas",
		"Montauban",
		"82000",
		nil,
		nil,
		quote,
		"code porte 1234",
	)
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Regexp(t, `^BK-[A-HJ-NP-Z2-9]{6}$`, bk.BookingNumber())
	assert.Equal(t, int64(1), bk.Version())
	assert.Equal(t, int64(5465), bk.TotalAmountCents())
	assert.Equal(t, bk.TotalAmountCents(),
		bk.BaseAmountCents()+bk.OptionsAmountCents()+bk.DistanceFeeCents())
	assert.Nil(t, bk.ConfirmedAt())
	assert.Nil(t, bk.CalendarEventID())
}

func TestNewBooking_Validation(t *testing.T) {
	quote := &Quote{}

	_, err := NewBooking(uuid.Nil, "n", "e", uuid.New(), "svc",
		time.Now(), "14:00", 2, "a", "c", "82000", nil, nil, quote, "")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = NewBooking(uuid.New(), "n", "e", uuid.New(), "svc",
		time.Now(), "14:00", 2, "", "c", "82000", nil, nil, quote, "")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = NewBooking(uuid.New(), "n", "e", uuid.New(), "svc",
		time.Now(), "14:00", 2, "a", "c", "82000", nil, nil, nil, "")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestBooking_FullAddress(t *testing.T) {
	bk := newTestBooking(t)
	assert.Equal(t, "12 rue des Lilas, 82000 Montauban, France", bk.FullAddress())
}

func TestBooking_ConfirmThenComplete(t *testing.T) {
	policy := TransitionPolicy{}
	bk := newTestBooking(t)

	require.NoError(t, bk.Confirm(policy))
	assert.Equal(t, StatusConfirmed, bk.Status())
	require.NotNil(t, bk.ConfirmedAt())

	require.NoError(t, bk.Complete(policy))
	assert.Equal(t, StatusCompleted, bk.Status())
	require.NotNil(t, bk.CompletedAt())
}

func TestBooking_CompleteFromPendingRejected(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Complete(TransitionPolicy{})
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
	assert.Equal(t, StatusPending, bk.Status())
}

func TestBooking_CompleteFromPendingAllowedByPolicy(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Complete(TransitionPolicy{AllowCompletionFromPending: true}))
	assert.Equal(t, StatusCompleted, bk.Status())
}

func TestBooking_CancelRecordsReason(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("créneau indisponible", TransitionPolicy{}))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "créneau indisponible", bk.AdminNotes())
	require.NotNil(t, bk.CancelledAt())

	// Terminal: no further transitions.
	err := bk.Confirm(TransitionPolicy{})
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestBooking_Reschedule(t *testing.T) {
	bk := newTestBooking(t)
	newDate := bk.RequestedDate().AddDate(0, 0, 3)

	require.NoError(t, bk.Reschedule(newDate, "09:30", 0, nil))
	assert.Equal(t, newDate, bk.RequestedDate())
	assert.Equal(t, "09:30", bk.RequestedTime())
	assert.Equal(t, float64(2), bk.Duration())
}

func TestBooking_RescheduleDurationNeedsQuote(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Reschedule(time.Time{}, "", 3, nil)
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	quote := &Quote{BaseAmountCents: 6600, TotalAmountCents: 6865, DistanceFeeCents: 265}
	require.NoError(t, bk.Reschedule(time.Time{}, "", 3, quote))
	assert.Equal(t, float64(3), bk.Duration())
	assert.Equal(t, int64(6865), bk.TotalAmountCents())
}

func TestBooking_RescheduleTerminalRejected(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Cancel("", TransitionPolicy{}))

	err := bk.Reschedule(time.Now().AddDate(0, 0, 1), "10:00", 0, nil)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestBooking_IncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}

func TestBooking_CalendarEventID(t *testing.T) {
	bk := newTestBooking(t)

	bk.SetCalendarEventID("evt-123")
	require.NotNil(t, bk.CalendarEventID())
	assert.Equal(t, "evt-123", *bk.CalendarEventID())

	bk.ClearCalendarEventID()
	assert.Nil(t, bk.CalendarEventID())
}

func TestGenerateBookingNumber_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n, err := generateBookingNumber()
		require.NoError(t, err)
		assert.False(t, seen[n], "duplicate booking number %s", n)
		seen[n] = true
	}
}
