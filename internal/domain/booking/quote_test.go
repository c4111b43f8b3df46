package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiloutout/service-booking/internal/domain/catalog"
	"github.com/kiloutout/service-booking/internal/domain/settings"
	"github.com/kiloutout/service-booking/internal/domain/shared"
)

func testSettings() *settings.Settings {
	return &settings.Settings{
		BusinessLatitude:    43.9833,
		BusinessLongitude:   1.2667,
		DistanceThresholdKm: 10,
		PricePerKmCents:     50,
	}
}

func testService(t *testing.T, basePriceCents int64, priceOptions []catalog.PriceOption, serviceOptions []catalog.ServiceOption) *catalog.Service {
	t.Helper()
	maxDuration := 8.0
	now := time.Now().UTC()
	return catalog.Reconstruct(
		uuid.New(),
		"menage",
		"Ménage à domicile",
		"",
		"",
		basePriceCents,
		"heure",
		1,
		&maxDuration,
		true,
		priceOptions,
		serviceOptions,
		1,
		now,
		now,
	)
}

func TestComputeQuote_BaseAmount(t *testing.T) {
	svc := testService(t, 2200, nil, nil)

	quote, err := ComputeQuote(svc, 3, nil, nil, nil, testSettings())
	require.NoError(t, err)

	assert.Equal(t, int64(6600), quote.BaseAmountCents)
	assert.Equal(t, int64(0), quote.OptionsAmountCents)
	assert.Equal(t, int64(0), quote.DistanceFeeCents)
	assert.Equal(t, int64(6600), quote.TotalAmountCents)
}

func TestComputeQuote_MultiplierPriceOption(t *testing.T) {
	optionID := uuid.New()
	svc := testService(t, 2200, []catalog.PriceOption{
		{ID: optionID, Name: "Grand logement", Modifier: 1.2, ModifierType: catalog.ModifierMultiplier},
	}, nil)

	quote, err := ComputeQuote(svc, 2, &optionID, nil, nil, testSettings())
	require.NoError(t, err)

	// 2200 * 2 = 4400, then * 1.2 = 5280
	assert.Equal(t, int64(5280), quote.BaseAmountCents)
	assert.Equal(t, int64(5280), quote.TotalAmountCents)
}

func TestComputeQuote_SnapshotsPricingInputs(t *testing.T) {
	optionID := uuid.New()
	svc := testService(t, 2200, []catalog.PriceOption{
		{ID: optionID, Name: "Grand logement", Modifier: 1.2, ModifierType: catalog.ModifierMultiplier},
	}, nil)

	quote, err := ComputeQuote(svc, 2, &optionID, nil, nil, testSettings())
	require.NoError(t, err)

	assert.Equal(t, int64(2200), quote.UnitPriceCents)
	require.NotNil(t, quote.PriceOption)
	assert.Equal(t, optionID, quote.PriceOption.PriceOptionID)
	assert.Equal(t, 1.2, quote.PriceOption.Modifier)
	assert.Equal(t, catalog.ModifierMultiplier, quote.PriceOption.ModifierType)
}

func TestComputeQuote_FixedPriceOption(t *testing.T) {
	optionID := uuid.New()
	svc := testService(t, 2200, []catalog.PriceOption{
		{ID: optionID, Name: "Produits fournis", Modifier: 5, ModifierType: catalog.ModifierFixed},
	}, nil)

	quote, err := ComputeQuote(svc, 1, &optionID, nil, nil, testSettings())
	require.NoError(t, err)

	// 2200 + 500
	assert.Equal(t, int64(2700), quote.BaseAmountCents)
	assert.Equal(t, int64(2700), quote.TotalAmountCents)
}

func TestComputeQuote_ServiceOptions(t *testing.T) {
	optA := uuid.New()
	optB := uuid.New()
	svc := testService(t, 2200, nil, []catalog.ServiceOption{
		{ID: optA, Name: "Repassage", PriceCents: 800},
		{ID: optB, Name: "Vitres", PriceCents: 1200},
	})

	quote, err := ComputeQuote(svc, 2, nil, []uuid.UUID{optA, optB}, nil, testSettings())
	require.NoError(t, err)

	assert.Equal(t, int64(4400), quote.BaseAmountCents)
	assert.Equal(t, int64(2000), quote.OptionsAmountCents)
	assert.Equal(t, int64(6400), quote.TotalAmountCents)
	require.Len(t, quote.SelectedOptions, 2)
	assert.Equal(t, int64(800), quote.SelectedOptions[0].PriceCents)
}

func TestComputeQuote_UnknownServiceOption(t *testing.T) {
	svc := testService(t, 2200, nil, nil)

	_, err := ComputeQuote(svc, 2, nil, []uuid.UUID{uuid.New()}, nil, testSettings())
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestComputeQuote_UnknownPriceOption(t *testing.T) {
	svc := testService(t, 2200, nil, nil)
	foreign := uuid.New()

	_, err := ComputeQuote(svc, 2, &foreign, nil, nil, testSettings())
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestComputeQuote_DistanceFee(t *testing.T) {
	svc := testService(t, 2200, nil, nil)
	distance := 15.3

	quote, err := ComputeQuote(svc, 1, nil, nil, &distance, testSettings())
	require.NoError(t, err)

	// (15.3 - 10) * 50 = 265
	assert.Equal(t, int64(265), quote.DistanceFeeCents)
	assert.Equal(t, int64(2465), quote.TotalAmountCents)
}

func TestComputeQuote_DistanceWithinThreshold(t *testing.T) {
	svc := testService(t, 2200, nil, nil)
	distance := 9.99

	quote, err := ComputeQuote(svc, 1, nil, nil, &distance, testSettings())
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.DistanceFeeCents)
}

func TestComputeQuote_UnknownDistance(t *testing.T) {
	svc := testService(t, 2200, nil, nil)

	quote, err := ComputeQuote(svc, 1, nil, nil, nil, testSettings())
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.DistanceFeeCents)
}

func TestComputeQuote_DurationOutOfRange(t *testing.T) {
	svc := testService(t, 2200, nil, nil)

	_, err := ComputeQuote(svc, 0.5, nil, nil, nil, testSettings())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = ComputeQuote(svc, 9, nil, nil, nil, testSettings())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = ComputeQuote(svc, -1, nil, nil, nil, testSettings())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestComputeQuote_TotalInvariant(t *testing.T) {
	optionID := uuid.New()
	addonID := uuid.New()
	svc := testService(t, 3350, []catalog.PriceOption{
		{ID: optionID, Name: "Week-end", Modifier: 1.25, ModifierType: catalog.ModifierMultiplier},
	}, []catalog.ServiceOption{
		{ID: addonID, Name: "Repassage", PriceCents: 800},
	})
	distance := 23.47

	quote, err := ComputeQuote(svc, 2.5, &optionID, []uuid.UUID{addonID}, &distance, testSettings())
	require.NoError(t, err)

	assert.Equal(t, quote.TotalAmountCents,
		quote.BaseAmountCents+quote.OptionsAmountCents+quote.DistanceFeeCents)

	// Identical inputs reproduce the identical quote.
	again, err := ComputeQuote(svc, 2.5, &optionID, []uuid.UUID{addonID}, &distance, testSettings())
	require.NoError(t, err)
	assert.Equal(t, quote.TotalAmountCents, again.TotalAmountCents)
}

func bookingFromQuote(t *testing.T, svc *catalog.Service, duration float64, q *Quote) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(), "Marie Dupont", "marie@example.com",
		svc.ID(), svc.Name(),
		time.Now().UTC().AddDate(0, 0, 7), "14:00", duration,
		"12 rue des Lilas", "Montauban", "82000",
		nil, nil, q, "",
	)
	require.NoError(t, err)
	return bk
}

func TestRequoteBooking_AppliesStoredPriceOption(t *testing.T) {
	optionID := uuid.New()
	svc := testService(t, 2200, []catalog.PriceOption{
		{ID: optionID, Name: "Grand logement", Modifier: 1.2, ModifierType: catalog.ModifierMultiplier},
	}, nil)

	quote, err := ComputeQuote(svc, 2, &optionID, nil, nil, testSettings())
	require.NoError(t, err)
	// 2200 * 2 = 4400, then * 1.2 = 5280
	assert.Equal(t, int64(5280), quote.BaseAmountCents)

	bk := bookingFromQuote(t, svc, 2, quote)

	requoted, err := RequoteBooking(bk, svc, 3, testSettings())
	require.NoError(t, err)

	// 2200 * 3 = 6600, then * 1.2 = 7920
	assert.Equal(t, int64(7920), requoted.BaseAmountCents)
	assert.Equal(t, requoted.TotalAmountCents,
		requoted.BaseAmountCents+requoted.OptionsAmountCents+requoted.DistanceFeeCents)
}

func TestRequoteBooking_IgnoresLaterCatalogChanges(t *testing.T) {
	optionID := uuid.New()
	addonID := uuid.New()
	svc := testService(t, 2200, []catalog.PriceOption{
		{ID: optionID, Name: "Grand logement", Modifier: 1.2, ModifierType: catalog.ModifierMultiplier},
	}, []catalog.ServiceOption{
		{ID: addonID, Name: "Repassage", PriceCents: 800},
	})

	quote, err := ComputeQuote(svc, 2, &optionID, []uuid.UUID{addonID}, nil, testSettings())
	require.NoError(t, err)
	bk := bookingFromQuote(t, svc, 2, quote)

	// The catalog moved on: the base price doubled and both options were
	// removed from the service.
	maxDuration := 8.0
	now := time.Now().UTC()
	current := catalog.Reconstruct(
		svc.ID(), "menage", "Ménage à domicile", "", "",
		4400, "heure", 1, &maxDuration, true, nil, nil, 2, now, now,
	)

	requoted, err := RequoteBooking(bk, current, 3, testSettings())
	require.NoError(t, err)

	// Amounts come from the snapshots stored on the booking, not from the
	// current catalog.
	assert.Equal(t, int64(7920), requoted.BaseAmountCents)
	assert.Equal(t, int64(800), requoted.OptionsAmountCents)
	assert.Equal(t, int64(8720), requoted.TotalAmountCents)
}

func TestRequoteBooking_ChecksDurationBounds(t *testing.T) {
	svc := testService(t, 2200, nil, nil)
	quote, err := ComputeQuote(svc, 2, nil, nil, nil, testSettings())
	require.NoError(t, err)
	bk := bookingFromQuote(t, svc, 2, quote)

	_, err = RequoteBooking(bk, svc, 9, testSettings())
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestDistanceFeeCents_Rounding(t *testing.T) {
	cfg := testSettings()

	// 10.01 km -> 0.01 * 50 = 0.5 cents, rounds half up to 1.
	distance := 10.01
	assert.Equal(t, int64(1), DistanceFeeCents(&distance, cfg))

	// Exactly at the threshold there is no fee.
	distance = 10.0
	assert.Equal(t, int64(0), DistanceFeeCents(&distance, cfg))
}
