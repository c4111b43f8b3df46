package booking

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/kiloutout/service-booking/internal/domain/catalog"
	"github.com/kiloutout/service-booking/internal/domain/settings"
	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// SelectedOption snapshots a chosen service option with the price it had
// when the quote was computed. Later catalog price changes must never leak
// into an existing booking.
type SelectedOption struct {
	ServiceOptionID uuid.UUID `json:"service_option_id"`
	Name            string    `json:"name"`
	PriceCents      int64     `json:"price_cents"`
}

// SelectedPriceOption snapshots the chosen price modifier with the values
// it had when the quote was computed, for the same reason.
type SelectedPriceOption struct {
	PriceOptionID uuid.UUID            `json:"price_option_id"`
	Name          string               `json:"name"`
	Modifier      float64              `json:"modifier"`
	ModifierType  catalog.ModifierType `json:"modifier_type"`
}

// QuoteLine is one row of the itemized breakdown.
type QuoteLine struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

// Quote is the itemized pricing result for a service, duration, options
// and distance combination. All amounts are in cents. UnitPriceCents and
// the option snapshots carry the pricing inputs forward so the amounts can
// later be recomputed without consulting the live catalog.
type Quote struct {
	BaseAmountCents    int64                `json:"base_amount_cents"`
	OptionsAmountCents int64                `json:"options_amount_cents"`
	DistanceFeeCents   int64                `json:"distance_fee_cents"`
	TotalAmountCents   int64                `json:"total_amount_cents"`
	UnitPriceCents     int64                `json:"unit_price_cents"`
	PriceOption        *SelectedPriceOption `json:"price_option,omitempty"`
	Lines              []QuoteLine          `json:"lines"`
	SelectedOptions    []SelectedOption     `json:"selected_options"`
}

// ComputeQuote computes the itemized price for a booking request. It is a
// pure function: identical inputs reproduce the identical total to the
// cent, which is what allows the computed amounts to be persisted on the
// booking independently of later catalog changes.
//
// The steps run in fixed order: duration validation, base amount, price
// option modifier, service option add-ons, distance fee, total. distanceKm
// is nil when the destination could not be geocoded; the fee is then 0.
func ComputeQuote(
	svc *catalog.Service,
	duration float64,
	priceOptionID *uuid.UUID,
	serviceOptionIDs []uuid.UUID,
	distanceKm *float64,
	cfg *settings.Settings,
) (*Quote, error) {
	if err := validateDuration(svc, duration); err != nil {
		return nil, err
	}

	var priceOption *SelectedPriceOption
	if priceOptionID != nil {
		po, ok := svc.PriceOptionByID(*priceOptionID)
		if !ok {
			return nil, shared.NewNotFoundError("PriceOption", priceOptionID.String())
		}
		priceOption = &SelectedPriceOption{
			PriceOptionID: po.ID,
			Name:          po.Name,
			Modifier:      po.Modifier,
			ModifierType:  po.ModifierType,
		}
	}

	options := make([]SelectedOption, 0, len(serviceOptionIDs))
	for _, id := range serviceOptionIDs {
		so, ok := svc.ServiceOptionByID(id)
		if !ok {
			return nil, shared.NewNotFoundError("ServiceOption", id.String())
		}
		options = append(options, SelectedOption{
			ServiceOptionID: so.ID,
			Name:            so.Name,
			PriceCents:      so.PriceCents,
		})
	}

	return assembleQuote(svc.Name(), svc.Unit(), svc.BasePriceCents(), duration, priceOption, options, distanceKm, cfg)
}

// RequoteBooking recomputes a booking's amounts for a new duration from the
// pricing snapshots stored on the booking. The service supplies only the
// duration bounds and display labels; its current prices are never
// consulted, so catalog changes made after the booking never leak in.
func RequoteBooking(b *Booking, svc *catalog.Service, duration float64, cfg *settings.Settings) (*Quote, error) {
	if err := validateDuration(svc, duration); err != nil {
		return nil, err
	}
	return assembleQuote(b.ServiceName(), svc.Unit(), b.UnitPriceCents(), duration, b.PriceOption(), b.Options(), b.DistanceKm(), cfg)
}

func validateDuration(svc *catalog.Service, duration float64) error {
	if duration <= 0 {
		return shared.NewValidationError("duration must be positive")
	}
	if !svc.DurationInRange(duration) {
		if svc.MaxDuration() != nil {
			return shared.NewValidationError(fmt.Sprintf(
				"duration must be between %g and %g %s", svc.MinDuration(), *svc.MaxDuration(), svc.Unit()))
		}
		return shared.NewValidationError(fmt.Sprintf(
			"duration must be at least %g %s", svc.MinDuration(), svc.Unit()))
	}
	return nil
}

// assembleQuote runs the pricing steps in fixed order against resolved
// snapshots: base amount, price option modifier, service option add-ons,
// distance fee, total.
func assembleQuote(
	serviceName, unit string,
	unitPriceCents int64,
	duration float64,
	priceOption *SelectedPriceOption,
	options []SelectedOption,
	distanceKm *float64,
	cfg *settings.Settings,
) (*Quote, error) {
	q := &Quote{
		UnitPriceCents: unitPriceCents,
		PriceOption:    priceOption,
	}

	baseCents := roundHalfUpCents(float64(unitPriceCents) * duration)
	q.Lines = append(q.Lines, QuoteLine{
		Label:       fmt.Sprintf("%s (%g %s)", serviceName, duration, unit),
		AmountCents: baseCents,
	})

	if priceOption != nil {
		switch priceOption.ModifierType {
		case catalog.ModifierMultiplier:
			modified := roundHalfUpCents(float64(baseCents) * priceOption.Modifier)
			q.Lines = append(q.Lines, QuoteLine{
				Label:       priceOption.Name,
				AmountCents: modified - baseCents,
			})
			baseCents = modified
		case catalog.ModifierFixed:
			fixed := roundHalfUpCents(priceOption.Modifier * 100)
			q.Lines = append(q.Lines, QuoteLine{Label: priceOption.Name, AmountCents: fixed})
			baseCents += fixed
		default:
			return nil, shared.NewValidationError("invalid price option modifier type: " + string(priceOption.ModifierType))
		}
	}
	q.BaseAmountCents = baseCents

	for _, so := range options {
		q.OptionsAmountCents += so.PriceCents
		q.Lines = append(q.Lines, QuoteLine{Label: so.Name, AmountCents: so.PriceCents})
		q.SelectedOptions = append(q.SelectedOptions, so)
	}

	q.DistanceFeeCents = DistanceFeeCents(distanceKm, cfg)
	if q.DistanceFeeCents > 0 {
		q.Lines = append(q.Lines, QuoteLine{
			Label:       fmt.Sprintf("Frais de déplacement (%.2f km)", *distanceKm),
			AmountCents: q.DistanceFeeCents,
		})
	}

	q.TotalAmountCents = q.BaseAmountCents + q.OptionsAmountCents + q.DistanceFeeCents
	return q, nil
}

// DistanceFeeCents returns the travel surcharge for a resolved distance.
// The fee is zero when the distance is unknown or within the free-travel
// threshold, and is rounded half-up once on the cent boundary.
func DistanceFeeCents(distanceKm *float64, cfg *settings.Settings) int64 {
	if distanceKm == nil {
		return 0
	}
	if *distanceKm <= cfg.DistanceThresholdKm {
		return 0
	}
	return roundHalfUpCents((*distanceKm - cfg.DistanceThresholdKm) * float64(cfg.PricePerKmCents))
}

// roundHalfUpCents rounds a fractional cent amount to the nearest whole
// cent, half up.
func roundHalfUpCents(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
