package pricing

import (
	"errors"

	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/money"
	"staykeeper/internal/domain/unit"
)

var (
	ErrZeroNights      = errors.New("pricing: stay must cover at least one night")
	ErrInvalidOverride = errors.New("pricing: manual total override must be positive")
	ErrUnitRequired    = errors.New("pricing: unit required")
)

// Quote is the committed price of a stay at booking time.
type Quote struct {
	Nights        int
	NightlyRate   money.Money
	ComputedTotal money.Money
	PromoLabel    string // empty when the base price applied
}

// Engine computes stay prices. It is a pure function of its inputs; the
// promotion is resolved once at quote time and a single effective rate covers
// the whole stay, matching how the desk quotes a booking. Stays spanning a
// promo boundary are not prorated night-by-night.
type Engine struct{}

// PriceStay resolves the nightly rate for the range and multiplies it out.
func (Engine) PriceStay(u *unit.Unit, stay daterange.DateRange) (Quote, error) {
	if u == nil {
		return Quote{}, ErrUnitRequired
	}
	if err := stay.Validate(); err != nil {
		return Quote{}, err
	}
	nights := stay.Nights()
	if nights < 1 {
		return Quote{}, ErrZeroNights
	}

	rate := u.BasePrice
	label := ""
	if u.Promo != nil && u.Promo.OverlapsStay(stay) {
		resolved, err := resolvePromoRate(u.BasePrice, *u.Promo)
		if err != nil {
			return Quote{}, err
		}
		rate = resolved
		label = u.Promo.Label
	}

	return Quote{
		Nights:        nights,
		NightlyRate:   rate,
		ComputedTotal: rate.Multiply(int64(nights)),
		PromoLabel:    label,
	}, nil
}

// ApplyOverride lets staff commit a total different from the computed one.
// The override may move in either direction but must stay positive and in the
// quote's currency; the quote keeps reporting ComputedTotal so the discount
// delta stays visible.
func (Engine) ApplyOverride(q Quote, override money.Money) (money.Money, error) {
	if !override.IsPositive() {
		return money.Money{}, ErrInvalidOverride
	}
	if !override.SameCurrency(q.ComputedTotal) {
		return money.Money{}, money.ErrCurrencyMismatch
	}
	return override, nil
}

func resolvePromoRate(base money.Money, promo unit.PromotionalRate) (money.Money, error) {
	switch promo.Kind {
	case unit.PromoPercentOff:
		return base.MulRatio(int64(100-promo.Percent), 100)
	case unit.PromoFixedNightly:
		if !promo.Nightly.SameCurrency(base) {
			return money.Money{}, money.ErrCurrencyMismatch
		}
		return promo.Nightly, nil
	}
	return money.Money{}, unit.ErrInvalidPromo
}
