package unit

import (
	"context"
	"errors"
	"time"

	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/money"
)

var (
	ErrUnitNotFound     = errors.New("unit: not found")
	ErrInvalidBasePrice = errors.New("unit: base price must be positive")
	ErrInvalidPromo     = errors.New("unit: invalid promotional rate")
)

type UnitID string

type PromoKind string

const (
	PromoPercentOff   PromoKind = "PERCENT_OFF"
	PromoFixedNightly PromoKind = "FIXED_NIGHTLY"
)

// PromotionalRate is a time-bounded nightly rate override. A unit carries at
// most one window, so priced nights never stack promotions.
type PromotionalRate struct {
	Kind    PromoKind
	Percent int         // PERCENT_OFF: whole percent taken off the base price
	Nightly money.Money // FIXED_NIGHTLY: the overriding nightly rate
	Start   time.Time   // inclusive
	End     time.Time   // inclusive
	Label   string
}

func (p PromotionalRate) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || p.End.Before(p.Start) {
		return ErrInvalidPromo
	}
	switch p.Kind {
	case PromoPercentOff:
		if p.Percent < 0 || p.Percent > 100 {
			return ErrInvalidPromo
		}
	case PromoFixedNightly:
		if !p.Nightly.IsPositive() {
			return ErrInvalidPromo
		}
	default:
		return ErrInvalidPromo
	}
	return nil
}

// OverlapsStay reports whether the promotion window touches any night of the
// stay. The window is inclusive on both ends, so it is widened to the end of
// its last day before applying the half-open overlap rule.
func (p PromotionalRate) OverlapsStay(stay daterange.DateRange) bool {
	window := daterange.DateRange{
		CheckIn:  daterange.TruncateToDay(p.Start),
		CheckOut: daterange.TruncateToDay(p.End).AddDate(0, 0, 1),
	}
	return window.Overlaps(daterange.DateRange{
		CheckIn:  daterange.TruncateToDay(stay.CheckIn),
		CheckOut: daterange.TruncateToDay(stay.CheckOut),
	})
}

// Unit is a bookable room or shortlet apartment in a tenant's catalog.
type Unit struct {
	ID        UnitID
	TenantID  string
	Name      string
	Capacity  int
	BasePrice money.Money
	Promo     *PromotionalRate
}

func New(id UnitID, tenantID, name string, capacity int, basePrice money.Money, promo *PromotionalRate) (*Unit, error) {
	if !basePrice.IsPositive() {
		return nil, ErrInvalidBasePrice
	}
	if promo != nil {
		if err := promo.Validate(); err != nil {
			return nil, err
		}
	}
	return &Unit{ID: id, TenantID: tenantID, Name: name, Capacity: capacity, BasePrice: basePrice, Promo: promo}, nil
}

type Repository interface {
	ByID(ctx context.Context, id UnitID) (*Unit, error)
	Save(ctx context.Context, u *Unit) error
}
