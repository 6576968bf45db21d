package booking

import (
	"context"
	"time"

	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/queries"
	"staykeeper/internal/app/uow"
	domainpricing "staykeeper/internal/domain/pricing"
	domainrange "staykeeper/internal/domain/shared/daterange"
	domainunit "staykeeper/internal/domain/unit"
)

const quoteStayKey = "booking.quote"

type QuoteStayQuery struct {
	UnitID   string
	CheckIn  time.Time
	CheckOut time.Time
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

type QuoteStayResult struct {
	Nights        int    `json:"nights"`
	NightlyRate   string `json:"nightly_rate"`
	ComputedTotal string `json:"computed_total"`
	PromoLabel    string `json:"promo_label,omitempty"`
}

// QuoteStayHandler prices a stay without committing anything, so the desk can
// show the rate and any promo discount before creating the booking.
type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory

	engine domainpricing.Engine
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (QuoteStayResult, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return QuoteStayResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return QuoteStayResult{}, err
	}
	u, err := unit.Units().ByID(execCtx, domainunit.UnitID(q.UnitID))
	if err != nil {
		return QuoteStayResult{}, err
	}
	quote, err := h.engine.PriceStay(u, dr)
	if err != nil {
		return QuoteStayResult{}, err
	}
	return QuoteStayResult{
		Nights:        quote.Nights,
		NightlyRate:   quote.NightlyRate.Format(),
		ComputedTotal: quote.ComputedTotal.Format(),
		PromoLabel:    quote.PromoLabel,
	}, nil
}

var _ queries.Handler[QuoteStayQuery, QuoteStayResult] = (*QuoteStayHandler)(nil)
