package checkout

import (
	"context"
	"errors"
	"time"

	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/policies"
	"staykeeper/internal/app/queries"
	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
	domaincheckout "staykeeper/internal/domain/checkout"
)

const previewCheckoutKey = "checkout.preview"

type PreviewQuery struct {
	BookingID string
}

func (q PreviewQuery) Key() string { return previewCheckoutKey }

type Preview struct {
	BookingID         string `json:"booking_id"`
	Outstanding       string `json:"outstanding"`
	DamagesTotal      string `json:"damages_total"`
	OverstayDays      int    `json:"overstay_days"`
	SuggestedCharge   string `json:"suggested_overstay_charge"`
	EarlyCheckout     bool   `json:"early_checkout"`
	EligibleRefund    string `json:"eligible_refund,omitempty"`
	NightlyRate       string `json:"nightly_rate"`
	ScheduledCheckOut string `json:"scheduled_check_out"`
}

// PreviewHandler supplies the checkout form's defaults: the balance to be
// certified, the suggested overstay charge, and the refund ceiling for an
// early departure. Nothing is posted.
type PreviewHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock

	reconciler domaincheckout.Reconciler
}

func (h *PreviewHandler) Handle(ctx context.Context, q PreviewQuery) (Preview, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return Preview{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return Preview{}, err
	}
	folio, err := unit.Folios().ByBooking(execCtx, b.ID)
	if err != nil {
		return Preview{}, err
	}

	now := h.now()
	suggested, err := h.reconciler.SuggestOverstayCharge(b, folio, now)
	if err != nil {
		return Preview{}, err
	}
	rate, err := h.reconciler.NightlyRate(b, folio)
	if err != nil {
		return Preview{}, err
	}

	p := Preview{
		BookingID:         string(b.ID),
		Outstanding:       folio.Outstanding().Format(),
		DamagesTotal:      folio.DamagesTotal().Format(),
		OverstayDays:      h.reconciler.OverstayDays(b, now),
		SuggestedCharge:   suggested.Format(),
		NightlyRate:       rate.Format(),
		ScheduledCheckOut: b.Range.CheckOut.Format(time.RFC3339),
	}
	eligible, err := h.reconciler.EligibleRefund(b, folio, now)
	switch {
	case err == nil:
		p.EarlyCheckout = true
		p.EligibleRefund = eligible.Format()
	case errors.Is(err, domaincheckout.ErrRefundNotEligible):
		// on-time or overstayed checkout, nothing to refund
	default:
		return Preview{}, err
	}
	return p, nil
}

func (h *PreviewHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

var _ queries.Handler[PreviewQuery, Preview] = (*PreviewHandler)(nil)
