package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"staykeeper/internal/app/commands"
	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/middleware"
	"staykeeper/internal/app/outbox"
	"staykeeper/internal/app/policies"
	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
	domaincheckout "staykeeper/internal/domain/checkout"
	domainmoney "staykeeper/internal/domain/shared/money"
)

const completeCheckoutKey = "checkout.complete"

type RefundInput struct {
	Policy   string
	Penalty  int64 // minor units
	Approved bool
	Amount   *int64 // optional override, minor units
	Reason   string
}

type CompleteCheckoutCommand struct {
	CommandID string
	BookingID string
	ActorRole string

	CertifiedOutstanding int64 // the balance staff saw when certifying
	CertifiedDamages     int64 // assessed-but-unposted damages at that moment
	CertifyNoOutstanding bool
	CertifyNoDamages     bool

	Refund *RefundInput // only meaningful before the scheduled check-out

	IdempotencyKeyV string
}

func (c CompleteCheckoutCommand) Key() string              { return completeCheckoutKey }
func (c CompleteCheckoutCommand) IdempotencyKey() string   { return c.IdempotencyKeyV }
func (c CompleteCheckoutCommand) ResultPrototype() any     { return &CompleteCheckoutResult{} }
func (c CompleteCheckoutCommand) SerializationKey() string { return c.BookingID }

type CompleteCheckoutResult struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	OverstayDays int    `json:"overstay_days"`
	RefundAmount string `json:"refund_amount,omitempty"`
	CheckedOutAt string `json:"checked_out_at"`
}

// CompleteCheckoutHandler drives the reconciler inside one serialized
// transaction, so the outstanding balance the certification gate reads cannot
// be raced by a concurrent payment or charge on the same booking.
type CompleteCheckoutHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder

	reconciler domaincheckout.Reconciler
}

func (h *CompleteCheckoutHandler) Handle(ctx context.Context, cmd CompleteCheckoutCommand) (*CompleteCheckoutResult, error) {
	unit, execCtx, finish, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if finish != nil {
		defer func() {
			if !committed {
				finish(false)
			}
		}()
	}

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	folio, err := unit.Folios().ByBooking(execCtx, b.ID)
	if err != nil {
		return nil, err
	}

	currency := folio.Total.Currency
	cert := domaincheckout.Certification{
		Outstanding:          domainmoney.Money{Amount: cmd.CertifiedOutstanding, Currency: currency},
		DamagesCost:          domainmoney.Money{Amount: cmd.CertifiedDamages, Currency: currency},
		CertifyNoOutstanding: cmd.CertifyNoOutstanding,
		CertifyNoDamages:     cmd.CertifyNoDamages,
	}

	var refund *domaincheckout.RefundRequest
	if cmd.Refund != nil {
		req := domaincheckout.RefundRequest{
			Policy:   domaincheckout.RefundPolicy(cmd.Refund.Policy),
			Penalty:  domainmoney.Money{Amount: cmd.Refund.Penalty, Currency: currency},
			Approved: cmd.Refund.Approved,
			Reason:   cmd.Refund.Reason,
		}
		if cmd.Refund.Amount != nil {
			override := domainmoney.Money{Amount: *cmd.Refund.Amount, Currency: currency}
			req.Override = &override
		}
		refund = &req
	}

	refundID := cmd.CommandID
	if refundID == "" {
		refundID = uuid.NewString()
	}
	settlement, err := h.reconciler.Settle(b, folio, cert, refund, refundID, h.now())
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := unit.Folios().Save(execCtx, folio); err != nil {
		return nil, err
	}
	if err := support.DrainEvents(execCtx, h.Outbox, h.encoder(), b, folio); err != nil {
		return nil, err
	}

	if finish != nil {
		if err := finish(true); err != nil {
			return nil, err
		}
	}
	committed = true

	res := &CompleteCheckoutResult{
		BookingID:    string(b.ID),
		Status:       string(b.Status),
		OverstayDays: settlement.OverstayDays,
		CheckedOutAt: settlement.CheckedOutAt.Format(time.RFC3339),
	}
	if settlement.Refund != nil {
		res.RefundAmount = settlement.Refund.Amount.Format()
	}
	return res, nil
}

func (h *CompleteCheckoutHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *CompleteCheckoutHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CompleteCheckoutCommand, *CompleteCheckoutResult] = (*CompleteCheckoutHandler)(nil)
var _ middleware.IdempotentCommand = CompleteCheckoutCommand{}
var _ middleware.SerializedCommand = CompleteCheckoutCommand{}
