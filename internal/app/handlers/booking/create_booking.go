package booking

import (
	"context"
	"errors"
	"time"

	"staykeeper/internal/app/commands"
	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/middleware"
	"staykeeper/internal/app/outbox"
	"staykeeper/internal/app/policies"
	"staykeeper/internal/app/uow"
	domainavailability "staykeeper/internal/domain/availability"
	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	domainpricing "staykeeper/internal/domain/pricing"
	domainrange "staykeeper/internal/domain/shared/daterange"
	domainmoney "staykeeper/internal/domain/shared/money"
	domainunit "staykeeper/internal/domain/unit"
)

const createBookingKey = "booking.create"

// ErrRangeUnavailable is returned when the candidate range conflicts with an
// existing blocking booking on the unit.
var ErrRangeUnavailable = errors.New("booking: date range is not available")

type CreateBookingCommand struct {
	CommandID       string
	TenantID        string
	ActorRole       string
	UnitID          string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	OverrideTotal   *int64 // minor units; staff-edited committed total
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID     string `json:"booking_id"`
	Nights        int    `json:"nights"`
	NightlyRate   string `json:"nightly_rate"`
	Total         string `json:"total"`
	ComputedTotal string `json:"computed_total"`
	PromoLabel    string `json:"promo_label,omitempty"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder

	checker domainavailability.Checker
	engine  domainpricing.Engine
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
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

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()

	u, err := unit.Units().ByID(execCtx, domainunit.UnitID(cmd.UnitID))
	if err != nil {
		return nil, err
	}

	existing, err := unit.Bookings().ListBlockingByUnit(execCtx, u.ID)
	if err != nil {
		return nil, err
	}
	ok, err := h.checker.IsBookable(dr, existing, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRangeUnavailable
	}

	quote, err := h.engine.PriceStay(u, dr)
	if err != nil {
		return nil, err
	}
	total := quote.ComputedTotal
	if cmd.OverrideTotal != nil {
		override := domainmoney.Money{Amount: *cmd.OverrideTotal, Currency: quote.ComputedTotal.Currency}
		total, err = h.engine.ApplyOverride(quote, override)
		if err != nil {
			return nil, err
		}
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:            domainbooking.BookingID(cmd.CommandID),
		TenantID:      cmd.TenantID,
		UnitID:        u.ID,
		GuestID:       cmd.GuestID,
		Range:         dr,
		Guests:        cmd.Guests,
		TotalAmount:   total,
		ComputedTotal: quote.ComputedTotal,
		CreatedBy:     cmd.ActorRole,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	folio, err := domainledger.NewFolio(b.ID, b.TotalAmount)
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

	return &CreateBookingResult{
		BookingID:     string(b.ID),
		Nights:        quote.Nights,
		NightlyRate:   quote.NightlyRate.Format(),
		Total:         b.TotalAmount.Format(),
		ComputedTotal: b.ComputedTotal.Format(),
		PromoLabel:    quote.PromoLabel,
	}, nil
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
