package booking

import (
	"context"
	"time"

	"staykeeper/internal/app/commands"
	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/middleware"
	"staykeeper/internal/app/outbox"
	"staykeeper/internal/app/policies"
	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
)

const (
	confirmBookingKey = "booking.confirm"
	checkInKey        = "booking.checkin"
	cancelBookingKey  = "booking.cancel"
)

type ConfirmBookingCommand struct {
	BookingID string
	ActorRole string
}

func (c ConfirmBookingCommand) Key() string              { return confirmBookingKey }
func (c ConfirmBookingCommand) SerializationKey() string { return c.BookingID }

type CheckInCommand struct {
	BookingID string
	ActorRole string
}

func (c CheckInCommand) Key() string              { return checkInKey }
func (c CheckInCommand) SerializationKey() string { return c.BookingID }

type CancelBookingCommand struct {
	BookingID string
	ActorRole string
	Reason    string
}

func (c CancelBookingCommand) Key() string              { return cancelBookingKey }
func (c CancelBookingCommand) SerializationKey() string { return c.BookingID }

type TransitionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// TransitionHandler runs the forward-only lifecycle moves that have no
// financial side effects: confirm, check-in, cancel.
type TransitionHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *TransitionHandler) HandleConfirm(ctx context.Context, cmd ConfirmBookingCommand) (*TransitionResult, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Confirm(now)
	})
}

func (h *TransitionHandler) HandleCheckIn(ctx context.Context, cmd CheckInCommand) (*TransitionResult, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.CheckIn(now)
	})
}

func (h *TransitionHandler) HandleCancel(ctx context.Context, cmd CancelBookingCommand) (*TransitionResult, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Cancel(cmd.Reason, now)
	})
}

func (h *TransitionHandler) transition(ctx context.Context, id string, move func(*domainbooking.Booking, time.Time) error) (*TransitionResult, error) {
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

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(id))
	if err != nil {
		return nil, err
	}
	if err := move(b, h.now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := support.DrainEvents(execCtx, h.Outbox, h.encoder(), b); err != nil {
		return nil, err
	}

	if finish != nil {
		if err := finish(true); err != nil {
			return nil, err
		}
	}
	committed = true
	return &TransitionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *TransitionHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *TransitionHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ middleware.SerializedCommand = ConfirmBookingCommand{}
var _ middleware.SerializedCommand = CheckInCommand{}
var _ middleware.SerializedCommand = CancelBookingCommand{}
var _ commands.Command = ConfirmBookingCommand{}
