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
	domainledger "staykeeper/internal/domain/ledger"
	domainmoney "staykeeper/internal/domain/shared/money"
)

const postChargeKey = "checkout.post_charge"

type PostChargeCommand struct {
	CommandID string
	BookingID string
	ActorRole string
	Kind      string // DAMAGE or OVERSTAY
	Amount    int64  // minor units
	Notes     string
}

func (c PostChargeCommand) Key() string              { return postChargeKey }
func (c PostChargeCommand) SerializationKey() string { return c.BookingID }

type PostChargeResult struct {
	ChargeID    string `json:"charge_id"`
	Owed        string `json:"owed"`
	Outstanding string `json:"outstanding"`
}

// PostChargeHandler records a damage or overstay charge against a checked-in
// booking. Posting a charge is a complete action on its own: it may well
// leave the booking with a balance that blocks the subsequent checkout, and
// that sequencing is deliberate.
type PostChargeHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *PostChargeHandler) Handle(ctx context.Context, cmd PostChargeCommand) (*PostChargeResult, error) {
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
	if b.Status != domainbooking.StatusCheckedIn {
		return nil, domainbooking.ErrInvalidState
	}
	folio, err := unit.Folios().ByBooking(execCtx, b.ID)
	if err != nil {
		return nil, err
	}

	amount := domainmoney.Money{Amount: cmd.Amount, Currency: folio.Total.Currency}
	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	charge, err := folio.PostCharge(id, domainledger.ChargeKind(cmd.Kind), amount, cmd.Notes, h.now())
	if err != nil {
		return nil, err
	}
	if err := unit.Folios().Save(execCtx, folio); err != nil {
		return nil, err
	}
	if err := support.DrainEvents(execCtx, h.Outbox, h.encoder(), folio); err != nil {
		return nil, err
	}

	if finish != nil {
		if err := finish(true); err != nil {
			return nil, err
		}
	}
	committed = true

	return &PostChargeResult{
		ChargeID:    charge.ID,
		Owed:        folio.Owed().Format(),
		Outstanding: folio.Outstanding().Format(),
	}, nil
}

func (h *PostChargeHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *PostChargeHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[PostChargeCommand, *PostChargeResult] = (*PostChargeHandler)(nil)
var _ middleware.SerializedCommand = PostChargeCommand{}
