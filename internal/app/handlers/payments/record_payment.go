package payments

import (
	"bytes"
	"context"
	"fmt"
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

const recordPaymentKey = "payments.record"

type RecordPaymentCommand struct {
	CommandID       string
	BookingID       string
	ActorRole       string
	Amount          int64 // minor units
	Reference       string
	Notes           string
	Receipt         []byte // optional evidence uploaded alongside the payment
	ReceiptType     string
	IdempotencyKeyV string
}

func (c RecordPaymentCommand) Key() string              { return recordPaymentKey }
func (c RecordPaymentCommand) IdempotencyKey() string   { return c.IdempotencyKeyV }
func (c RecordPaymentCommand) ResultPrototype() any     { return &RecordPaymentResult{} }
func (c RecordPaymentCommand) SerializationKey() string { return c.BookingID }

type RecordPaymentResult struct {
	PaymentID   string `json:"payment_id"`
	Paid        string `json:"paid"`
	Outstanding string `json:"outstanding"`
	Status      string `json:"status"`
	ReceiptURL  string `json:"receipt_url,omitempty"`
}

type RecordPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Receipts   policies.ReceiptStore // optional
}

func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*RecordPaymentResult, error) {
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
	if !folio.CanTakePayment(b.Status) {
		return nil, domainledger.ErrPaymentNotAllowed
	}

	amount := domainmoney.Money{Amount: cmd.Amount, Currency: folio.Total.Currency}

	receiptURL := ""
	if len(cmd.Receipt) > 0 && h.Receipts != nil {
		key := fmt.Sprintf("receipts/%s/%s", cmd.BookingID, paymentID(cmd))
		receiptURL, err = h.Receipts.Store(execCtx, key, bytes.NewReader(cmd.Receipt), cmd.ReceiptType)
		if err != nil {
			return nil, err
		}
	}

	payment, err := folio.RecordPayment(paymentID(cmd), amount, cmd.Reference, cmd.Notes, receiptURL, h.now())
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

	return &RecordPaymentResult{
		PaymentID:   payment.ID,
		Paid:        folio.Paid().Format(),
		Outstanding: folio.Outstanding().Format(),
		Status:      string(folio.Status()),
		ReceiptURL:  receiptURL,
	}, nil
}

func paymentID(cmd RecordPaymentCommand) string {
	if cmd.CommandID != "" {
		return cmd.CommandID
	}
	return uuid.NewString()
}

func (h *RecordPaymentHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *RecordPaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RecordPaymentCommand, *RecordPaymentResult] = (*RecordPaymentHandler)(nil)
var _ middleware.IdempotentCommand = RecordPaymentCommand{}
var _ middleware.SerializedCommand = RecordPaymentCommand{}
