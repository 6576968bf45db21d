package ledger

import (
	"time"

	"staykeeper/internal/domain/booking"
	"staykeeper/internal/domain/shared/money"
)

type PaymentRecorded struct {
	BookingID   booking.BookingID
	PaymentID   string
	Amount      money.Money
	Reference   string
	Outstanding money.Money
	At          time.Time
}

func (e PaymentRecorded) EventName() string     { return "ledger.payment_recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.BookingID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }

type ChargePosted struct {
	BookingID   booking.BookingID
	ChargeID    string
	Kind        ChargeKind
	Amount      money.Money
	Outstanding money.Money
	At          time.Time
}

func (e ChargePosted) EventName() string     { return "ledger.charge_posted" }
func (e ChargePosted) AggregateID() string   { return string(e.BookingID) }
func (e ChargePosted) OccurredAt() time.Time { return e.At }

type RefundRecorded struct {
	BookingID booking.BookingID
	RefundID  string
	Amount    money.Money
	Policy    string
	At        time.Time
}

func (e RefundRecorded) EventName() string     { return "ledger.refund_recorded" }
func (e RefundRecorded) AggregateID() string   { return string(e.BookingID) }
func (e RefundRecorded) OccurredAt() time.Time { return e.At }
