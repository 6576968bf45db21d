package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"staykeeper/internal/domain/booking"
	"staykeeper/internal/domain/shared/events"
	"staykeeper/internal/domain/shared/money"
)

var (
	ErrFolioNotFound     = errors.New("ledger: folio not found")
	ErrInvalidAmount     = errors.New("ledger: payment amount must be positive")
	ErrMissingReference  = errors.New("ledger: payment reference is required")
	ErrNegativeCharge    = errors.New("ledger: charge amount cannot be negative")
	ErrPaymentNotAllowed = errors.New("ledger: booking cannot take further payments")
	ErrUnknownChargeKind = errors.New("ledger: unknown charge kind")
)

type PaymentStatus string

const (
	StatusUnpaid   PaymentStatus = "UNPAID"
	StatusPartPaid PaymentStatus = "PARTPAID"
	StatusPaid     PaymentStatus = "PAID"
)

type ChargeKind string

const (
	ChargeDamage   ChargeKind = "DAMAGE"
	ChargeOverstay ChargeKind = "OVERSTAY"
)

// Payment is an append-only record of money received against a booking. It is
// never mutated or deleted once recorded.
type Payment struct {
	ID         string
	BookingID  booking.BookingID
	Amount     money.Money
	Reference  string
	Notes      string
	ReceiptURL string
	RecordedAt time.Time
}

// Charge is an additive increase to the amount owed (damages, overstay).
// Once posted it participates in every subsequent outstanding computation.
type Charge struct {
	ID        string
	BookingID booking.BookingID
	Kind      ChargeKind
	Amount    money.Money
	Notes     string
	PostedAt  time.Time
}

// Refund records money returned to the guest at an early checkout.
type Refund struct {
	ID         string
	BookingID  booking.BookingID
	Amount     money.Money
	Policy     string
	Reason     string
	RecordedAt time.Time
}

// Folio is the running payment ledger of one booking: the committed total
// plus posted charges on one side, received payments on the other. Status is
// always derived fresh from those records, never cached.
type Folio struct {
	BookingID booking.BookingID
	Total     money.Money
	Payments  []Payment
	Charges   []Charge
	Refunds   []Refund
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByBooking(ctx context.Context, id booking.BookingID) (*Folio, error)
	Save(ctx context.Context, f *Folio) error
}

func NewFolio(bookingID booking.BookingID, total money.Money) (*Folio, error) {
	if !total.IsPositive() {
		return nil, booking.ErrInvalidTotal
	}
	return &Folio{BookingID: bookingID, Total: total}, nil
}

// Owed is the committed total plus every posted charge.
func (f *Folio) Owed() money.Money {
	owed := f.Total
	for _, c := range f.Charges {
		owed, _ = owed.Add(c.Amount)
	}
	return owed
}

// Paid sums the recorded payments.
func (f *Folio) Paid() money.Money {
	paid := money.Zero(f.Total.Currency)
	for _, p := range f.Payments {
		paid, _ = paid.Add(p.Amount)
	}
	return paid
}

// Outstanding is max(0, owed - paid).
func (f *Folio) Outstanding() money.Money {
	diff, _ := f.Owed().Sub(f.Paid())
	return diff.ClampFloor()
}

// DamagesTotal sums posted damage charges.
func (f *Folio) DamagesTotal() money.Money {
	total := money.Zero(f.Total.Currency)
	for _, c := range f.Charges {
		if c.Kind == ChargeDamage {
			total, _ = total.Add(c.Amount)
		}
	}
	return total
}

// Status derives the payment status from owed and paid on every call.
func (f *Folio) Status() PaymentStatus {
	paid := f.Paid()
	if paid.IsZero() {
		return StatusUnpaid
	}
	if paid.Amount >= f.Owed().Amount {
		return StatusPaid
	}
	return StatusPartPaid
}

// CanTakePayment reports whether the ledger still accepts payments given the
// booking's lifecycle status. Fully paid and cancelled bookings do not.
func (f *Folio) CanTakePayment(status booking.BookingStatus) bool {
	if status == booking.StatusCancelled {
		return false
	}
	return f.Status() != StatusPaid
}

// RecordPayment appends an immutable payment after validating the amount and
// audit reference. It does not touch the committed total.
func (f *Folio) RecordPayment(id string, amount money.Money, reference, notes, receiptURL string, now time.Time) (Payment, error) {
	if !amount.IsPositive() {
		return Payment{}, ErrInvalidAmount
	}
	if !amount.SameCurrency(f.Total) {
		return Payment{}, money.ErrCurrencyMismatch
	}
	if strings.TrimSpace(reference) == "" {
		return Payment{}, ErrMissingReference
	}
	p := Payment{
		ID:         id,
		BookingID:  f.BookingID,
		Amount:     amount,
		Reference:  strings.TrimSpace(reference),
		Notes:      notes,
		ReceiptURL: receiptURL,
		RecordedAt: now.UTC(),
	}
	f.Payments = append(f.Payments, p)
	f.Record(PaymentRecorded{BookingID: f.BookingID, PaymentID: p.ID, Amount: p.Amount, Reference: p.Reference, Outstanding: f.Outstanding(), At: p.RecordedAt})
	return p, nil
}

// PostCharge appends a damage or overstay charge. Zero is allowed; negative
// amounts are not (charges are additive, reversal is not modeled).
func (f *Folio) PostCharge(id string, kind ChargeKind, amount money.Money, notes string, now time.Time) (Charge, error) {
	if kind != ChargeDamage && kind != ChargeOverstay {
		return Charge{}, ErrUnknownChargeKind
	}
	if amount.IsNegative() {
		return Charge{}, ErrNegativeCharge
	}
	if !amount.SameCurrency(f.Total) {
		return Charge{}, money.ErrCurrencyMismatch
	}
	c := Charge{
		ID:        id,
		BookingID: f.BookingID,
		Kind:      kind,
		Amount:    amount,
		Notes:     notes,
		PostedAt:  now.UTC(),
	}
	f.Charges = append(f.Charges, c)
	f.Record(ChargePosted{BookingID: f.BookingID, ChargeID: c.ID, Kind: c.Kind, Amount: c.Amount, Outstanding: f.Outstanding(), At: c.PostedAt})
	return c, nil
}

// RecordRefund appends an approved early-checkout refund. Validation of
// bounds and reason belongs to the checkout reconciler; the folio only
// guards currency sanity.
func (f *Folio) RecordRefund(id string, amount money.Money, policy, reason string, now time.Time) (Refund, error) {
	if amount.IsNegative() {
		return Refund{}, ErrInvalidAmount
	}
	if !amount.SameCurrency(f.Total) {
		return Refund{}, money.ErrCurrencyMismatch
	}
	r := Refund{
		ID:         id,
		BookingID:  f.BookingID,
		Amount:     amount,
		Policy:     policy,
		Reason:     reason,
		RecordedAt: now.UTC(),
	}
	f.Refunds = append(f.Refunds, r)
	f.Record(RefundRecorded{BookingID: f.BookingID, RefundID: r.ID, Amount: r.Amount, Policy: r.Policy, At: r.RecordedAt})
	return r, nil
}
