package ledger

import (
	"errors"
	"testing"
	"time"

	"staykeeper/internal/domain/booking"
	"staykeeper/internal/domain/shared/money"
)

var testNow = time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

func newTestFolio(t *testing.T, total string) *Folio {
	t.Helper()
	amount, err := money.Parse(total, "NGN")
	if err != nil {
		t.Fatal(err)
	}
	f, err := NewFolio("b1", amount)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewFolioRequiresPositiveTotal(t *testing.T) {
	if _, err := NewFolio("b1", money.Zero("NGN")); !errors.Is(err, booking.ErrInvalidTotal) {
		t.Fatalf("want ErrInvalidTotal, got %v", err)
	}
}

func TestPartialPayments(t *testing.T) {
	f := newTestFolio(t, "100,000")

	if f.Status() != StatusUnpaid {
		t.Fatalf("fresh folio status = %s", f.Status())
	}

	if _, err := f.RecordPayment("p1", money.Must(4_000_000, "NGN"), "TRF-001", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	if f.Status() != StatusPartPaid {
		t.Fatalf("after first payment status = %s", f.Status())
	}
	if got := f.Outstanding().Format(); got != "60000.00" {
		t.Fatalf("outstanding = %s, want 60000.00", got)
	}

	if _, err := f.RecordPayment("p2", money.Must(3_500_000, "NGN"), "TRF-002", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	if got := f.Outstanding().Format(); got != "25000.00" {
		t.Fatalf("outstanding = %s, want 25000.00", got)
	}
	if f.Status() != StatusPartPaid {
		t.Fatalf("status = %s, want PARTPAID", f.Status())
	}

	if _, err := f.RecordPayment("p3", money.Must(2_500_000, "NGN"), "TRF-003", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	if f.Status() != StatusPaid {
		t.Fatalf("status = %s, want PAID", f.Status())
	}
	if !f.Outstanding().IsZero() {
		t.Fatalf("outstanding = %s, want 0.00", f.Outstanding().Format())
	}
}

func TestOverpaymentKeepsOutstandingAtZero(t *testing.T) {
	f := newTestFolio(t, "100,000")
	if _, err := f.RecordPayment("p1", money.Must(12_000_000, "NGN"), "TRF-001", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	if !f.Outstanding().IsZero() {
		t.Fatalf("outstanding after overpayment = %s", f.Outstanding().Format())
	}
	if f.Status() != StatusPaid {
		t.Fatalf("status = %s, want PAID", f.Status())
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newTestFolio(t, "100,000")

	if _, err := f.RecordPayment("p1", money.Zero("NGN"), "TRF-001", "", "", testNow); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: want ErrInvalidAmount, got %v", err)
	}
	if _, err := f.RecordPayment("p1", money.Must(-100, "NGN"), "TRF-001", "", "", testNow); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: want ErrInvalidAmount, got %v", err)
	}
	if _, err := f.RecordPayment("p1", money.Must(100, "USD"), "TRF-001", "", "", testNow); !errors.Is(err, money.ErrCurrencyMismatch) {
		t.Fatalf("wrong currency: want ErrCurrencyMismatch, got %v", err)
	}
	if _, err := f.RecordPayment("p1", money.Must(100, "NGN"), "   ", "", "", testNow); !errors.Is(err, ErrMissingReference) {
		t.Fatalf("blank reference: want ErrMissingReference, got %v", err)
	}
	if len(f.Payments) != 0 {
		t.Fatalf("rejected payments must not be recorded, have %d", len(f.Payments))
	}
}

func TestChargesRaiseOutstanding(t *testing.T) {
	f := newTestFolio(t, "100,000")
	if _, err := f.RecordPayment("p1", money.Must(10_000_000, "NGN"), "TRF-001", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	if f.Status() != StatusPaid {
		t.Fatalf("status = %s", f.Status())
	}

	// A damage charge reopens the balance on a fully paid folio.
	if _, err := f.PostCharge("c1", ChargeDamage, money.Must(1_500_000, "NGN"), "broken window", testNow); err != nil {
		t.Fatal(err)
	}
	if got := f.Outstanding().Format(); got != "15000.00" {
		t.Fatalf("outstanding = %s, want 15000.00", got)
	}
	if f.Status() != StatusPartPaid {
		t.Fatalf("status = %s, want PARTPAID", f.Status())
	}
	if got := f.DamagesTotal().Format(); got != "15000.00" {
		t.Fatalf("damages total = %s", got)
	}

	if _, err := f.PostCharge("c2", ChargeOverstay, money.Must(2_500_000, "NGN"), "", testNow); err != nil {
		t.Fatal(err)
	}
	if got := f.Owed().Format(); got != "140000.00" {
		t.Fatalf("owed = %s, want 140000.00", got)
	}
	// Overstay charges never count toward damages.
	if got := f.DamagesTotal().Format(); got != "15000.00" {
		t.Fatalf("damages total after overstay = %s", got)
	}
}

func TestPostChargeValidation(t *testing.T) {
	f := newTestFolio(t, "100,000")

	if _, err := f.PostCharge("c1", ChargeKind("CLEANING"), money.Must(100, "NGN"), "", testNow); !errors.Is(err, ErrUnknownChargeKind) {
		t.Fatalf("unknown kind: want ErrUnknownChargeKind, got %v", err)
	}
	if _, err := f.PostCharge("c1", ChargeDamage, money.Must(-100, "NGN"), "", testNow); !errors.Is(err, ErrNegativeCharge) {
		t.Fatalf("negative charge: want ErrNegativeCharge, got %v", err)
	}
	// Zero-amount charges are legal bookkeeping entries.
	if _, err := f.PostCharge("c1", ChargeDamage, money.Zero("NGN"), "noted, waived", testNow); err != nil {
		t.Fatalf("zero charge: %v", err)
	}
	if !f.Outstanding().SameCurrency(f.Total) {
		t.Fatal("outstanding currency drifted")
	}
}

func TestCanTakePayment(t *testing.T) {
	f := newTestFolio(t, "100,000")

	if !f.CanTakePayment(booking.StatusPending) {
		t.Fatal("unpaid pending booking should accept payments")
	}
	if !f.CanTakePayment(booking.StatusCheckedIn) {
		t.Fatal("checked-in booking should accept payments")
	}
	if f.CanTakePayment(booking.StatusCancelled) {
		t.Fatal("cancelled booking must not accept payments")
	}

	if _, err := f.RecordPayment("p1", money.Must(10_000_000, "NGN"), "TRF-001", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	if f.CanTakePayment(booking.StatusCheckedIn) {
		t.Fatal("fully paid folio must not accept further payments")
	}
}

func TestRecordRefund(t *testing.T) {
	f := newTestFolio(t, "100,000")

	r, err := f.RecordRefund("r1", money.Must(4_000_000, "NGN"), "PARTIAL", "guest left early", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if r.Policy != "PARTIAL" || len(f.Refunds) != 1 {
		t.Fatalf("refund not recorded: %+v", r)
	}

	if _, err := f.RecordRefund("r2", money.Must(-1, "NGN"), "PARTIAL", "", testNow); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative refund: want ErrInvalidAmount, got %v", err)
	}
	if _, err := f.RecordRefund("r2", money.Must(100, "USD"), "PARTIAL", "", testNow); !errors.Is(err, money.ErrCurrencyMismatch) {
		t.Fatalf("wrong currency: want ErrCurrencyMismatch, got %v", err)
	}
}

func TestEventsCarryOutstanding(t *testing.T) {
	f := newTestFolio(t, "100,000")
	if _, err := f.RecordPayment("p1", money.Must(4_000_000, "NGN"), "TRF-001", "", "", testNow); err != nil {
		t.Fatal(err)
	}
	events := f.PendingEvents()
	if len(events) != 1 {
		t.Fatalf("pending events = %d, want 1", len(events))
	}
	pr, ok := events[0].(PaymentRecorded)
	if !ok {
		t.Fatalf("event type = %T", events[0])
	}
	if got := pr.Outstanding.Format(); got != "60000.00" {
		t.Fatalf("event outstanding = %s, want 60000.00", got)
	}
}
