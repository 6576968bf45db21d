package payments

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"staykeeper/internal/app/policies"
	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/money"
	"staykeeper/internal/infra/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

type fakeReceiptStore struct {
	key         string
	contentType string
	content     []byte
}

func (s *fakeReceiptStore) Store(_ context.Context, key string, content io.Reader, contentType string) (string, error) {
	s.key = key
	s.contentType = contentType
	var err error
	s.content, err = io.ReadAll(content)
	if err != nil {
		return "", err
	}
	return "https://receipts.test/" + key, nil
}

func seedStay(t *testing.T, factory memory.Factory, status domainbooking.BookingStatus) {
	t.Helper()
	ctx := context.Background()
	dr, err := daterange.New(day(10), day(13))
	if err != nil {
		t.Fatal(err)
	}
	b := &domainbooking.Booking{
		ID:          "b1",
		TenantID:    "t1",
		UnitID:      "u1",
		GuestID:     "g1",
		Range:       dr,
		Guests:      2,
		Status:      status,
		TotalAmount: money.Must(15_000_000, "NGN"),
	}
	if err := factory.BookingRepo.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	f, err := domainledger.NewFolio(b.ID, b.TotalAmount)
	if err != nil {
		t.Fatal(err)
	}
	if err := factory.FolioRepo.Save(ctx, f); err != nil {
		t.Fatal(err)
	}
}

func command(amount int64) RecordPaymentCommand {
	return RecordPaymentCommand{
		CommandID: "pay-1",
		BookingID: "b1",
		ActorRole: "staff",
		Amount:    amount,
		Reference: "TRF-001",
	}
}

func TestRecordPayment(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, domainbooking.StatusConfirmed)
	h := &RecordPaymentHandler{
		UoWFactory: factory,
		Clock:      policies.ClockFunc(func() time.Time { return day(9) }),
		Outbox:     memory.NewOutbox(),
	}

	res, err := h.Handle(context.Background(), command(4_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if res.PaymentID != "pay-1" {
		t.Fatalf("payment id = %s", res.PaymentID)
	}
	if res.Paid != "40000.00" || res.Outstanding != "110000.00" {
		t.Fatalf("result = %+v", res)
	}
	if res.Status != string(domainledger.StatusPartPaid) {
		t.Fatalf("status = %s", res.Status)
	}

	f, err := factory.FolioRepo.ByBooking(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Payments) != 1 || f.Payments[0].Reference != "TRF-001" {
		t.Fatalf("stored payments = %+v", f.Payments)
	}
}

func TestRecordPaymentUploadsReceipt(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, domainbooking.StatusConfirmed)
	store := &fakeReceiptStore{}
	h := &RecordPaymentHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Receipts:   store,
	}

	cmd := command(15_000_000)
	cmd.Receipt = []byte("transfer slip")
	cmd.ReceiptType = "image/png"
	res, err := h.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if store.key != "receipts/b1/pay-1" {
		t.Fatalf("receipt key = %s", store.key)
	}
	if string(store.content) != "transfer slip" || store.contentType != "image/png" {
		t.Fatalf("stored receipt = %q (%s)", store.content, store.contentType)
	}
	if res.ReceiptURL != "https://receipts.test/receipts/b1/pay-1" {
		t.Fatalf("receipt url = %s", res.ReceiptURL)
	}
	if res.Status != string(domainledger.StatusPaid) {
		t.Fatalf("status = %s", res.Status)
	}

	f, err := factory.FolioRepo.ByBooking(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if f.Payments[0].ReceiptURL != res.ReceiptURL {
		t.Fatalf("stored receipt url = %s", f.Payments[0].ReceiptURL)
	}
}

func TestRecordPaymentRejected(t *testing.T) {
	t.Run("cancelled booking", func(t *testing.T) {
		factory := memory.NewFactory()
		seedStay(t, factory, domainbooking.StatusCancelled)
		h := &RecordPaymentHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		_, err := h.Handle(context.Background(), command(1_000_000))
		if !errors.Is(err, domainledger.ErrPaymentNotAllowed) {
			t.Fatalf("want ErrPaymentNotAllowed, got %v", err)
		}
	})

	t.Run("fully paid folio", func(t *testing.T) {
		factory := memory.NewFactory()
		seedStay(t, factory, domainbooking.StatusConfirmed)
		h := &RecordPaymentHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		if _, err := h.Handle(context.Background(), command(15_000_000)); err != nil {
			t.Fatal(err)
		}
		extra := command(100)
		extra.CommandID = "pay-2"
		_, err := h.Handle(context.Background(), extra)
		if !errors.Is(err, domainledger.ErrPaymentNotAllowed) {
			t.Fatalf("want ErrPaymentNotAllowed, got %v", err)
		}
	})

	t.Run("missing reference", func(t *testing.T) {
		factory := memory.NewFactory()
		seedStay(t, factory, domainbooking.StatusConfirmed)
		h := &RecordPaymentHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		cmd := command(1_000_000)
		cmd.Reference = ""
		_, err := h.Handle(context.Background(), cmd)
		if !errors.Is(err, domainledger.ErrMissingReference) {
			t.Fatalf("want ErrMissingReference, got %v", err)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		factory := memory.NewFactory()
		h := &RecordPaymentHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

		cmd := command(1_000_000)
		cmd.BookingID = "missing"
		_, err := h.Handle(context.Background(), cmd)
		if !errors.Is(err, domainbooking.ErrBookingNotFound) {
			t.Fatalf("want ErrBookingNotFound, got %v", err)
		}
	})
}

func TestFolioSummary(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, domainbooking.StatusConfirmed)
	record := &RecordPaymentHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	if _, err := record.Handle(context.Background(), command(5_000_000)); err != nil {
		t.Fatal(err)
	}

	h := &FolioSummaryHandler{UoWFactory: factory}
	summary, err := h.Handle(context.Background(), FolioSummaryQuery{BookingID: "b1"})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != "150000.00" || summary.Paid != "50000.00" || summary.Outstanding != "100000.00" {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Payments != 1 || summary.Charges != 0 {
		t.Fatalf("counts = %d payments, %d charges", summary.Payments, summary.Charges)
	}
	if summary.Status != string(domainledger.StatusPartPaid) {
		t.Fatalf("status = %s", summary.Status)
	}
}
