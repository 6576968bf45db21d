package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/money"
)

func seedBookingAndFolio(t *testing.T, f Factory) {
	t.Helper()
	ctx := context.Background()
	dr, err := daterange.New(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	b := &domainbooking.Booking{
		ID:          "b1",
		UnitID:      "u1",
		GuestID:     "g1",
		Range:       dr,
		Status:      domainbooking.StatusCheckedIn,
		TotalAmount: money.Must(10_000_000, "NGN"),
	}
	if err := f.BookingRepo.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	folio, err := domainledger.NewFolio(b.ID, b.TotalAmount)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.FolioRepo.Save(ctx, folio); err != nil {
		t.Fatal(err)
	}
}

func TestUnitOfWorkStagesWritesUntilCommit(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory()
	seedBookingAndFolio(t, factory)

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := unit.Bookings().ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	b.Status = domainbooking.StatusCheckedOut
	if err := unit.Bookings().Save(ctx, b); err != nil {
		t.Fatal(err)
	}

	// Nothing reaches the backing store before Commit.
	stored, err := factory.BookingRepo.ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domainbooking.StatusCheckedIn {
		t.Fatalf("status leaked before commit: %s", stored.Status)
	}

	// The unit itself reads its own pending write.
	reread, err := unit.Bookings().ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if reread.Status != domainbooking.StatusCheckedOut {
		t.Fatalf("uow read = %s, want staged CHECKED_OUT", reread.Status)
	}

	if err := unit.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	stored, err = factory.BookingRepo.ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domainbooking.StatusCheckedOut {
		t.Fatalf("status after commit = %s", stored.Status)
	}
}

func TestUnitOfWorkRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory()
	seedBookingAndFolio(t, factory)

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := unit.Bookings().ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	b.Status = domainbooking.StatusCheckedOut
	if err := unit.Bookings().Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	stored, err := factory.BookingRepo.ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domainbooking.StatusCheckedIn {
		t.Fatalf("rolled-back write leaked: %s", stored.Status)
	}
}

func TestUnitOfWorkCommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory()
	seedBookingAndFolio(t, factory)

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := unit.Bookings().ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	folio, err := unit.Folios().ByBooking(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	b.Status = domainbooking.StatusCheckedOut
	if err := unit.Bookings().Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := folio.RecordRefund("r1", money.Must(1_000_000, "NGN"), "PARTIAL", "early departure", time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := unit.Folios().Save(ctx, folio); err != nil {
		t.Fatal(err)
	}

	// A concurrent writer bumps the booking version before the unit commits.
	racer, err := factory.BookingRepo.ByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if err := factory.BookingRepo.Save(ctx, racer); err != nil {
		t.Fatal(err)
	}

	if err := unit.Commit(ctx); !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("want ErrConcurrentUpdate, got %v", err)
	}

	// The folio write staged after the failed booking write never landed.
	stored, err := factory.FolioRepo.ByBooking(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Refunds) != 0 {
		t.Fatalf("refund leaked past a failed commit: %+v", stored.Refunds)
	}
}
