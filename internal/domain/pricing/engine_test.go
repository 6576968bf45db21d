package pricing

import (
	"errors"
	"testing"
	"time"

	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/money"
	"staykeeper/internal/domain/unit"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func stay(t *testing.T, in, out int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(day(in), day(out))
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func testUnit(t *testing.T, base string, promo *unit.PromotionalRate) *unit.Unit {
	t.Helper()
	price, err := money.Parse(base, "NGN")
	if err != nil {
		t.Fatal(err)
	}
	u, err := unit.New("u1", "t1", "Room 12", 2, price, promo)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestPriceStayBaseRate(t *testing.T) {
	var engine Engine
	u := testUnit(t, "50,000", nil)

	quote, err := engine.PriceStay(u, stay(t, 10, 13))
	if err != nil {
		t.Fatal(err)
	}
	if quote.Nights != 3 {
		t.Fatalf("nights = %d, want 3", quote.Nights)
	}
	if got := quote.NightlyRate.Format(); got != "50000.00" {
		t.Fatalf("nightly = %s", got)
	}
	if got := quote.ComputedTotal.Format(); got != "150000.00" {
		t.Fatalf("total = %s, want 150000.00", got)
	}
	if quote.PromoLabel != "" {
		t.Fatalf("unexpected promo label %q", quote.PromoLabel)
	}
}

func TestPriceStayPercentPromo(t *testing.T) {
	var engine Engine
	promo := &unit.PromotionalRate{
		Kind:    unit.PromoPercentOff,
		Percent: 10,
		Start:   day(1),
		End:     day(31),
		Label:   "March special",
	}
	u := testUnit(t, "50,000", promo)

	quote, err := engine.PriceStay(u, stay(t, 10, 13))
	if err != nil {
		t.Fatal(err)
	}
	if got := quote.NightlyRate.Format(); got != "45000.00" {
		t.Fatalf("discounted nightly = %s, want 45000.00", got)
	}
	if got := quote.ComputedTotal.Format(); got != "135000.00" {
		t.Fatalf("discounted total = %s, want 135000.00", got)
	}
	if quote.PromoLabel != "March special" {
		t.Fatalf("promo label = %q", quote.PromoLabel)
	}
}

func TestPriceStayFixedNightlyPromo(t *testing.T) {
	var engine Engine
	nightly := money.Must(3_000_000, "NGN") // 30,000.00
	promo := &unit.PromotionalRate{
		Kind:    unit.PromoFixedNightly,
		Nightly: nightly,
		Start:   day(1),
		End:     day(31),
		Label:   "Flat rate",
	}
	u := testUnit(t, "50,000", promo)

	quote, err := engine.PriceStay(u, stay(t, 10, 12))
	if err != nil {
		t.Fatal(err)
	}
	if got := quote.ComputedTotal.Format(); got != "60000.00" {
		t.Fatalf("fixed-rate total = %s, want 60000.00", got)
	}
}

func TestPriceStayPromoWindow(t *testing.T) {
	var engine Engine
	promo := &unit.PromotionalRate{
		Kind:    unit.PromoPercentOff,
		Percent: 10,
		Start:   day(1),
		End:     day(12),
		Label:   "Early March",
	}
	u := testUnit(t, "50,000", promo)

	// A stay that touches any promo night gets the promo rate for the whole
	// stay; there is no night-by-night proration.
	quote, err := engine.PriceStay(u, stay(t, 12, 15))
	if err != nil {
		t.Fatal(err)
	}
	if quote.PromoLabel != "Early March" {
		t.Fatal("stay touching the promo's last day should be discounted")
	}
	if got := quote.ComputedTotal.Format(); got != "135000.00" {
		t.Fatalf("total = %s, want 135000.00", got)
	}

	// A stay starting the day after the window ends pays the base price.
	quote, err = engine.PriceStay(u, stay(t, 13, 15))
	if err != nil {
		t.Fatal(err)
	}
	if quote.PromoLabel != "" {
		t.Fatal("stay outside the promo window should not be discounted")
	}
}

func TestPriceStayErrors(t *testing.T) {
	var engine Engine
	u := testUnit(t, "50,000", nil)

	if _, err := engine.PriceStay(nil, stay(t, 10, 13)); !errors.Is(err, ErrUnitRequired) {
		t.Fatalf("nil unit: want ErrUnitRequired, got %v", err)
	}
	bad := daterange.DateRange{CheckIn: day(10), CheckOut: day(10)}
	if _, err := engine.PriceStay(u, bad); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("empty range: want ErrInvalidRange, got %v", err)
	}
}

func TestApplyOverride(t *testing.T) {
	var engine Engine
	u := testUnit(t, "50,000", nil)
	quote, err := engine.PriceStay(u, stay(t, 10, 13))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("accepts a positive override either direction", func(t *testing.T) {
		lower := money.Must(10_000_000, "NGN")
		total, err := engine.ApplyOverride(quote, lower)
		if err != nil || total.Amount != lower.Amount {
			t.Fatalf("override down: %v, %v", total, err)
		}
		higher := money.Must(20_000_000, "NGN")
		if total, err = engine.ApplyOverride(quote, higher); err != nil || total.Amount != higher.Amount {
			t.Fatalf("override up: %v, %v", total, err)
		}
	})

	t.Run("rejects zero and negative", func(t *testing.T) {
		if _, err := engine.ApplyOverride(quote, money.Zero("NGN")); !errors.Is(err, ErrInvalidOverride) {
			t.Fatalf("zero override: want ErrInvalidOverride, got %v", err)
		}
		if _, err := engine.ApplyOverride(quote, money.Must(-100, "NGN")); !errors.Is(err, ErrInvalidOverride) {
			t.Fatalf("negative override: want ErrInvalidOverride, got %v", err)
		}
	})

	t.Run("rejects currency mismatch", func(t *testing.T) {
		if _, err := engine.ApplyOverride(quote, money.Must(100, "USD")); !errors.Is(err, money.ErrCurrencyMismatch) {
			t.Fatalf("want ErrCurrencyMismatch, got %v", err)
		}
	})
}
