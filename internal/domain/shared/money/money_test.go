package money

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int64
	}{
		{"plain integer", "50000", 5_000_000},
		{"grouped with commas", "50,000", 5_000_000},
		{"two decimals", "50000.00", 5_000_000},
		{"grouped and decimals", "1,234.56", 123_456},
		{"underscore grouping", "1_000", 100_000},
		{"spaces", " 25 000 ", 2_500_000},
		{"single decimal digit padded", "10.5", 1_050},
		{"extra decimals truncated", "10.559", 1_055},
		{"bare fraction", ".75", 75},
		{"negative", "-150.25", -15_025},
		{"zero", "0", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw, "NGN")
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.raw, err)
			}
			if got.Amount != tc.want {
				t.Fatalf("Parse(%q) = %d, want %d", tc.raw, got.Amount, tc.want)
			}
			if got.Currency != "NGN" {
				t.Fatalf("Parse(%q) currency = %q", tc.raw, got.Currency)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "12a4", "1.2.3", "10-50", "--5", "NGN 100x"} {
		if _, err := Parse(raw, "NGN"); !errors.Is(err, ErrParse) {
			t.Errorf("Parse(%q): want ErrParse, got %v", raw, err)
		}
	}
	if _, err := Parse("100", "naira"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("want ErrInvalidCurrency, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{5_000_000, "50000.00"},
		{123_456, "1234.56"},
		{5, "0.05"},
		{0, "0.00"},
		{-15_025, "-150.25"},
	}
	for _, tc := range cases {
		if got := (Money{Amount: tc.amount, Currency: "NGN"}).Format(); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := Must(10_000, "NGN")
	b := Must(2_500, "NGN")

	sum, err := a.Add(b)
	if err != nil || sum.Amount != 12_500 {
		t.Fatalf("Add = %v, %v", sum, err)
	}
	diff, err := a.Sub(b)
	if err != nil || diff.Amount != 7_500 {
		t.Fatalf("Sub = %v, %v", diff, err)
	}
	if got := a.Multiply(3); got.Amount != 30_000 {
		t.Fatalf("Multiply = %v", got)
	}

	if _, err := a.Add(Must(1, "USD")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("cross-currency Add: want ErrCurrencyMismatch, got %v", err)
	}
}

func TestDivRoundHalfUp(t *testing.T) {
	cases := []struct {
		amount int64
		by     int64
		want   int64
	}{
		{100, 3, 33},  // 33.33 rounds down
		{100, 8, 13},  // 12.5 rounds up
		{100, 4, 25},  // exact
		{-100, 8, -13}, // halves round away from zero
		{0, 5, 0},
	}
	for _, tc := range cases {
		got, err := Money{Amount: tc.amount, Currency: "NGN"}.DivRound(tc.by)
		if err != nil {
			t.Fatalf("DivRound(%d, %d): %v", tc.amount, tc.by, err)
		}
		if got.Amount != tc.want {
			t.Errorf("DivRound(%d, %d) = %d, want %d", tc.amount, tc.by, got.Amount, tc.want)
		}
	}
	if _, err := Must(100, "NGN").DivRound(0); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("DivRound(0): want ErrInvalidRatio, got %v", err)
	}
}

func TestMulRatio(t *testing.T) {
	base := Must(5_000_000, "NGN") // 50,000.00
	discounted, err := base.MulRatio(90, 100)
	if err != nil {
		t.Fatal(err)
	}
	if discounted.Amount != 4_500_000 {
		t.Fatalf("10%% off 50000.00 = %s, want 45000.00", discounted.Format())
	}

	odd := Must(101, "NGN")
	half, err := odd.MulRatio(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if half.Amount != 51 { // 50.5 rounds up
		t.Fatalf("half of 101 = %d, want 51", half.Amount)
	}

	if _, err := base.MulRatio(1, 0); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("zero denominator: want ErrInvalidRatio, got %v", err)
	}
}

func TestClampFloorAndPredicates(t *testing.T) {
	neg := Must(-500, "NGN")
	if got := neg.ClampFloor(); got.Amount != 0 {
		t.Fatalf("ClampFloor(-500) = %d", got.Amount)
	}
	pos := Must(500, "NGN")
	if got := pos.ClampFloor(); got.Amount != 500 {
		t.Fatalf("ClampFloor(500) = %d", got.Amount)
	}
	if !neg.IsNegative() || neg.IsPositive() || neg.IsZero() {
		t.Fatal("predicates wrong for negative value")
	}
	if !Zero("NGN").IsZero() {
		t.Fatal("Zero should be zero")
	}
}
