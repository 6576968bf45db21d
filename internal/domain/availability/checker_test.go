package availability

import (
	"errors"
	"testing"
	"time"

	"staykeeper/internal/domain/booking"
	"staykeeper/internal/domain/shared/daterange"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func stay(t *testing.T, in, out int, status booking.BookingStatus) *booking.Booking {
	t.Helper()
	dr, err := daterange.New(day(in), day(out))
	if err != nil {
		t.Fatal(err)
	}
	return &booking.Booking{ID: "b1", Range: dr, Status: status}
}

func TestIsBookable(t *testing.T) {
	var checker Checker

	cases := []struct {
		name     string
		existing []*booking.Booking
		in, out  int
		want     bool
	}{
		{"empty calendar", nil, 10, 13, true},
		{"overlap with confirmed", []*booking.Booking{stay(t, 10, 15, booking.StatusConfirmed)}, 12, 14, false},
		{"overlap with pending", []*booking.Booking{stay(t, 10, 15, booking.StatusPending)}, 14, 16, false},
		{"overlap with checked-in", []*booking.Booking{stay(t, 10, 15, booking.StatusCheckedIn)}, 9, 11, false},
		{"cancelled never blocks", []*booking.Booking{stay(t, 10, 15, booking.StatusCancelled)}, 12, 14, true},
		{"checked-out never blocks", []*booking.Booking{stay(t, 10, 15, booking.StatusCheckedOut)}, 12, 14, true},
		{"back-to-back after existing", []*booking.Booking{stay(t, 10, 15, booking.StatusConfirmed)}, 15, 18, true},
		{"back-to-back before existing", []*booking.Booking{stay(t, 10, 15, booking.StatusConfirmed)}, 8, 10, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate, err := daterange.New(day(tc.in), day(tc.out))
			if err != nil {
				t.Fatal(err)
			}
			got, err := checker.IsBookable(candidate, tc.existing, testNow)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("IsBookable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsBookableSameDayTurnoverWithTimes(t *testing.T) {
	var checker Checker

	// The departing guest checks out at 11:00; the arriving one checks in at
	// 09:00 the same day. Only calendar days decide conflicts.
	departing, err := daterange.New(
		time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 8, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	existing := []*booking.Booking{{ID: "b1", Range: departing, Status: booking.StatusConfirmed}}

	arriving, err := daterange.New(
		time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	ok, err := checker.IsBookable(arriving, existing, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("same-day turnover should be bookable")
	}

	// The departing stay's last night is still taken.
	if !checker.IsDateBlocked(day(7), existing) {
		t.Fatal("last night of the departing stay should be blocked")
	}
	if checker.IsDateBlocked(day(8), existing) {
		t.Fatal("turnover day should be free despite the 11:00 checkout")
	}
}

func TestIsBookableRejectsPastCheckIn(t *testing.T) {
	var checker Checker
	candidate, err := daterange.New(day(10), day(13))
	if err != nil {
		t.Fatal(err)
	}
	later := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if _, err := checker.IsBookable(candidate, nil, later); !errors.Is(err, booking.ErrPastCheckIn) {
		t.Fatalf("want ErrPastCheckIn, got %v", err)
	}

	// Check-in today is still fine, whatever the time of day.
	sameDay := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	ok, err := checker.IsBookable(candidate, nil, sameDay)
	if err != nil || !ok {
		t.Fatalf("same-day check-in: ok=%v err=%v", ok, err)
	}
}

func TestIsDateBlocked(t *testing.T) {
	var checker Checker
	existing := []*booking.Booking{stay(t, 10, 15, booking.StatusConfirmed)}

	if !checker.IsDateBlocked(day(10), existing) {
		t.Fatal("check-in day should be blocked")
	}
	if !checker.IsDateBlocked(day(14), existing) {
		t.Fatal("last night should be blocked")
	}
	if checker.IsDateBlocked(day(15), existing) {
		t.Fatal("check-out day should be free")
	}
	if checker.IsDateBlocked(day(9), existing) {
		t.Fatal("day before stay should be free")
	}
	if checker.IsDateBlocked(day(12), []*booking.Booking{stay(t, 10, 15, booking.StatusCancelled)}) {
		t.Fatal("cancelled stay should not block")
	}
}
