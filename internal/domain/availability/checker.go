package availability

import (
	"time"

	"staykeeper/internal/domain/booking"
	"staykeeper/internal/domain/shared/daterange"
)

// Checker decides whether a candidate date range may be booked against a
// unit's existing reservations. It holds no state; callers supply the
// bookings and the clock.
type Checker struct{}

// IsBookable validates the candidate range and scans the supplied bookings
// for a conflict. Only bookings in a blocking status participate; cancelled
// and checked-out stays never block. Ranges conflict under the half-open
// rule, so a check-out and a check-in on the same day coexist.
func (Checker) IsBookable(candidate daterange.DateRange, existing []*booking.Booking, now time.Time) (bool, error) {
	if err := booking.ValidateDateRange(candidate, now); err != nil {
		return false, err
	}
	for _, b := range existing {
		if b == nil || !b.Status.Blocking() {
			continue
		}
		if b.Range.Overlaps(candidate) {
			return false, nil
		}
	}
	return true, nil
}

// IsDateBlocked answers the single-day question calendar views ask, using the
// same half-open rule applied to one day.
func (Checker) IsDateBlocked(day time.Time, existing []*booking.Booking) bool {
	probe := daterange.Day(day)
	for _, b := range existing {
		if b == nil || !b.Status.Blocking() {
			continue
		}
		if b.Range.Overlaps(probe) {
			return true
		}
	}
	return false
}
