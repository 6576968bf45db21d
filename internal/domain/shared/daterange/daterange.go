package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// DateRange represents a half-open interval [checkIn, checkOut).
// A stay ending on day D and another starting on day D never overlap, so
// back-to-back turnover is always legal.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts whole calendar nights between check-in and check-out.
// Time-of-day is irrelevant: both endpoints are truncated to their calendar
// day before counting.
func (dr DateRange) Nights() int {
	in := TruncateToDay(dr.CheckIn)
	out := TruncateToDay(dr.CheckOut)
	return int(out.Sub(in).Hours() / 24)
}

// Overlaps applies the half-open rule on calendar days. Time-of-day never
// creates a conflict: a stay checking out at 11:00 and one checking in at
// 09:00 on the same day still coexist.
func (dr DateRange) Overlaps(other DateRange) bool {
	aIn, aOut := TruncateToDay(dr.CheckIn), TruncateToDay(dr.CheckOut)
	bIn, bOut := TruncateToDay(other.CheckIn), TruncateToDay(other.CheckOut)
	return aIn.Before(bOut) && bIn.Before(aOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Day wraps a single calendar day as a half-open range, so whole-day
// questions reuse the same overlap rule as stays.
func Day(t time.Time) DateRange {
	start := TruncateToDay(t)
	return DateRange{CheckIn: start, CheckOut: start.AddDate(0, 0, 1)}
}

// TruncateToDay drops the time-of-day component in UTC.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
