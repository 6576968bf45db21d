package booking

import (
	"context"
	"errors"
	"time"

	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/events"
	"staykeeper/internal/domain/shared/money"
	"staykeeper/internal/domain/unit"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrInvalidTotal    = errors.New("booking: total must be positive")
	ErrPastCheckIn     = errors.New("booking: check-in date is in the past")
)

type BookingID string

type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusCheckedIn  BookingStatus = "CHECKED_IN"
	StatusCheckedOut BookingStatus = "CHECKED_OUT"
	StatusCancelled  BookingStatus = "CANCELLED"
)

// Blocking reports whether a booking in this status holds its unit's dates.
// Cancelled and checked-out stays release the calendar.
func (s BookingStatus) Blocking() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// Booking is the aggregate root for one stay. The committed total is fixed at
// creation; the running ledger lives on the booking's folio.
type Booking struct {
	ID            BookingID
	TenantID      string
	UnitID        unit.UnitID
	GuestID       string
	Range         daterange.DateRange
	Guests        int
	Status        BookingStatus
	TotalAmount   money.Money // committed at creation, possibly staff-overridden
	ComputedTotal money.Money // what the pricing engine calculated
	CreatedBy     string      // actor role, passed in explicitly
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// ListBlockingByUnit returns the unit's bookings in a blocking status
	// ({PENDING, CONFIRMED, CHECKED_IN}).
	ListBlockingByUnit(ctx context.Context, id unit.UnitID) ([]*Booking, error)
}

type CreateParams struct {
	ID            BookingID
	TenantID      string
	UnitID        unit.UnitID
	GuestID       string
	Range         daterange.DateRange
	Guests        int
	TotalAmount   money.Money
	ComputedTotal money.Money
	CreatedBy     string
	CreatedAt     time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if !params.TotalAmount.IsPositive() || !params.ComputedTotal.IsPositive() {
		return nil, ErrInvalidTotal
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		TenantID:      params.TenantID,
		UnitID:        params.UnitID,
		GuestID:       params.GuestID,
		Range:         params.Range,
		Guests:        params.Guests,
		Status:        StatusPending,
		TotalAmount:   params.TotalAmount,
		ComputedTotal: params.ComputedTotal,
		CreatedBy:     params.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingCreated{BookingID: b.ID, UnitID: b.UnitID, GuestID: b.GuestID, Range: b.Range, Total: b.TotalAmount, At: now})
	return b, nil
}

// ValidateDateRange rejects stays whose check-in day is already behind the
// property's operating calendar.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	today := daterange.TruncateToDay(now)
	if daterange.TruncateToDay(dr.CheckIn).Before(today) {
		return ErrPastCheckIn
	}
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, UnitID: b.UnitID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Status != StatusConfirmed && b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(GuestCheckedIn{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// CheckOut is only reachable from CHECKED_IN; the settlement gate in the
// checkout package is responsible for calling it.
func (b *Booking) CheckOut(now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	b.Status = StatusCheckedOut
	b.UpdatedAt = now.UTC()
	b.Record(GuestCheckedOut{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Cancel is terminal and only valid before check-in.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Overstayed reports whether the scheduled check-out has already passed.
func (b *Booking) Overstayed(now time.Time) bool {
	return now.UTC().After(b.Range.CheckOut)
}
