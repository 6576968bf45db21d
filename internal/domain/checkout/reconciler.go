package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"staykeeper/internal/domain/booking"
	"staykeeper/internal/domain/ledger"
	"staykeeper/internal/domain/shared/daterange"
	"staykeeper/internal/domain/shared/money"
)

var (
	ErrCertificationRequired = errors.New("checkout: both certifications must be affirmed")
	ErrCertificationMismatch = errors.New("checkout: certification contradicts the amounts it attests to")
	ErrRefundNotEligible     = errors.New("checkout: refund only applies before the scheduled check-out")
	ErrRefundOutOfBounds     = errors.New("checkout: refund amount outside the eligible range")
	ErrReasonRequired        = errors.New("checkout: overriding the suggested refund requires a reason")
	ErrNegativePenalty       = errors.New("checkout: penalty cannot be negative")
)

// OutstandingBalanceError blocks checkout while the guest still owes money.
// It carries the current outstanding amount so callers can display it without
// re-querying the ledger. The caller may retry once the balance is settled.
type OutstandingBalanceError struct {
	Outstanding money.Money
}

func (e *OutstandingBalanceError) Error() string {
	return fmt.Sprintf("checkout: outstanding balance of %s", e.Outstanding)
}

// Certification is the ephemeral evidence staff affirm before checkout fires.
// It never alters the ledger. Outstanding is the balance shown to staff when
// they certified; DamagesCost is any assessed but still unposted damage cost.
type Certification struct {
	Outstanding          money.Money
	DamagesCost          money.Money
	CertifyNoOutstanding bool
	CertifyNoDamages     bool
}

type RefundPolicy string

const (
	RefundPolicyNone     RefundPolicy = "NO_REFUND"
	RefundPolicyPartial  RefundPolicy = "PARTIAL"
	RefundPolicyFlexible RefundPolicy = "FLEXIBLE"
)

// RefundRequest is the staff side of an early-checkout refund: the chosen
// policy, an optional penalty (PARTIAL), an optional amount override, and the
// approval flag that gates recording anything at all.
type RefundRequest struct {
	Policy   RefundPolicy
	Penalty  money.Money
	Approved bool
	Override *money.Money
	Reason   string
}

// RefundDecision is the resolved outcome for an early checkout.
type RefundDecision struct {
	Policy         RefundPolicy
	EligibleAmount money.Money
	Penalty        money.Money
	Approved       bool
	RefundAmount   money.Money
	Reason         string
}

// Settlement is the result of a completed checkout.
type Settlement struct {
	BookingID    booking.BookingID
	OverstayDays int
	Refund       *ledger.Refund
	CheckedOutAt time.Time
}

// Reconciler combines the folio, damage and overstay charges, and the
// early-checkout refund proration into one final settlement decision.
type Reconciler struct{}

// OverstayDays counts whole days elapsed past the scheduled check-out.
func (Reconciler) OverstayDays(b *booking.Booking, now time.Time) int {
	elapsed := now.UTC().Sub(b.Range.CheckOut)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed.Hours() / 24)
}

// NightlyRate prorates the committed total over the booked nights, rounding
// half-up. Used for overstay suggestions and refund proration.
func (Reconciler) NightlyRate(b *booking.Booking, f *ledger.Folio) (money.Money, error) {
	nights := b.Range.Nights()
	if nights < 1 {
		return money.Money{}, daterange.ErrInvalidRange
	}
	return f.Total.DivRound(int64(nights))
}

// SuggestOverstayCharge offers nightlyRate x overstayDays as a default. It is
// a suggestion only; a charge is posted solely through an explicit staff
// action.
func (r Reconciler) SuggestOverstayCharge(b *booking.Booking, f *ledger.Folio, now time.Time) (money.Money, error) {
	days := r.OverstayDays(b, now)
	if days == 0 {
		return money.Zero(f.Total.Currency), nil
	}
	rate, err := r.NightlyRate(b, f)
	if err != nil {
		return money.Money{}, err
	}
	return rate.Multiply(int64(days)), nil
}

// EligibleRefund prorates the unused nights of an early checkout. Used nights
// are rounded up and clamped to [1, bookedNights]: the guest always consumes
// at least one night, and leaving on the last day yields nothing back.
func (r Reconciler) EligibleRefund(b *booking.Booking, f *ledger.Folio, now time.Time) (money.Money, error) {
	if !b.Range.CheckOut.After(now.UTC()) {
		return money.Money{}, ErrRefundNotEligible
	}
	booked := b.Range.Nights()
	used := ceilDays(now.UTC().Sub(b.Range.CheckIn))
	if used < 1 {
		used = 1
	}
	if used > booked {
		used = booked
	}
	unused := booked - used
	rate, err := r.NightlyRate(b, f)
	if err != nil {
		return money.Money{}, err
	}
	return rate.Multiply(int64(unused)).ClampFloor(), nil
}

// ResolveRefund applies the policy to the eligible amount.
func (Reconciler) ResolveRefund(policy RefundPolicy, eligible, penalty money.Money) (money.Money, error) {
	if penalty.IsNegative() {
		return money.Money{}, ErrNegativePenalty
	}
	switch policy {
	case RefundPolicyNone:
		return money.Zero(eligible.Currency), nil
	case RefundPolicyPartial:
		diff, err := eligible.Sub(penalty)
		if err != nil {
			return money.Money{}, err
		}
		return diff.ClampFloor(), nil
	case RefundPolicyFlexible:
		return eligible, nil
	}
	return money.Money{}, fmt.Errorf("checkout: unknown refund policy %q", policy)
}

// DecideRefund resolves a staff refund request into a bounded decision. The
// amount may be edited within [0, eligible]; moving it off the suggested
// value requires a non-blank reason.
func (r Reconciler) DecideRefund(b *booking.Booking, f *ledger.Folio, req RefundRequest, now time.Time) (RefundDecision, error) {
	eligible, err := r.EligibleRefund(b, f, now)
	if err != nil {
		return RefundDecision{}, err
	}
	penalty := req.Penalty
	if penalty.Currency == "" {
		penalty = money.Zero(eligible.Currency)
	}
	suggested, err := r.ResolveRefund(req.Policy, eligible, penalty)
	if err != nil {
		return RefundDecision{}, err
	}

	amount := suggested
	reason := strings.TrimSpace(req.Reason)
	if req.Override != nil {
		amount = *req.Override
		if amount.IsNegative() || amount.Amount > eligible.Amount || !amount.SameCurrency(eligible) {
			return RefundDecision{}, ErrRefundOutOfBounds
		}
		if amount.Amount != suggested.Amount && reason == "" {
			return RefundDecision{}, ErrReasonRequired
		}
	}

	return RefundDecision{
		Policy:         req.Policy,
		EligibleAmount: eligible,
		Penalty:        penalty,
		Approved:       req.Approved,
		RefundAmount:   amount,
		Reason:         reason,
	}, nil
}

// Settle runs the certification gate and, on success, transitions the booking
// to CHECKED_OUT and records the approved refund in the same step. Every
// validation happens before the first mutation, so a rejected checkout leaves
// both aggregates untouched.
func (r Reconciler) Settle(b *booking.Booking, f *ledger.Folio, cert Certification, refund *RefundRequest, refundID string, now time.Time) (Settlement, error) {
	if b.Status != booking.StatusCheckedIn {
		return Settlement{}, booking.ErrInvalidState
	}

	outstanding := f.Outstanding()
	if !outstanding.IsZero() {
		return Settlement{}, &OutstandingBalanceError{Outstanding: outstanding}
	}
	if !cert.CertifyNoOutstanding || !cert.CertifyNoDamages {
		return Settlement{}, ErrCertificationRequired
	}
	// The certification is evidence, not a waiver: affirming it against a
	// non-zero snapshot, or while an assessed damage cost is still unposted,
	// is a contradiction. Posted damages flow through outstanding and are
	// resolved by payment, never by certification.
	if !cert.Outstanding.IsZero() || !cert.DamagesCost.IsZero() {
		return Settlement{}, ErrCertificationMismatch
	}

	var decision *RefundDecision
	if refund != nil {
		d, err := r.DecideRefund(b, f, *refund, now)
		if err != nil {
			return Settlement{}, err
		}
		decision = &d
	}

	if err := b.CheckOut(now); err != nil {
		return Settlement{}, err
	}

	settlement := Settlement{
		BookingID:    b.ID,
		OverstayDays: r.OverstayDays(b, now),
		CheckedOutAt: now.UTC(),
	}
	if decision != nil && decision.Approved {
		rec, err := f.RecordRefund(refundID, decision.RefundAmount, string(decision.Policy), decision.Reason, now)
		if err != nil {
			return Settlement{}, err
		}
		settlement.Refund = &rec
	}
	return settlement, nil
}

func ceilDays(d time.Duration) int {
	const day = 24 * time.Hour
	n := int(d / day)
	if d%day > 0 {
		n++
	}
	return n
}
