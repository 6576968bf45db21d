package availability

import (
	"context"
	"time"

	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/queries"
	"staykeeper/internal/app/uow"
	domainavailability "staykeeper/internal/domain/availability"
	domainrange "staykeeper/internal/domain/shared/daterange"
	domainunit "staykeeper/internal/domain/unit"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	UnitID string
	From   time.Time
	To     time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type Calendar struct {
	UnitID       string   `json:"unit_id"`
	BlockedDates []string `json:"blocked_dates"` // YYYY-MM-DD, blocked under the half-open rule
}

// GetCalendarHandler walks the requested window one day at a time and probes
// each day against the unit's blocking bookings, so calendar views render the
// exact availability the booking gate would enforce.
type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory

	checker domainavailability.Checker
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (Calendar, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	from := domainrange.TruncateToDay(q.From)
	to := domainrange.TruncateToDay(q.To)
	if !to.After(from) {
		return Calendar{}, domainrange.ErrInvalidRange
	}

	bookings, err := unit.Bookings().ListBlockingByUnit(execCtx, domainunit.UnitID(q.UnitID))
	if err != nil {
		return Calendar{}, err
	}

	cal := Calendar{UnitID: q.UnitID}
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		if h.checker.IsDateBlocked(day, bookings) {
			cal.BlockedDates = append(cal.BlockedDates, day.Format("2006-01-02"))
		}
	}
	return cal, nil
}

var _ queries.Handler[GetCalendarQuery, Calendar] = (*GetCalendarHandler)(nil)
