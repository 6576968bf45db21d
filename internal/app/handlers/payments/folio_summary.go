package payments

import (
	"context"

	"staykeeper/internal/app/handlers/support"
	"staykeeper/internal/app/queries"
	"staykeeper/internal/app/uow"
	domainbooking "staykeeper/internal/domain/booking"
)

const folioSummaryKey = "payments.folio"

type FolioSummaryQuery struct {
	BookingID string
}

func (q FolioSummaryQuery) Key() string { return folioSummaryKey }

type FolioSummary struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	Total        string `json:"total"`
	Owed         string `json:"owed"`
	Paid         string `json:"paid"`
	Outstanding  string `json:"outstanding"`
	DamagesTotal string `json:"damages_total"`
	Payments     int    `json:"payments"`
	Charges      int    `json:"charges"`
}

// FolioSummaryHandler derives the running balance wherever a view needs it;
// nothing here is cached, so the numbers can never drift from the ledger.
type FolioSummaryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *FolioSummaryHandler) Handle(ctx context.Context, q FolioSummaryQuery) (FolioSummary, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return FolioSummary{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	folio, err := unit.Folios().ByBooking(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return FolioSummary{}, err
	}
	return FolioSummary{
		BookingID:    string(folio.BookingID),
		Status:       string(folio.Status()),
		Total:        folio.Total.Format(),
		Owed:         folio.Owed().Format(),
		Paid:         folio.Paid().Format(),
		Outstanding:  folio.Outstanding().Format(),
		DamagesTotal: folio.DamagesTotal().Format(),
		Payments:     len(folio.Payments),
		Charges:      len(folio.Charges),
	}, nil
}

var _ queries.Handler[FolioSummaryQuery, FolioSummary] = (*FolioSummaryHandler)(nil)
