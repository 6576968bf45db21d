package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	appbooking "staykeeper/internal/app/handlers/booking"
	domainbooking "staykeeper/internal/domain/booking"
	domaincheckout "staykeeper/internal/domain/checkout"
	domainledger "staykeeper/internal/domain/ledger"
	domainpricing "staykeeper/internal/domain/pricing"
	domainrange "staykeeper/internal/domain/shared/daterange"
	domainmoney "staykeeper/internal/domain/shared/money"
	domainunit "staykeeper/internal/domain/unit"
)

// writeError maps domain failures onto HTTP statuses. Bad input is 400,
// missing aggregates 404, and conflicts with the booking's current state 409.
func writeError(c *gin.Context, err error) {
	var balanceErr *domaincheckout.OutstandingBalanceError
	if errors.As(err, &balanceErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       balanceErr.Error(),
			"outstanding": balanceErr.Outstanding.Format(),
		})
		return
	}

	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainunit.ErrUnitNotFound),
		errors.Is(err, domainledger.ErrFolioNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, appbooking.ErrRangeUnavailable),
		errors.Is(err, domainledger.ErrPaymentNotAllowed),
		errors.Is(err, domaincheckout.ErrCertificationRequired),
		errors.Is(err, domaincheckout.ErrCertificationMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrPastCheckIn),
		errors.Is(err, domainbooking.ErrGuestRequired),
		errors.Is(err, domainmoney.ErrParse),
		errors.Is(err, domainmoney.ErrCurrencyMismatch),
		errors.Is(err, domainmoney.ErrInvalidCurrency),
		errors.Is(err, domainpricing.ErrZeroNights),
		errors.Is(err, domainpricing.ErrInvalidOverride),
		errors.Is(err, domainledger.ErrInvalidAmount),
		errors.Is(err, domainledger.ErrMissingReference),
		errors.Is(err, domainledger.ErrNegativeCharge),
		errors.Is(err, domainledger.ErrUnknownChargeKind),
		errors.Is(err, domaincheckout.ErrRefundNotEligible),
		errors.Is(err, domaincheckout.ErrRefundOutOfBounds),
		errors.Is(err, domaincheckout.ErrReasonRequired),
		errors.Is(err, domaincheckout.ErrNegativePenalty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
