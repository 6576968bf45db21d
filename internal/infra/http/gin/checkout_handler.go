package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staykeeper/internal/app/commands"
	CheckoutApp "staykeeper/internal/app/handlers/checkout"
	"staykeeper/internal/app/queries"
)

type CheckoutHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type postChargeRequest struct {
	Kind      string `json:"kind"` // DAMAGE or OVERSTAY
	Amount    int64  `json:"amount"`
	Notes     string `json:"notes,omitempty"`
	ActorRole string `json:"actor_role"`
}

func (h CheckoutHandler) PostCharge(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req postChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.PostChargeCommand{
		CommandID: generateCommandID(),
		BookingID: c.Param("id"),
		ActorRole: req.ActorRole,
		Kind:      req.Kind,
		Amount:    req.Amount,
		Notes:     req.Notes,
	}
	result, err := commands.Dispatch[CheckoutApp.PostChargeCommand, *CheckoutApp.PostChargeResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type refundRequest struct {
	Policy   string `json:"policy"`
	Penalty  int64  `json:"penalty"`
	Approved bool   `json:"approved"`
	Amount   *int64 `json:"amount,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type completeCheckoutRequest struct {
	ActorRole            string         `json:"actor_role"`
	CertifiedOutstanding int64          `json:"certified_outstanding"`
	CertifiedDamages     int64          `json:"certified_damages"`
	CertifyNoOutstanding bool           `json:"certify_no_outstanding"`
	CertifyNoDamages     bool           `json:"certify_no_damages"`
	Refund               *refundRequest `json:"refund,omitempty"`
}

func (h CheckoutHandler) Complete(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req completeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.CompleteCheckoutCommand{
		CommandID:            generateCommandID(),
		BookingID:            c.Param("id"),
		ActorRole:            req.ActorRole,
		CertifiedOutstanding: req.CertifiedOutstanding,
		CertifiedDamages:     req.CertifiedDamages,
		CertifyNoOutstanding: req.CertifyNoOutstanding,
		CertifyNoDamages:     req.CertifyNoDamages,
		IdempotencyKeyV:      c.GetHeader("Idempotency-Key"),
	}
	if req.Refund != nil {
		cmd.Refund = &CheckoutApp.RefundInput{
			Policy:   req.Refund.Policy,
			Penalty:  req.Refund.Penalty,
			Approved: req.Refund.Approved,
			Amount:   req.Refund.Amount,
			Reason:   req.Refund.Reason,
		}
	}
	result, err := commands.Dispatch[CheckoutApp.CompleteCheckoutCommand, *CheckoutApp.CompleteCheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CheckoutHandler) Preview(c *gin.Context) {
	q := CheckoutApp.PreviewQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[CheckoutApp.PreviewQuery, CheckoutApp.Preview](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CheckoutHTTP = CheckoutHandler{}
