package ginserver

import (
	"encoding/base64"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staykeeper/internal/app/commands"
	PaymentsApp "staykeeper/internal/app/handlers/payments"
	"staykeeper/internal/app/queries"
)

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type recordPaymentRequest struct {
	Amount      int64  `json:"amount"` // minor units
	Reference   string `json:"reference"`
	Notes       string `json:"notes,omitempty"`
	ActorRole   string `json:"actor_role"`
	Receipt     string `json:"receipt,omitempty"` // base64 file content
	ReceiptType string `json:"receipt_type,omitempty"`
}

func (h PaymentHandler) Record(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var receipt []byte
	if req.Receipt != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Receipt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt encoding"})
			return
		}
		receipt = decoded
	}
	cmd := PaymentsApp.RecordPaymentCommand{
		CommandID:       generateCommandID(),
		BookingID:       c.Param("id"),
		ActorRole:       req.ActorRole,
		Amount:          req.Amount,
		Reference:       req.Reference,
		Notes:           req.Notes,
		Receipt:         receipt,
		ReceiptType:     req.ReceiptType,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[PaymentsApp.RecordPaymentCommand, *PaymentsApp.RecordPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) Folio(c *gin.Context) {
	q := PaymentsApp.FolioSummaryQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[PaymentsApp.FolioSummaryQuery, PaymentsApp.FolioSummary](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
