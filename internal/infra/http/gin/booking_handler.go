package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staykeeper/internal/app/commands"
	BookingApp "staykeeper/internal/app/handlers/booking"
	"staykeeper/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	TenantID      string    `json:"tenant_id"`
	UnitID        string    `json:"unit_id"`
	GuestID       string    `json:"guest_id"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Guests        int       `json:"guests"`
	ActorRole     string    `json:"actor_role"`
	OverrideTotal *int64    `json:"override_total,omitempty"` // minor units
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.CreateBookingCommand{
		CommandID:       generateCommandID(),
		TenantID:        req.TenantID,
		ActorRole:       req.ActorRole,
		UnitID:          req.UnitID,
		GuestID:         req.GuestID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		OverrideTotal:   req.OverrideTotal,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.CreateBookingCommand, *BookingApp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type transitionRequest struct {
	ActorRole string `json:"actor_role"`
	Reason    string `json:"reason,omitempty"`
}

func (h BookingHandler) Confirm(c *gin.Context) {
	var req transitionRequest
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.ConfirmBookingCommand{BookingID: c.Param("id"), ActorRole: req.ActorRole}
	result, err := commands.Dispatch[BookingApp.ConfirmBookingCommand, *BookingApp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	var req transitionRequest
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.CheckInCommand{BookingID: c.Param("id"), ActorRole: req.ActorRole}
	result, err := commands.Dispatch[BookingApp.CheckInCommand, *BookingApp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req transitionRequest
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.CancelBookingCommand{BookingID: c.Param("id"), ActorRole: req.ActorRole, Reason: req.Reason}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Quote(c *gin.Context) {
	checkIn, err := time.Parse(time.RFC3339, c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	checkOut, err := time.Parse(time.RFC3339, c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
		return
	}
	q := BookingApp.QuoteStayQuery{UnitID: c.Param("id"), CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[BookingApp.QuoteStayQuery, BookingApp.QuoteStayResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
