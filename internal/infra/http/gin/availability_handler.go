package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	AvailabilityApp "staykeeper/internal/app/handlers/availability"
	"staykeeper/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	q := AvailabilityApp.GetCalendarQuery{UnitID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[AvailabilityApp.GetCalendarQuery, AvailabilityApp.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
