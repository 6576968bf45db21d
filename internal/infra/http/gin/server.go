package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staykeeper/internal/infra/config"
	"staykeeper/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Confirm(c *gin.Context)
	CheckIn(c *gin.Context)
	Cancel(c *gin.Context)
	Quote(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
}

type PaymentHTTP interface {
	Record(c *gin.Context)
	Folio(c *gin.Context)
}

type CheckoutHTTP interface {
	PostCharge(c *gin.Context)
	Complete(c *gin.Context)
	Preview(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Payment      PaymentHTTP
	Checkout     CheckoutHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/checkin", h.Booking.CheckIn)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.GET("/units/:id/quote", h.Booking.Quote)
	}
	if h.Availability != nil {
		api.GET("/units/:id/calendar", h.Availability.Calendar)
	}
	if h.Payment != nil {
		api.POST("/bookings/:id/payments", h.Payment.Record)
		api.GET("/bookings/:id/folio", h.Payment.Folio)
	}
	if h.Checkout != nil {
		api.POST("/bookings/:id/charges", h.Checkout.PostCharge)
		api.POST("/bookings/:id/checkout", h.Checkout.Complete)
		api.GET("/bookings/:id/checkout/preview", h.Checkout.Preview)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
