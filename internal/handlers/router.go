package handlers

import (
	"github.com/gin-gonic/gin"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/middleware"
	"booking-service/internal/models"
)

type RouterConfig struct {
	Auth      config.AuthConfig
	RateLimit config.RateLimitConfig
	// Idempotency is optional; without it Idempotency-Key headers are ignored.
	Idempotency middleware.IdempotencyStore
}

func NewRouter(cfg RouterConfig, bookings *BookingHandler, health *HealthHandler, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.EnhancedLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.SecurityHeaders(log))
	router.Use(middleware.RateLimit(cfg.RateLimit, log))

	router.GET("/health", health.Health)

	customer := middleware.RequireRole(models.RoleCustomer)
	supplier := middleware.RequireRole(models.RoleSupplier)
	initiate := []gin.HandlerFunc{customer}
	if cfg.Idempotency != nil {
		initiate = append(initiate, middleware.Idempotency(cfg.Idempotency, log))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(cfg.Auth.Secret, log))
	{
		b := v1.Group("/bookings")
		{
			b.POST("/checkout", customer, bookings.Checkout)
			b.POST("/initiate", append(initiate, bookings.Initiate)...)
			b.POST("/artist/approve/:id", supplier, bookings.ApproveArtist)
			b.POST("/artist/initiate-payment/:id", customer, bookings.InitiateArtistPayment)
			b.POST("/confirm/:id", customer, bookings.Confirm)
			b.GET("/:id", bookings.GetBooking)
			b.GET("/:id/payments", bookings.ListPayments)
		}
	}

	log.LogProcess("ROUTER", "All routes registered successfully")
	return router
}
