package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/utils"
)

// requestActor names the authenticated principal as role:id, or anonymous
// when the request never passed Authenticate.
func requestActor(keys map[string]any) string {
	principal, ok := keys[principalKey].(models.Principal)
	if !ok {
		return "anonymous"
	}
	return fmt.Sprintf("%s:%d", principal.Role, principal.ID)
}

// EnhancedLogger writes one API line per request tagged with the acting
// principal. Failed booking calls carry the idempotency key so a client retry
// can be matched to the original attempt.
func EnhancedLogger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		duration := param.Latency.String()
		status := fmt.Sprintf("%d", param.StatusCode)
		actor := requestActor(param.Keys)
		key := param.Request.Header.Get(IdempotencyHeader)

		switch {
		case param.StatusCode >= 500:
			log.Error("API", fmt.Sprintf("%s %s - %s (%s) by %s key=%q - ERROR: %s",
				param.Method, param.Path, status, duration, actor, key, param.ErrorMessage))
		case param.StatusCode >= 400:
			log.Warn("API", fmt.Sprintf("%s %s - %s (%s) by %s key=%q - Client Error",
				param.Method, param.Path, status, duration, actor, key))
		default:
			log.LogAPI(param.Method, param.Path, status, duration, actor)
		}

		log.Debug("REQUEST", fmt.Sprintf("IP: %s, UserAgent: %s",
			param.ClientIP, param.Request.UserAgent()))

		return ""
	})
}

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("PANIC", fmt.Sprintf("Recovered from panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse("Internal server error", nil))
	})
}

// RateLimit applies one token bucket to the whole service.
func RateLimit(cfg config.RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.LogSecurity("RATE_LIMIT", fmt.Sprintf("Rate limit exceeded for IP: %s", c.ClientIP()))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse("Rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}

// SecurityHeaders hardens every response. Booking and payment bodies carry
// gateway order handles and amounts, so they are never cached.
func SecurityHeaders(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Cache-Control", "no-store")

		if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
			log.LogSecurity("PROXY_REQUEST", fmt.Sprintf("%s %s forwarded for %s",
				c.Request.Method, c.Request.URL.Path, fwd))
		}

		c.Next()
	}
}
