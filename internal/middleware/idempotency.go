package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/utils"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string) (*models.CachedResponse, error)
	Save(ctx context.Context, key string, resp *models.CachedResponse) error
	Release(ctx context.Context, key string) error
}

type responseCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

func (rc *responseCapture) WriteString(s string) (int, error) {
	rc.body.WriteString(s)
	return rc.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored 2xx response for a repeated
// Idempotency-Key. Keys are scoped to the authenticated principal. When the
// store is unreachable requests pass through unprotected.
func Idempotency(store IdempotencyStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyHeader)
		if header == "" {
			c.Next()
			return
		}

		key := header
		if principal, ok := PrincipalFrom(c); ok {
			key = fmt.Sprintf("%s:%d:%s", principal.Role, principal.ID, header)
		}
		ctx := c.Request.Context()

		reserved, err := store.Reserve(ctx, key)
		if err != nil {
			log.Warn("IDEMPOTENCY", fmt.Sprintf("Store unavailable, processing %s unprotected: %v", header, err))
			c.Next()
			return
		}

		if !reserved {
			cached, err := store.Load(ctx, key)
			if err != nil {
				log.Error("IDEMPOTENCY", fmt.Sprintf("Failed to load response for %s: %v", header, err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse("Internal server error", nil))
				return
			}
			if cached == nil {
				c.AbortWithStatusJSON(http.StatusConflict, utils.ErrorResponse("A request with this Idempotency-Key is still in progress", nil))
				return
			}
			replay(c, cached)
			log.Info("IDEMPOTENCY", fmt.Sprintf("Replayed response for %s", header))
			return
		}

		capture := &responseCapture{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = capture
		c.Next()

		// a fresh context: the request context may already be cancelled
		bg := context.Background()
		status := capture.Status()
		if status < 200 || status >= 300 {
			if err := store.Release(bg, key); err != nil {
				log.Warn("IDEMPOTENCY", fmt.Sprintf("Failed to release %s: %v", header, err))
			}
			return
		}

		cached := &models.CachedResponse{
			StatusCode: status,
			Headers:    capture.Header().Clone(),
			Body:       capture.body.Bytes(),
		}
		if err := store.Save(bg, key, cached); err != nil {
			log.Warn("IDEMPOTENCY", fmt.Sprintf("Failed to store response for %s: %v", header, err))
		}
	}
}

func replay(c *gin.Context, cached *models.CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			c.Writer.Header().Add(key, value)
		}
	}
	c.Writer.Header().Set(replayedHeader, "true")
	c.Writer.WriteHeader(cached.StatusCode)
	_, _ = c.Writer.Write(cached.Body)
	c.Abort()
}
