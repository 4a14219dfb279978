package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logger.Logger {
	return logger.New(io.Discard, "error", "text")
}

func bearer(t *testing.T, principal models.Principal) string {
	t.Helper()
	token, err := IssueToken(testSecret, principal, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func authRouter(roles ...models.Role) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(testSecret, testLogger()))
	r.GET("/whoami", RequireRole(roles...), func(c *gin.Context) {
		principal, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, principal)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	r := authRouter(models.RoleCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, models.Principal{ID: 7, Role: models.RoleCustomer}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"customer"}`, w.Body.String())
}

func TestAuthenticateRejects(t *testing.T) {
	expired, err := IssueToken(testSecret, models.Principal{ID: 7, Role: models.RoleCustomer}, -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", models.Principal{ID: 7, Role: models.RoleCustomer}, time.Hour)
	require.NoError(t, err)
	badRole, err := IssueToken(testSecret, models.Principal{ID: 7, Role: "admin"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + foreign},
		{name: "unknown role", header: "Bearer " + badRole},
	}

	r := authRouter(models.RoleCustomer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := authRouter(models.RoleSupplier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, models.Principal{ID: 7, Role: models.RoleCustomer}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{RPS: 0.001, Burst: 2}, testLogger()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRecoveryAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(testLogger()), SecurityHeaders(testLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestEnhancedLoggerTagsPrincipal(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(EnhancedLogger(logger.New(&buf, "info", "json")), SecurityHeaders(testLogger()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/bookings", Authenticate(testSecret, testLogger()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.POST("/bookings/fail", Authenticate(testSecret, testLogger()), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("Authorization", bearer(t, models.Principal{ID: 7, Role: models.RoleCustomer}))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, buf.String(), "POST /bookings - 201")
	assert.Contains(t, buf.String(), "by customer:7")

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, buf.String(), "by anonymous")

	buf.Reset()
	req = httptest.NewRequest(http.MethodPost, "/bookings/fail", nil)
	req.Header.Set("Authorization", bearer(t, models.Principal{ID: 3, Role: models.RoleSupplier}))
	req.Header.Set(IdempotencyHeader, "retry-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "by supplier:3")
	assert.Contains(t, buf.String(), "retry-1")
}

type memoryIdempotency struct {
	mu       sync.Mutex
	records  map[string]*models.CachedResponse
	reserved map[string]bool
	down     bool
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{records: map[string]*models.CachedResponse{}, reserved: map[string]bool{}}
}

func (m *memoryIdempotency) Reserve(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, errors.New("connection refused")
	}
	if m.reserved[key] {
		return false, nil
	}
	m.reserved[key] = true
	return true, nil
}

func (m *memoryIdempotency) Load(ctx context.Context, key string) (*models.CachedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[key], nil
}

func (m *memoryIdempotency) Save(ctx context.Context, key string, resp *models.CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = resp
	return nil
}

func (m *memoryIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reserved, key)
	delete(m.records, key)
	return nil
}

func idempotentRouter(store IdempotencyStore, calls *int, status int) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(testSecret, testLogger()))
	r.POST("/bookings", Idempotency(store, testLogger()), func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return r
}

func post(t *testing.T, r *gin.Engine, principal models.Principal, key string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("Authorization", bearer(t, principal))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	calls := 0
	store := newMemoryIdempotency()
	r := idempotentRouter(store, &calls, http.StatusCreated)
	asha := models.Principal{ID: 1, Role: models.RoleCustomer}

	first := post(t, r, asha, "k1")
	second := post(t, r, asha, "k1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	// same key from another principal is a different request
	post(t, r, models.Principal{ID: 4, Role: models.RoleCustomer}, "k1")
	assert.Equal(t, 2, calls)

	// no key, no protection
	post(t, r, asha, "")
	post(t, r, asha, "")
	assert.Equal(t, 4, calls)
}

func TestIdempotencyReleasesFailures(t *testing.T) {
	calls := 0
	store := newMemoryIdempotency()
	r := idempotentRouter(store, &calls, http.StatusConflict)
	asha := models.Principal{ID: 1, Role: models.RoleCustomer}

	post(t, r, asha, "k2")
	post(t, r, asha, "k2")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyInFlight(t *testing.T) {
	calls := 0
	store := newMemoryIdempotency()
	_, _ = store.Reserve(context.Background(), "customer:1:k3")
	r := idempotentRouter(store, &calls, http.StatusCreated)

	w := post(t, r, models.Principal{ID: 1, Role: models.RoleCustomer}, "k3")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyStoreDown(t *testing.T) {
	calls := 0
	store := newMemoryIdempotency()
	store.down = true
	r := idempotentRouter(store, &calls, http.StatusCreated)

	w := post(t, r, models.Principal{ID: 1, Role: models.RoleCustomer}, "k4")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}
