package models

import "net/http"

// CachedResponse is a stored response replayed for a repeated
// Idempotency-Key.
type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
}
