package api

import (
	"fmt"
	"net/http"
)

// APIError is returned for any non-2xx response. The client performs no
// retries; callers decide how to surface the failure.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d", e.Status)
}

// Unauthorized reports whether the platform rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NetworkError is returned when a request never produced an HTTP response.
// It is surfaced to users the same way as APIError.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
