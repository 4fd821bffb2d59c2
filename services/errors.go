package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned when a client has no credentials.
	ErrNotConfigured = errors.New("service not configured")
	// ErrUpstream matches any *UpstreamError.
	ErrUpstream = errors.New("upstream error")
)

// UpstreamError is a non-2xx answer from a third-party API.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error (%d): %s", e.Service, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// StatusCode returns the upstream HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.StatusCode >= 400 {
		return ue.StatusCode
	}
	if errors.Is(err, ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
