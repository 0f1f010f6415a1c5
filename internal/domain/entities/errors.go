package entities

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Error markers. Wrap them with fmt.Errorf("...: %w", Err...) and test with errors.Is.
var (
	// ErrTransient marks timeouts, rate limits and unavailable services.
	ErrTransient = errors.New("transient failure")
	// ErrInvalidResponse marks well-formed calls whose response was unusable.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrValidationRejected marks candidates or outputs failing a quality gate.
	ErrValidationRejected = errors.New("validation rejected")
	// ErrAttemptsExhausted marks a retry budget spent without success.
	ErrAttemptsExhausted = errors.New("attempts exhausted")
	// ErrFallbackExhausted marks an empty fallback chain.
	ErrFallbackExhausted = errors.New("fallback exhausted")
	// ErrConfiguration marks missing collaborators or invalid settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing stored record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a record that already exists.
	ErrDuplicate = errors.New("duplicate")
	// ErrRateLimited marks a caller that exceeded a local quota.
	ErrRateLimited = errors.New("rate limited")
)

// IsTransient reports whether err represents a condition that may succeed on
// retry (rate limits, timeouts, connection errors, 5xx responses).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(message, code) {
			return true
		}
	}
	for _, token := range []string{"timeout", "connection reset", "connection refused", "temporary failure"} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
