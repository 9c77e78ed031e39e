package googlecal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// APIError is the typed error for every non-2xx provider response. All
// classification (retryable, not-found drift trigger) happens against this
// type at the call boundary; nothing deeper in the stack inspects response
// shapes.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google api: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is the provider saying the addressed
// resource no longer exists. Drift recovery keys off this, so it is not a
// retryable condition.
func IsNotFound(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusNotFound || ae.StatusCode == http.StatusGone
	}
	return false
}

// IsRetryable reports whether err is a transient condition worth retrying:
// server-busy/rate-limit/server-error statuses, or low-level network
// timeout/reset/DNS failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ae *APIError
	if errors.As(err, &ae) {
		switch ae.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
