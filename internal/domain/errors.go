package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for conditions originating outside the caller's input.
// Wrap them with fmt.Errorf("...: %w", Err...) to add context.
var (
	// ErrNotFound signals a missing lot, setting or symbol.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited signals quote provider backpressure. Callers may retry
	// later; the core never retries and never substitutes placeholder data.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable signals a transient provider or network failure.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError reports bad input shape or range. It is always returned to
// the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidPeriodError reports an unrecognized history period token. The
// service rejects unknown periods instead of defaulting to 1Y.
type InvalidPeriodError struct {
	Period string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q, valid periods are: %s", e.Period, ValidPeriods())
}

// ErrorKind returns the wire-level error kind for an error.
func ErrorKind(err error) string {
	var ve *ValidationError
	var pe *InvalidPeriodError
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &pe):
		return "invalid_period"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps an error to the HTTP status code the API reports for it.
func HTTPStatus(err error) int {
	switch ErrorKind(err) {
	case "validation_error", "invalid_period":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "rate_limited":
		return http.StatusTooManyRequests
	case "unavailable":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
