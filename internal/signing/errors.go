package signing

import (
	"fmt"

	"complitracker/internal/domain"
)

// CallError describes a failed provider API call. A zero StatusCode means the
// call never produced an HTTP response (dial failure, timeout).
type CallError struct {
	Provider   string
	Operation  string
	StatusCode int
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Operation, e.StatusCode, e.Err)
}

// Unwrap classifies the failure: 4xx responses are non-retryable rejections,
// everything else (5xx, transport errors, timeouts) is a transient outage.
func (e *CallError) Unwrap() error {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return domain.ErrProviderRejected
	}
	return domain.ErrProviderUnavailable
}

// NewCallError creates a CallError for the given provider operation.
func NewCallError(provider, operation string, statusCode int, err error) *CallError {
	return &CallError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}
