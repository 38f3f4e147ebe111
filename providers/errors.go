package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure for retry and abort policy.
type ErrorKind string

const (
	// KindThrottled - the provider is rate limiting us. Retryable.
	KindThrottled ErrorKind = "throttled"
	// KindTransient - brief provider or network unavailability. Retryable.
	KindTransient ErrorKind = "transient"
	// KindNotFound - the instance no longer exists. Success by policy.
	KindNotFound ErrorKind = "not-found"
	// KindAuthDenied - missing or invalid credentials/permissions. Fatal
	// on scan, per-instance non-retryable on terminate.
	KindAuthDenied ErrorKind = "auth-denied"
	// KindInvalidRequest - malformed request, will never succeed.
	KindInvalidRequest ErrorKind = "invalid-request"
	// KindUnknown - unclassified failure, treated as non-retryable.
	KindUnknown ErrorKind = "unknown"
)

// Error wraps a provider failure with its classification.
type Error struct {
	Kind       ErrorKind
	Op         string
	InstanceID string
	Err        error
}

func (e *Error) Error() string {
	if e.InstanceID != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.InstanceID, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindUnknown for errors that
// did not come from a provider.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether the failure is worth retrying with backoff.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindThrottled, KindTransient:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether the failure means the instance is already gone.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsAuthDenied reports whether the failure is an authorization error.
func IsAuthDenied(err error) bool {
	return KindOf(err) == KindAuthDenied
}
