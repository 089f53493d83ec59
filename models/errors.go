package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage outcomes. Services wrap these with context;
// controllers map them to HTTP statuses.
var (
	// ErrItemNotFound means a read found no item. Not always a failure:
	// a missing effective decision is simply "no swipe yet".
	ErrItemNotFound = errors.New("item not found")

	// ErrConditionalCheckFailed means a conditional write lost. For match
	// creation this is the losing side of the race, resolved internally.
	ErrConditionalCheckFailed = errors.New("conditional check failed")

	// ErrStorageUnavailable means the backend kept failing after bounded
	// retries, or the circuit breaker is open.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError rejects malformed input before any storage access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError rejects a message operation on a conversation that does
// not exist for the caller, i.e. no match for the pair or a sender outside
// the pair.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization: %s", e.Reason)
}

// NewAuthorizationError builds an AuthorizationError with a formatted reason.
func NewAuthorizationError(format string, args ...interface{}) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
