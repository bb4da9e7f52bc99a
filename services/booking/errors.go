package booking

import (
	"errors"
	"fmt"
)

// Error codes carried by BookingError.
const (
	CodeTenantNotFound     = "tenantNotFound"
	CodeLockUnavailable    = "lockUnavailable"
	CodeStoreUnavailable   = "storeUnavailable"
	CodeAvailabilityFailed = "availabilityFailed"
	CodeTransportFailed    = "transportFailed"
)

type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewBookingError(code, msg string, err error) error {
	return &BookingError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// Retryable reports whether handling the same message again may succeed.
// An unknown tenant never will.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code != CodeTenantNotFound
	}
	return true
}
