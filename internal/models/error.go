package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountDisabled = errors.New("account is disabled")
	ErrAccountLocked   = errors.New("account is temporarily locked")

	// Inventory errors
	ErrInsufficientStock = errors.New("insufficient stock")
)

// AccountLockedError carries the remaining lockout window so callers can
// surface a retry hint. errors.Is(err, ErrAccountLocked) matches it.
type AccountLockedError struct {
	RetryAfterSeconds int
}

func (e *AccountLockedError) Error() string {
	minutes := e.RetryAfterSeconds / 60
	if minutes < 1 {
		return fmt.Sprintf("account is temporarily locked, try again in %d seconds", e.RetryAfterSeconds)
	}
	return fmt.Sprintf("account is temporarily locked, try again in %d minutes", minutes)
}

func (e *AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}
