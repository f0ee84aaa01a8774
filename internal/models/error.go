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

	// Authentication outcomes
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// AccountLockedError is returned only on the attempt that trips the lockout
// threshold. Any later login against the same account sees ErrAccountDisabled,
// indistinguishable from an admin-disabled account.
type AccountLockedError struct {
	Threshold int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("password incorrect; account disabled after %d failed login attempts", e.Threshold)
}
