package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal
var (
	// Handshake errors
	ErrNoAssertion  = errors.New("no subject identifier in provider assertion")
	ErrInvalidState = errors.New("invalid or expired handshake state")
	ErrProvider     = errors.New("identity provider error")

	// Identity errors
	ErrNoProfile       = errors.New("no user profile")
	ErrUnauthenticated = errors.New("unauthenticated")

	// Session errors
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
