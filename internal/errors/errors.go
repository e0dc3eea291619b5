package errors

import (
	"errors"
	"fmt"
)

// Common error types for the relay
var (
	// OAuth handshake errors
	ErrInvalidState  = errors.New("invalid state")
	ErrNoAccessToken = errors.New("failed to retrieve access token")
	ErrProviderError = errors.New("provider reported an authorization error")

	// Provider API errors
	ErrUnsupportedMethod = errors.New("unsupported http method")
	ErrInvalidResponse   = errors.New("invalid provider response")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidSession  = errors.New("invalid session cookie")

	// Commit plan errors
	ErrInvalidPlan = errors.New("invalid commit plan")

	// Configuration errors
	ErrConfigurationMissing = errors.New("configuration missing")
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
