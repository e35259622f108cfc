// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for better error handling and API responses

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheMiss is returned when a key is absent or logically expired
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrStoreUnavailable is returned when the distributed store cannot be reached
	ErrStoreUnavailable = errors.New("cache: distributed store unavailable")

	// ErrNoCatalog is returned when no catalog can be read or built
	ErrNoCatalog = errors.New("templates: no catalog available")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// AsExternalAPI returns the ExternalAPIError in err's chain, if any
func AsExternalAPI(err error) (*ExternalAPIError, bool) {
	var apiErr *ExternalAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCacheMiss checks if an error reports a cache miss
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
