package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInvalidOrder  = errors.New("invalid_order")
	ErrOrderNotFound = errors.New("order_not_found")
	ErrInvalidRegime = errors.New("invalid_regime")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
