package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates an entity with the same key is already stored.
	ErrAlreadyExists = errors.New("already exists")
	// ErrCustomerNotFound is returned when a buyer has no linked customer profile.
	ErrCustomerNotFound = errors.New("customer profile not found")
	// ErrEmptyCart is returned by checkout when the active cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrConcurrencyConflict means a write lost the optimistic-concurrency race.
	ErrConcurrencyConflict = errors.New("concurrent modification")
	// ErrUpstreamUnavailable wraps failures of storage, queue or remote API calls.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError reports missing or invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError carries the quantity that was available when the check failed.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is or wraps an InsufficientStockError.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// DeadlineExceeded rewrites an error caused by an expired deadline as
// ErrUpstreamUnavailable. Other errors, nil included, pass through.
func DeadlineExceeded(op string, err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, op, err)
	}
	return err
}
