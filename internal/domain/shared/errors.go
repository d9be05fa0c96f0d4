package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Stock errors raised by settlements and cargo holds

type StockError struct {
	*DomainError
	Holder string
}

func NewStockError(holder, message string) *StockError {
	return &StockError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %s", holder, message)},
		Holder:      holder,
	}
}

type InsufficientStockError struct {
	*StockError
	Resource  string
	Requested float64
	Available float64
}

func NewInsufficientStockError(holder, resource string, requested, available float64) *InsufficientStockError {
	return &InsufficientStockError{
		StockError: NewStockError(holder, fmt.Sprintf("insufficient %s: need %.3f, have %.3f", resource, requested, available)),
		Resource:   resource,
		Requested:  requested,
		Available:  available,
	}
}

type CapacityExceededError struct {
	*StockError
	Resource  string
	Requested float64
	Remaining float64
}

func NewCapacityExceededError(holder, resource string, requested, remaining float64) *CapacityExceededError {
	return &CapacityExceededError{
		StockError: NewStockError(holder, fmt.Sprintf("no room for %.3f %s: %.3f remaining", requested, resource, remaining)),
		Resource:   resource,
		Requested:  requested,
		Remaining:  remaining,
	}
}
