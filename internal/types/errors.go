package types

import "fmt"

// NotFoundError indicates a referenced aggregate id does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError indicates an operation was attempted from an
// illegal lifecycle state.
type InvalidStateError struct {
	Resource  string
	ID        string
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Resource, e.ID, e.Current, e.Attempted)
}

// NewInvalidStateError creates an InvalidStateError describing the
// rejected transition.
func NewInvalidStateError(resource, id, current, attempted string) *InvalidStateError {
	return &InvalidStateError{Resource: resource, ID: id, Current: current, Attempted: attempted}
}

// InsufficientBalanceError indicates a points or wallet balance cannot
// cover the requested amount.
type InsufficientBalanceError struct {
	Resource  string
	Required  float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: required %.2f, available %.2f", e.Resource, e.Required, e.Available)
}

// NewInsufficientBalanceError creates an InsufficientBalanceError.
func NewInsufficientBalanceError(resource string, required, available float64) *InsufficientBalanceError {
	return &InsufficientBalanceError{Resource: resource, Required: required, Available: available}
}

// ValidationError indicates a request carried an invalid value, such as
// a non-positive quantity, price or principal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
