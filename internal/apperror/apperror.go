// Package apperror defines the error taxonomy shared by all services and
// translated to HTTP statuses at the handler boundary. Handlers should never
// inspect error strings; they match with errors.Is / errors.As.
package apperror

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for errors.Is checks. The structured types below unwrap to
// these so callers can match a category without caring about details.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidSetConfig       = errors.New("invalid set configuration")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConflict               = errors.New("conflict")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrValidation }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError identifies the product that cannot cover the
// requested consumption. Available is the projected stock at the point the
// shortfall was detected, not necessarily the persisted value.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Required    int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Required)
}
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidSetConfigError reports a set product that cannot be expanded: it has
// no components, or a component reference does not resolve.
type InvalidSetConfigError struct {
	ProductID   uuid.UUID
	ProductName string
	Reason      string
}

func (e *InvalidSetConfigError) Error() string {
	return fmt.Sprintf("invalid set configuration for %s: %s", e.ProductName, e.Reason)
}
func (e *InvalidSetConfigError) Unwrap() error { return ErrInvalidSetConfig }

// StateTransitionError reports an operation attempted on an entity whose
// current status does not allow it.
type StateTransitionError struct {
	Entity string
	Status string
	Action string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s: status is %s", e.Action, e.Entity, e.Status)
}
func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// ConflictError reports a uniqueness violation (duplicate branch name).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return ErrConflict }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error to the response status used by every handler.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidStateTransition):
		return 409
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidSetConfig):
		return 422
	default:
		return 500
	}
}
