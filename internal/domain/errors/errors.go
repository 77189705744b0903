package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedAmount    = errors.New("malformed amount")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrMissingID          = errors.New("missing order id")
	ErrMissingItemField   = errors.New("missing item field")
	ErrFetchFailure       = errors.New("fetch failure")
	ErrPartialAction      = errors.New("partial action failure")
	ErrNoSession          = errors.New("no active session")
	ErrViewClosed         = errors.New("view closed")
	ErrUnknownEvent       = errors.New("unknown event")
)

// MalformedAmountError describes a monetary field that could not be coerced.
type MalformedAmountError struct {
	Field string
	Value any
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount in %s: %v", e.Field, e.Value)
}

func (e *MalformedAmountError) Unwrap() error { return ErrMalformedAmount }

// PartialActionError reports which step of a multi-step action failed.
type PartialActionError struct {
	OrderID string
	Step    string
	Err     error
}

func (e *PartialActionError) Error() string {
	return fmt.Sprintf("order %s: %s failed: %v", e.OrderID, e.Step, e.Err)
}

func (e *PartialActionError) Unwrap() []error { return []error{ErrPartialAction, e.Err} }
