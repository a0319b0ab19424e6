package engine

import (
	"errors"
	"fmt"
)

// HostError is an error reported by the engine itself, as opposed to an error
// raised by a view.
type HostError struct {
	// Code identifies the error category.
	Code HostErrorCode

	// Message is a human-readable description.
	Message string

	// ViewType names the view type involved, if any.
	ViewType string
}

// HostErrorCode categorizes engine errors.
type HostErrorCode string

const (
	// ErrCodeUnknownViewType indicates a type ID or name that was never registered.
	ErrCodeUnknownViewType HostErrorCode = "UNKNOWN_VIEW_TYPE"

	// ErrCodeShutdown indicates a call after Shutdown.
	ErrCodeShutdown HostErrorCode = "SHUTDOWN"

	// ErrCodeInvalidTransaction indicates a transaction whose payload does not match its op.
	ErrCodeInvalidTransaction HostErrorCode = "INVALID_TRANSACTION"
)

// Error implements the error interface.
func (e *HostError) Error() string {
	if e.ViewType != "" {
		return fmt.Sprintf("%s: %s (view=%s)", e.Code, e.Message, e.ViewType)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownViewTypeError returns true if err is an unknown view type error.
// Uses errors.As to handle wrapped errors.
func IsUnknownViewTypeError(err error) bool {
	var he *HostError
	if errors.As(err, &he) {
		return he.Code == ErrCodeUnknownViewType
	}
	return false
}

// IsShutdownError returns true if err was returned because the engine is shut down.
func IsShutdownError(err error) bool {
	var he *HostError
	if errors.As(err, &he) {
		return he.Code == ErrCodeShutdown
	}
	return false
}

// IsInvalidTransactionError returns true if err reports a malformed transaction.
func IsInvalidTransactionError(err error) bool {
	var he *HostError
	if errors.As(err, &he) {
		return he.Code == ErrCodeInvalidTransaction
	}
	return false
}

func unknownViewType(name string) *HostError {
	return &HostError{Code: ErrCodeUnknownViewType, Message: "view type is not registered", ViewType: name}
}

func shutdown(op string) *HostError {
	return &HostError{Code: ErrCodeShutdown, Message: op + " after shutdown"}
}
