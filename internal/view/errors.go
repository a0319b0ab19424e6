package view

import (
	"errors"
	"fmt"
)

// Error is a fatal view failure.
//
// Configuration errors are returned from View.Create before the worker
// starts. Encode and I/O errors end the worker and are returned by
// Instance.Wait.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// View is the view type name.
	View string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes view errors.
type ErrorCode string

const (
	// ErrCodeConfig indicates bad parameters or an unopenable output.
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeEncode indicates a record could not be serialized.
	ErrCodeEncode ErrorCode = "ENCODE"

	// ErrCodeIO indicates a write, flush or close failed.
	ErrCodeIO ErrorCode = "IO"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Code, e.View, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError creates an Error with ErrCodeConfig.
func NewConfigError(view, msg string, err error) *Error {
	return &Error{Code: ErrCodeConfig, View: view, Message: msg, Err: err}
}

// NewEncodeError creates an Error with ErrCodeEncode.
func NewEncodeError(view, msg string, err error) *Error {
	return &Error{Code: ErrCodeEncode, View: view, Message: msg, Err: err}
}

// NewIOError creates an Error with ErrCodeIO.
func NewIOError(view, msg string, err error) *Error {
	return &Error{Code: ErrCodeIO, View: view, Message: msg, Err: err}
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	return hasCode(err, ErrCodeConfig)
}

// IsEncodeError reports whether err is (or wraps) an encoding error.
func IsEncodeError(err error) bool {
	return hasCode(err, ErrCodeEncode)
}

// IsIOError reports whether err is (or wraps) an I/O error.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeIO)
}

func hasCode(err error, code ErrorCode) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}
