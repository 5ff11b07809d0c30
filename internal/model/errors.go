package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCompanyCode  = errors.New("company code must be 1 to 5 digits")
	ErrInvalidEmployeeCode = errors.New("employee code must be 1 to 10 digits")
	ErrEmptyPassword       = errors.New("password must not be empty")

	// ErrUnknownMessage is returned for message types with no registered handler.
	ErrUnknownMessage = errors.New("unknown message type")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
