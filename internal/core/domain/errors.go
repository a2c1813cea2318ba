package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransport     = errors.New("transport failure")
	ErrInvalidOption = errors.New("invalid option id")
	ErrEmptyOptionID = errors.New("option id must not be empty")
	ErrDuplicateID   = errors.New("duplicate option id")
	ErrNoOptions     = errors.New("at least one option is required")
)

// TransportError is returned when a remote operation does not report success.
// Status and Body are set when the server answered with a non-success status,
// Cause when the call could not be completed at all.
type TransportError struct {
	Operation string
	Status    int
	Body      string
	Cause     error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.Status, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
