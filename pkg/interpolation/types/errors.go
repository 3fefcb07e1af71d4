package types

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMethod    = errors.New("unknown method")
	ErrInvalidOptions   = errors.New("invalid options")
	ErrInsufficientData = errors.New("insufficient data")
)

// InvalidOptionError reports the option field that made a call invalid.
// It matches ErrInvalidOptions with errors.Is.
type InvalidOptionError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("%v: field %s %s (got %v)", ErrInvalidOptions, e.Field, e.Reason, e.Value)
}

func (e *InvalidOptionError) Unwrap() error {
	return ErrInvalidOptions
}
