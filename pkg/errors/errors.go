package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates invalid input data
var ErrInvalidInput = errors.New("invalid input")

// Contact form input errors, all in the ErrInvalidInput family.
var (
	ErrMissingFields = fmt.Errorf("missing required fields: %w", ErrInvalidInput)
	ErrInputTooLong  = fmt.Errorf("input too long: %w", ErrInvalidInput)
	ErrInvalidEmail  = fmt.Errorf("invalid email format: %w", ErrInvalidInput)
)
