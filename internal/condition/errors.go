package condition

import "errors"

var (
	// ErrInvalidName is returned when a variable name fails validation.
	// Rule installation must abort; no registry state is created.
	ErrInvalidName = errors.New("condition: invalid variable name")

	// ErrResourceExhausted is returned when a new variable or its external
	// endpoint cannot be allocated. Acquire rolls back fully before
	// returning it.
	ErrResourceExhausted = errors.New("condition: resource exhausted")

	// ErrRegistryClosed is returned by Acquire once registry teardown has
	// begun.
	ErrRegistryClosed = errors.New("condition: registry closed")
)
