package layout

import "errors"

var (
	// ErrBadGrid is returned when the world size is not divisible into the
	// requested number of parameter blocks.
	ErrBadGrid = errors.New("layout: world size not divisible by param blocks")

	// ErrBadSize is returned when element or parameter counts are negative.
	ErrBadSize = errors.New("layout: sizes must be non-negative")

	// ErrUnknownArrayName is returned when an array name is not one of the
	// Array* constants supported by the operation.
	ErrUnknownArrayName = errors.New("layout: unknown array name")

	// ErrShapeMismatch is returned when a buffer's length disagrees with
	// the shape the layout prescribes for it.
	ErrShapeMismatch = errors.New("layout: buffer shape mismatch")

	// ErrParamRange is returned when a global parameter index lies outside
	// [0, P).
	ErrParamRange = errors.New("layout: parameter index out of range")
)
