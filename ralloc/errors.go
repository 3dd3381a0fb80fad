package ralloc

import "errors"

var (
	// ErrNilWorld is returned when a ResourceAlloc is built without a world.
	ErrNilWorld = errors.New("ralloc: world is nil")

	// ErrBadHosts is returned when the requested host count does not fit
	// the world size (must satisfy 1 <= hosts <= size).
	ErrBadHosts = errors.New("ralloc: invalid host count")

	// ErrUnknownUnit is returned when a named unit sub-group was never
	// registered for this rank.
	ErrUnknownUnit = errors.New("ralloc: unknown unit sub-group")

	// ErrNilDest is returned when a reduction is given an empty destination
	// buffer.
	ErrNilDest = errors.New("ralloc: reduction destination is empty")
)
