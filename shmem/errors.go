package shmem

import "errors"

var (
	// ErrBadSize is returned when a segment is requested with a negative
	// length.
	ErrBadSize = errors.New("shmem: segment size must be non-negative")

	// ErrSegmentReleased is returned when a rank releases the same segment
	// handle twice. Missing or double deallocation is a contract violation,
	// never silently tolerated.
	ErrSegmentReleased = errors.New("shmem: segment already released")
)
