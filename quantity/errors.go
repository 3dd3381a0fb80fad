package quantity

import "errors"

var (
	// ErrNotDistributable is returned when the distributed engine is
	// constructed with a layout that is not of the distributable kind.
	// Partitioning bugs must surface immediately, not degrade into local
	// semantics that silently corrupt a fit.
	ErrNotDistributable = errors.New("quantity: layout is not distributable")

	// ErrNilResourceAlloc is returned when the distributed engine is
	// constructed without a resource allocation.
	ErrNilResourceAlloc = errors.New("quantity: resource allocation is nil")

	// ErrBadSize is returned when a local engine is built with negative
	// element or parameter counts.
	ErrBadSize = errors.New("quantity: sizes must be non-negative")

	// ErrBufferLive is returned when a buffer kind is allocated again
	// before its previous allocation was deallocated; the engine retains
	// one segment handle per kind, so allocations of a kind cannot nest.
	ErrBufferLive = errors.New("quantity: buffer already allocated")

	// ErrShapeMismatch is returned when a caller-supplied buffer disagrees
	// with the shape the engine prescribes for it.
	ErrShapeMismatch = errors.New("quantity: buffer shape mismatch")

	// ErrPartitionMismatch is returned when diagonal addressing derives
	// row and column index sets of different lengths, indicating an
	// inconsistent fine partition. This is a layout bug and is never
	// silently tolerated.
	ErrPartitionMismatch = errors.New("quantity: inconsistent fine partition")
)
