// Package distcalc provides the distributed quantity-calculation layer for
// large-scale nonlinear least-squares fitting (Levenberg-Marquardt style),
// where the residual vector and parameter vector are too large to hold, or
// too expensive to reduce, on a single process.
//
// The module is organized as five subpackages:
//
//	comm/     — in-process process group: ranks, cached sub-groups, blocking
//	            collectives (barrier, allreduce, allgather, bcast) and the
//	            errgroup-driven rank harness.
//	shmem/    — host-scoped shared float64 segments with an explicit
//	            attach/release lifecycle and balance tracking.
//	ralloc/   — per-rank resource allocation: communicator view, host
//	            topology, named unit sub-groups and replica-deduplicated
//	            reductions.
//	layout/   — distributable layout: grid partition of residual elements
//	            into atom groups and parameters into blocks plus fine
//	            slices, local-array allocation, gather and normal-equation
//	            assembly.
//	quantity/ — the core: the Engine capability set with interchangeable
//	            Local (single-process) and Distributed implementations.
//
// An optimizer holds exactly one quantity.Engine and calls its operations
// uniformly; it never branches on which variant it holds. Results are
// numerically equivalent regardless of how the data is partitioned.
package distcalc
