// Package comm implements the in-process process group that coordinates the
// cooperating ranks of a distributed least-squares fit.
//
// A World is a fixed-size set of ranks. Each rank runs on its own goroutine
// (see Run) and participates in collective operations through Group values:
// subsets of the world over which a specific reduction, gather or broadcast
// is scoped. Group creation is idempotent: requesting the same member set
// twice returns the same instance, so every member rendezvouses on one
// shared object.
//
// All collectives are blocking and barrier-like. A rank does not proceed
// past a collective call until every member of the group has made the same
// call. There is no timeout and no cancellation: a mismatched call sequence
// across ranks deadlocks by construction and must be prevented by calling
// every collective identically, in the same order, on every member.
//
// Scalar reductions use a fixed member-order accumulation so that every
// member observes the bit-identical result.
package comm
