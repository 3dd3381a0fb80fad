// Package ralloc provides the per-rank resource allocation: the explicit
// context value that threads the communicator, the host topology, the named
// unit sub-groups and the shared-memory tracker through every distributed
// operation.
//
// A ResourceAlloc is never global: each rank builds its own from the shared
// comm.World, and several independent fits can coexist in one process
// without interference.
//
// Unit sub-groups name replica scopes. When data is deliberately replicated
// for memory-sharing reasons (the same residual block held by several
// ranks, say), the unit group collects exactly the ranks holding one
// logical copy. The unit-scoped reductions AllreduceSum and AllreduceMax
// let only the unit root contribute, so every logical value enters the
// global reduction exactly once and nothing is double counted.
package ralloc
