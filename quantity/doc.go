// Package quantity implements the distributed quantity-calculation core of
// a Levenberg-Marquardt style least-squares fit: the linear-algebra
// primitives a trust-region solver consumes (dot products, norms, J^T f,
// J^T J), computed identically whether the residual and parameter vectors
// live on one process or are partitioned across hosts and ranks.
//
// Two engines implement one capability set:
//
//   - Local: the single-process baseline. Every operation is a direct
//     dense computation; nothing is partitioned and nothing communicates.
//   - Distributed: the same operations under an arbitrary layout
//     partitioning, implemented as local compute plus an explicit
//     collective step scoped to the sub-group that owns exactly one
//     logical copy of the data being reduced.
//
// The optimizer selects an engine once, when the fit is set up, based on
// whether a distributable layout is present, and from then on holds only
// the Engine interface. Results agree between the two variants within
// floating-point tolerance for any partitioning of the same global data.
//
// # Buffer lifecycle
//
// The four engine-scoped buffers (jtf, jtj, x-for-jac, jac) are allocated
// at the start of each optimizer iteration and released at its end. The
// engine owns the contract: every Allocate must be paired with exactly one
// Deallocate on every exit path, including error paths. Deallocating a
// buffer that is not backed by a shared segment is a safe no-op.
package quantity
