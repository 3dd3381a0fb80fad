// Package layout decides how the residual elements and fit parameters of a
// large least-squares problem are partitioned across hosts and ranks, and
// provides the array-allocation and reduction primitives the distributed
// quantity engine builds on.
//
// # Grid model
//
// A Dist layout arranges the R ranks of a world as an A x B grid:
//
//   - A atom groups (rows). The N residual elements are split contiguously
//     into A atom chunks; every rank of row a holds the residual block
//     f[E_a], replicated across the B ranks of the row.
//   - B parameter blocks (columns). The P parameters are split contiguously
//     into B blocks; rank (a,b) holds the Jacobian block J[E_a, P_b], which
//     is disjoint across ranks.
//   - Fine slices. Each block P_b is subdivided among the A ranks of its
//     column, so rank (a,b) uniquely owns fine slice a of P_b. The fine
//     slices tile [0,P) exactly once: no gaps, no overlaps, and empty
//     slices are legal when P < R.
//
// Parameters therefore live in two representations: "fine" (uniquely owned
// disjoint slices, used for all parameter-length reductions) and "jac" (one
// copy of a whole block per atom-group replica, required by local Jacobian
// evaluation). AssembleBlockFromFine is the one conversion point between
// them.
//
// # Unit sub-groups
//
// Construction registers the layout's replica scopes with the resource
// allocation under fixed names (Unit* constants): the singleton scope of a
// fine slice, the row scope of a replicated residual block, the singleton
// scope of a Jacobian block, and the column scope spanning the atom-group
// replicas of one parameter block. Reductions pick the scope matching the
// replication pattern of the data they reduce, which is what keeps results
// independent of the partitioning.
package layout
