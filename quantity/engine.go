package quantity

import "github.com/quantfit/distcalc/layout"

// Engine is the capability set a trust-region optimizer consumes:
// {allocate arrays, reduce scalars, assemble normal equations, move data
// between representations}. Both variants honor identical observable
// contracts; the optimizer never branches on which one it holds.
//
// All buffers are flat row-major float64 slices; the engine knows their
// shapes. Parameter-length vectors handed to the reduction operations are
// in "fine" form: each rank passes the sub-slice it uniquely owns (for the
// Local engine the fine form is the whole vector).
//
// Every method of the Distributed variant that communicates is collective:
// it must be called identically, in the same order, by every rank.
type Engine interface {
	// AllocateJTF allocates the J^T f destination (fine rows; global
	// length P for the Local engine). Contents are uninitialized.
	AllocateJTF() ([]float64, error)
	// AllocateJTJ allocates the J^T J destination (fine rows x P columns,
	// row-major; P x P for the Local engine).
	AllocateJTJ() ([]float64, error)
	// AllocateXForJac allocates the jac-form parameter buffer the Jacobian
	// evaluator reads (parameter block length; P for the Local engine).
	AllocateXForJac() ([]float64, error)
	// AllocateJac allocates the Jacobian block (local elements x block
	// params, row-major; N x P for the Local engine).
	AllocateJac() ([]float64, error)

	// The Deallocate methods release exactly the shared segment retained
	// by the paired Allocate; on a non-shared buffer they are safe no-ops.
	DeallocateJTF(jtf []float64) error
	DeallocateJTJ(jtj []float64) error
	DeallocateXForJac(x []float64) error
	DeallocateJac(j []float64) error

	// GlobalXSize returns P, the global parameter count.
	GlobalXSize() int
	// JacParamSlice returns the global parameter columns of this rank's
	// Jacobian block.
	JacParamSlice() layout.Span
	// JTFParamSlice returns the global parameter rows of this rank's fine
	// normal-equation slice.
	JTFParamSlice() layout.Span
	// ParamFineInfo exposes the full fine partition, for diagnostics and
	// checkpointing: every rank's slices grouped by host, and the owner of
	// each global fine parameter index.
	ParamFineInfo() (*layout.FineInfo, error)

	// AllgatherX assembles the fully replicated global vector from the
	// fine slices: x is this rank's fine slice, globalX the length-P
	// destination filled identically on every rank.
	AllgatherX(x, globalX []float64) error
	// AllscatterX projects a global vector back onto the fine partition:
	// x receives this rank's owned sub-slice of globalX.
	AllscatterX(globalX, x []float64) error
	// FillXForJac converts the fine form into the jac form: the owned
	// slices are gathered so every replica that evaluates Jacobian columns
	// holds the exact current values of its whole parameter block.
	FillXForJac(x, xForJac []float64) error

	// DotX returns the global dot product of two fine-form vectors.
	DotX(x1, x2 []float64) (float64, error)
	// Norm2X returns the global squared 2-norm of a fine-form vector.
	Norm2X(x []float64) (float64, error)
	// InfNormX returns the global infinity norm of a fine-form vector.
	InfNormX(x []float64) (float64, error)
	// MaxX returns the global maximum entry of a fine-form vector.
	MaxX(x []float64) (float64, error)
	// Norm2F returns the global squared 2-norm of the residual vector,
	// given this rank's residual block.
	Norm2F(f []float64) (float64, error)
	// Norm2Jac returns the global squared Frobenius norm of the Jacobian,
	// given this rank's Jacobian block.
	Norm2Jac(j []float64) (float64, error)

	// FillJTF computes jtf = J^T f (this rank's fine rows).
	FillJTF(j, f, jtf []float64) error
	// FillJTJ computes jtj = J^T J (this rank's fine rows, global
	// columns).
	FillJTJ(j, jtj []float64) error
	// JTJDiagIndices returns the paired (row, col) indices addressing the
	// global diagonal within this rank's jtj storage. The two index sets
	// always have equal length; a mismatch is a partition-consistency
	// failure.
	JTJDiagIndices(jtj []float64) (rows, cols []int, err error)
}
