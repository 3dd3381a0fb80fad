package quantity

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/quantfit/distcalc/layout"
)

// Local is the single-process engine: the baseline, always-correct
// reference semantics for the operation set. Nothing is partitioned, every
// "distributed" operation degenerates to a direct dense computation, and
// the Deallocate methods are no-ops because no buffer is ever backed by a
// shared segment.
type Local struct {
	numElements int
	numParams   int
}

var _ Engine = (*Local)(nil)

// NewLocal builds the single-process engine for a problem with
// numElements residual elements and numParams fit parameters.
func NewLocal(numElements, numParams int) (*Local, error) {
	if numElements < 0 || numParams < 0 {
		return nil, ErrBadSize
	}

	return &Local{numElements: numElements, numParams: numParams}, nil
}

// AllocateJTF returns a fresh length-P buffer.
func (e *Local) AllocateJTF() ([]float64, error) {
	return make([]float64, e.numParams), nil
}

// AllocateJTJ returns a fresh P x P row-major buffer.
func (e *Local) AllocateJTJ() ([]float64, error) {
	return make([]float64, e.numParams*e.numParams), nil
}

// AllocateXForJac returns a fresh length-P buffer.
func (e *Local) AllocateXForJac() ([]float64, error) {
	return make([]float64, e.numParams), nil
}

// AllocateJac returns a fresh N x P row-major buffer.
func (e *Local) AllocateJac() ([]float64, error) {
	return make([]float64, e.numElements*e.numParams), nil
}

// DeallocateJTF is a no-op: local buffers are never shared.
func (e *Local) DeallocateJTF([]float64) error { return nil }

// DeallocateJTJ is a no-op: local buffers are never shared.
func (e *Local) DeallocateJTJ([]float64) error { return nil }

// DeallocateXForJac is a no-op: local buffers are never shared.
func (e *Local) DeallocateXForJac([]float64) error { return nil }

// DeallocateJac is a no-op: local buffers are never shared.
func (e *Local) DeallocateJac([]float64) error { return nil }

// GlobalXSize returns P.
func (e *Local) GlobalXSize() int { return e.numParams }

// JacParamSlice returns the full range [0, P): no partitioning.
func (e *Local) JacParamSlice() layout.Span {
	return layout.Span{Start: 0, Stop: e.numParams}
}

// JTFParamSlice returns the full range [0, P): no partitioning.
func (e *Local) JTFParamSlice() layout.Span {
	return layout.Span{Start: 0, Stop: e.numParams}
}

// ParamFineInfo reports the single-owner map: every parameter index is
// owned by the one process, under nominal host 0, rank 0.
func (e *Local) ParamFineInfo() (*layout.FineInfo, error) {
	full := layout.Span{Start: 0, Stop: e.numParams}
	info := &layout.FineInfo{
		SlicesByHost: [][]layout.RankFineSlice{
			{{Rank: 0, ParamSpan: full, FineSpan: full}},
		},
		Owners: make(map[int]layout.HostRank, e.numParams),
	}
	for i := 0; i < e.numParams; i++ {
		info.Owners[i] = layout.HostRank{Host: 0, Rank: 0}
	}

	return info, nil
}

// AllgatherX is an identity copy: the fine form already is the global
// vector.
func (e *Local) AllgatherX(x, globalX []float64) error {
	if len(x) != e.numParams || len(globalX) != e.numParams {
		return ErrShapeMismatch
	}
	copy(globalX, x)

	return nil
}

// AllscatterX is an identity copy.
func (e *Local) AllscatterX(globalX, x []float64) error {
	if len(x) != e.numParams || len(globalX) != e.numParams {
		return ErrShapeMismatch
	}
	copy(x, globalX)

	return nil
}

// FillXForJac is an identity copy: fine and jac forms coincide.
func (e *Local) FillXForJac(x, xForJac []float64) error {
	if len(x) != e.numParams || len(xForJac) != e.numParams {
		return ErrShapeMismatch
	}
	copy(xForJac, x)

	return nil
}

// DotX returns x1 . x2.
func (e *Local) DotX(x1, x2 []float64) (float64, error) {
	if len(x1) != len(x2) {
		return 0, ErrShapeMismatch
	}

	return floats.Dot(x1, x2), nil
}

// Norm2X returns x . x.
func (e *Local) Norm2X(x []float64) (float64, error) {
	return floats.Dot(x, x), nil
}

// InfNormX returns max |x_i|.
func (e *Local) InfNormX(x []float64) (float64, error) {
	return floats.Norm(x, math.Inf(1)), nil
}

// MaxX returns max x_i, or -Inf for an empty vector.
func (e *Local) MaxX(x []float64) (float64, error) {
	if len(x) == 0 {
		return math.Inf(-1), nil
	}

	return floats.Max(x), nil
}

// Norm2F returns f . f.
func (e *Local) Norm2F(f []float64) (float64, error) {
	return floats.Dot(f, f), nil
}

// Norm2Jac returns the squared Frobenius norm of the Jacobian.
func (e *Local) Norm2Jac(j []float64) (float64, error) {
	return floats.Dot(j, j), nil
}

// FillJTF writes jtf = J^T f.
func (e *Local) FillJTF(j, f, jtf []float64) error {
	n, p := e.numElements, e.numParams
	if len(j) != n*p || len(f) != n || len(jtf) != p {
		return ErrShapeMismatch
	}
	if p == 0 {
		return nil
	}
	if n == 0 {
		zero(jtf)

		return nil
	}
	jm := mat.NewDense(n, p, j)
	v := mat.NewVecDense(p, jtf)
	v.MulVec(jm.T(), mat.NewVecDense(n, f))

	return nil
}

// FillJTJ writes jtj = J^T J.
func (e *Local) FillJTJ(j, jtj []float64) error {
	n, p := e.numElements, e.numParams
	if len(j) != n*p || len(jtj) != p*p {
		return ErrShapeMismatch
	}
	if p == 0 {
		return nil
	}
	if n == 0 {
		zero(jtj)

		return nil
	}
	jm := mat.NewDense(n, p, j)
	out := mat.NewDense(p, p, jtj)
	out.Mul(jm.T(), jm)

	return nil
}

// JTJDiagIndices returns the (row, col) pairs addressing the diagonal of
// the P x P matrix.
func (e *Local) JTJDiagIndices(jtj []float64) (rows, cols []int, err error) {
	p := e.numParams
	if len(jtj) != p*p {
		return nil, nil, ErrShapeMismatch
	}
	rows = make([]int, p)
	cols = make([]int, p)
	for i := 0; i < p; i++ {
		rows[i] = i
		cols[i] = i
	}

	return rows, cols, nil
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}
