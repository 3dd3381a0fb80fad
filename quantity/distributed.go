package quantity

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/layout"
	"github.com/quantfit/distcalc/ralloc"
	"github.com/quantfit/distcalc/shmem"
)

// Layout is the surface the engine constructor accepts. Only the
// distributable kind (*layout.Dist) can drive a Distributed engine; the
// constructor rejects anything else.
type Layout interface {
	GlobalNumParams() int
}

// Distributed is the multi-host, multi-rank engine. It delegates array
// allocation and cross-process reduction to the layout and resource
// allocation collaborators; every operation is local compute plus an
// explicit collective step over the sub-group that owns exactly one
// logical copy of the data being reduced.
//
// A Distributed engine is one rank's view: each rank of the world holds
// its own instance and calls every communicating method identically, in
// the same order.
type Distributed struct {
	layout *layout.Dist
	ralloc *ralloc.ResourceAlloc

	jtf     bufState
	jtj     bufState
	xForJac bufState
	jac     bufState
}

// bufState retains the shared segment of one outstanding allocation so the
// paired Deallocate releases exactly that segment.
type bufState struct {
	seg  *shmem.Segment
	live bool
}

var _ Engine = (*Distributed)(nil)

// NewDistributed builds the distributed engine for ra's rank.
//
// lay must be a distributable layout (*layout.Dist); any other kind fails
// fast with ErrNotDistributable rather than silently falling back to local
// semantics.
func NewDistributed(lay Layout, ra *ralloc.ResourceAlloc) (*Distributed, error) {
	dl, ok := lay.(*layout.Dist)
	if !ok {
		return nil, ErrNotDistributable
	}
	if ra == nil {
		return nil, ErrNilResourceAlloc
	}

	return &Distributed{layout: dl, ralloc: ra}, nil
}

// allocate requests the named local array from the layout and retains its
// segment handle in st.
func (e *Distributed) allocate(st *bufState, name string) ([]float64, error) {
	if st.live {
		return nil, ErrBufferLive
	}
	buf, seg, err := e.layout.AllocateLocalArray(name, e.ralloc, 0)
	if err != nil {
		return nil, err
	}
	st.seg, st.live = seg, true

	return buf, nil
}

// deallocate releases the segment retained for st. Deallocating a buffer
// kind that is not live, or whose buffer was never shared, is a safe
// no-op.
func (e *Distributed) deallocate(st *bufState) error {
	if !st.live {
		return nil
	}
	seg := st.seg
	st.seg, st.live = nil, false

	return shmem.Cleanup(seg)
}

// AllocateJTF allocates this rank's fine rows of J^T f.
func (e *Distributed) AllocateJTF() ([]float64, error) {
	return e.allocate(&e.jtf, layout.ArrayJTF)
}

// AllocateJTJ allocates this rank's fine rows x global columns of J^T J.
func (e *Distributed) AllocateJTJ() ([]float64, error) {
	return e.allocate(&e.jtj, layout.ArrayJTJ)
}

// AllocateXForJac allocates the jac-form parameter block, shared with
// co-located column replicas when possible. Collective over that sharing
// group.
func (e *Distributed) AllocateXForJac() ([]float64, error) {
	return e.allocate(&e.xForJac, layout.ArrayP)
}

// AllocateJac allocates this rank's Jacobian block.
func (e *Distributed) AllocateJac() ([]float64, error) {
	return e.allocate(&e.jac, layout.ArrayEP)
}

// DeallocateJTF releases the segment retained by AllocateJTF.
func (e *Distributed) DeallocateJTF([]float64) error { return e.deallocate(&e.jtf) }

// DeallocateJTJ releases the segment retained by AllocateJTJ.
func (e *Distributed) DeallocateJTJ([]float64) error { return e.deallocate(&e.jtj) }

// DeallocateXForJac releases the segment retained by AllocateXForJac.
func (e *Distributed) DeallocateXForJac([]float64) error { return e.deallocate(&e.xForJac) }

// DeallocateJac releases the segment retained by AllocateJac.
func (e *Distributed) DeallocateJac([]float64) error { return e.deallocate(&e.jac) }

// GlobalXSize returns P.
func (e *Distributed) GlobalXSize() int { return e.layout.GlobalNumParams() }

// JacParamSlice returns the layout's parameter block of this rank.
func (e *Distributed) JacParamSlice() layout.Span { return e.layout.GlobalParamSlice() }

// JTFParamSlice returns the layout's fine slice of this rank.
func (e *Distributed) JTFParamSlice() layout.Span { return e.layout.GlobalParamFineSlice() }

// ParamFineInfo exposes the layout's partition metadata verbatim.
func (e *Distributed) ParamFineInfo() (*layout.FineInfo, error) {
	return e.layout.FineInfo(), nil
}

// AllgatherX assembles the global parameter vector on the root and then
// broadcasts it, so every rank fills globalX with identical values. The
// two-phase form reuses the layout's gather primitive.
//
// Collective over the world.
func (e *Distributed) AllgatherX(x, globalX []float64) error {
	if len(globalX) != e.layout.GlobalNumParams() {
		return ErrShapeMismatch
	}
	onRoot, err := e.layout.GatherLocalArray(layout.ArrayJTF, x, e.ralloc)
	if err != nil {
		return err
	}
	world := e.ralloc.World().All()
	global, err := comm.Bcast(world, e.ralloc.Rank(), 0, onRoot)
	if err != nil {
		return err
	}
	copy(globalX, global)

	return nil
}

// AllscatterX is the inverse projection: this rank reads its owned
// sub-slice out of an already-global vector. No communication.
func (e *Distributed) AllscatterX(globalX, x []float64) error {
	fine := e.layout.GlobalParamFineSlice()
	if len(globalX) != e.layout.GlobalNumParams() || len(x) != fine.Len() {
		return ErrShapeMismatch
	}
	copy(x, globalX[fine.Start:fine.Stop])

	return nil
}

// FillXForJac gathers the fine-owned slices of this rank's column into the
// jac-form buffer, so every replica holds the exact parameter values
// currently owned elsewhere. xForJac must be the buffer returned by
// AllocateXForJac: when it is host-shared, only the segment root writes it
// and a sync orders the write before co-located reads.
//
// Collective over the column group.
func (e *Distributed) FillXForJac(x, xForJac []float64) error {
	if len(xForJac) != e.layout.GlobalParamSlice().Len() {
		return ErrShapeMismatch
	}
	block, err := e.layout.AssembleBlockFromFine(x, e.ralloc)
	if err != nil {
		return err
	}
	if e.xForJac.seg.IsRoot() {
		copy(xForJac, block)
	}

	return e.xForJac.seg.Sync()
}

// reduceScalar runs the scoped shared-buffer reduction pattern: allocate a
// one-element shared buffer, reduce into it over the named unit scope,
// read the result back, release the buffer. The pattern is followed even
// for plain scalars to keep the shared-memory accounting symmetric.
func (e *Distributed) reduceScalar(local float64, unitName string, max bool) (float64, error) {
	unit, err := e.ralloc.Unit(unitName)
	if err != nil {
		return 0, err
	}
	buf, seg, err := e.ralloc.CreateShared(1)
	if err != nil {
		return 0, err
	}

	if max {
		err = e.ralloc.AllreduceMax(buf, seg, local, unit)
	} else {
		err = e.ralloc.AllreduceSum(buf, seg, local, unit)
	}
	if err != nil {
		_ = shmem.Cleanup(seg)

		return 0, err
	}

	result := buf[0]

	return result, shmem.Cleanup(seg)
}

// DotX sums the local fine-slice dot products over the fine scope, where
// every parameter is owned exactly once.
func (e *Distributed) DotX(x1, x2 []float64) (float64, error) {
	fine := e.layout.GlobalParamFineSlice()
	if len(x1) != fine.Len() || len(x2) != fine.Len() {
		return 0, ErrShapeMismatch
	}

	return e.reduceScalar(floats.Dot(x1, x2), layout.UnitParamFine, false)
}

// Norm2X returns the global squared 2-norm of a fine-form vector.
func (e *Distributed) Norm2X(x []float64) (float64, error) {
	return e.DotX(x, x)
}

// InfNormX maximizes the local infinity norms over the fine scope.
func (e *Distributed) InfNormX(x []float64) (float64, error) {
	if len(x) != e.layout.GlobalParamFineSlice().Len() {
		return 0, ErrShapeMismatch
	}

	return e.reduceScalar(floats.Norm(x, math.Inf(1)), layout.UnitParamFine, true)
}

// MaxX maximizes the local maxima over the fine scope. An empty fine slice
// contributes -Inf.
func (e *Distributed) MaxX(x []float64) (float64, error) {
	if len(x) != e.layout.GlobalParamFineSlice().Len() {
		return 0, ErrShapeMismatch
	}
	local := math.Inf(-1)
	if len(x) > 0 {
		local = floats.Max(x)
	}

	return e.reduceScalar(local, layout.UnitParamFine, true)
}

// Norm2F sums the local residual norms over the atom-processing scope:
// residual elements are partitioned by atom, and replicas of a block
// beyond the first are excluded from the sum.
func (e *Distributed) Norm2F(f []float64) (float64, error) {
	if len(f) != e.layout.ElementSpan().Len() {
		return 0, ErrShapeMismatch
	}

	return e.reduceScalar(floats.Dot(f, f), layout.UnitAtomProcessing, false)
}

// Norm2Jac sums the local squared Frobenius norms over the
// param-processing scope, which owns exactly one logical copy of each
// Jacobian block.
func (e *Distributed) Norm2Jac(j []float64) (float64, error) {
	rows, cols := e.layout.ElementSpan().Len(), e.layout.GlobalParamSlice().Len()
	if len(j) != rows*cols {
		return 0, ErrShapeMismatch
	}

	return e.reduceScalar(floats.Dot(j, j), layout.UnitParamProcessing, false)
}

// FillJTF delegates normal-equation vector assembly to the layout, which
// knows how local Jacobian blocks map onto the fine parameter axis.
func (e *Distributed) FillJTF(j, f, jtf []float64) error {
	return e.layout.FillJTF(j, f, jtf, e.ralloc)
}

// FillJTJ delegates normal-equation matrix assembly to the layout.
func (e *Distributed) FillJTJ(j, jtj []float64) error {
	return e.layout.FillJTJ(j, jtj, e.ralloc)
}

// JTJDiagIndices addresses the global diagonal within this rank's jtj
// storage: rows run over the local fine dimension while columns are offset
// by the fine slice start. Equal index counts double as a
// partition-consistency check.
func (e *Distributed) JTJDiagIndices(jtj []float64) (rows, cols []int, err error) {
	fine := e.layout.GlobalParamFineSlice()
	numP := e.layout.GlobalNumParams()
	if numP == 0 {
		if len(jtj) != 0 {
			return nil, nil, ErrShapeMismatch
		}

		return nil, nil, nil
	}
	if len(jtj)%numP != 0 {
		return nil, nil, ErrShapeMismatch
	}
	localRows := len(jtj) / numP

	rows = make([]int, 0, localRows)
	for r := 0; r < localRows; r++ {
		rows = append(rows, r)
	}
	cols = make([]int, 0, fine.Len())
	for c := fine.Start; c < fine.Stop; c++ {
		cols = append(cols, c)
	}
	if len(rows) != len(cols) {
		return nil, nil, ErrPartitionMismatch
	}

	return rows, cols, nil
}
