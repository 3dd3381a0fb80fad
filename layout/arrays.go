package layout

import (
	"fmt"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/ralloc"
	"github.com/quantfit/distcalc/shmem"
)

// chunk carries one rank's slice of a global axis through a collective.
// The data is always a private copy, so members may mutate their local
// buffers as soon as the collective returns.
type chunk struct {
	span Span
	data []float64
}

func newChunk(span Span, data []float64) chunk {
	c := chunk{span: span, data: make([]float64, len(data))}
	copy(c.data, data)

	return c
}

// AllocateLocalArray allocates this rank's local portion of the named
// array. The returned segment handle is non-nil only when the buffer is
// backed by a shared segment; release it with shmem.Cleanup once the array
// is no longer needed (releasing a nil handle is a safe no-op).
//
// Shapes by name:
//
//	ArrayJTF  fine slice length                      private
//	ArrayJTJ  fine slice length x P                  private
//	ArrayP    parameter block length                 shared among co-located column ranks
//	ArrayE    local elements + extra                 shared among co-located row ranks
//	ArrayEP  (local elements + extra) x block length private
//
// extra adds rows to the element axis of ArrayE/ArrayEP (the optimizer's
// damping rows); it is ignored for the parameter-axis arrays.
//
// Collective over the sharing group of the named array: every rank must
// call it at the same point.
func (l *Dist) AllocateLocalArray(name string, ra *ralloc.ResourceAlloc, extra int) ([]float64, *shmem.Segment, error) {
	switch name {
	case ArrayJTF:
		return make([]float64, l.fineSub.Len()), nil, nil
	case ArrayJTJ:
		return make([]float64, l.fineSub.Len()*l.numParams), nil, nil
	case ArrayP:
		mates, err := l.sharingGroup(ra, l.colRanks())
		if err != nil {
			return nil, nil, err
		}

		return shmem.Create(mates, l.rank, ra.Tracker(), l.paramSpan.Len())
	case ArrayE:
		mates, err := l.sharingGroup(ra, l.rowRanks())
		if err != nil {
			return nil, nil, err
		}

		return shmem.Create(mates, l.rank, ra.Tracker(), l.elemSpan.Len()+extra)
	case ArrayEP:
		return make([]float64, (l.elemSpan.Len()+extra)*l.paramSpan.Len()), nil, nil
	default:
		return nil, nil, fmt.Errorf("%q: %w", name, ErrUnknownArrayName)
	}
}

// GatherLocalArray assembles the named array's global form on world rank 0
// from the ranks' local portions; every other rank receives nil. Only the
// one-dimensional arrays (ArrayJTF, ArrayP, ArrayE) can be gathered.
//
// Collective over the world.
func (l *Dist) GatherLocalArray(name string, local []float64, ra *ralloc.ResourceAlloc) ([]float64, error) {
	var span Span
	var total int
	switch name {
	case ArrayJTF:
		span, total = l.fineSpan, l.numParams
	case ArrayP:
		span, total = l.paramSpan, l.numParams
	case ArrayE:
		span, total = l.elemSpan, l.numElements
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownArrayName)
	}
	if len(local) != span.Len() {
		return nil, fmt.Errorf("%q: len %d, want %d: %w", name, len(local), span.Len(), ErrShapeMismatch)
	}

	pieces, err := comm.AllGather(ra.World().All(), l.rank, newChunk(span, local))
	if err != nil {
		return nil, err
	}
	if l.rank != 0 {
		return nil, nil
	}

	global := make([]float64, total)
	for _, p := range pieces {
		copy(global[p.span.Start:p.span.Stop], p.data)
	}

	return global, nil
}

// AssembleBlockFromFine converts a fine-owned parameter slice into the
// jac-form block every atom-group replica needs: the fine slices of this
// rank's column are gathered and concatenated into one buffer covering the
// whole parameter block. The gather is synchronous, so every receiving
// rank observes the exact values currently owned elsewhere.
//
// Collective over the column (UnitParamInteratom) group.
func (l *Dist) AssembleBlockFromFine(x []float64, ra *ralloc.ResourceAlloc) ([]float64, error) {
	if len(x) != l.fineSub.Len() {
		return nil, fmt.Errorf("fine len %d, want %d: %w", len(x), l.fineSub.Len(), ErrShapeMismatch)
	}
	col, err := ra.Unit(UnitParamInteratom)
	if err != nil {
		return nil, err
	}

	pieces, err := comm.AllGather(col, l.rank, newChunk(l.fineSub, x))
	if err != nil {
		return nil, err
	}

	block := make([]float64, l.paramSpan.Len())
	for _, p := range pieces {
		copy(block[p.span.Start:p.span.Stop], p.data)
	}

	return block, nil
}
