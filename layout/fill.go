package layout

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/ralloc"
)

// FillJTF assembles this rank's fine-partitioned rows of the normal
// equation vector J^T f.
//
// j is the local Jacobian block (local elements x block params, row-major),
// f the local residual block, and jtf the fine-length destination. Each
// rank computes the block-length partial (J[:, block])^T f over its residual
// chunk; the column sums those partials element-wise in block coordinates
// (its members own different fine slices, so the sum must run over the full
// block), and this rank keeps its fine rows of the total.
//
// Collective over the column (UnitParamInteratom) group.
func (l *Dist) FillJTF(j, f, jtf []float64, ra *ralloc.ResourceAlloc) error {
	rows, cols, fineLen := l.elemSpan.Len(), l.paramSpan.Len(), l.fineSub.Len()
	if err := checkShape("j", len(j), rows*cols); err != nil {
		return err
	}
	if err := checkShape("f", len(f), rows); err != nil {
		return err
	}
	if err := checkShape("jtf", len(jtf), fineLen); err != nil {
		return err
	}

	partial := make([]float64, cols)
	if rows > 0 && cols > 0 {
		jm := mat.NewDense(rows, cols, j)
		v := mat.NewVecDense(cols, partial)
		v.MulVec(jm.T(), mat.NewVecDense(rows, f))
	}

	col, err := ra.Unit(UnitParamInteratom)
	if err != nil {
		return err
	}
	blockSum := make([]float64, cols)
	if err := col.AllReduceSumVec(l.rank, blockSum, partial); err != nil {
		return err
	}
	copy(jtf, blockSum[l.fineSub.Start:l.fineSub.Stop])

	return nil
}

// FillJTJ assembles this rank's fine-partitioned rows of the normal
// equation matrix J^T J.
//
// j is the local Jacobian block; jtj the destination, fine rows x P global
// columns, row-major. The assembly runs in three stages:
//
//  1. The row's blocks are gathered so each rank holds the full-width
//     J[E_a, :] over its element chunk (cross-block column products need
//     every parameter column).
//  2. The local partial (J[E_a, block])^T J[E_a, :] is computed, block
//     rows x P columns.
//  3. The column's partials are summed element-wise in block coordinates
//     (its members own different fine slices), and this rank keeps its
//     fine rows of the total.
//
// Collective over the row (UnitAtomProcessing) and column
// (UnitParamInteratom) groups, in that order.
func (l *Dist) FillJTJ(j, jtj []float64, ra *ralloc.ResourceAlloc) error {
	rows, cols, fineLen := l.elemSpan.Len(), l.paramSpan.Len(), l.fineSub.Len()
	numP := l.numParams
	if err := checkShape("j", len(j), rows*cols); err != nil {
		return err
	}
	if err := checkShape("jtj", len(jtj), fineLen*numP); err != nil {
		return err
	}

	row, err := ra.Unit(UnitAtomProcessing)
	if err != nil {
		return err
	}
	pieces, err := comm.AllGather(row, l.rank, newChunk(l.paramSpan, j))
	if err != nil {
		return err
	}

	// Stage 1: splice the row's column blocks into J[E_a, :].
	jFull := make([]float64, rows*numP)
	for _, p := range pieces {
		width := p.span.Len()
		if width == 0 {
			continue
		}
		for r := 0; r < rows; r++ {
			copy(jFull[r*numP+p.span.Start:r*numP+p.span.Stop], p.data[r*width:(r+1)*width])
		}
	}

	// Stage 2: block rows of the local partial product.
	partial := make([]float64, cols*numP)
	if rows > 0 && cols > 0 {
		jm := mat.NewDense(rows, numP, jFull)
		jBlock := jm.Slice(0, rows, l.paramSpan.Start, l.paramSpan.Stop)
		pm := mat.NewDense(cols, numP, partial)
		pm.Mul(jBlock.T(), jm)
	}

	// Stage 3: sum the column's element chunks, then keep the fine rows.
	col, err := ra.Unit(UnitParamInteratom)
	if err != nil {
		return err
	}
	blockSum := make([]float64, cols*numP)
	if err := col.AllReduceSumVec(l.rank, blockSum, partial); err != nil {
		return err
	}
	copy(jtj, blockSum[l.fineSub.Start*numP:l.fineSub.Stop*numP])

	return nil
}

func checkShape(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: len %d, want %d: %w", name, got, want, ErrShapeMismatch)
	}

	return nil
}
