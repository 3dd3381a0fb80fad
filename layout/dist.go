package layout

import (
	"fmt"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/ralloc"
)

// Names of the unit sub-groups a Dist layout registers with the resource
// allocation. Each names the replica scope matching one replication
// pattern; see the package documentation.
const (
	// UnitParamFine is the replica scope of a fine parameter slice. Fine
	// slices are uniquely owned, so the scope is this rank alone and every
	// rank contributes to fine reductions.
	UnitParamFine = "param-fine"

	// UnitAtomProcessing is the row scope: the ranks holding the same
	// replicated residual block.
	UnitAtomProcessing = "atom-processing"

	// UnitParamProcessing is the replica scope of a Jacobian block. Blocks
	// are disjoint across ranks, so the scope is this rank alone.
	UnitParamProcessing = "param-processing"

	// UnitParamInteratom is the column scope: the ranks spanning the
	// atom-group replicas of one parameter block. It is the collective
	// scope of fine-to-jac conversion and normal-equation assembly.
	UnitParamInteratom = "param-interatom"
)

// Names of the local arrays a Dist layout can allocate and gather.
const (
	ArrayJTF = "jtf" // fine-partitioned parameter vector (J^T f)
	ArrayJTJ = "jtj" // fine rows x global params (J^T J)
	ArrayP   = "p"   // jac-form parameter block (x for Jacobian evaluation)
	ArrayE   = "e"   // local residual elements
	ArrayEP  = "ep"  // local elements x block params (Jacobian block)
)

// Dist is the distributable layout: one rank's view of the A x B grid
// partition of N residual elements and P parameters. See the package
// documentation for the model.
//
// Construction registers the layout's unit sub-groups with the resource
// allocation, and all layout methods that communicate take the resource
// allocation explicitly.
type Dist struct {
	numElements int
	numParams   int

	atomGroups  int // A
	paramBlocks int // B

	rank  int
	hosts []int // world rank -> host, frozen at construction

	a, b      int
	elemSpan  Span // E_a, global element coordinates
	paramSpan Span // P_b, global parameter coordinates
	fineSub   Span // fine slice relative to P_b
	fineSpan  Span // fine slice, global parameter coordinates
}

// NewDist builds the distributable layout for ra's rank.
//
// numElements and numParams are the global residual and parameter counts.
// The world is arranged as an (R/B) x B grid, with B set by WithParamBlocks
// (default 1). Fails with ErrBadGrid when R is not divisible by B and
// ErrBadSize on negative counts.
//
// Collective: every rank of the world must construct the layout with the
// same arguments.
func NewDist(numElements, numParams int, ra *ralloc.ResourceAlloc, opts ...Option) (*Dist, error) {
	if numElements < 0 || numParams < 0 {
		return nil, ErrBadSize
	}
	o := gatherOptions(opts...)

	size := ra.Size()
	if o.paramBlocks < 1 || size%o.paramBlocks != 0 {
		return nil, fmt.Errorf("%d ranks, %d blocks: %w", size, o.paramBlocks, ErrBadGrid)
	}

	l := &Dist{
		numElements: numElements,
		numParams:   numParams,
		atomGroups:  size / o.paramBlocks,
		paramBlocks: o.paramBlocks,
		rank:        ra.Rank(),
		hosts:       make([]int, size),
	}
	for r := 0; r < size; r++ {
		l.hosts[r] = ra.HostOf(r)
	}
	l.a, l.b = l.cellOf(l.rank)
	l.elemSpan, l.paramSpan, l.fineSub, l.fineSpan = l.spansOf(l.rank)

	if err := l.registerUnits(ra); err != nil {
		return nil, err
	}

	return l, nil
}

// cellOf maps a world rank to its (atom group, param block) grid cell.
func (l *Dist) cellOf(rank int) (a, b int) {
	return rank / l.paramBlocks, rank % l.paramBlocks
}

// spansOf computes the element, block, and fine spans of an arbitrary rank.
func (l *Dist) spansOf(rank int) (elem, param, fineSub, fine Span) {
	a, b := l.cellOf(rank)
	elem = SplitSpan(l.numElements, l.atomGroups, a)
	param = SplitSpan(l.numParams, l.paramBlocks, b)
	fineSub = SplitSpan(param.Len(), l.atomGroups, a)
	fine = Span{Start: param.Start + fineSub.Start, Stop: param.Start + fineSub.Stop}

	return elem, param, fineSub, fine
}

// rowRanks returns the ranks of this rank's row (same atom group).
func (l *Dist) rowRanks() []int {
	ranks := make([]int, l.paramBlocks)
	for j := 0; j < l.paramBlocks; j++ {
		ranks[j] = l.a*l.paramBlocks + j
	}

	return ranks
}

// colRanks returns the ranks of this rank's column (same param block).
func (l *Dist) colRanks() []int {
	ranks := make([]int, l.atomGroups)
	for i := 0; i < l.atomGroups; i++ {
		ranks[i] = i*l.paramBlocks + l.b
	}

	return ranks
}

func (l *Dist) registerUnits(ra *ralloc.ResourceAlloc) error {
	w := ra.World()

	self, err := w.Group([]int{l.rank})
	if err != nil {
		return err
	}
	row, err := w.Group(l.rowRanks())
	if err != nil {
		return err
	}
	col, err := w.Group(l.colRanks())
	if err != nil {
		return err
	}

	ra.SetUnit(UnitParamFine, self)
	ra.SetUnit(UnitAtomProcessing, row)
	ra.SetUnit(UnitParamProcessing, self)
	ra.SetUnit(UnitParamInteratom, col)

	return nil
}

// GlobalNumElements returns N, the global residual element count.
func (l *Dist) GlobalNumElements() int { return l.numElements }

// GlobalNumParams returns P, the global parameter count.
func (l *Dist) GlobalNumParams() int { return l.numParams }

// AtomGroups returns A, the number of atom groups (grid rows).
func (l *Dist) AtomGroups() int { return l.atomGroups }

// ParamBlocks returns B, the number of parameter blocks (grid columns).
func (l *Dist) ParamBlocks() int { return l.paramBlocks }

// ElementSpan returns this rank's residual block E_a in global element
// coordinates.
func (l *Dist) ElementSpan() Span { return l.elemSpan }

// GlobalParamSlice returns this rank's parameter block P_b: the columns its
// Jacobian block covers, in global parameter coordinates.
func (l *Dist) GlobalParamSlice() Span { return l.paramSpan }

// GlobalParamFineSlice returns this rank's uniquely owned fine slice in
// global parameter coordinates.
func (l *Dist) GlobalParamFineSlice() Span { return l.fineSpan }

// FineParamSubslice returns the fine slice relative to the start of this
// rank's parameter block.
func (l *Dist) FineParamSubslice() Span { return l.fineSub }

// ParamFineSlicesByHost returns every rank's parameter assignment grouped
// by host, in host order then rank order.
func (l *Dist) ParamFineSlicesByHost() [][]RankFineSlice {
	numHosts := 0
	for _, h := range l.hosts {
		if h+1 > numHosts {
			numHosts = h + 1
		}
	}
	byHost := make([][]RankFineSlice, numHosts)
	for r := range l.hosts {
		_, param, _, fine := l.spansOf(r)
		byHost[l.hosts[r]] = append(byHost[l.hosts[r]], RankFineSlice{
			Rank:      r,
			ParamSpan: param,
			FineSpan:  fine,
		})
	}

	return byHost
}

// OwnerOfFineParam returns the (host, rank) owner of a global fine
// parameter index. Exactly one rank owns each index; ErrParamRange is
// returned for indices outside [0, P).
func (l *Dist) OwnerOfFineParam(i int) (HostRank, error) {
	if i < 0 || i >= l.numParams {
		return HostRank{}, fmt.Errorf("index %d of %d: %w", i, l.numParams, ErrParamRange)
	}
	for r := range l.hosts {
		if _, _, _, fine := l.spansOf(r); fine.Contains(i) {
			return HostRank{Host: l.hosts[r], Rank: r}, nil
		}
	}

	// Unreachable while the fine slices tile [0, P).
	return HostRank{}, fmt.Errorf("index %d unowned: %w", i, ErrParamRange)
}

// FineInfo assembles the full diagnostics view of the fine partition.
func (l *Dist) FineInfo() *FineInfo {
	info := &FineInfo{
		SlicesByHost: l.ParamFineSlicesByHost(),
		Owners:       make(map[int]HostRank, l.numParams),
	}
	for r := range l.hosts {
		_, _, _, fine := l.spansOf(r)
		for i := fine.Start; i < fine.Stop; i++ {
			info.Owners[i] = HostRank{Host: l.hosts[r], Rank: r}
		}
	}

	return info
}

// sharingGroup returns the group of ranks in members co-located on this
// rank's host, or nil when this rank shares with nobody.
func (l *Dist) sharingGroup(ra *ralloc.ResourceAlloc, members []int) (*comm.Group, error) {
	var mates []int
	for _, r := range members {
		if l.hosts[r] == l.hosts[l.rank] {
			mates = append(mates, r)
		}
	}
	if len(mates) <= 1 {
		return nil, nil
	}

	return ra.World().Group(mates)
}
