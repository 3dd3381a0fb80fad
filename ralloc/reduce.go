package ralloc

import (
	"math"

	"github.com/quantfit/distcalc/shmem"
)

// AllreduceSum reduces one scalar per logical value across the whole world
// and publishes the total into dst[0] on every rank.
//
// unit names the replica scope of local: the group of ranks that all hold
// the same local value because the data they reduce over is replicated.
// Only the unit root contributes; the remaining replicas contribute the
// neutral element, which is how replicated data enters the sum exactly
// once. Pass a nil unit when local is unique to this rank.
//
// seg is dst's segment handle, exactly as returned by CreateShared. It
// decides the publication path: a shared destination is written once by the
// segment root and the write is ordered before co-located reads by a sync,
// while a private destination (nil seg) is written directly on every rank.
//
// Collective over the world: every rank must call it, in the same order
// relative to other collectives.
func (ra *ResourceAlloc) AllreduceSum(dst []float64, seg *shmem.Segment, local float64, unit UnitGroup) error {
	return ra.allreduce(dst, seg, local, unit, false)
}

// AllreduceMax is AllreduceSum with max in place of sum; replicas beyond
// the unit root contribute -Inf.
func (ra *ResourceAlloc) AllreduceMax(dst []float64, seg *shmem.Segment, local float64, unit UnitGroup) error {
	return ra.allreduce(dst, seg, local, unit, true)
}

func (ra *ResourceAlloc) allreduce(dst []float64, seg *shmem.Segment, local float64, unit UnitGroup, max bool) error {
	if len(dst) == 0 {
		return ErrNilDest
	}

	contrib := local
	if unit != nil && !unit.IsRoot(ra.rank) {
		if max {
			contrib = math.Inf(-1)
		} else {
			contrib = 0
		}
	}

	var (
		total float64
		err   error
	)
	if max {
		total, err = ra.world.All().AllReduceMax(ra.rank, contrib)
	} else {
		total, err = ra.world.All().AllReduceSum(ra.rank, contrib)
	}
	if err != nil {
		return err
	}

	// Publish once per segment when dst is shared; a nil handle means dst
	// is this rank's private buffer.
	if seg != nil && !seg.IsRoot() {
		return seg.Sync()
	}
	dst[0] = total

	return seg.Sync()
}

// UnitGroup is the read-only view of a unit sub-group a reduction needs:
// membership of the calling rank and the identity of the single
// contributing replica.
type UnitGroup interface {
	IsRoot(rank int) bool
	Contains(rank int) bool
}
