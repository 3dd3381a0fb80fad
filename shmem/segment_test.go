package shmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/shmem"
)

func TestCreate_SizeValidation(t *testing.T) {
	_, _, err := shmem.Create(nil, 0, shmem.NewTracker(), -1)
	require.ErrorIs(t, err, shmem.ErrBadSize)
}

func TestCreate_PrivateBuffer(t *testing.T) {
	tr := shmem.NewTracker()

	// No host group: nothing to share, the buffer is private and the
	// handle is nil.
	buf, seg, err := shmem.Create(nil, 0, tr, 5)
	require.NoError(t, err)
	require.Len(t, buf, 5)
	require.Nil(t, seg)

	// Nil handles are safe everywhere: the holder is trivially root, sync
	// and release are no-ops, the tracker never saw a segment.
	require.True(t, seg.IsRoot())
	require.NoError(t, seg.Sync())
	require.NoError(t, shmem.Cleanup(seg))
	require.Equal(t, 0, tr.Created())
}

func TestCreate_SingleMemberHostIsPrivate(t *testing.T) {
	w, err := comm.NewWorld(2)
	require.NoError(t, err)
	host, err := w.Group([]int{1})
	require.NoError(t, err)

	buf, seg, err := shmem.Create(host, 1, shmem.NewTracker(), 3)
	require.NoError(t, err)
	require.Len(t, buf, 3)
	require.Nil(t, seg)
}

func TestCreate_SharedBackingStore(t *testing.T) {
	const size = 3
	const n = 4

	tr := shmem.NewTracker()
	got := make([][]float64, size)

	err := comm.Run(size, func(rank int, w *comm.World) error {
		buf, seg, err := shmem.Create(w.All(), rank, tr, n)
		if err != nil {
			return err
		}
		if seg == nil {
			t.Errorf("rank %d: expected a shared segment", rank)

			return nil
		}
		assert.Equal(t, rank == 0, seg.IsRoot(), "rank %d", rank)

		// Single-writer discipline: the root fills the buffer, the sync
		// orders the writes before co-located reads.
		if seg.IsRoot() {
			for i := range buf {
				buf[i] = float64(10 + i)
			}
		}
		if err := seg.Sync(); err != nil {
			return err
		}
		snapshot := make([]float64, n)
		copy(snapshot, buf)
		got[rank] = snapshot

		if err := seg.Sync(); err != nil {
			return err
		}

		return shmem.Cleanup(seg)
	})
	require.NoError(t, err)

	for rank := 0; rank < size; rank++ {
		assert.Equal(t, []float64{10, 11, 12, 13}, got[rank], "rank %d", rank)
	}

	// One backing store for all attachers, fully released.
	require.Equal(t, 1, tr.Created())
	require.Equal(t, 0, tr.Live())
	require.Equal(t, int64(0), tr.LiveBytes())
	require.Equal(t, int64(n*8), tr.PeakBytes())
}

func TestSegment_DoubleRelease(t *testing.T) {
	const size = 2

	tr := shmem.NewTracker()
	err := comm.Run(size, func(rank int, w *comm.World) error {
		_, seg, err := shmem.Create(w.All(), rank, tr, 1)
		if err != nil {
			return err
		}
		if err := seg.Release(); err != nil {
			return err
		}
		assert.ErrorIs(t, seg.Release(), shmem.ErrSegmentReleased, "rank %d", rank)

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 0, tr.Live())
}

func TestSegment_EarlyReleaseKeepsBalance(t *testing.T) {
	const size = 3

	tr := shmem.NewTracker()
	err := comm.Run(size, func(rank int, w *comm.World) error {
		_, seg, err := shmem.Create(w.All(), rank, tr, 2)
		if err != nil {
			return err
		}
		// The root lets go immediately; the segment must stay live until
		// the last holder releases, never dipping to zero in between.
		if rank == 0 {
			if err := shmem.Cleanup(seg); err != nil {
				return err
			}
		}
		if err := w.All().Barrier(rank); err != nil {
			return err
		}
		assert.Equal(t, 1, tr.Live(), "rank %d: segment live while holders remain", rank)
		assert.Equal(t, int64(2*8), tr.LiveBytes(), "rank %d", rank)
		if err := w.All().Barrier(rank); err != nil {
			return err
		}
		if rank != 0 {
			return shmem.Cleanup(seg)
		}

		return nil
	})
	require.NoError(t, err)

	require.Equal(t, 1, tr.Created())
	require.Equal(t, 0, tr.Live())
	require.Equal(t, int64(0), tr.LiveBytes())
}

func TestTracker_PeakAccounting(t *testing.T) {
	const size = 2

	tr := shmem.NewTracker()
	err := comm.Run(size, func(rank int, w *comm.World) error {
		// Two overlapping segments, then one more after both are gone: the
		// peak reflects the overlap, not the total ever created.
		_, s1, err := shmem.Create(w.All(), rank, tr, 10)
		if err != nil {
			return err
		}
		_, s2, err := shmem.Create(w.All(), rank, tr, 20)
		if err != nil {
			return err
		}
		if err := shmem.Cleanup(s1); err != nil {
			return err
		}
		if err := shmem.Cleanup(s2); err != nil {
			return err
		}
		if err := w.All().Barrier(rank); err != nil {
			return err
		}
		_, s3, err := shmem.Create(w.All(), rank, tr, 5)
		if err != nil {
			return err
		}

		return shmem.Cleanup(s3)
	})
	require.NoError(t, err)

	require.Equal(t, 3, tr.Created())
	require.Equal(t, 0, tr.Live())
	require.Equal(t, int64(30*8), tr.PeakBytes())
}
