package ralloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/ralloc"
	"github.com/quantfit/distcalc/shmem"
)

func TestNew_Validation(t *testing.T) {
	_, err := ralloc.New(nil, 0)
	require.ErrorIs(t, err, ralloc.ErrNilWorld)

	w, err := comm.NewWorld(4)
	require.NoError(t, err)

	_, err = ralloc.New(w, 4)
	require.ErrorIs(t, err, comm.ErrRankRange)

	_, err = ralloc.New(w, -1)
	require.ErrorIs(t, err, comm.ErrRankRange)

	_, err = ralloc.New(w, 0, ralloc.WithHosts(5))
	require.ErrorIs(t, err, ralloc.ErrBadHosts)

	_, err = ralloc.New(w, 0, ralloc.WithHosts(-1))
	require.ErrorIs(t, err, ralloc.ErrBadHosts)
}

func TestNew_DefaultOneHostPerRank(t *testing.T) {
	w, err := comm.NewWorld(3)
	require.NoError(t, err)

	for rank := 0; rank < 3; rank++ {
		ra, err := ralloc.New(w, rank)
		require.NoError(t, err)
		require.Equal(t, rank, ra.Host())
		require.Nil(t, ra.HostGroup(), "rank %d is alone on its host", rank)
		require.NotNil(t, ra.Tracker())
	}
}

func TestNew_ContiguousHostBlocks(t *testing.T) {
	w, err := comm.NewWorld(4)
	require.NoError(t, err)

	ra, err := ralloc.New(w, 1, ralloc.WithHosts(2))
	require.NoError(t, err)

	require.Equal(t, []int{0, 0, 1, 1}, []int{ra.HostOf(0), ra.HostOf(1), ra.HostOf(2), ra.HostOf(3)})
	require.Equal(t, 0, ra.Host())
	require.NotNil(t, ra.HostGroup())
	require.Equal(t, []int{0, 1}, ra.HostGroup().Ranks())
}

func TestNew_RemainderSpreadOverFirstHosts(t *testing.T) {
	w, err := comm.NewWorld(4)
	require.NoError(t, err)

	ra, err := ralloc.New(w, 3, ralloc.WithHosts(3))
	require.NoError(t, err)

	// 4 ranks on 3 hosts: the first host takes the extra rank.
	require.Equal(t, []int{0, 0, 1, 2}, []int{ra.HostOf(0), ra.HostOf(1), ra.HostOf(2), ra.HostOf(3)})
	require.Nil(t, ra.HostGroup(), "rank 3 is alone on host 2")
}

func TestUnits_RegisterAndResolve(t *testing.T) {
	w, err := comm.NewWorld(2)
	require.NoError(t, err)

	ra, err := ralloc.New(w, 0)
	require.NoError(t, err)

	_, err = ra.Unit("nope")
	require.ErrorIs(t, err, ralloc.ErrUnknownUnit)

	g, err := w.Group([]int{0, 1})
	require.NoError(t, err)
	ra.SetUnit("pair", g)

	got, err := ra.Unit("pair")
	require.NoError(t, err)
	require.Same(t, g, got)
}

func TestCreateShared_AloneIsPrivate(t *testing.T) {
	w, err := comm.NewWorld(2)
	require.NoError(t, err)

	ra, err := ralloc.New(w, 0)
	require.NoError(t, err)

	buf, seg, err := ra.CreateShared(3)
	require.NoError(t, err)
	require.Len(t, buf, 3)
	require.Nil(t, seg)
	require.Equal(t, 0, ra.Tracker().Created())
}

func TestCreateShared_CoLocatedRanksShare(t *testing.T) {
	const size = 2

	tr := shmem.NewTracker()
	got := make([]float64, size)

	err := comm.Run(size, func(rank int, w *comm.World) error {
		ra, err := ralloc.New(w, rank, ralloc.WithHosts(1), ralloc.WithTracker(tr))
		if err != nil {
			return err
		}
		buf, seg, err := ra.CreateShared(1)
		if err != nil {
			return err
		}
		if seg.IsRoot() {
			buf[0] = 42
		}
		if err := seg.Sync(); err != nil {
			return err
		}
		got[rank] = buf[0]
		if err := seg.Sync(); err != nil {
			return err
		}

		return shmem.Cleanup(seg)
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{42, 42}, got)
	require.Equal(t, 1, tr.Created())
	require.Equal(t, 0, tr.Live())
}
