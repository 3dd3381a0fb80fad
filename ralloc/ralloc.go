package ralloc

import (
	"fmt"

	"github.com/quantfit/distcalc/comm"
	"github.com/quantfit/distcalc/shmem"
)

// ResourceAlloc is one rank's view of the process topology: the world
// communicator, the rank's host, the host group it shares memory with, the
// named unit sub-groups registered by the layout, and the shared-memory
// tracker.
//
// It is passed explicitly through every distributed call; there is no
// process-wide singleton.
type ResourceAlloc struct {
	world     *comm.World
	rank      int
	hostOf    []int // world rank -> host id
	host      int
	hostGroup *comm.Group // nil when this rank is alone on its host
	units     map[string]*comm.Group
	tracker   *shmem.Tracker
}

// New builds the resource allocation for the given rank of w.
//
// By default every rank lives on its own host (no shared segments); use
// WithHosts to co-locate ranks. Use WithTracker to share one segment
// tracker across all ranks of the world.
func New(w *comm.World, rank int, opts ...Option) (*ResourceAlloc, error) {
	if w == nil {
		return nil, ErrNilWorld
	}
	if rank < 0 || rank >= w.Size() {
		return nil, fmt.Errorf("rank %d of %d: %w", rank, w.Size(), comm.ErrRankRange)
	}
	o := gatherOptions(opts...)

	size := w.Size()
	hosts := o.hosts
	if hosts == 0 {
		hosts = size // one host per rank
	}
	if hosts < 1 || hosts > size {
		return nil, fmt.Errorf("%d hosts for %d ranks: %w", hosts, size, ErrBadHosts)
	}

	hostOf := assignHosts(size, hosts)
	ra := &ResourceAlloc{
		world:   w,
		rank:    rank,
		hostOf:  hostOf,
		host:    hostOf[rank],
		units:   make(map[string]*comm.Group),
		tracker: o.tracker,
	}
	if ra.tracker == nil {
		ra.tracker = shmem.NewTracker()
	}

	var mates []int
	for r, h := range hostOf {
		if h == ra.host {
			mates = append(mates, r)
		}
	}
	if len(mates) > 1 {
		g, err := w.Group(mates)
		if err != nil {
			return nil, err
		}
		ra.hostGroup = g
	}

	return ra, nil
}

// assignHosts maps size ranks onto hosts in contiguous blocks, spreading
// the remainder over the first blocks.
func assignHosts(size, hosts int) []int {
	hostOf := make([]int, size)
	base, rem := size/hosts, size%hosts
	r := 0
	for h := 0; h < hosts; h++ {
		n := base
		if h < rem {
			n++
		}
		for i := 0; i < n; i++ {
			hostOf[r] = h
			r++
		}
	}

	return hostOf
}

// World returns the shared world communicator.
func (ra *ResourceAlloc) World() *comm.World { return ra.world }

// Rank returns this rank's world rank.
func (ra *ResourceAlloc) Rank() int { return ra.rank }

// Size returns the world size.
func (ra *ResourceAlloc) Size() int { return ra.world.Size() }

// Host returns this rank's host id.
func (ra *ResourceAlloc) Host() int { return ra.host }

// HostOf returns the host id of an arbitrary world rank.
func (ra *ResourceAlloc) HostOf(rank int) int { return ra.hostOf[rank] }

// HostGroup returns the group of ranks co-located on this rank's host, or
// nil when the rank is alone on its host.
func (ra *ResourceAlloc) HostGroup() *comm.Group { return ra.hostGroup }

// Tracker returns the shared-memory tracker.
func (ra *ResourceAlloc) Tracker() *shmem.Tracker { return ra.tracker }

// SetUnit registers a named unit sub-group for this rank. Layouts call it
// during construction to publish their replica scopes.
func (ra *ResourceAlloc) SetUnit(name string, g *comm.Group) {
	ra.units[name] = g
}

// Unit resolves a named unit sub-group registered by SetUnit.
func (ra *ResourceAlloc) Unit(name string) (*comm.Group, error) {
	g, ok := ra.units[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownUnit)
	}

	return g, nil
}

// CreateShared allocates a buffer of n float64 values shared among the
// ranks of this host, following the shmem lifecycle contract. The segment
// handle is nil when the rank is alone on its host.
//
// Collective over the host group.
func (ra *ResourceAlloc) CreateShared(n int) ([]float64, *shmem.Segment, error) {
	return shmem.Create(ra.hostGroup, ra.rank, ra.tracker, n)
}
