package shmem

import (
	"sync"

	"github.com/quantfit/distcalc/comm"
)

const bytesPerFloat64 = 8

// segment is the shared backing store of one allocation: one per host
// group, attached by every co-located rank.
type segment struct {
	mu       sync.Mutex
	tracker  *Tracker
	buf      []float64
	attached int
}

func (s *segment) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached--
	if s.attached == 0 && s.tracker != nil {
		s.tracker.noteFree(int64(len(s.buf)) * bytesPerFloat64)
	}
}

// Segment is one rank's handle on a shared allocation. Handles are not
// shared between ranks: each attaching rank holds its own and must release
// it exactly once.
//
// A nil *Segment denotes a private (non-shared) buffer; all methods are
// nil-safe and degenerate to no-ops, which is what makes "deallocate on a
// non-shared array" safe by construction.
type Segment struct {
	inner    *segment
	group    *comm.Group
	rank     int
	released bool
}

// IsRoot reports whether the holding rank is the single designated writer
// of the segment. For a nil handle (private buffer) the holder is trivially
// the only writer.
func (s *Segment) IsRoot() bool {
	if s == nil {
		return true
	}

	return s.group.IsRoot(s.rank)
}

// Sync orders the root's writes before subsequent reads by co-located
// ranks. It is a host-group barrier; every attaching rank must call it.
func (s *Segment) Sync() error {
	if s == nil {
		return nil
	}

	return s.group.Barrier(s.rank)
}

// Release detaches the holding rank from the segment. The backing store is
// accounted as freed when the last attached rank releases. Releasing a
// handle twice returns ErrSegmentReleased.
func (s *Segment) Release() error {
	if s == nil {
		return nil
	}
	if s.released {
		return ErrSegmentReleased
	}
	s.released = true
	s.inner.detach()

	return nil
}

// Cleanup releases seg if it refers to a shared allocation and is a safe
// no-op on nil. Use it on every exit path that owns a (buffer, segment)
// pair.
func Cleanup(seg *Segment) error { return seg.Release() }

// Create allocates a buffer of n float64 values shared among the members of
// the host group.
//
// When host is nil or has a single member there is nothing to share: the
// returned buffer is private and the segment handle is nil. Otherwise the
// host-group root allocates the backing store once and presets the attach
// count to the full group size before publishing it, so a member releasing
// early can never drop the count to zero while others still hold handles.
//
// Create is a collective over the host group: every member must call it.
func Create(host *comm.Group, self int, tracker *Tracker, n int) ([]float64, *Segment, error) {
	if n < 0 {
		return nil, nil, ErrBadSize
	}
	if host == nil || host.Size() == 1 {
		return make([]float64, n), nil, nil
	}

	var inner *segment
	if host.IsRoot(self) {
		inner = &segment{tracker: tracker, buf: make([]float64, n), attached: host.Size()}
		if tracker != nil {
			tracker.noteCreate(int64(n) * bytesPerFloat64)
		}
	}
	inner, err := comm.Bcast(host, self, host.Root(), inner)
	if err != nil {
		return nil, nil, err
	}

	return inner.buf, &Segment{inner: inner, group: host, rank: self}, nil
}
