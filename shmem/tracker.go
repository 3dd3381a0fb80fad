package shmem

import "sync"

// Tracker accounts for shared-segment lifecycle across an entire fit: how
// many segments were ever created, how many are currently live, and the
// live/peak byte footprint. One Tracker is shared by all ranks of a world.
//
// All methods are safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	created   int
	live      int
	liveBytes int64
	peakBytes int64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Created returns the total number of segments ever allocated.
func (t *Tracker) Created() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.created
}

// Live returns the number of segments not yet fully released. A balanced
// allocate/release history leaves Live at zero.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.live
}

// LiveBytes returns the byte footprint of live segments.
func (t *Tracker) LiveBytes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.liveBytes
}

// PeakBytes returns the highest byte footprint observed.
func (t *Tracker) PeakBytes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.peakBytes
}

func (t *Tracker) noteCreate(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.created++
	t.live++
	t.liveBytes += bytes
	if t.liveBytes > t.peakBytes {
		t.peakBytes = t.liveBytes
	}
}

func (t *Tracker) noteFree(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live--
	t.liveBytes -= bytes
}
