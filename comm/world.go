package comm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// World is a fixed-size set of cooperating ranks. It owns the group cache:
// requesting a Group for the same member set always returns the same
// instance, which is what lets all members rendezvous on one object.
//
// A World is safe for concurrent use by all of its ranks.
type World struct {
	size int

	mu     sync.Mutex
	groups map[string]*Group
	all    *Group
}

// NewWorld creates a world of size ranks, numbered 0..size-1.
//
// Returns ErrWorldSize when size is not positive.
func NewWorld(size int) (*World, error) {
	if size <= 0 {
		return nil, ErrWorldSize
	}
	w := &World{size: size, groups: make(map[string]*Group)}

	ranks := make([]int, size)
	for i := range ranks {
		ranks[i] = i
	}
	all, err := w.Group(ranks)
	if err != nil {
		return nil, err
	}
	w.all = all

	return w, nil
}

// Size returns the number of ranks in the world.
func (w *World) Size() int { return w.size }

// All returns the group containing every rank of the world.
func (w *World) All() *Group { return w.all }

// Group returns the collective group for the given member ranks.
//
// The member list is copied and sorted; order does not matter. Creation is
// idempotent: the same member set yields the same *Group instance, so every
// member of a sub-group obtains the shared rendezvous object simply by
// asking its World for it.
//
// Returns ErrEmptyGroup, ErrRankRange or ErrDuplicateRank on invalid input.
func (w *World) Group(ranks []int) (*Group, error) {
	if len(ranks) == 0 {
		return nil, ErrEmptyGroup
	}
	members := make([]int, len(ranks))
	copy(members, ranks)
	sort.Ints(members)

	for i, r := range members {
		if r < 0 || r >= w.size {
			return nil, fmt.Errorf("rank %d of %d: %w", r, w.size, ErrRankRange)
		}
		if i > 0 && members[i-1] == r {
			return nil, fmt.Errorf("rank %d: %w", r, ErrDuplicateRank)
		}
	}

	key := groupKey(members)

	w.mu.Lock()
	defer w.mu.Unlock()
	if g, ok := w.groups[key]; ok {
		return g, nil
	}
	g := newGroup(members)
	w.groups[key] = g

	return g, nil
}

// groupKey builds the canonical cache key for a sorted member list.
func groupKey(members []int) string {
	var b strings.Builder
	for i, r := range members {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", r)
	}

	return b.String()
}
