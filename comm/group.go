package comm

import (
	"math"
	"sync"
)

// Group is a named subset of the world's ranks acting as the scope of
// collective operations. Every member must invoke each collective
// identically and in the same order; the call blocks until all members have
// arrived (see the package documentation for the deadlock contract).
//
// The zero root of a group is its lowest member rank; unit-scoped
// reductions use it to pick the single contributing replica.
type Group struct {
	ranks []int       // sorted world ranks
	index map[int]int // world rank -> member slot

	mu      sync.Mutex
	cond    *sync.Cond
	phase   uint64
	arrived int
	slots   []any
	out     []any
}

func newGroup(members []int) *Group {
	g := &Group{
		ranks: members,
		index: make(map[int]int, len(members)),
		slots: make([]any, len(members)),
	}
	for i, r := range members {
		g.index[r] = i
	}
	g.cond = sync.NewCond(&g.mu)

	return g
}

// Size returns the number of member ranks.
func (g *Group) Size() int { return len(g.ranks) }

// Ranks returns a copy of the sorted member ranks.
func (g *Group) Ranks() []int {
	out := make([]int, len(g.ranks))
	copy(out, g.ranks)

	return out
}

// Contains reports whether the given world rank belongs to the group.
func (g *Group) Contains(rank int) bool {
	_, ok := g.index[rank]

	return ok
}

// Root returns the lowest member rank.
func (g *Group) Root() int { return g.ranks[0] }

// IsRoot reports whether rank is the group root.
func (g *Group) IsRoot(rank int) bool { return rank == g.ranks[0] }

// slot resolves the member slot of a world rank.
func (g *Group) slot(rank int) (int, error) {
	i, ok := g.index[rank]
	if !ok {
		return 0, ErrNotMember
	}

	return i, nil
}

// exchange is the rendezvous primitive every collective is built on: the
// calling member deposits its contribution, blocks until all members have
// deposited, and receives the full contribution list in member order.
//
// The returned slice is a snapshot taken when the last member arrives; it
// is never mutated afterwards, so late wakers read it safely. Contributed
// reference values (slices) are shared across goroutines: callers that pass
// mutable data must copy it first.
func (g *Group) exchange(slot int, v any) []any {
	g.mu.Lock()
	defer g.mu.Unlock()

	phase := g.phase
	g.slots[slot] = v
	g.arrived++
	if g.arrived == len(g.ranks) {
		out := make([]any, len(g.slots))
		copy(out, g.slots)
		g.out = out
		g.arrived = 0
		g.phase++
		g.cond.Broadcast()

		return out
	}
	for g.phase == phase {
		g.cond.Wait()
	}

	return g.out
}

// Barrier blocks the calling member until every member has entered the
// barrier.
func (g *Group) Barrier(self int) error {
	slot, err := g.slot(self)
	if err != nil {
		return err
	}
	g.exchange(slot, nil)

	return nil
}

// AllReduceSum sums the scalar contributions of all members and returns the
// total to every member. Accumulation runs in fixed member order, so the
// result is bit-identical on every rank.
func (g *Group) AllReduceSum(self int, v float64) (float64, error) {
	slot, err := g.slot(self)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range g.exchange(slot, v) {
		sum += c.(float64)
	}

	return sum, nil
}

// AllReduceMax returns the maximum of the scalar contributions of all
// members to every member.
func (g *Group) AllReduceMax(self int, v float64) (float64, error) {
	slot, err := g.slot(self)
	if err != nil {
		return 0, err
	}
	max := math.Inf(-1)
	for _, c := range g.exchange(slot, v) {
		if f := c.(float64); f > max {
			max = f
		}
	}

	return max, nil
}

// AllReduceSumVec writes the element-wise sum of the members' local vectors
// into dst on every member. All contributions, and dst, must share one
// length. The local vector is copied on deposit, so the caller may reuse it
// immediately after the call returns.
func (g *Group) AllReduceSumVec(self int, dst, local []float64) error {
	slot, err := g.slot(self)
	if err != nil {
		return err
	}
	if len(dst) != len(local) {
		return ErrLengthMismatch
	}
	contrib := make([]float64, len(local))
	copy(contrib, local)

	acc := make([]float64, len(local))
	for _, c := range g.exchange(slot, contrib) {
		vec := c.([]float64)
		if len(vec) != len(acc) {
			return ErrLengthMismatch
		}
		for i, f := range vec {
			acc[i] += f
		}
	}
	copy(dst, acc)

	return nil
}

// AllGatherV concatenates the members' local vectors in member order and
// returns the concatenation to every member. Contributions may have
// different lengths, including zero. The local vector is copied on deposit.
func (g *Group) AllGatherV(self int, local []float64) ([]float64, error) {
	slot, err := g.slot(self)
	if err != nil {
		return nil, err
	}
	contrib := make([]float64, len(local))
	copy(contrib, local)

	var out []float64
	for _, c := range g.exchange(slot, contrib) {
		out = append(out, c.([]float64)...)
	}

	return out, nil
}

// AllGather exchanges one value per member and returns all contributed
// values in member order to every member.
//
// Values are shared by reference across the member goroutines: contribute
// immutable data, or copy mutable data before the call.
func AllGather[T any](g *Group, self int, v T) ([]T, error) {
	slot, err := g.slot(self)
	if err != nil {
		return nil, err
	}
	raw := g.exchange(slot, v)
	out := make([]T, len(raw))
	for i, c := range raw {
		out[i] = c.(T)
	}

	return out, nil
}

// Bcast distributes the root member's value to every member. Non-root
// contributions are ignored. The same reference-sharing caveat as AllGather
// applies.
func Bcast[T any](g *Group, self, root int, v T) (T, error) {
	var zero T
	rootSlot, ok := g.index[root]
	if !ok {
		return zero, ErrNotMember
	}
	all, err := AllGather(g, self, v)
	if err != nil {
		return zero, err
	}

	return all[rootSlot], nil
}
