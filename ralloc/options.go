package ralloc

import "github.com/quantfit/distcalc/shmem"

// DefaultHosts (0) resolves to one host per rank, so no shared segments are
// created unless a coarser topology is requested with WithHosts.
const DefaultHosts = 0

// Option mutates the construction options of a ResourceAlloc.
type Option func(*options)

type options struct {
	hosts   int // 0 means one host per rank
	tracker *shmem.Tracker
}

// WithHosts assigns the world's ranks to h hosts in contiguous blocks.
// Ranks mapped to the same host share memory segments. The count is
// validated during New: it must satisfy 1 <= h <= world size.
func WithHosts(h int) Option {
	return func(o *options) { o.hosts = h }
}

// WithTracker shares one shared-memory tracker across ranks. All ranks of a
// world should pass the same tracker so segment accounting is global; by
// default each ResourceAlloc gets its own.
func WithTracker(t *shmem.Tracker) Option {
	return func(o *options) { o.tracker = t }
}

func gatherOptions(opts ...Option) options {
	o := options{hosts: DefaultHosts}
	for _, set := range opts {
		set(&o)
	}

	return o
}
