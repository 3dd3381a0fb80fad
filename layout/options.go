package layout

// DefaultParamBlocks is the default number of parameter blocks: a single
// block spanning all parameters, giving a pure atom-wise (row) partition.
const DefaultParamBlocks = 1

// Option mutates the construction options of a Dist layout.
type Option func(*options)

type options struct {
	paramBlocks int
}

// WithParamBlocks splits the parameter axis into b blocks (the columns of
// the rank grid). The world size must be divisible by b; NewDist returns
// ErrBadGrid otherwise.
func WithParamBlocks(b int) Option {
	return func(o *options) { o.paramBlocks = b }
}

func gatherOptions(opts ...Option) options {
	o := options{paramBlocks: DefaultParamBlocks}
	for _, set := range opts {
		set(&o)
	}

	return o
}
