package layout

// Span is a half-open index range [Start, Stop) over a global axis.
type Span struct {
	Start, Stop int
}

// Len returns the number of indices covered by the span.
func (s Span) Len() int { return s.Stop - s.Start }

// IsEmpty reports whether the span covers no indices.
func (s Span) IsEmpty() bool { return s.Stop <= s.Start }

// Contains reports whether i lies inside the span.
func (s Span) Contains(i int) bool { return i >= s.Start && i < s.Stop }

// SplitSpan returns the i-th of parts contiguous spans tiling [0, n),
// spreading the remainder over the first n%parts spans. Every index of
// [0, n) appears in exactly one of the parts spans; spans may be empty when
// n < parts.
func SplitSpan(n, parts, i int) Span {
	base, rem := n/parts, n%parts
	start := i*base + min(i, rem)
	length := base
	if i < rem {
		length++
	}

	return Span{Start: start, Stop: start + length}
}

// HostRank identifies the owner of a fine parameter slice: a physical host
// and a rank within it.
type HostRank struct {
	Host, Rank int
}

// RankFineSlice describes one rank's parameter assignment: the block it
// evaluates Jacobian columns for (ParamSpan) and the fine slice it uniquely
// owns (FineSpan), both in global parameter coordinates.
type RankFineSlice struct {
	Rank      int
	ParamSpan Span
	FineSpan  Span
}

// FineInfo is the diagnostics/checkpointing view of the fine parameter
// partition: every rank's slices grouped by host, plus the owner of each
// global fine parameter index.
type FineInfo struct {
	SlicesByHost [][]RankFineSlice
	Owners       map[int]HostRank
}
