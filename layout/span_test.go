package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfit/distcalc/layout"
)

func TestSpan_Basics(t *testing.T) {
	s := layout.Span{Start: 2, Stop: 5}
	require.Equal(t, 3, s.Len())
	require.False(t, s.IsEmpty())
	require.True(t, s.Contains(2))
	require.True(t, s.Contains(4))
	require.False(t, s.Contains(5))
	require.False(t, s.Contains(1))

	empty := layout.Span{Start: 3, Stop: 3}
	require.Equal(t, 0, empty.Len())
	require.True(t, empty.IsEmpty())
	require.False(t, empty.Contains(3))
}

func TestSplitSpan_TilesExactly(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 10, 13, 100} {
		for _, parts := range []int{1, 2, 3, 4, 7} {
			prev := 0
			for i := 0; i < parts; i++ {
				s := layout.SplitSpan(n, parts, i)
				assert.Equal(t, prev, s.Start, "n=%d parts=%d i=%d: spans must be contiguous", n, parts, i)
				assert.GreaterOrEqual(t, s.Len(), 0, "n=%d parts=%d i=%d", n, parts, i)
				prev = s.Stop
			}
			assert.Equal(t, n, prev, "n=%d parts=%d: spans must cover [0, n)", n, parts)
		}
	}
}

func TestSplitSpan_BalancedLengths(t *testing.T) {
	// 13 over 4: lengths 4,3,3,3 with the remainder on the first span.
	require.Equal(t, layout.Span{Start: 0, Stop: 4}, layout.SplitSpan(13, 4, 0))
	require.Equal(t, layout.Span{Start: 4, Stop: 7}, layout.SplitSpan(13, 4, 1))
	require.Equal(t, layout.Span{Start: 7, Stop: 10}, layout.SplitSpan(13, 4, 2))
	require.Equal(t, layout.Span{Start: 10, Stop: 13}, layout.SplitSpan(13, 4, 3))

	// Fewer indices than parts: trailing spans are empty, never negative.
	require.Equal(t, layout.Span{Start: 0, Stop: 1}, layout.SplitSpan(2, 3, 0))
	require.Equal(t, layout.Span{Start: 1, Stop: 2}, layout.SplitSpan(2, 3, 1))
	require.Equal(t, layout.Span{Start: 2, Stop: 2}, layout.SplitSpan(2, 3, 2))
}
