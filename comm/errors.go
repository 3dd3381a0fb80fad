// Package comm: sentinel error set. All public operations return these
// sentinels (possibly wrapped with context at outer boundaries); callers
// match them via errors.Is.

package comm

import "errors"

var (
	// ErrWorldSize is returned when a World is requested with a
	// non-positive number of ranks.
	ErrWorldSize = errors.New("comm: world size must be positive")

	// ErrEmptyGroup is returned when a Group is requested with no members.
	ErrEmptyGroup = errors.New("comm: group must have at least one member")

	// ErrRankRange is returned when a rank lies outside [0, world size).
	ErrRankRange = errors.New("comm: rank out of range")

	// ErrDuplicateRank is returned when a Group member list repeats a rank.
	ErrDuplicateRank = errors.New("comm: duplicate rank in group")

	// ErrNotMember is returned when a collective is invoked by, or rooted
	// at, a rank that does not belong to the group.
	ErrNotMember = errors.New("comm: rank is not a member of the group")

	// ErrLengthMismatch is returned when vector contributions to a
	// collective do not all have the same length.
	ErrLengthMismatch = errors.New("comm: vector length mismatch")
)
