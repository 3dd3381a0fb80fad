// Package shmem manages host-scoped shared float64 segments with explicit
// lifetime control.
//
// A segment is a buffer owned collectively by the ranks co-located on one
// host: exactly one rank (the host-group root) performs the allocation, all
// co-located ranks attach, and every attaching rank must release its handle
// exactly once. Releases follow a scoped acquire/release discipline: pair
// every Create with a Cleanup on every exit path, including error paths.
// Double release is rejected with ErrSegmentReleased; nothing is reclaimed
// automatically.
//
// Writes into a shared segment follow a single-writer discipline: only the
// segment root writes, then Sync orders the write before co-located reads.
//
// A Tracker counts live segments and bytes so callers can assert the
// allocate/release balance that the distributed engine guarantees per
// optimizer iteration.
package shmem
