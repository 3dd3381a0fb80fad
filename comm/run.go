package comm

import "golang.org/x/sync/errgroup"

// Run creates a World of the given size and drives fn once per rank, each
// on its own goroutine, mirroring one-process-per-rank execution. It blocks
// until every rank returns and reports the first error.
//
// fn must follow the collective calling contract: if one rank returns early
// with an error while others are blocked inside a collective, those ranks
// deadlock. Arrange rank bodies so that failures happen symmetrically
// (typically before the first collective) or not at all.
func Run(size int, fn func(rank int, w *World) error) error {
	w, err := NewWorld(size)
	if err != nil {
		return err
	}

	var eg errgroup.Group
	for rank := 0; rank < size; rank++ {
		rank := rank
		eg.Go(func() error { return fn(rank, w) })
	}

	return eg.Wait()
}
