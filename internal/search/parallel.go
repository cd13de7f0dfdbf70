package search

import (
	"golang.org/x/sync/errgroup"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

// searchParallel scores every root move with a full window on its own clone
// of the position. The first move with the best score wins, which matches
// the sequential search.
func (s *Searcher) searchParallel(moves []Move, depth int) (Result, Error) {
	scores := make([]int, len(moves))
	nodes := make([]int, len(moves))
	evaluations := make([]int, len(moves))

	workerOptions := s.options
	workerOptions.Workers = 1
	workerOptions.debugSearchTree = nil

	group := errgroup.Group{}
	group.SetLimit(s.options.Workers)

	for i := range moves {
		i := i
		worker := NewSearcher(SilentLogger, s.Game.Clone(), workerOptions)
		group.Go(func() error {
			score, err := worker.evaluateMove(moves[i], -RootBound, RootBound, depth)
			scores[i] = score
			nodes[i] = worker.Nodes
			evaluations[i] = worker.DebugTotalEvaluations
			if !IsNil(err) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{Move: Empty[Move]()}, Wrap(err)
	}

	best := 0
	for i := range moves {
		if scores[i] > scores[best] {
			best = i
		}
		s.Nodes += nodes[i]
		s.DebugTotalEvaluations += evaluations[i]
	}

	return Result{Move: Some(moves[best]), Score: scores[best], Nodes: s.Nodes}, NilError
}
