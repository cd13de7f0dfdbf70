package search

import (
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

// MoveBook supplies prepared moves for known positions.
type MoveBook interface {
	Lookup(g *GameState) Optional[Move]
}

// SelectMove consults the book first and falls back to a fixed-depth search.
// A nil book is the same as an empty one.
func SelectMove(logger Logger, g *GameState, depth int, book MoveBook, options SearcherOptions) (Optional[Move], Error) {
	if book != nil {
		if move := book.Lookup(g); move.HasValue() {
			logger.Println("book move", move.Value().String())
			return move, NilError
		}
	}

	searcher := NewSearcher(logger, g, options)
	result, err := searcher.Search(depth)
	if !IsNil(err) {
		return Empty[Move](), err
	}
	return result.Move, NilError
}
