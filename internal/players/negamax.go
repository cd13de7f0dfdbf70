package players

import (
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
)

type NegamaxPlayer struct {
	Logger  Logger
	Depth   int
	Book    search.MoveBook
	Options search.SearcherOptions
}

var _ MoveSource = (*NegamaxPlayer)(nil)

func (p *NegamaxPlayer) SelectMove(g *GameState) (Optional[Move], Error) {
	return search.SelectMove(p.Logger, g, p.Depth, p.Book, p.Options)
}

func (p *NegamaxPlayer) Close() {}
