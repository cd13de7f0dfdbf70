package players

import (
	"time"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/stockfish"
)

type StockfishPlayer struct {
	Logger   Logger
	MoveTime time.Duration

	options []stockfish.StockfishRunnerOption
	runner  *stockfish.StockfishRunner
}

var _ MoveSource = (*StockfishPlayer)(nil)

// NewStockfishPlayer does not start the engine; the process is launched on
// the first SelectMove.
func NewStockfishPlayer(logger Logger, moveTime time.Duration, options ...stockfish.StockfishRunnerOption) *StockfishPlayer {
	return &StockfishPlayer{
		Logger:   logger,
		MoveTime: moveTime,
		options:  append([]stockfish.StockfishRunnerOption{stockfish.WithLogger(logger)}, options...),
	}
}

func (p *StockfishPlayer) SelectMove(g *GameState) (Optional[Move], Error) {
	if p.runner == nil {
		p.runner = stockfish.NewStockfishRunner(p.options...)
	}

	err := p.runner.SetupPosition(Position{Fen: g.FenString()})
	if !IsNil(err) {
		return Empty[Move](), err
	}

	result, _, err := p.runner.Search(stockfish.SearchParams{Duration: Some(p.MoveTime)})
	if !IsNil(err) {
		return Empty[Move](), err
	}
	if result.IsEmpty() {
		return Empty[Move](), NilError
	}

	move, err := g.MoveFromString(result.Value())
	if !IsNil(err) {
		return Empty[Move](), Join(Errorf("stockfish answered with %v", result.Value()), err)
	}
	return Some(move), NilError
}

func (p *StockfishPlayer) Close() {
	if p.runner != nil {
		p.runner.Close()
		p.runner = nil
	}
}
