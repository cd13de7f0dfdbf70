package neural

import (
	"math"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

const DefaultDepth = 1

// Engine picks moves by plain minimax over an absolute evaluator: white
// maximizes and black minimizes at every level, the root included.
type Engine struct {
	Logger    Logger
	Evaluator Evaluator
	Depth     int

	Evaluations int
}

func NewEngine(logger Logger, evaluator Evaluator, depth int) *Engine {
	if depth < 0 {
		depth = DefaultDepth
	}
	return &Engine{
		Logger:    logger,
		Evaluator: evaluator,
		Depth:     depth,
	}
}

func better(player Player, a, b float64) bool {
	if player == White {
		return a > b
	}
	return a < b
}

func worst(player Player) float64 {
	if player == White {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// SelectMove searches every root move to Depth further plies. The position is
// restored before returning.
func (e *Engine) SelectMove(g *GameState) (Optional[Move], Optional[float64], Error) {
	player := g.Player()

	bestMove := Empty[Move]()
	bestScore := worst(player)

	for _, move := range g.LegalMoves() {
		score, err := e.scoreMove(g, move, e.Depth)
		if !IsNil(err) {
			return Empty[Move](), Empty[float64](), err
		}

		if bestMove.IsEmpty() || better(player, score, bestScore) {
			bestMove = Some(move)
			bestScore = score
		}
	}

	if bestMove.IsEmpty() {
		return bestMove, Empty[float64](), NilError
	}

	e.Logger.Printf("neural %v %.4f (%v evaluations)", bestMove.Value(), bestScore, e.Evaluations)
	return bestMove, Some(bestScore), NilError
}

func (e *Engine) scoreMove(g *GameState, move Move, depth int) (returnScore float64, returnErr Error) {
	var update BoardUpdate
	err := g.PerformMove(move, &update)
	if !IsNil(err) {
		return 0, err
	}
	defer func() {
		returnErr = Join(returnErr, g.UndoUpdate(&update))
	}()

	return e.Minimax(g, depth)
}

func (e *Engine) Minimax(g *GameState, depth int) (float64, Error) {
	if depth == 0 || g.IsGameOver() {
		e.Evaluations++
		return e.Evaluator.Evaluate(g)
	}

	player := g.Player()
	best := worst(player)
	for _, move := range g.LegalMoves() {
		score, err := e.scoreMove(g, move, depth-1)
		if !IsNil(err) {
			return 0, err
		}
		if better(player, score, best) {
			best = score
		}
	}

	return best, NilError
}
