package neural

import (
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/zobrist"
)

// Evaluator scores a position from white's point of view. Higher is better
// for white no matter who is to move.
type Evaluator interface {
	Evaluate(g *GameState) (float64, Error)
}

type EvaluatorFunc func(g *GameState) (float64, Error)

func (f EvaluatorFunc) Evaluate(g *GameState) (float64, Error) {
	return f(g)
}

type ModelEvaluator struct {
	model *Model
	cache *zobrist.TranspositionTable[float64]
}

var _ Evaluator = (*ModelEvaluator)(nil)

func NewModelEvaluator(model *Model, cacheSize int) *ModelEvaluator {
	return &ModelEvaluator{
		model: model,
		cache: zobrist.NewTranspositionTable[float64](cacheSize),
	}
}

func (e *ModelEvaluator) Evaluate(g *GameState) (float64, Error) {
	hash := g.ZobristHash()
	if cached := e.cache.Get(hash, 0); cached.HasValue() {
		return cached.Value(), NilError
	}

	planes, err := PlanesFromGame(g)
	if !IsNil(err) {
		return 0, err
	}

	score := e.model.Predict(&planes)
	e.cache.Put(hash, 0, score)
	return score, NilError
}

func (e *ModelEvaluator) Stats() string {
	return e.cache.Stats() + ", buffers: " + e.model.PoolStats().String()
}
