package players

import (
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/neural"
)

type NeuralPlayer struct {
	Logger    Logger
	ModelPath string
	Depth     int
	CacheSize int

	engine *neural.Engine
}

var _ MoveSource = (*NeuralPlayer)(nil)

// NewNeuralPlayerWithEvaluator skips model loading, e.g. for a hand-written
// evaluator.
func NewNeuralPlayerWithEvaluator(logger Logger, evaluator neural.Evaluator, depth int) *NeuralPlayer {
	return &NeuralPlayer{
		Logger: logger,
		Depth:  depth,
		engine: neural.NewEngine(logger, evaluator, depth),
	}
}

func (p *NeuralPlayer) load() Error {
	if p.ModelPath == "" {
		return Errorf("neural player needs a model path")
	}

	model, err := neural.LoadModel(p.ModelPath)
	if !IsNil(err) {
		return err
	}
	p.Logger.Println("loaded model", p.ModelPath, "with", len(model.Layers), "layers")

	p.engine = neural.NewEngine(p.Logger, neural.NewModelEvaluator(model, p.CacheSize), p.Depth)
	return NilError
}

func (p *NeuralPlayer) SelectMove(g *GameState) (Optional[Move], Error) {
	if p.engine == nil {
		err := p.load()
		if !IsNil(err) {
			return Empty[Move](), err
		}
	}

	move, _, err := p.engine.SelectMove(g)
	return move, err
}

func (p *NeuralPlayer) Close() {
	p.engine = nil
}
