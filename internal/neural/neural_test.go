package neural

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cricklet/negachess/internal/evaluation"
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPlane(plane [8][8]int8) int {
	count := 0
	for _, row := range plane {
		for _, v := range row {
			count += int(v)
		}
	}
	return count
}

func TestPlanesStartPosition(t *testing.T) {
	g := NewGameState()
	planes, err := PlanesFromGame(g)
	require.True(t, IsNil(err), err)

	// white pawns on the second rank, black pawns on the seventh
	assert.Equal(t, [8]int8{1, 1, 1, 1, 1, 1, 1, 1}, planes[0][6])
	assert.Equal(t, [8]int8{1, 1, 1, 1, 1, 1, 1, 1}, planes[6][1])

	assert.Equal(t, int8(1), planes[1][7][1]) // Nb1
	assert.Equal(t, int8(1), planes[3][7][0]) // Ra1
	assert.Equal(t, int8(1), planes[4][7][3]) // Qd1
	assert.Equal(t, int8(1), planes[5][7][4]) // Ke1
	assert.Equal(t, int8(1), planes[11][0][4]) // Ke8

	for i := 0; i < 12; i++ {
		expected := map[int]int{0: 8, 1: 2, 2: 2, 3: 2, 4: 1, 5: 1}[i%6]
		assert.Equal(t, expected, countPlane(planes[i]), "plane %v", i)
	}

	// third and fourth ranks for white, sixth and fifth for black
	assert.Equal(t, 16, countPlane(planes[12]))
	assert.Equal(t, [8]int8{1, 1, 1, 1, 1, 1, 1, 1}, planes[12][4])
	assert.Equal(t, [8]int8{1, 1, 1, 1, 1, 1, 1, 1}, planes[12][5])
	assert.Equal(t, 16, countPlane(planes[13]))
	assert.Equal(t, [8]int8{1, 1, 1, 1, 1, 1, 1, 1}, planes[13][2])
	assert.Equal(t, [8]int8{1, 1, 1, 1, 1, 1, 1, 1}, planes[13][3])

	assert.Equal(t, StartFen, g.FenString())
}

func TestPlanesIgnoreSideToMove(t *testing.T) {
	white, err := GamestateFromFenString("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	require.True(t, IsNil(err), err)
	black, err := GamestateFromFenString("4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")
	require.True(t, IsNil(err), err)

	whitePlanes, err := PlanesFromGame(white)
	require.True(t, IsNil(err), err)
	blackPlanes, err := PlanesFromGame(black)
	require.True(t, IsNil(err), err)

	assert.Equal(t, whitePlanes, blackPlanes)
}

type layerJson struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// pawnCountModel returns white pawns minus black pawns.
func pawnCountModel(t *testing.T) []byte {
	weights := make([]float64, InputSize)
	for i := 0; i < 64; i++ {
		weights[i] = 1
		weights[6*64+i] = -1
	}

	data, err := json.Marshal(map[string][]layerJson{
		"layers": {
			{Weights: [][]float64{weights}, Bias: []float64{0}, Activation: "linear"},
		},
	})
	require.NoError(t, err)
	return data
}

func TestModelPredict(t *testing.T) {
	model, err := ParseModel(pawnCountModel(t))
	require.True(t, IsNil(err), err)

	g, err := GamestateFromFenString("4k3/pp6/8/8/8/8/PPP5/4K3 w - - 0 1")
	require.True(t, IsNil(err), err)

	planes, err := PlanesFromGame(g)
	require.True(t, IsNil(err), err)
	assert.InDelta(t, 1.0, model.Predict(&planes), 1e-9)
}

func TestModelHiddenLayers(t *testing.T) {
	hidden := make([][]float64, 2)
	hidden[0] = make([]float64, InputSize)
	hidden[1] = make([]float64, InputSize)
	for i := 0; i < 64; i++ {
		hidden[0][i] = 1
		hidden[1][6*64+i] = 1
	}

	data, err := json.Marshal(map[string][]layerJson{
		"layers": {
			{Weights: hidden, Bias: []float64{0, -10}, Activation: "relu"},
			{Weights: [][]float64{{1, 1}}, Bias: []float64{-8}, Activation: "sigmoid"},
		},
	})
	require.NoError(t, err)

	model, parseErr := ParseModel(data)
	require.True(t, IsNil(parseErr), parseErr)

	rows, cols := model.Layers[0].weights.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, InputSize, cols)
	assert.Equal(t, -10.0, model.Layers[0].bias.AtVec(1))

	// relu(8), relu(8-10)=0, sigmoid(8+0-8)
	planes, parseErr := PlanesFromGame(NewGameState())
	require.True(t, IsNil(parseErr), parseErr)
	assert.InDelta(t, 0.5, model.Predict(&planes), 1e-9)

	for i := 0; i < 10; i++ {
		model.Predict(&planes)
	}
	// one set of layer vectors serves every sequential prediction
	assert.Contains(t, model.PoolStats().String(), "creates: 1")
}

func TestModelValidation(t *testing.T) {
	_, err := ParseModel([]byte(`{"layers": []}`))
	assert.True(t, err.Contains("no layers"), err)

	_, err = ParseModel([]byte(`{"layers": [{"weights": [[1, 2]], "bias": [0], "activation": "relu"}]}`))
	assert.True(t, err.Contains("expects 896 inputs"), err)

	_, err = ParseModel([]byte(`not json`))
	assert.False(t, IsNil(err))

	row := make([]float64, InputSize)
	data, _ := json.Marshal(map[string][]layerJson{
		"layers": {{Weights: [][]float64{row}, Bias: []float64{0, 0}, Activation: "relu"}},
	})
	_, err = ParseModel(data)
	assert.True(t, err.Contains("biases"), err)

	data, _ = json.Marshal(map[string][]layerJson{
		"layers": {{Weights: [][]float64{row}, Bias: []float64{0}, Activation: "tanh"}},
	})
	_, err = ParseModel(data)
	assert.True(t, err.Contains("unknown activation"), err)

	data, _ = json.Marshal(map[string][]layerJson{
		"layers": {{Weights: [][]float64{row, row}, Bias: []float64{0, 0}}},
	})
	_, err = ParseModel(data)
	assert.True(t, err.Contains("single output"), err)
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, pawnCountModel(t), 0o644))

	model, err := LoadModel(path)
	require.True(t, IsNil(err), err)
	assert.Len(t, model.Layers, 1)
	assert.Equal(t, Linear, model.Layers[0].Activation)

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, IsNil(err))
}

func TestModelEvaluatorCaches(t *testing.T) {
	model, err := ParseModel(pawnCountModel(t))
	require.True(t, IsNil(err), err)

	evaluator := NewModelEvaluator(model, 0)
	g := NewGameState()

	first, err := evaluator.Evaluate(g)
	require.True(t, IsNil(err), err)
	second, err := evaluator.Evaluate(g)
	require.True(t, IsNil(err), err)

	assert.Equal(t, first, second)
	assert.Contains(t, evaluator.Stats(), "hits: 1")
}

var materialEvaluator = EvaluatorFunc(func(g *GameState) (float64, Error) {
	b := g.CreateBitboards()
	return float64(evaluation.EvaluatePieces(&b, White) - evaluation.EvaluatePieces(&b, Black)), NilError
})

func TestEngineMaximizesForWhite(t *testing.T) {
	g, err := GamestateFromFenString("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	require.True(t, IsNil(err), err)

	for _, depth := range []int{0, 1} {
		engine := NewEngine(SilentLogger, materialEvaluator, depth)
		move, score, err := engine.SelectMove(g)
		assert.True(t, IsNil(err), err)
		assert.Equal(t, "e4d5", move.Value().String())
		assert.Equal(t, 100.0, score.Value())
	}
	assert.Equal(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", g.FenString())
}

func TestEngineMinimizesForBlack(t *testing.T) {
	g, err := GamestateFromFenString("4k3/8/8/3q4/4P3/8/8/4K3 b - - 0 1")
	require.True(t, IsNil(err), err)

	engine := NewEngine(SilentLogger, materialEvaluator, DefaultDepth)
	move, score, err := engine.SelectMove(g)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "d5e4", move.Value().String())
	assert.Equal(t, -900.0, score.Value())
	assert.Greater(t, engine.Evaluations, 0)
}

func TestEngineNoMoves(t *testing.T) {
	g, err := GamestateFromFenString("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	require.True(t, IsNil(err), err)

	engine := NewEngine(SilentLogger, materialEvaluator, DefaultDepth)
	move, score, err := engine.SelectMove(g)
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
	assert.True(t, score.IsEmpty())
}

func TestEngineEvaluatorError(t *testing.T) {
	failing := EvaluatorFunc(func(g *GameState) (float64, Error) {
		return 0, Errorf("model unavailable")
	})

	g := NewGameState()
	engine := NewEngine(SilentLogger, failing, DefaultDepth)
	_, _, err := engine.SelectMove(g)
	assert.True(t, err.Contains("model unavailable"), err)
	assert.Equal(t, StartFen, g.FenString())
}
