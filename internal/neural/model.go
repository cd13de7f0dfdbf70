package neural

import (
	"encoding/json"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	. "github.com/cricklet/negachess/internal/helpers"
)

type Activation string

const (
	Relu    Activation = "relu"
	Sigmoid Activation = "sigmoid"
	Linear  Activation = "linear"
)

func (a Activation) apply(x float64) float64 {
	switch a {
	case Relu:
		return math.Max(0, x)
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	}
	return x
}

// Layer is a dense layer. Weights has one row per output.
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation Activation  `json:"activation"`

	weights *mat.Dense
	bias    *mat.VecDense
}

func (l *Layer) Inputs() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

func (l *Layer) Outputs() int {
	return len(l.Weights)
}

func (l *Layer) build() {
	data := make([]float64, 0, l.Outputs()*l.Inputs())
	for _, row := range l.Weights {
		data = append(data, row...)
	}
	l.weights = mat.NewDense(l.Outputs(), l.Inputs(), data)
	l.bias = mat.NewVecDense(len(l.Bias), append([]float64(nil), l.Bias...))
}

// activations holds the vectors of one forward pass.
type activations struct {
	input  *mat.VecDense
	layers []*mat.VecDense
}

type Model struct {
	Layers []Layer `json:"layers"`

	getBuf  func() *activations
	freeBuf func(*activations)
	stats   func() PoolStats
}

func ParseModel(data []byte) (*Model, Error) {
	model := &Model{}
	err := json.Unmarshal(data, model)
	if err != nil {
		return nil, Wrap(err)
	}

	verifyErr := model.verify()
	if !IsNil(verifyErr) {
		return nil, verifyErr
	}

	for i := range model.Layers {
		model.Layers[i].build()
	}
	model.getBuf, model.freeBuf, model.stats = CreatePool(
		func() activations {
			result := activations{input: mat.NewVecDense(InputSize, nil)}
			for i := range model.Layers {
				result.layers = append(result.layers, mat.NewVecDense(model.Layers[i].Outputs(), nil))
			}
			return result
		},
		func(*activations) {})

	return model, NilError
}

func LoadModel(path string) (*Model, Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Wrap(err)
	}
	return ParseModel(data)
}

func (m *Model) verify() Error {
	if len(m.Layers) == 0 {
		return Errorf("model has no layers")
	}

	inputs := InputSize
	for i := range m.Layers {
		layer := &m.Layers[i]
		if layer.Outputs() == 0 {
			return Errorf("layer %v has no outputs", i)
		}
		if len(layer.Bias) != layer.Outputs() {
			return Errorf("layer %v has %v biases for %v outputs", i, len(layer.Bias), layer.Outputs())
		}
		for _, row := range layer.Weights {
			if len(row) != inputs {
				return Errorf("layer %v expects %v inputs, got a row of %v", i, inputs, len(row))
			}
		}
		switch layer.Activation {
		case Relu, Sigmoid, Linear:
		case "":
			layer.Activation = Linear
		default:
			return Errorf("layer %v has unknown activation %q", i, layer.Activation)
		}
		inputs = layer.Outputs()
	}

	if inputs != 1 {
		return Errorf("model must end in a single output, got %v", inputs)
	}
	return NilError
}

// Predict runs the forward pass over flattened planes.
func (m *Model) Predict(planes *Planes) float64 {
	acts := m.getBuf()
	defer m.freeBuf(acts)

	planes.Flatten(acts.input.RawVector().Data)

	in := acts.input
	for i := range m.Layers {
		layer := &m.Layers[i]
		out := acts.layers[i]
		out.MulVec(layer.weights, in)
		out.AddVec(out, layer.bias)
		for j := 0; j < out.Len(); j++ {
			out.SetVec(j, layer.Activation.apply(out.AtVec(j)))
		}
		in = out
	}

	return in.AtVec(0)
}

func (m *Model) PoolStats() PoolStats {
	return m.stats()
}
