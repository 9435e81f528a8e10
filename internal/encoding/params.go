package encoding

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Layer holds one transition's parameters. Weights has one row per
// source neuron and one column per target neuron.
type Layer struct {
	Name    string
	Weights *mat.Dense
	Bias    []float64
}

// Params is the decoded network. Slice order is forward-pass order.
type Params struct {
	Layers []Layer
}

type Shape struct {
	In   int
	Out  int
	Bias int
}

// Shapes reports each layer's dimensions. A layer without weights has
// zero In and Out.
func (p Params) Shapes() []Shape {
	out := make([]Shape, len(p.Layers))
	for i, layer := range p.Layers {
		out[i] = Shape{Bias: len(layer.Bias)}
		if layer.Weights != nil {
			out[i].In, out[i].Out = layer.Weights.Dims()
		}
	}
	return out
}

// checkWeights reports the first layer that has no weight matrix.
func (p Params) checkWeights() error {
	for i, layer := range p.Layers {
		if layer.Weights == nil {
			return fmt.Errorf("%w: layer %d has no weights", ErrInvalidTopology, i)
		}
	}
	return nil
}

func (p Params) NumParameters() int {
	total := 0
	for _, shape := range p.Shapes() {
		total += shape.In*shape.Out + shape.Bias
	}
	return total
}

func layerName(i int) string {
	return fmt.Sprintf("Dense_%d", i)
}
