package nn

import (
	"fmt"
	"math"

	"gene/internal/encoding"

	"gonum.org/v1/gonum/mat"
)

// Policy is a decoded feed-forward network ready to be evaluated.
type Policy struct {
	params      encoding.Params
	activations []ActivationFunc
	names       []string
}

func NewPolicy(params encoding.Params, arch Architecture) (*Policy, error) {
	if len(params.Layers) == 0 {
		return nil, fmt.Errorf("policy requires at least one layer")
	}
	for i, layer := range params.Layers {
		if layer.Weights == nil {
			return nil, fmt.Errorf("%w: layer %d has no weights", encoding.ErrInvalidTopology, i)
		}
	}
	shapes := params.Shapes()
	for i := 1; i < len(shapes); i++ {
		if shapes[i].In != shapes[i-1].Out {
			return nil, fmt.Errorf("layer %d expects %d inputs, layer %d produces %d", i, shapes[i].In, i-1, shapes[i-1].Out)
		}
	}

	names, err := arch.ActivationNames(len(params.Layers))
	if err != nil {
		return nil, err
	}
	activations := make([]ActivationFunc, len(names))
	for i, name := range names {
		fn, err := GetActivation(name)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		activations[i] = fn
	}
	return &Policy{params: params, activations: activations, names: names}, nil
}

func (p *Policy) InputSize() int {
	r, _ := p.params.Layers[0].Weights.Dims()
	return r
}

func (p *Policy) OutputSize() int {
	_, c := p.params.Layers[len(p.params.Layers)-1].Weights.Dims()
	return c
}

func (p *Policy) Activations() []string {
	return append([]string(nil), p.names...)
}

// Forward computes act(x*W + b) layer by layer.
func (p *Policy) Forward(input []float64) ([]float64, error) {
	if len(input) != p.InputSize() {
		return nil, fmt.Errorf("input has %d features, policy expects %d", len(input), p.InputSize())
	}

	x := mat.NewVecDense(len(input), append([]float64(nil), input...))
	for i, layer := range p.params.Layers {
		_, out := layer.Weights.Dims()
		y := mat.NewVecDense(out, nil)
		y.MulVec(layer.Weights.T(), x)
		act := p.activations[i]
		for j := 0; j < out; j++ {
			y.SetVec(j, act(y.AtVec(j)+layer.Bias[j]))
		}
		x = y
	}
	return append([]float64(nil), x.RawVector().Data...), nil
}

// Act runs Forward and clamps each output to [-spread, spread], the
// action range most simulated controllers accept.
func (p *Policy) Act(observation []float64, spread float64) ([]float64, error) {
	out, err := p.Forward(observation)
	if err != nil {
		return nil, err
	}
	limit := math.Abs(spread)
	for i, v := range out {
		out[i] = math.Max(-limit, math.Min(limit, v))
	}
	return out, nil
}

func Forward(params encoding.Params, arch Architecture, input []float64) ([]float64, error) {
	policy, err := NewPolicy(params, arch)
	if err != nil {
		return nil, err
	}
	return policy.Forward(input)
}
