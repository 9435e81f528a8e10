// Package learned provides distance functions whose metric is itself an
// evolved network.
package learned

import (
	"fmt"

	"gene/internal/encoding"
	"gene/internal/nn"
	"gene/internal/topology"
)

// NetDistance scores a pair of positions by feeding their concatenation
// [a..., b...] through a directly encoded network with a single output.
type NetDistance struct {
	policy *nn.Policy
	d      int
}

// NewNetDistance decodes genome as a direct genome for dims. dims[0] must
// be even (2*d inputs) and the last entry must be 1.
func NewNetDistance(genome []float64, dims []int, arch nn.Architecture) (*NetDistance, error) {
	topo, err := topology.New(dims)
	if err != nil {
		return nil, err
	}
	if dims[0]%2 != 0 {
		return nil, fmt.Errorf("%w: distance network input %d is not 2*d", encoding.ErrInvalidTopology, dims[0])
	}
	if dims[len(dims)-1] != 1 {
		return nil, fmt.Errorf("%w: distance network must have one output, got %d", encoding.ErrInvalidTopology, dims[len(dims)-1])
	}

	params, err := encoding.NewDirectDecoder(topo).Decode(genome)
	if err != nil {
		return nil, err
	}
	policy, err := nn.NewPolicy(params, arch)
	if err != nil {
		return nil, err
	}
	return &NetDistance{policy: policy, d: dims[0] / 2}, nil
}

// Dimensionality is the position length the network was built for.
func (n *NetDistance) Dimensionality() int {
	return n.d
}

// Evaluate panics when len(a)+len(b) does not match the network input,
// matching the behaviour of slicing a mis-sized position table.
func (n *NetDistance) Evaluate(a, b []float64) float64 {
	input := make([]float64, 0, len(a)+len(b))
	input = append(input, a...)
	input = append(input, b...)
	out, err := n.policy.Forward(input)
	if err != nil {
		panic(fmt.Sprintf("learned distance: %v", err))
	}
	return out[0]
}
