package topology

import (
	"errors"
	"fmt"
)

var ErrInvalidTopology = errors.New("invalid topology")

// Range is a half-open interval [Start, End) over global neuron indexes.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Transition describes one source layer -> target layer pair and every
// offset needed to slice its parameters out of a genome.
type Transition struct {
	Index        int
	In           int
	Out          int
	Src          Range
	Target       Range
	WeightOffset int
	WeightLength int
	BiasOffset   int
	BiasLength   int
}

// Topology is an immutable feed-forward layer layout. Offsets are prefix
// sums computed once at construction.
type Topology struct {
	dims          []int
	layerOffsets  []int
	biasOffsets   []int
	weightOffsets []int
}

func New(dims []int) (Topology, error) {
	if len(dims) < 2 {
		return Topology{}, fmt.Errorf("%w: need at least 2 layer dimensions, got %d", ErrInvalidTopology, len(dims))
	}
	for i, dim := range dims {
		if dim <= 0 {
			return Topology{}, fmt.Errorf("%w: layer %d has non-positive size %d", ErrInvalidTopology, i, dim)
		}
	}

	t := Topology{
		dims:          append([]int(nil), dims...),
		layerOffsets:  make([]int, len(dims)+1),
		biasOffsets:   make([]int, len(dims)),
		weightOffsets: make([]int, len(dims)),
	}
	for i, dim := range t.dims {
		t.layerOffsets[i+1] = t.layerOffsets[i] + dim
	}
	// The input layer carries no bias, so bias bookkeeping starts at layer 1.
	for i := 1; i < len(t.dims); i++ {
		t.biasOffsets[i] = t.biasOffsets[i-1] + t.dims[i]
	}
	for i := 0; i < len(t.dims)-1; i++ {
		t.weightOffsets[i+1] = t.weightOffsets[i] + t.dims[i]*t.dims[i+1]
	}
	return t, nil
}

// MustNew is New for literal layouts in tests and defaults.
func MustNew(dims ...int) Topology {
	t, err := New(dims)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Topology) Dims() []int {
	return append([]int(nil), t.dims...)
}

func (t Topology) Layers() int {
	return len(t.dims)
}

func (t Topology) NumTransitions() int {
	if len(t.dims) == 0 {
		return 0
	}
	return len(t.dims) - 1
}

func (t Topology) TotalNeurons() int {
	if len(t.layerOffsets) == 0 {
		return 0
	}
	return t.layerOffsets[len(t.dims)]
}

// NonInputNeurons counts every neuron that owns a bias.
func (t Topology) NonInputNeurons() int {
	if len(t.dims) == 0 {
		return 0
	}
	return t.TotalNeurons() - t.dims[0]
}

func (t Topology) TotalWeights() int {
	if len(t.dims) == 0 {
		return 0
	}
	return t.weightOffsets[len(t.dims)-1]
}

// LayerOffset is the global index of the first neuron of layer i.
func (t Topology) LayerOffset(i int) int {
	return t.layerOffsets[i]
}

// BiasOffset is sum(dims[1..i]), the start of transition i's biases.
func (t Topology) BiasOffset(i int) int {
	return t.biasOffsets[i]
}

func (t Topology) WeightOffset(i int) int {
	return t.weightOffsets[i]
}

func (t Topology) Transition(i int) Transition {
	in, out := t.dims[i], t.dims[i+1]
	offset := t.layerOffsets[i]
	return Transition{
		Index:        i,
		In:           in,
		Out:          out,
		Src:          Range{Start: offset, End: offset + in},
		Target:       Range{Start: offset + in, End: offset + in + out},
		WeightOffset: t.weightOffsets[i],
		WeightLength: in * out,
		BiasOffset:   t.biasOffsets[i],
		BiasLength:   out,
	}
}

func (t Topology) Transitions() []Transition {
	out := make([]Transition, t.NumTransitions())
	for i := range out {
		out[i] = t.Transition(i)
	}
	return out
}

// LayerOf returns the layer that owns the global neuron index.
func (t Topology) LayerOf(neuron int) (int, bool) {
	for i := range t.dims {
		if neuron >= t.layerOffsets[i] && neuron < t.layerOffsets[i+1] {
			return i, true
		}
	}
	return 0, false
}
