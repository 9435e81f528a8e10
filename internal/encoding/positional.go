package encoding

import (
	"fmt"
	"sync"

	"gene/internal/distance"
	"gene/internal/topology"

	"gonum.org/v1/gonum/mat"
)

// PositionalDecoder derives each weight as the distance between the
// positions of its source and target neurons. Neurons are indexed
// globally, input layer first.
type PositionalDecoder struct {
	topo     topology.Topology
	d        int
	distance distance.Function
	size     int
}

func NewPositionalDecoder(t topology.Topology, d int, fn distance.Function) (*PositionalDecoder, error) {
	size, err := PositionalSize(t, d)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: no distance function resolved", ErrUnknownDistance)
	}
	return &PositionalDecoder{topo: t, d: d, distance: fn, size: size}, nil
}

func (p *PositionalDecoder) Size() int {
	return p.size
}

func (p *PositionalDecoder) Decode(genome []float64) (Params, error) {
	if err := checkLength(genome, p.size); err != nil {
		return Params{}, err
	}

	// The whole position table must exist before any transition reads it.
	positions := p.positions(genome)
	biases := genome[p.topo.TotalNeurons()*p.d:]

	transitions := p.topo.Transitions()
	layers := make([]Layer, len(transitions))
	if len(transitions) == 1 {
		layers[0] = p.decodeTransition(positions, biases, transitions[0])
		return Params{Layers: layers}, nil
	}

	var wg sync.WaitGroup
	wg.Add(len(transitions))
	for i, tr := range transitions {
		i, tr := i, tr
		go func() {
			defer wg.Done()
			layers[i] = p.decodeTransition(positions, biases, tr)
		}()
	}
	wg.Wait()
	return Params{Layers: layers}, nil
}

func (p *PositionalDecoder) decodeTransition(positions *mat.Dense, biases []float64, tr topology.Transition) Layer {
	src := positions.Slice(tr.Src.Start, tr.Src.End, 0, p.d).(*mat.Dense)
	tgt := positions.Slice(tr.Target.Start, tr.Target.End, 0, p.d).(*mat.Dense)
	return Layer{
		Name:    layerName(tr.Index),
		Weights: distance.Pairwise(p.distance, src, tgt),
		Bias:    sliceBias(biases, tr),
	}
}

// positions copies the position block into a TotalNeurons x d table.
func (p *PositionalDecoder) positions(genome []float64) *mat.Dense {
	n := p.topo.TotalNeurons()
	block := make([]float64, n*p.d)
	copy(block, genome[:n*p.d])
	return mat.NewDense(n, p.d, block)
}

// NeuronPosition is one row of the neuron -> position table.
type NeuronPosition struct {
	Index    int       `json:"index"`
	Layer    int       `json:"layer"`
	Position []float64 `json:"position"`
}

// PositionTable exposes the neuron embedding of a positional genome,
// mostly for plotting networks with d of 2 or 3.
func PositionTable(genome []float64, cfg Config) ([]NeuronPosition, error) {
	if cfg.Scheme != Positional {
		return nil, fmt.Errorf("%w: position table requires the positional scheme, got %s", ErrUnknownScheme, cfg.Scheme)
	}
	decoder, err := NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	p := decoder.(*PositionalDecoder)
	if err := checkLength(genome, p.size); err != nil {
		return nil, err
	}

	positions := p.positions(genome)
	out := make([]NeuronPosition, p.topo.TotalNeurons())
	for i := range out {
		layer, _ := p.topo.LayerOf(i)
		out[i] = NeuronPosition{
			Index:    i,
			Layer:    layer,
			Position: append([]float64(nil), positions.RawRowView(i)...),
		}
	}
	return out, nil
}
