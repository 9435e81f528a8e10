package encoding

import (
	"fmt"

	"gene/internal/topology"

	"gonum.org/v1/gonum/mat"
)

// DirectDecoder reads every weight and bias as its own gene: all weight
// blocks first (row-major, transition order), then all bias blocks.
type DirectDecoder struct {
	topo topology.Topology
	size int
}

func NewDirectDecoder(t topology.Topology) *DirectDecoder {
	return &DirectDecoder{topo: t, size: DirectSize(t)}
}

func (d *DirectDecoder) Size() int {
	return d.size
}

func (d *DirectDecoder) Decode(genome []float64) (Params, error) {
	if err := checkLength(genome, d.size); err != nil {
		return Params{}, err
	}

	weights, biases := genome[:d.topo.TotalWeights()], genome[d.topo.TotalWeights():]
	layers := make([]Layer, d.topo.NumTransitions())
	for i, tr := range d.topo.Transitions() {
		w := make([]float64, tr.WeightLength)
		copy(w, weights[tr.WeightOffset:tr.WeightOffset+tr.WeightLength])
		layers[i] = Layer{
			Name:    layerName(i),
			Weights: mat.NewDense(tr.In, tr.Out, w),
			Bias:    sliceBias(biases, tr),
		}
	}
	return Params{Layers: layers}, nil
}

// EncodeDirect lays params out as a direct genome. It is the inverse of
// DirectDecoder.Decode for the topology implied by the layer shapes.
func EncodeDirect(p Params) ([]float64, error) {
	if len(p.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidTopology)
	}
	if err := p.checkWeights(); err != nil {
		return nil, err
	}
	shapes := p.Shapes()
	dims := []int{shapes[0].In}
	for i, shape := range shapes {
		if shape.In != dims[len(dims)-1] {
			return nil, fmt.Errorf("%w: layer %d expects %d inputs, previous layer has %d outputs", ErrInvalidTopology, i, shape.In, dims[len(dims)-1])
		}
		if shape.Bias != shape.Out {
			return nil, fmt.Errorf("%w: layer %d bias length %d != %d outputs", ErrInvalidTopology, i, shape.Bias, shape.Out)
		}
		dims = append(dims, shape.Out)
	}
	topo, err := topology.New(dims)
	if err != nil {
		return nil, err
	}

	genome := make([]float64, 0, DirectSize(topo))
	for _, layer := range p.Layers {
		r, _ := layer.Weights.Dims()
		for row := 0; row < r; row++ {
			genome = append(genome, layer.Weights.RawRowView(row)...)
		}
	}
	for _, layer := range p.Layers {
		genome = append(genome, layer.Bias...)
	}
	return genome, nil
}

func sliceBias(biases []float64, tr topology.Transition) []float64 {
	out := make([]float64, tr.BiasLength)
	copy(out, biases[tr.BiasOffset:tr.BiasOffset+tr.BiasLength])
	return out
}
