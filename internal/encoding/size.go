package encoding

import (
	"fmt"

	"gene/internal/topology"
)

// DirectSize is sum(in*out + out) over every transition.
func DirectSize(t topology.Topology) int {
	return t.TotalWeights() + t.NonInputNeurons()
}

// PositionalSize is dims[0]*d + sum(dims[1:])*(d+1). The position block
// ends at TotalNeurons()*d; biases follow.
func PositionalSize(t topology.Topology, d int) (int, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%w: d=%d", ErrInvalidDimensionality, d)
	}
	return t.TotalNeurons()*d + t.NonInputNeurons(), nil
}

func GenomeSize(t topology.Topology, scheme Scheme, d int) (int, error) {
	if t.Layers() < 2 {
		return 0, fmt.Errorf("%w: need at least 2 layer dimensions, got %d", ErrInvalidTopology, t.Layers())
	}
	switch scheme {
	case Direct:
		return DirectSize(t), nil
	case Positional:
		return PositionalSize(t, d)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
}

func (c Config) GenomeSize() (int, error) {
	return GenomeSize(c.Topology, c.Scheme, c.D)
}

func checkLength(genome []float64, want int) error {
	if len(genome) != want {
		return fmt.Errorf("%w: got %d genes, want %d", ErrGenomeLengthMismatch, len(genome), want)
	}
	return nil
}
