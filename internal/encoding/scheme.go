package encoding

import (
	"errors"
	"fmt"
	"strings"

	"gene/internal/distance"
	"gene/internal/topology"
)

var (
	ErrInvalidTopology       = topology.ErrInvalidTopology
	ErrUnknownDistance       = distance.ErrUnknown
	ErrUnknownScheme         = errors.New("unknown encoding scheme")
	ErrInvalidDimensionality = errors.New("invalid position dimensionality")
	ErrGenomeLengthMismatch  = errors.New("genome length mismatch")
)

// Scheme selects the genome layout and decode algorithm.
type Scheme int

const (
	// Direct stores one gene per weight and bias.
	Direct Scheme = iota
	// Positional stores a d-dimensional position per neuron plus one bias
	// per non-input neuron; weights are distances between positions.
	Positional
)

func (s Scheme) String() string {
	switch s {
	case Direct:
		return "direct"
	case Positional:
		return "gene"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "direct":
		return Direct, nil
	case "gene", "positional", "indirect":
		return Positional, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// Config is a fully resolved decode configuration. Selectors are resolved
// once by NewConfig and never looked up again while decoding.
type Config struct {
	Topology     topology.Topology
	Scheme       Scheme
	D            int
	Distance     distance.Function
	DistanceName string
}

// NewConfig validates the topology and resolves the distance selector.
// d and distanceName are ignored for the direct scheme.
func NewConfig(dims []int, scheme Scheme, d int, distanceName string) (Config, error) {
	topo, err := topology.New(dims)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Topology: topo, Scheme: scheme}
	switch scheme {
	case Direct:
	case Positional:
		if d <= 0 {
			return Config{}, fmt.Errorf("%w: d=%d", ErrInvalidDimensionality, d)
		}
		fn, err := distance.Resolve(distanceName)
		if err != nil {
			return Config{}, err
		}
		if err := checkDimensionality(fn, d); err != nil {
			return Config{}, err
		}
		cfg.D = d
		cfg.Distance = fn
		cfg.DistanceName = distanceName
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}
	return cfg, nil
}

// Validate re-checks a Config that was assembled by hand.
func (c Config) Validate() error {
	if c.Topology.Layers() < 2 {
		return fmt.Errorf("%w: need at least 2 layer dimensions, got %d", ErrInvalidTopology, c.Topology.Layers())
	}
	switch c.Scheme {
	case Direct:
		return nil
	case Positional:
		if c.D <= 0 {
			return fmt.Errorf("%w: d=%d", ErrInvalidDimensionality, c.D)
		}
		if c.Distance == nil {
			return fmt.Errorf("%w: no distance function resolved", ErrUnknownDistance)
		}
		return checkDimensionality(c.Distance, c.D)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownScheme, c.Scheme)
	}
}

// checkDimensionality rejects metrics built for a fixed position length
// other than d.
func checkDimensionality(fn distance.Function, d int) error {
	sized, ok := fn.(interface{ Dimensionality() int })
	if !ok || sized.Dimensionality() == d {
		return nil
	}
	return fmt.Errorf("%w: distance expects d=%d, got d=%d", ErrInvalidDimensionality, sized.Dimensionality(), d)
}
