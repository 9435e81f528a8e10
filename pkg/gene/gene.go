// Package gene decodes flat genomes into dense network parameters and
// archives them for later replay.
package gene

import (
	"context"
	"errors"

	"gene/internal/distance"
	"gene/internal/encoding"
	"gene/internal/learned"
	"gene/internal/model"
	"gene/internal/nn"
	"gene/internal/population"
	"gene/internal/topology"
)

type (
	Config          = encoding.Config
	Params          = encoding.Params
	Layer           = encoding.Layer
	Decoder         = encoding.Decoder
	NeuronPosition  = encoding.NeuronPosition
	GenomeRecord    = model.GenomeRecord
	GenerationStats = model.GenerationStats
	FitnessFunc     = population.FitnessFunc
)

var (
	ErrInvalidTopology       = encoding.ErrInvalidTopology
	ErrUnknownScheme         = encoding.ErrUnknownScheme
	ErrUnknownDistance       = encoding.ErrUnknownDistance
	ErrInvalidDimensionality = encoding.ErrInvalidDimensionality
	ErrGenomeLengthMismatch  = encoding.ErrGenomeLengthMismatch
)

// NewConfig resolves the scheme and distance selectors once. d and
// distanceName are ignored for the direct scheme.
func NewConfig(dims []int, scheme string, d int, distanceName string) (Config, error) {
	s, err := encoding.ParseScheme(scheme)
	if err != nil {
		return Config{}, err
	}
	return encoding.NewConfig(dims, s, d, distanceName)
}

func GenomeSize(dims []int, scheme string, d int) (int, error) {
	s, err := encoding.ParseScheme(scheme)
	if err != nil {
		return 0, err
	}
	topo, err := topology.New(dims)
	if err != nil {
		return 0, err
	}
	return encoding.GenomeSize(topo, s, d)
}

func NewDecoder(dims []int, scheme string, d int, distanceName string) (Decoder, error) {
	cfg, err := NewConfig(dims, scheme, d, distanceName)
	if err != nil {
		return nil, err
	}
	return NewDecoderFromConfig(cfg)
}

func NewDecoderFromConfig(cfg Config) (Decoder, error) {
	return encoding.NewDecoder(cfg)
}

func Decode(genome []float64, dims []int, scheme string, d int, distanceName string) (Params, error) {
	decoder, err := NewDecoder(dims, scheme, d, distanceName)
	if err != nil {
		return Params{}, err
	}
	return decoder.Decode(genome)
}

// Positions lists the neuron coordinates a positional genome encodes.
func Positions(genome []float64, dims []int, d int) ([]NeuronPosition, error) {
	cfg, err := NewConfig(dims, encoding.Positional.String(), d, distance.L2.String())
	if err != nil {
		return nil, err
	}
	return encoding.PositionTable(genome, cfg)
}

// Forward runs input through decoded parameters with the named
// architecture ("" selects tanh_linear).
func Forward(params Params, architecture string, input []float64) ([]float64, error) {
	arch, err := nn.ParseArchitecture(architecture)
	if err != nil {
		return nil, err
	}
	return nn.Forward(params, arch, input)
}

// RegisterDistance adds a named metric usable by positional decoding.
func RegisterDistance(name string, fn func(a, b []float64) float64) error {
	if fn == nil {
		return errors.New("distance function is required")
	}
	return distance.Register(name, distance.FunctionFunc(fn))
}

// RegisterLearnedDistance decodes a direct genome for a [2d, ..., 1]
// network and registers it as a metric under name.
func RegisterLearnedDistance(name string, genome []float64, dims []int, architecture string) error {
	arch, err := nn.ParseArchitecture(architecture)
	if err != nil {
		return err
	}
	fn, err := learned.NewNetDistance(genome, dims, arch)
	if err != nil {
		return err
	}
	return distance.Register(name, fn)
}

// EvaluatePopulation decodes genomes in parallel and scores them with
// fitness. workers <= 0 uses GOMAXPROCS.
func EvaluatePopulation(ctx context.Context, cfg Config, genomes [][]float64, workers int, fitness FitnessFunc) ([]float64, error) {
	return population.Evaluate(ctx, cfg, genomes, workers, fitness)
}

func DecodePopulation(ctx context.Context, cfg Config, genomes [][]float64, workers int) ([]Params, error) {
	return population.DecodeAll(ctx, cfg, genomes, workers)
}

func Distances() []string {
	return distance.List()
}
