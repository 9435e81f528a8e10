package encoding

import "fmt"

// Decoder turns a flat genome into network parameters. Implementations
// are stateless after construction and safe for concurrent use.
type Decoder interface {
	Decode(genome []float64) (Params, error)
	// Size is the exact genome length Decode accepts.
	Size() int
}

func NewDecoder(cfg Config) (Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Scheme {
	case Direct:
		return NewDirectDecoder(cfg.Topology), nil
	case Positional:
		return NewPositionalDecoder(cfg.Topology, cfg.D, cfg.Distance)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, cfg.Scheme)
	}
}

func Decode(genome []float64, cfg Config) (Params, error) {
	decoder, err := NewDecoder(cfg)
	if err != nil {
		return Params{}, err
	}
	return decoder.Decode(genome)
}
