// Package config loads and validates experiment configuration files and
// resolves their encoding section into a decode configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gene/internal/encoding"
	"gene/internal/nn"

	"gopkg.in/yaml.v3"
)

var (
	ErrIncomplete   = errors.New("configuration file incomplete")
	ErrInvalidValue = errors.New("invalid configuration value")
)

type Evo struct {
	StrategyName   string `json:"strategy_name" yaml:"strategy_name"`
	NGenerations   int    `json:"n_generations" yaml:"n_generations"`
	PopulationSize int    `json:"population_size" yaml:"population_size"`
	NEvaluations   int    `json:"n_evaluations" yaml:"n_evaluations"`
}

type Net struct {
	LayerDimensions []int  `json:"layer_dimensions" yaml:"layer_dimensions"`
	Architecture    string `json:"architecture" yaml:"architecture"`
}

type Encoding struct {
	Type     string `json:"type" yaml:"type"`
	D        int    `json:"d" yaml:"d"`
	Distance string `json:"distance" yaml:"distance"`
}

type Task struct {
	Environment   string `json:"environnment" yaml:"environnment"`
	Maximize      bool   `json:"maximize" yaml:"maximize"`
	EpisodeLength int    `json:"episode_length" yaml:"episode_length"`
}

// Experiment mirrors the experiment configuration file layout.
type Experiment struct {
	Seed     int64    `json:"seed" yaml:"seed"`
	Evo      Evo      `json:"evo" yaml:"evo"`
	Net      Net      `json:"net" yaml:"net"`
	Encoding Encoding `json:"encoding" yaml:"encoding"`
	Task     Task     `json:"task" yaml:"task"`
}

// requiredKeys lists every key a complete file must carry, per section.
var requiredKeys = []struct {
	section string
	keys    []string
}{
	{section: "seed"},
	{section: "evo", keys: []string{"strategy_name", "n_generations", "population_size", "n_evaluations"}},
	{section: "net", keys: []string{"layer_dimensions", "architecture"}},
	{section: "encoding", keys: []string{"d", "distance", "type"}},
	{section: "task", keys: []string{"environnment", "maximize", "episode_length"}},
}

// Load reads a .json, .yaml or .yml experiment file.
func Load(path string) (Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, err
	}
	raw, err := parseRaw(data, filepath.Ext(path))
	if err != nil {
		return Experiment{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return FromMap(raw)
}

func parseRaw(data []byte, ext string) (map[string]any, error) {
	var raw map[string]any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".json", "":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrIncomplete)
	}
	return raw, nil
}

// Validate checks that every required key is present. Types are checked
// later by FromMap.
func Validate(raw map[string]any) error {
	for _, req := range requiredKeys {
		value, ok := raw[req.section]
		if !ok {
			return fmt.Errorf("%w: %s (base level) is missing", ErrIncomplete, req.section)
		}
		if len(req.keys) == 0 {
			continue
		}
		section, ok := asMap(value)
		if !ok {
			return fmt.Errorf("%w: %s must be an object", ErrInvalidValue, req.section)
		}
		for _, key := range req.keys {
			if _, ok := section[key]; !ok {
				return fmt.Errorf("%w: %s.%s (nested level) is missing", ErrIncomplete, req.section, key)
			}
		}
	}
	return nil
}

// FromMap validates raw and converts it into an Experiment.
func FromMap(raw map[string]any) (Experiment, error) {
	if err := Validate(raw); err != nil {
		return Experiment{}, err
	}

	var exp Experiment
	var ok bool
	fail := func(key string) (Experiment, error) {
		return Experiment{}, fmt.Errorf("%w: %s", ErrInvalidValue, key)
	}

	if raw["seed"] != nil {
		if exp.Seed, ok = asInt64(raw["seed"]); !ok {
			return fail("seed")
		}
	}

	evo, _ := asMap(raw["evo"])
	if exp.Evo.StrategyName, ok = asString(evo["strategy_name"]); !ok {
		return fail("evo.strategy_name")
	}
	if exp.Evo.NGenerations, ok = asInt(evo["n_generations"]); !ok {
		return fail("evo.n_generations")
	}
	if exp.Evo.PopulationSize, ok = asInt(evo["population_size"]); !ok {
		return fail("evo.population_size")
	}
	if exp.Evo.NEvaluations, ok = asInt(evo["n_evaluations"]); !ok {
		return fail("evo.n_evaluations")
	}

	net, _ := asMap(raw["net"])
	if exp.Net.LayerDimensions, ok = asInts(net["layer_dimensions"]); !ok {
		return fail("net.layer_dimensions")
	}
	if exp.Net.Architecture, ok = asString(net["architecture"]); !ok {
		return fail("net.architecture")
	}

	enc, _ := asMap(raw["encoding"])
	if exp.Encoding.Type, ok = asString(enc["type"]); !ok {
		return fail("encoding.type")
	}
	if exp.Encoding.D, ok = asInt(enc["d"]); !ok {
		return fail("encoding.d")
	}
	if exp.Encoding.Distance, ok = asString(enc["distance"]); !ok {
		return fail("encoding.distance")
	}

	task, _ := asMap(raw["task"])
	if exp.Task.Environment, ok = asString(task["environnment"]); !ok {
		return fail("task.environnment")
	}
	if exp.Task.Maximize, ok = asBool(task["maximize"]); !ok {
		return fail("task.maximize")
	}
	if exp.Task.EpisodeLength, ok = asInt(task["episode_length"]); !ok {
		return fail("task.episode_length")
	}
	return exp, nil
}

// DecodeConfig resolves the encoding selectors once; the result is what
// the decoders consume.
func (e Experiment) DecodeConfig() (encoding.Config, error) {
	scheme, err := encoding.ParseScheme(e.Encoding.Type)
	if err != nil {
		return encoding.Config{}, err
	}
	return encoding.NewConfig(e.Net.LayerDimensions, scheme, e.Encoding.D, e.Encoding.Distance)
}

func (e Experiment) PolicyArchitecture() (nn.Architecture, error) {
	return nn.ParseArchitecture(e.Net.Architecture)
}

// Save writes e as indented JSON or YAML depending on the extension.
func (e Experiment) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(e)
	default:
		data, err = json.MarshalIndent(e, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
