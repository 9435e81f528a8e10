package config

import (
	"fmt"
	"sort"
)

type EnvSize struct {
	ObservationSpace int
	ActionSpace      int
}

var envSizes = map[string]EnvSize{
	"humanoid":                 {ObservationSpace: 240, ActionSpace: 8},
	"walker2d":                 {ObservationSpace: 17, ActionSpace: 6},
	"hopper":                   {ObservationSpace: 11, ActionSpace: 3},
	"ant":                      {ObservationSpace: 87 - 20, ActionSpace: 8},
	"halfcheetah":              {ObservationSpace: 18, ActionSpace: 6},
	"inverted_double_pendulum": {ObservationSpace: 11, ActionSpace: 1},
	"swimmer":                  {ObservationSpace: 12, ActionSpace: 2},
}

func EnvSizes(name string) (EnvSize, error) {
	size, ok := envSizes[name]
	if !ok {
		return EnvSize{}, fmt.Errorf("%w: unknown environment %q", ErrInvalidValue, name)
	}
	return size, nil
}

func Environments() []string {
	names := make([]string, 0, len(envSizes))
	for name := range envSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fix returns a copy of e whose first and last layer dimensions match the
// observation and action spaces of env. An empty env uses the task's.
func (e Experiment) Fix(env string) (Experiment, error) {
	if env == "" {
		env = e.Task.Environment
	}
	size, err := EnvSizes(env)
	if err != nil {
		return Experiment{}, err
	}
	if len(e.Net.LayerDimensions) < 2 {
		return Experiment{}, fmt.Errorf("%w: net.layer_dimensions needs at least 2 entries", ErrInvalidValue)
	}

	out := e
	out.Net.LayerDimensions = append([]int(nil), e.Net.LayerDimensions...)
	out.Net.LayerDimensions[0] = size.ObservationSpace
	out.Net.LayerDimensions[len(out.Net.LayerDimensions)-1] = size.ActionSpace
	out.Task.Environment = env
	return out, nil
}
