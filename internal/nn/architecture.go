package nn

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownArchitecture = errors.New("unknown policy architecture")

// Architecture names the nonlinearity applied after each decoded layer.
// The output layer is always linear.
type Architecture string

const (
	// TanhLinear applies tanh after every hidden layer.
	TanhLinear Architecture = "tanh_linear"
	// ReluTanhLinear applies relu after hidden layers and tanh after the
	// last hidden layer.
	ReluTanhLinear Architecture = "relu_tanh_linear"
	// Linear applies no nonlinearity at all.
	Linear Architecture = "linear"

	linearSuffix = "_linear"
)

// ParseArchitecture accepts the named architectures plus "<act>_linear"
// for any registered activation <act>, which applies <act> after every
// hidden layer.
func ParseArchitecture(name string) (Architecture, error) {
	switch arch := Architecture(strings.ToLower(strings.TrimSpace(name))); arch {
	case TanhLinear, ReluTanhLinear, Linear:
		return arch, nil
	case "":
		return TanhLinear, nil
	default:
		if hidden, ok := arch.hiddenActivation(); ok {
			if _, err := GetActivation(hidden); err == nil {
				return arch, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownArchitecture, name)
	}
}

func (a Architecture) hiddenActivation() (string, bool) {
	hidden, ok := strings.CutSuffix(string(a), linearSuffix)
	return hidden, ok && hidden != ""
}

// ActivationNames returns the activation used after each of layers layers.
func (a Architecture) ActivationNames(layers int) ([]string, error) {
	a, err := ParseArchitecture(string(a))
	if err != nil {
		return nil, err
	}
	names := make([]string, layers)
	for i := range names {
		last := i == layers-1
		switch {
		case last || a == Linear:
			names[i] = "identity"
		case a == TanhLinear:
			names[i] = "tanh"
		case a == ReluTanhLinear:
			if i == layers-2 {
				names[i] = "tanh"
			} else {
				names[i] = "relu"
			}
		default:
			hidden, ok := a.hiddenActivation()
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownArchitecture, a)
			}
			names[i] = hidden
		}
	}
	return names, nil
}
