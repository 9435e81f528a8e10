package distance

import (
	"fmt"
	"math"
	"strings"
)

// Function maps two equal-length position vectors to a scalar weight.
// Implementations must be deterministic and side-effect free.
type Function interface {
	Evaluate(a, b []float64) float64
}

type FunctionFunc func(a, b []float64) float64

func (f FunctionFunc) Evaluate(a, b []float64) float64 {
	return f(a, b)
}

// Kind enumerates the built-in metrics.
type Kind int

const (
	L2 Kind = iota
	PL2
	Manhattan
	Cosine
)

var kindNames = map[Kind]string{
	L2:        "L2",
	PL2:       "pL2",
	Manhattan: "manhattan",
	Cosine:    "cosine",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind matches built-in names case-insensitively; "L1" is accepted
// for manhattan.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "l2":
		return L2, nil
	case "pl2":
		return PL2, nil
	case "manhattan", "l1":
		return Manhattan, nil
	case "cosine":
		return Cosine, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
}

// Function returns the built-in implementation for k.
func (k Kind) Function() (Function, error) {
	switch k {
	case L2, PL2:
		// pL2 is the per-pair batched form of L2; the scalar metric is the same.
		return euclidean{}, nil
	case Manhattan:
		return manhattan{}, nil
	case Cosine:
		return cosine{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknown, k)
	}
}

type euclidean struct{}

func (euclidean) Evaluate(a, b []float64) float64 {
	return math.Sqrt(sumSquaredDiff(a, b))
}

type manhattan struct{}

func (manhattan) Evaluate(a, b []float64) float64 {
	return sumAbsDiff(a, b)
}

// cosine is 1 - cos(a, b). Zero vectors yield NaN.
type cosine struct{}

func (cosine) Evaluate(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func sumSquaredDiff(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func sumAbsDiff(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}
