package gene

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGenomeSizeSelectors(t *testing.T) {
	cases := []struct {
		scheme string
		d      int
		want   int
	}{
		{scheme: "direct", d: 0, want: 23},
		{scheme: "gene", d: 3, want: 4*3 + 3*4 + 2*4},
		{scheme: "Positional", d: 1, want: 9 + 5},
	}
	for _, tc := range cases {
		got, err := GenomeSize([]int{4, 3, 2}, tc.scheme, tc.d)
		if err != nil {
			t.Fatalf("%s: genome size: %v", tc.scheme, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got=%d want=%d", tc.scheme, got, tc.want)
		}
	}

	if _, err := GenomeSize([]int{4, 3, 2}, "hyperneat", 1); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("expected ErrUnknownScheme, got: %v", err)
	}
	if _, err := GenomeSize([]int{4}, "direct", 0); !errors.Is(err, ErrInvalidTopology) {
		t.Fatalf("expected ErrInvalidTopology, got: %v", err)
	}
	if _, err := GenomeSize([]int{4, 2}, "gene", 0); !errors.Is(err, ErrInvalidDimensionality) {
		t.Fatalf("expected ErrInvalidDimensionality, got: %v", err)
	}
}

func TestDecodePositionalWithStringSelectors(t *testing.T) {
	params, err := Decode([]float64{0, 5, 10, 15, 1, 2}, []int{2, 2}, "gene", 1, "L2")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w := params.Layers[0].Weights
	if w.At(0, 0) != 10 || w.At(0, 1) != 15 || w.At(1, 0) != 5 || w.At(1, 1) != 10 {
		t.Fatalf("unexpected weights: %v", w.RawMatrix().Data)
	}

	if _, err := Decode(make([]float64, 6), []int{2, 2}, "gene", 1, "chebyshev"); !errors.Is(err, ErrUnknownDistance) {
		t.Fatalf("expected ErrUnknownDistance, got: %v", err)
	}
	if _, err := Decode(make([]float64, 5), []int{2, 2}, "gene", 1, "L2"); !errors.Is(err, ErrGenomeLengthMismatch) {
		t.Fatalf("expected ErrGenomeLengthMismatch, got: %v", err)
	}
}

func TestForwardDecodedDirectGenome(t *testing.T) {
	// W = [[1, 0], [0, 1]], b = [0.5, -0.5]
	params, err := Decode([]float64{1, 0, 0, 1, 0.5, -0.5}, []int{2, 2}, "direct", 0, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := Forward(params, "linear", []float64{2, 3})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if out[0] != 2.5 || out[1] != 2.5 {
		t.Fatalf("unexpected output: %v", out)
	}
	if _, err := Forward(params, "softmax_everything", []float64{2, 3}); err == nil {
		t.Fatal("expected unknown architecture error")
	}
}

func TestPositions(t *testing.T) {
	positions, err := Positions([]float64{0, 5, 10, 15, 1, 2}, []int{2, 2}, 1)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions) != 4 || positions[3].Layer != 1 || positions[3].Position[0] != 15 {
		t.Fatalf("unexpected positions: %+v", positions)
	}
}

func TestRegisterDistance(t *testing.T) {
	name := "gene-test-chebyshev"
	err := RegisterDistance(name, func(a, b []float64) float64 {
		best := 0.0
		for i := range a {
			best = math.Max(best, math.Abs(a[i]-b[i]))
		}
		return best
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterDistance(name, func(a, b []float64) float64 { return 0 }); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := RegisterDistance("gene-test-nil", nil); err == nil {
		t.Fatal("expected nil function error")
	}

	found := false
	for _, listed := range Distances() {
		found = found || listed == name
	}
	if !found {
		t.Fatalf("expected %s in %v", name, Distances())
	}

	// d=2: neuron 0 at (0,0), neuron 1 at (3,1).
	params, err := Decode([]float64{0, 0, 3, 1, 7}, []int{1, 1}, "gene", 2, name)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := params.Layers[0].Weights.At(0, 0); got != 3 {
		t.Fatalf("unexpected weight: got=%f want=3", got)
	}
}

func TestDecodePopulationAndEvaluate(t *testing.T) {
	cfg, err := NewConfig([]int{2, 2}, "gene", 1, "manhattan")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	genomes := [][]float64{
		{0, 5, 10, 15, 1, 2},
		{0, 1, 2, 3, 0, 0},
	}
	decoded, err := DecodePopulation(context.Background(), cfg, genomes, 2)
	if err != nil {
		t.Fatalf("decode population: %v", err)
	}
	if decoded[1].Layers[0].Weights.At(0, 0) != 2 {
		t.Fatalf("unexpected weight: %v", decoded[1].Layers[0].Weights.RawMatrix().Data)
	}

	scores, err := EvaluatePopulation(context.Background(), cfg, genomes, 2, func(_ context.Context, _ int, params Params) (float64, error) {
		return params.Layers[0].Weights.At(0, 0), nil
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if scores[0] != 10 || scores[1] != 2 {
		t.Fatalf("unexpected scores: %v", scores)
	}
}
