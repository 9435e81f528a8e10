package distance

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBuiltInMetrics(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		a, b []float64
		want float64
	}{
		{name: "l2-1d", kind: L2, a: []float64{0}, b: []float64{10}, want: 10},
		{name: "l2-3-4-5", kind: L2, a: []float64{0, 0}, b: []float64{3, 4}, want: 5},
		{name: "pl2-matches-l2", kind: PL2, a: []float64{1, 1}, b: []float64{4, 5}, want: 5},
		{name: "manhattan", kind: Manhattan, a: []float64{1, -1, 2}, b: []float64{0, 1, 2}, want: 3},
		{name: "cosine-orthogonal", kind: Cosine, a: []float64{1, 0}, b: []float64{0, 2}, want: 1},
		{name: "cosine-parallel", kind: Cosine, a: []float64{1, 1}, b: []float64{2, 2}, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn, err := tc.kind.Function()
			if err != nil {
				t.Fatalf("function: %v", err)
			}
			if got := fn.Evaluate(tc.a, tc.b); math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("unexpected distance: got=%f want=%f", got, tc.want)
			}
		})
	}
}

func TestCosineZeroVectorIsNaN(t *testing.T) {
	fn, err := Cosine.Function()
	if err != nil {
		t.Fatalf("function: %v", err)
	}
	if got := fn.Evaluate([]float64{0, 0}, []float64{1, 0}); !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %f", got)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"L2", L2}, {"l2", L2}, {"pL2", PL2}, {"PL2", PL2}, {"manhattan", Manhattan}, {"L1", Manhattan}, {" cosine ", Cosine},
	}
	for _, tc := range tests {
		got, err := ParseKind(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got=%s want=%s", tc.in, got, tc.want)
		}
	}
	if _, err := ParseKind("chebyshev"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got: %v", err)
	}
	if _, err := Kind(42).Function(); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown for out-of-range kind, got: %v", err)
	}
}

func TestSymmetricMetrics(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, kind := range []Kind{L2, PL2, Manhattan, Cosine} {
		fn, err := kind.Function()
		if err != nil {
			t.Fatalf("function %s: %v", kind, err)
		}
		for trial := 0; trial < 50; trial++ {
			a := randomVector(rng, 4)
			b := randomVector(rng, 4)
			if ab, ba := fn.Evaluate(a, b), fn.Evaluate(b, a); ab != ba {
				t.Fatalf("%s not symmetric: %v vs %v", kind, ab, ba)
			}
		}
	}
}

func TestPairwiseKernelMatchesScalarLoop(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	src := mat.NewDense(7, 3, randomVector(rng, 21))
	tgt := mat.NewDense(5, 3, randomVector(rng, 15))

	for _, kind := range []Kind{L2, PL2, Manhattan, Cosine} {
		fn, err := kind.Function()
		if err != nil {
			t.Fatalf("function %s: %v", kind, err)
		}
		batched := Pairwise(fn, src, tgt)
		scalar := mat.NewDense(7, 5, nil)
		PairwiseScalar(scalar, fn, src, tgt)
		for i := 0; i < 7; i++ {
			for j := 0; j < 5; j++ {
				if batched.At(i, j) != scalar.At(i, j) {
					t.Fatalf("%s (%d,%d): batched=%v scalar=%v", kind, i, j, batched.At(i, j), scalar.At(i, j))
				}
			}
		}
	}
}

func TestPairwiseUsesCustomFunction(t *testing.T) {
	fn := FunctionFunc(func(a, b []float64) float64 { return a[0]*10 + b[0] })
	src := mat.NewDense(2, 1, []float64{1, 2})
	tgt := mat.NewDense(3, 1, []float64{3, 4, 5})

	got := Pairwise(fn, src, tgt)
	want := mat.NewDense(2, 3, []float64{13, 14, 15, 23, 24, 25})
	if !mat.Equal(got, want) {
		t.Fatalf("unexpected matrix:\n%v", mat.Formatted(got))
	}
}

func randomVector(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * 3
	}
	return out
}
