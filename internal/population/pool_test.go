package population

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"gene/internal/encoding"
)

func positionalConfig(t *testing.T) encoding.Config {
	t.Helper()
	cfg, err := encoding.NewConfig([]int{4, 6, 3}, encoding.Positional, 2, "L2")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	return cfg
}

func randomPopulation(t *testing.T, cfg encoding.Config, n int) [][]float64 {
	t.Helper()
	size, err := cfg.GenomeSize()
	if err != nil {
		t.Fatalf("genome size: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, size)
		for j := range out[i] {
			out[i][j] = rng.NormFloat64()
		}
	}
	return out
}

func TestDecodeAllMatchesSerialDecode(t *testing.T) {
	cfg := positionalConfig(t)
	genomes := randomPopulation(t, cfg, 25)

	for _, workers := range []int{0, 1, 3, 64} {
		decoded, err := DecodeAll(context.Background(), cfg, genomes, workers)
		if err != nil {
			t.Fatalf("workers=%d: decode all: %v", workers, err)
		}
		if len(decoded) != len(genomes) {
			t.Fatalf("workers=%d: got %d results want %d", workers, len(decoded), len(genomes))
		}
		for i, genome := range genomes {
			want, err := encoding.Decode(genome, cfg)
			if err != nil {
				t.Fatalf("serial decode %d: %v", i, err)
			}
			for l := range want.Layers {
				got := decoded[i].Layers[l]
				if got.Name != want.Layers[l].Name {
					t.Fatalf("genome %d layer %d: name %q want %q", i, l, got.Name, want.Layers[l].Name)
				}
				r, c := want.Layers[l].Weights.Dims()
				for row := 0; row < r; row++ {
					for col := 0; col < c; col++ {
						if got.Weights.At(row, col) != want.Layers[l].Weights.At(row, col) {
							t.Fatalf("genome %d layer %d weight (%d,%d) differs", i, l, row, col)
						}
					}
				}
				for b := range want.Layers[l].Bias {
					if got.Bias[b] != want.Layers[l].Bias[b] {
						t.Fatalf("genome %d layer %d bias %d differs", i, l, b)
					}
				}
			}
		}
	}
}

func TestDecodeAllReportsLowestIndexError(t *testing.T) {
	cfg := positionalConfig(t)
	genomes := randomPopulation(t, cfg, 10)
	genomes[7] = genomes[7][:3]
	genomes[4] = append(genomes[4], 1)

	_, err := DecodeAll(context.Background(), cfg, genomes, 4)
	if !errors.Is(err, encoding.ErrGenomeLengthMismatch) {
		t.Fatalf("expected ErrGenomeLengthMismatch, got: %v", err)
	}
	if got := err.Error(); len(got) < 8 || got[:8] != "genome 4" {
		t.Fatalf("expected genome 4 to be reported first, got: %v", err)
	}
}

func TestDecodeAllEmptyPopulation(t *testing.T) {
	decoded, err := DecodeAll(context.Background(), positionalConfig(t), nil, 2)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected no results, got %d", len(decoded))
	}
}

func TestDecodeAllRejectsInvalidConfig(t *testing.T) {
	cfg := positionalConfig(t)
	cfg.D = 0
	if _, err := DecodeAll(context.Background(), cfg, randomPopulation(t, positionalConfig(t), 2), 2); !errors.Is(err, encoding.ErrInvalidDimensionality) {
		t.Fatalf("expected ErrInvalidDimensionality, got: %v", err)
	}
}

func TestDecodeAllHonoursCancellation(t *testing.T) {
	cfg := positionalConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeAll(ctx, cfg, randomPopulation(t, cfg, 5), 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestEvaluateScoresInOrder(t *testing.T) {
	cfg := positionalConfig(t)
	genomes := randomPopulation(t, cfg, 12)

	var calls atomic.Int64
	scores, err := Evaluate(context.Background(), cfg, genomes, 3, func(_ context.Context, index int, params encoding.Params) (float64, error) {
		calls.Add(1)
		if params.NumParameters() != 4*6+6+6*3+3 {
			t.Errorf("unexpected parameter count %d", params.NumParameters())
		}
		return float64(index) * 10, nil
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if calls.Load() != int64(len(genomes)) {
		t.Fatalf("expected %d fitness calls, got %d", len(genomes), calls.Load())
	}
	for i, score := range scores {
		if score != float64(i)*10 {
			t.Fatalf("score %d: got=%f want=%f", i, score, float64(i)*10)
		}
	}
}

func TestEvaluatePropagatesFitnessError(t *testing.T) {
	cfg := positionalConfig(t)
	boom := errors.New("rollout failed")
	_, err := Evaluate(context.Background(), cfg, randomPopulation(t, cfg, 6), 2, func(_ context.Context, index int, _ encoding.Params) (float64, error) {
		if index == 2 || index == 5 {
			return 0, boom
		}
		return 1, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollout error, got: %v", err)
	}
	if err.Error() != "evaluate genome 2: rollout failed" {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Evaluate(context.Background(), cfg, nil, 1, nil); err == nil {
		t.Fatal("expected error for nil fitness function")
	}
}

func TestSummarize(t *testing.T) {
	stats, err := Summarize(3, []float64{1, 2, 3, 6}, true)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if stats.Generation != 3 || stats.Best != 6 || stats.Mean != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if math.Abs(stats.Variance-3.5) > 1e-12 {
		t.Fatalf("unexpected variance: %f", stats.Variance)
	}

	single, err := Summarize(0, []float64{-2}, true)
	if err != nil {
		t.Fatalf("summarize single: %v", err)
	}
	if single.Variance != 0 || single.Best != -2 {
		t.Fatalf("unexpected single stats: %+v", single)
	}

	if _, err := Summarize(0, nil, true); !errors.Is(err, ErrEmptyGeneration) {
		t.Fatalf("expected ErrEmptyGeneration, got: %v", err)
	}
}

func TestSummarizeMinimizing(t *testing.T) {
	scores := []float64{4, -1.5, 9, 0}
	stats, err := Summarize(2, scores, false)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if stats.Best != -1.5 {
		t.Fatalf("minimizing best: got=%f want=-1.5", stats.Best)
	}
	if stats.Mean != 2.875 {
		t.Fatalf("unexpected mean: %f", stats.Mean)
	}

	maximized, err := Summarize(2, scores, true)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if maximized.Best != 9 || maximized.Mean != stats.Mean || maximized.Variance != stats.Variance {
		t.Fatalf("direction must only change best: min=%+v max=%+v", stats, maximized)
	}
}
