package population

import (
	"errors"

	"gene/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptyGeneration = errors.New("generation has no fitness values")

// Summarize reduces one generation's scores to best, mean and population
// variance. Best is the highest score when maximize is set and the lowest
// otherwise.
func Summarize(generation int, scores []float64, maximize bool) (model.GenerationStats, error) {
	if len(scores) == 0 {
		return model.GenerationStats{}, ErrEmptyGeneration
	}
	best := floats.Min(scores)
	if maximize {
		best = floats.Max(scores)
	}
	mean, variance := stat.PopMeanVariance(scores, nil)
	return model.GenerationStats{
		Generation: generation,
		Best:       best,
		Mean:       mean,
		Variance:   variance,
	}, nil
}
