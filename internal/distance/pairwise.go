package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PairwiseKernel is implemented by metrics that can fill a whole
// [rows(src), rows(tgt)] block in one pass. Results must be bit-identical
// to calling Evaluate for every pair.
type PairwiseKernel interface {
	PairwiseInto(dst, src, tgt *mat.Dense)
}

// Pairwise evaluates fn over the Cartesian product of the rows of src and
// tgt. Entry (i, j) is fn(src row i, tgt row j).
func Pairwise(fn Function, src, tgt *mat.Dense) *mat.Dense {
	rows, _ := src.Dims()
	cols, _ := tgt.Dims()
	dst := mat.NewDense(rows, cols, nil)
	if kernel, ok := fn.(PairwiseKernel); ok {
		kernel.PairwiseInto(dst, src, tgt)
		return dst
	}
	PairwiseScalar(dst, fn, src, tgt)
	return dst
}

// PairwiseScalar is the reference per-pair loop.
func PairwiseScalar(dst *mat.Dense, fn Function, src, tgt *mat.Dense) {
	rows, _ := src.Dims()
	cols, _ := tgt.Dims()
	for i := 0; i < rows; i++ {
		a := src.RawRowView(i)
		for j := 0; j < cols; j++ {
			dst.Set(i, j, fn.Evaluate(a, tgt.RawRowView(j)))
		}
	}
}

func (euclidean) PairwiseInto(dst, src, tgt *mat.Dense) {
	broadcastDiff(dst, src, tgt, func(diff []float64) float64 {
		sum := 0.0
		for _, v := range diff {
			sum += v * v
		}
		return math.Sqrt(sum)
	})
}

func (manhattan) PairwiseInto(dst, src, tgt *mat.Dense) {
	broadcastDiff(dst, src, tgt, func(diff []float64) float64 {
		sum := 0.0
		for _, v := range diff {
			sum += math.Abs(v)
		}
		return sum
	})
}

// broadcastDiff subtracts each target row from the whole source block and
// reduces every difference row with reduce. Element-wise subtraction is
// exact, so reductions in index order match the scalar metric.
func broadcastDiff(dst, src, tgt *mat.Dense, reduce func(diff []float64) float64) {
	rows, d := src.Dims()
	cols, _ := tgt.Dims()
	diff := make([]float64, d)
	for j := 0; j < cols; j++ {
		b := tgt.RawRowView(j)
		for i := 0; i < rows; i++ {
			floats.SubTo(diff, src.RawRowView(i), b)
			dst.Set(i, j, reduce(diff))
		}
	}
}
