// Package describing computes descriptive statistics over a numeric sample.
package describing

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/constraints"
)

// ErrInvalidInput is returned when a computation that needs at least one
// value is given none.
var ErrInvalidInput = errors.New("invalid input")

type Number interface {
	constraints.Integer | constraints.Float
}

// Result holds the descriptive statistics of a sample. Variance is the
// population variance.
type Result struct {
	Count             int     `json:"count"`
	Sum               float64 `json:"sum"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Variance          float64 `json:"variance"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// Sum adds the samples left to right.
func Sum[T Number](samples []T) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("%w: sum of empty sample", ErrInvalidInput)
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v)
	}
	return sum, nil
}

// Median returns the middle value of the sorted samples, or the mean of the
// two middle values when the sample has even length. The input is not
// reordered.
func Median[T Number](samples []T) (float64, error) {
	n := len(samples)
	if n == 0 {
		return 0, fmt.Errorf("%w: median of empty sample", ErrInvalidInput)
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	if n%2 != 0 {
		return float64(sorted[n/2]), nil
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2, nil
}

// Describe computes every statistic of Result in one call. Samples whose
// statistics do not fit in a finite float64 are rejected with ErrInvalidInput.
func Describe[T Number](samples []T) (Result, error) {
	if len(samples) == 0 {
		return Result{}, fmt.Errorf("%w: describe empty sample", ErrInvalidInput)
	}
	sum, _ := Sum(samples)
	median, _ := Median(samples)

	minVal, maxVal := float64(samples[0]), float64(samples[0])
	for _, v := range samples[1:] {
		minVal = math.Min(minVal, float64(v))
		maxVal = math.Max(maxVal, float64(v))
	}

	count := len(samples)
	// Rounding in sum can push the quotient just outside [min, max].
	mean := math.Min(math.Max(sum/float64(count), minVal), maxVal)

	var sqDev float64
	for _, v := range samples {
		d := float64(v) - mean
		sqDev += d * d
	}
	variance := sqDev / float64(count)

	res := Result{
		Count:             count,
		Sum:               sum,
		Mean:              mean,
		Median:            median,
		Min:               minVal,
		Max:               maxVal,
		Variance:          variance,
		StandardDeviation: math.Sqrt(variance),
	}
	for _, v := range []float64{res.Sum, res.Mean, res.Median, res.Min, res.Max, res.Variance, res.StandardDeviation} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Result{}, fmt.Errorf("%w: sample statistics overflow float64", ErrInvalidInput)
		}
	}
	return res, nil
}
