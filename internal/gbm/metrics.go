package gbm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RMSE is the root-mean-squared error between predictions and actuals.
// Panics if the slices differ in length, matching gonum convention.
func RMSE(pred, actual []float64) float64 {
	return floats.Distance(pred, actual, 2) / math.Sqrt(float64(len(actual)))
}

// Residuals returns actual - predicted for every row.
func Residuals(pred, actual []float64) []float64 {
	out := make([]float64, len(actual))
	for i := range actual {
		out[i] = actual[i] - pred[i]
	}
	return out
}

// MeanStd summarizes a set of per-fold errors.
func MeanStd(vals []float64) (mean, std float64) {
	mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		std = stat.StdDev(vals, nil)
	}
	return mean, std
}
