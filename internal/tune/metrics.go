package tune

import (
	"fmt"
	"math"
)

// MetricFunc scores predictions against truth. Lower is better for every
// registered metric; R² is negated so the convention holds.
type MetricFunc func(pred, truth []float64) float64

// RMSE is root-mean-square error, the default selection metric.
func RMSE(pred, truth []float64) float64 {
	var s float64
	for i := range pred {
		d := pred[i] - truth[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(pred)))
}

// MAE is mean absolute error.
func MAE(pred, truth []float64) float64 {
	var s float64
	for i := range pred {
		s += math.Abs(pred[i] - truth[i])
	}
	return s / float64(len(pred))
}

// NegR2 is the negated coefficient of determination, so that minimization
// still selects the best model.
func NegR2(pred, truth []float64) float64 {
	var mean float64
	for _, v := range truth {
		mean += v
	}
	mean /= float64(len(truth))
	var ssRes, ssTot float64
	for i := range truth {
		d := truth[i] - pred[i]
		ssRes += d * d
		t := truth[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return -(1 - ssRes/ssTot)
}

// MetricByName resolves a metric from its configuration name.
func MetricByName(name string) (MetricFunc, error) {
	switch name {
	case "", "rmse":
		return RMSE, nil
	case "mae":
		return MAE, nil
	case "r2":
		return NegR2, nil
	}
	return nil, fmt.Errorf("unknown metric %q (want rmse, mae, or r2)", name)
}
