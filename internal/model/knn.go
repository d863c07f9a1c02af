package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNN predicts the mean target of the k nearest training rows by Euclidean
// distance. Inputs are assumed standardized by the feature pipeline.
type KNN struct {
	k      int
	train  *mat.Dense
	y      []float64
	fitted bool
}

// NewKNN returns a k-nearest-neighbors regressor.
func NewKNN(k int) (*KNN, error) {
	if k < 1 {
		return nil, fmt.Errorf("knn k must be >= 1, got %d", k)
	}
	return &KNN{k: k}, nil
}

func (m *KNN) Fit(X *mat.Dense, y []float64) error {
	r, _ := X.Dims()
	if r != len(y) {
		return fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	if r < m.k {
		return fmt.Errorf("knn needs at least k=%d training rows, got %d", m.k, r)
	}
	m.train = mat.DenseCopyOf(X)
	m.y = append([]float64(nil), y...)
	m.fitted = true
	return nil
}

func (m *KNN) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("knn model not fitted")
	}
	r, c := X.Dims()
	tr, tc := m.train.Dims()
	if c != tc {
		return nil, fmt.Errorf("X has %d columns, model fitted on %d", c, tc)
	}
	out := make([]float64, r)
	dists := make([]float64, tr)
	order := make([]int, tr)
	for i := 0; i < r; i++ {
		for t := 0; t < tr; t++ {
			var d float64
			for j := 0; j < c; j++ {
				diff := X.At(i, j) - m.train.At(t, j)
				d += diff * diff
			}
			dists[t] = d
			order[t] = t
		}
		sort.Slice(order, func(a, b int) bool {
			if dists[order[a]] == dists[order[b]] {
				return order[a] < order[b]
			}
			return dists[order[a]] < dists[order[b]]
		})
		var sum float64
		for n := 0; n < m.k; n++ {
			sum += m.y[order[n]]
		}
		out[i] = sum / float64(m.k)
	}
	return out, nil
}
