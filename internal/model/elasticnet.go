package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ElasticNet is L1/L2-penalized least squares solved by cyclic coordinate
// descent on centered data. mixing=1 is the lasso, mixing=0 pure ridge.
type ElasticNet struct {
	lambda    float64
	mixing    float64
	maxIter   int
	tol       float64
	coef      []float64
	intercept float64
	fitted    bool
}

// NewElasticNet returns an elastic-net regressor.
func NewElasticNet(lambda, mixing float64) (*ElasticNet, error) {
	if lambda < 0 {
		return nil, fmt.Errorf("elastic net lambda must be >= 0, got %g", lambda)
	}
	if mixing < 0 || mixing > 1 {
		return nil, fmt.Errorf("elastic net mixing must be in [0,1], got %g", mixing)
	}
	return &ElasticNet{lambda: lambda, mixing: mixing, maxIter: 1000, tol: 1e-6}, nil
}

func (m *ElasticNet) Fit(X *mat.Dense, y []float64) error {
	r, c := X.Dims()
	if r != len(y) {
		return fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	n := float64(r)
	xMeans, yMean := columnMeans(X), meanOf(y)

	// Centered copies; residual starts at centered y with all coefs zero.
	xc := mat.NewDense(r, c, nil)
	norms := make([]float64, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			v := X.At(i, j) - xMeans[j]
			xc.Set(i, j, v)
			norms[j] += v * v
		}
	}
	resid := make([]float64, r)
	for i, v := range y {
		resid[i] = v - yMean
	}

	l1 := m.lambda * m.mixing * n
	l2 := m.lambda * (1 - m.mixing) * n
	coef := make([]float64, c)
	for iter := 0; iter < m.maxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < c; j++ {
			if norms[j] == 0 {
				continue
			}
			// rho = x_jᵀ(resid + x_j b_j)
			var rho float64
			for i := 0; i < r; i++ {
				rho += xc.At(i, j) * resid[i]
			}
			rho += norms[j] * coef[j]
			next := softThreshold(rho, l1) / (norms[j] + l2)
			if d := math.Abs(next - coef[j]); d > maxDelta {
				maxDelta = d
			}
			if next != coef[j] {
				diff := next - coef[j]
				for i := 0; i < r; i++ {
					resid[i] -= diff * xc.At(i, j)
				}
				coef[j] = next
			}
		}
		if maxDelta < m.tol {
			break
		}
	}
	for _, v := range coef {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("elastic net diverged (lambda=%g mixing=%g)", m.lambda, m.mixing)
		}
	}
	m.coef = coef
	m.intercept = yMean
	for j := 0; j < c; j++ {
		m.intercept -= coef[j] * xMeans[j]
	}
	m.fitted = true
	return nil
}

func (m *ElasticNet) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("elastic net model not fitted")
	}
	r, c := X.Dims()
	if c != len(m.coef) {
		return nil, fmt.Errorf("X has %d columns, model fitted on %d", c, len(m.coef))
	}
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := m.intercept
		for j := 0; j < c; j++ {
			v += X.At(i, j) * m.coef[j]
		}
		out[i] = v
	}
	return out, nil
}

func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	}
	return 0
}
