package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Linear is ordinary least squares with an intercept.
type Linear struct {
	degree int
	// binary marks fitted feature columns excluded from polynomial
	// expansion; powers of an indicator are the indicator itself.
	binary []bool
	coef   []float64
	nFeat  int
	fitted bool
}

// NewLinear returns an OLS regressor.
func NewLinear() *Linear {
	return &Linear{degree: 1}
}

// NewPolynomial returns OLS over per-feature power expansion up to degree.
// No interaction terms are generated.
func NewPolynomial(degree int) (*Linear, error) {
	if degree < 1 {
		return nil, fmt.Errorf("polynomial degree must be >= 1, got %d", degree)
	}
	return &Linear{degree: degree}, nil
}

func (m *Linear) Fit(X *mat.Dense, y []float64) error {
	r, c := X.Dims()
	if r != len(y) {
		return fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	if m.degree > 1 {
		m.binary = binaryColumns(X)
	} else {
		m.binary = make([]bool, c)
	}
	D := m.expand(X)
	coef, err := leastSquares(D, y)
	if err != nil {
		return err
	}
	m.coef = coef
	m.nFeat = c
	m.fitted = true
	return nil
}

func (m *Linear) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("linear model not fitted")
	}
	if _, c := X.Dims(); c != m.nFeat {
		return nil, fmt.Errorf("X has %d columns, model fitted on %d", c, m.nFeat)
	}
	D := m.expand(X)
	return matVec(D, m.coef), nil
}

// expand prepends an intercept column and appends powers 2..degree of every
// non-binary feature.
func (m *Linear) expand(X *mat.Dense) *mat.Dense {
	r, c := X.Dims()
	extra := 0
	if m.degree > 1 {
		for _, b := range m.binary {
			if !b {
				extra += m.degree - 1
			}
		}
	}
	D := mat.NewDense(r, 1+c+extra, nil)
	for i := 0; i < r; i++ {
		D.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			D.Set(i, 1+j, X.At(i, j))
		}
		col := 1 + c
		if m.degree > 1 {
			for j := 0; j < c; j++ {
				if m.binary[j] {
					continue
				}
				v := X.At(i, j)
				pow := v
				for d := 2; d <= m.degree; d++ {
					pow *= v
					D.Set(i, col, pow)
					col++
				}
			}
		}
	}
	return D
}

// binaryColumns flags columns taking at most two distinct values.
func binaryColumns(X *mat.Dense) []bool {
	r, c := X.Dims()
	out := make([]bool, c)
	for j := 0; j < c; j++ {
		var a, b float64
		distinct := 0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			switch {
			case distinct == 0:
				a = v
				distinct = 1
			case distinct == 1 && v != a:
				b = v
				distinct = 2
			case distinct == 2 && v != a && v != b:
				distinct = 3
			}
			if distinct > 2 {
				break
			}
		}
		out[j] = distinct <= 2
	}
	return out
}

// leastSquares solves min ||Xb - y|| by QR. A rank-deficient or otherwise
// unsolvable system is reported as an error; the tuner records the fold as a
// missing metric.
func leastSquares(X *mat.Dense, y []float64) ([]float64, error) {
	_, c := X.Dims()
	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(c, nil)
	yv := mat.NewVecDense(len(y), append([]float64(nil), y...))
	if err := qr.SolveVecTo(beta, false, yv); err != nil {
		return nil, fmt.Errorf("least squares: %w", err)
	}
	coef := make([]float64, c)
	for j := 0; j < c; j++ {
		v := beta.AtVec(j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("least squares produced a non-finite coefficient")
		}
		coef[j] = v
	}
	return coef, nil
}

func matVec(X *mat.Dense, coef []float64) []float64 {
	r, c := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		var v float64
		for j := 0; j < c; j++ {
			v += X.At(i, j) * coef[j]
		}
		out[i] = v
	}
	return out
}
