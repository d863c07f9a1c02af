package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge is L2-penalized least squares. The intercept is unpenalized.
type Ridge struct {
	lambda    float64
	coef      []float64
	intercept float64
	fitted    bool
}

// NewRidge returns a ridge regressor with penalty lambda.
func NewRidge(lambda float64) (*Ridge, error) {
	if lambda < 0 {
		return nil, fmt.Errorf("ridge lambda must be >= 0, got %g", lambda)
	}
	return &Ridge{lambda: lambda}, nil
}

// Fit solves (XᵀX + λI)b = Xᵀy on centered data via Cholesky, which also
// keeps the intercept out of the penalty.
func (m *Ridge) Fit(X *mat.Dense, y []float64) error {
	r, c := X.Dims()
	if r != len(y) {
		return fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	xMeans, yMean := columnMeans(X), meanOf(y)

	gram := mat.NewSymDense(c, nil)
	xty := make([]float64, c)
	for j := 0; j < c; j++ {
		for k := j; k < c; k++ {
			var s float64
			for i := 0; i < r; i++ {
				s += (X.At(i, j) - xMeans[j]) * (X.At(i, k) - xMeans[k])
			}
			if j == k {
				s += m.lambda
			}
			gram.SetSym(j, k, s)
		}
		var s float64
		for i := 0; i < r; i++ {
			s += (X.At(i, j) - xMeans[j]) * (y[i] - yMean)
		}
		xty[j] = s
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return fmt.Errorf("ridge system is not positive definite (lambda=%g)", m.lambda)
	}
	beta := mat.NewVecDense(c, nil)
	if err := chol.SolveVecTo(beta, mat.NewVecDense(c, xty)); err != nil {
		return fmt.Errorf("ridge solve: %w", err)
	}
	m.coef = make([]float64, c)
	m.intercept = yMean
	for j := 0; j < c; j++ {
		m.coef[j] = beta.AtVec(j)
		m.intercept -= m.coef[j] * xMeans[j]
	}
	m.fitted = true
	return nil
}

func (m *Ridge) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("ridge model not fitted")
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

func columnMeans(X *mat.Dense) []float64 {
	r, c := X.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		var s float64
		for i := 0; i < r; i++ {
			s += X.At(i, j)
		}
		out[j] = s / float64(r)
	}
	return out
}

func meanOf(y []float64) float64 {
	var s float64
	for _, v := range y {
		s += v
	}
	return s / float64(len(y))
}
