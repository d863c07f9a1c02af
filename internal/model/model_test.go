package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func rmseOf(pred, y []float64) float64 {
	var s float64
	for i := range y {
		d := pred[i] - y[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(y)))
}

// linearData generates y = 3 + 2*x0 - x1 with no noise.
func linearData(n int, seed int64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.NormFloat64()
		x1 := rng.NormFloat64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y[i] = 3 + 2*x0 - x1
	}
	return X, y
}

func TestLinearRecoversCoefficients(t *testing.T) {
	X, y := linearData(100, 1)
	m := NewLinear()
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Less(t, rmseOf(pred, y), 1e-8)
}

func TestPolynomialCapturesCurvature(t *testing.T) {
	n := 120
	rng := rand.New(rand.NewSource(2))
	X := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()*4 - 2
		X.Set(i, 0, x)
		y[i] = 1 + 0.5*x + 2*x*x
	}

	deg2, err := NewPolynomial(2)
	require.NoError(t, err)
	require.NoError(t, deg2.Fit(X, y))
	p2, err := deg2.Predict(X)
	require.NoError(t, err)
	assert.Less(t, rmseOf(p2, y), 1e-8)

	deg1, err := NewPolynomial(1)
	require.NoError(t, err)
	require.NoError(t, deg1.Fit(X, y))
	p1, err := deg1.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, rmseOf(p1, y), 0.1, "straight line cannot fit a parabola")
}

func TestPolynomialSkipsIndicatorColumns(t *testing.T) {
	// Squaring a 0/1 column reproduces it and makes the design singular;
	// indicators must pass through the expansion untouched.
	n := 80
	rng := rand.New(rand.NewSource(3))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		ind := float64(i % 2)
		X.Set(i, 0, x)
		X.Set(i, 1, ind)
		y[i] = x*x + 5*ind
	}
	m, err := NewPolynomial(3)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Less(t, rmseOf(pred, y), 1e-6)
}

func TestRidgeShrinksCoefficients(t *testing.T) {
	X, y := linearData(60, 4)

	small, err := NewRidge(0.001)
	require.NoError(t, err)
	require.NoError(t, small.Fit(X, y))
	large, err := NewRidge(1000)
	require.NoError(t, err)
	require.NoError(t, large.Fit(X, y))

	norm := func(m *Ridge) float64 {
		var s float64
		for _, c := range m.coef {
			s += c * c
		}
		return math.Sqrt(s)
	}
	assert.Less(t, norm(large), norm(small))
	assert.Greater(t, norm(small), 1.0, "light penalty should leave the signal mostly intact")
}

func TestLassoZeroesNoiseFeature(t *testing.T) {
	n := 200
	rng := rand.New(rand.NewSource(5))
	X := mat.NewDense(n, 3, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.NormFloat64()
		X.Set(i, 0, x0)
		X.Set(i, 1, rng.NormFloat64()) // pure noise
		X.Set(i, 2, rng.NormFloat64()) // pure noise
		y[i] = 4 * x0
	}
	m, err := NewElasticNet(1, 1) // mixing 1 is the lasso
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))

	assert.NotZero(t, m.coef[0])
	assert.Zero(t, m.coef[1])
	assert.Zero(t, m.coef[2])
}

func TestElasticNetRejectsBadParams(t *testing.T) {
	_, err := NewElasticNet(-1, 0.5)
	assert.Error(t, err)
	_, err = NewElasticNet(1, 1.5)
	assert.Error(t, err)
}

func TestKNNAveragesNeighbors(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	y := []float64{2, 4, 20, 22}
	m, err := NewKNN(2)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))

	pred, err := m.Predict(mat.NewDense(2, 1, []float64{0.5, 10.5}))
	require.NoError(t, err)
	assert.InDelta(t, 3, pred[0], 1e-9)
	assert.InDelta(t, 21, pred[1], 1e-9)
}

func TestKNNRequiresEnoughRows(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	m, err := NewKNN(5)
	require.NoError(t, err)
	assert.Error(t, m.Fit(X, []float64{1, 2}))
}

// stepData is a piecewise-constant target that trees split cleanly on.
func stepData(n int, seed int64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()
		x1 := rng.Float64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		switch {
		case x0 < 0.5 && x1 < 0.5:
			y[i] = 10
		case x0 < 0.5:
			y[i] = 30
		case x1 < 0.5:
			y[i] = 50
		default:
			y[i] = 70
		}
	}
	return X, y
}

func TestForestFitsStepFunction(t *testing.T) {
	X, y := stepData(400, 6)
	m, err := NewForest(ForestConfig{Trees: 50, MaxDepth: 6, MinLeaf: 1, Seed: 42})
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Less(t, rmseOf(pred, y), 5.0)
}

func TestForestDeterministicForSeed(t *testing.T) {
	X, y := stepData(200, 7)
	fit := func(seed int64) []float64 {
		m, err := NewForest(ForestConfig{Trees: 20, MaxDepth: 5, MinLeaf: 1, Seed: seed})
		require.NoError(t, err)
		require.NoError(t, m.Fit(X, y))
		pred, err := m.Predict(X)
		require.NoError(t, err)
		return pred
	}
	assert.Equal(t, fit(9), fit(9))
}

func TestBoostBeatsConstantBaseline(t *testing.T) {
	X, y := stepData(400, 8)
	m, err := NewBoost(BoostConfig{Trees: 100, Depth: 3, LearnRate: 0.1, Seed: 42})
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)

	mean := meanOf(y)
	base := make([]float64, len(y))
	for i := range base {
		base[i] = mean
	}
	assert.Less(t, rmseOf(pred, y), 0.5*rmseOf(base, y))
}

func TestLinearPredictRejectsWidthMismatch(t *testing.T) {
	X, y := linearData(50, 10)
	m := NewLinear()
	require.NoError(t, m.Fit(X, y))

	_, err := m.Predict(mat.NewDense(3, 3, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fitted on 2")
}

func TestPredictBeforeFitFails(t *testing.T) {
	X := mat.NewDense(1, 2, []float64{0, 0})
	for _, fam := range Registry() {
		m, err := fam.New(Params{}, 42)
		require.NoError(t, err, fam.Name)
		_, err = m.Predict(X)
		assert.Error(t, err, "%s must refuse to predict before fitting", fam.Name)
	}
}

func TestRegistryNamesAndLookup(t *testing.T) {
	want := []string{"linear", "polynomial", "ridge", "lasso", "elasticnet", "knn", "forest", "boost"}
	var got []string
	for _, fam := range Registry() {
		got = append(got, fam.Name)
	}
	assert.Equal(t, want, got)

	fam, ok := FamilyByName("ridge")
	assert.True(t, ok)
	assert.Equal(t, "ridge", fam.Name)
	_, ok = FamilyByName("perceptron")
	assert.False(t, ok)
}

func TestParamsStringStable(t *testing.T) {
	p := Params{"trees": 100, "depth": 3}
	assert.Equal(t, p.String(), p.String())
	assert.Equal(t, Params{"depth": 3, "trees": 100}.String(), p.String())
}
