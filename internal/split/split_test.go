package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func syntheticTarget(n int) []float64 {
	rng := NewRand(7)
	y := make([]float64, n)
	for i := range y {
		y[i] = 50 + 200*rng.Float64()
	}
	return y
}

func TestTrainTestRatioAndPartition(t *testing.T) {
	y := syntheticTarget(1000)
	for _, ratio := range []float64{0.5, 0.7, 0.8, 0.9} {
		train, test, err := TrainTest(y, ratio, 4, NewRand(1))
		require.NoError(t, err)

		got := float64(len(train)) / float64(len(y))
		assert.InDelta(t, ratio, got, 0.01, "ratio %g", ratio)

		seen := make(map[int]bool, len(y))
		for _, i := range append(append([]int{}, train...), test...) {
			assert.False(t, seen[i], "row %d assigned twice", i)
			seen[i] = true
		}
		assert.Len(t, seen, len(y), "partitions must be exhaustive")
	}
}

func TestTrainTestStratification(t *testing.T) {
	y := syntheticTarget(1000)
	train, test, err := TrainTest(y, 0.8, 4, NewRand(1))
	require.NoError(t, err)

	overall := stat.Mean(y, nil)
	trainMean := meanAt(y, train)
	testMean := meanAt(y, test)
	assert.InDelta(t, overall, trainMean, 5)
	assert.InDelta(t, overall, testMean, 10)
}

func TestFoldsBalancedAndStratified(t *testing.T) {
	y := syntheticTarget(1000)
	folds, err := Folds(y, 10, 4, NewRand(1))
	require.NoError(t, err)
	require.Len(t, folds, len(y))

	sizes := map[int]int{}
	for _, f := range folds {
		require.GreaterOrEqual(t, f, 0)
		require.Less(t, f, 10)
		sizes[f]++
	}
	require.Len(t, sizes, 10)
	for f, n := range sizes {
		assert.InDelta(t, 100, n, 5, "fold %d size", f)
	}

	overall := stat.Mean(y, nil)
	for f := 0; f < 10; f++ {
		var vals []float64
		for i, id := range folds {
			if id == f {
				vals = append(vals, y[i])
			}
		}
		assert.InDelta(t, overall, stat.Mean(vals, nil), 15, "fold %d mean", f)
	}
}

func TestDeterminism(t *testing.T) {
	y := syntheticTarget(500)

	tr1, te1, err := TrainTest(y, 0.8, 4, NewRand(99))
	require.NoError(t, err)
	tr2, te2, err := TrainTest(y, 0.8, 4, NewRand(99))
	require.NoError(t, err)
	assert.Equal(t, tr1, tr2)
	assert.Equal(t, te1, te2)

	f1, err := Folds(y, 5, 4, NewRand(99))
	require.NoError(t, err)
	f2, err := Folds(y, 5, 4, NewRand(99))
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	tr3, _, err := TrainTest(y, 0.8, 4, NewRand(100))
	require.NoError(t, err)
	assert.NotEqual(t, tr1, tr3, "different seeds should differ")
}

func TestBinsQuantiles(t *testing.T) {
	y := make([]float64, 100)
	for i := range y {
		y[i] = float64(i)
	}
	bins := Bins(y, 4)
	counts := map[int]int{}
	for _, b := range bins {
		counts[b]++
	}
	require.Len(t, counts, 4)
	for b, n := range counts {
		assert.InDelta(t, 25, n, 2, "bin %d", b)
	}
	// Monotone: higher values land in higher bins.
	assert.Equal(t, 0, bins[0])
	assert.Equal(t, 3, bins[99])
}

func TestSplitErrors(t *testing.T) {
	y := syntheticTarget(100)
	_, _, err := TrainTest(y, 0, 4, NewRand(1))
	require.Error(t, err)
	_, _, err = TrainTest(y, 1, 4, NewRand(1))
	require.Error(t, err)
	_, err = Folds(y, 1, 4, NewRand(1))
	require.Error(t, err)
	_, err = Folds(y[:3], 5, 4, NewRand(1))
	require.Error(t, err)
}

func meanAt(y []float64, idx []int) float64 {
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}
