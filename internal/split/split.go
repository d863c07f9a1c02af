// Package split produces stratified train/test partitions and fold
// assignments. All randomness flows through an explicit *rand.Rand stream so
// identical seeds reproduce identical partitions.
package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// NewRand returns a deterministic random stream for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Bins assigns each target value to one of nBins quantile bins. Continuous
// targets are binned before stratified assignment so the target distribution
// is approximately preserved across partitions.
func Bins(y []float64, nBins int) []int {
	if nBins < 1 {
		nBins = 1
	}
	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	cuts := make([]float64, 0, nBins-1)
	for i := 1; i < nBins; i++ {
		q := stat.Quantile(float64(i)/float64(nBins), stat.Empirical, sorted, nil)
		cuts = append(cuts, q)
	}
	out := make([]int, len(y))
	for i, v := range y {
		b := 0
		for _, c := range cuts {
			if v > c {
				b++
			}
		}
		out[i] = b
	}
	return out
}

// TrainTest partitions row indices so the training part holds trainFrac of
// the rows and each quantile bin contributes proportionally. The returned
// partitions are disjoint and exhaustive.
func TrainTest(y []float64, trainFrac float64, nBins int, rng *rand.Rand) (train, test []int, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, fmt.Errorf("train fraction must be in (0,1), got %g", trainFrac)
	}
	if len(y) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 rows to split, got %d", len(y))
	}
	for _, g := range group(y, nBins) {
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		nTrain := int(math.Round(trainFrac * float64(len(g))))
		if nTrain == len(g) && len(g) > 1 {
			nTrain--
		}
		train = append(train, g[:nTrain]...)
		test = append(test, g[nTrain:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	if len(test) == 0 {
		return nil, nil, fmt.Errorf("split produced an empty test partition")
	}
	return train, test, nil
}

// Folds assigns every row to one of k folds, stratified by quantile bin.
// Fold sizes differ by at most one per bin, so the target mean within each
// fold tracks the overall mean.
func Folds(y []float64, k, nBins int, rng *rand.Rand) ([]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("fold count must be >= 2, got %d", k)
	}
	if len(y) < k {
		return nil, fmt.Errorf("cannot cut %d rows into %d folds", len(y), k)
	}
	folds := make([]int, len(y))
	next := 0
	for _, g := range group(y, nBins) {
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		for _, idx := range g {
			folds[idx] = next
			next = (next + 1) % k
		}
	}
	return folds, nil
}

// group collects row indices per bin, in bin order. Rows are appended in row
// order so the grouping itself is deterministic.
func group(y []float64, nBins int) [][]int {
	bins := Bins(y, nBins)
	maxBin := 0
	for _, b := range bins {
		if b > maxBin {
			maxBin = b
		}
	}
	groups := make([][]int, maxBin+1)
	for i, b := range bins {
		groups[b] = append(groups[b], i)
	}
	return groups
}
