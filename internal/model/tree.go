package model

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// treeNode is one node of a CART regression tree. Leaves have left == nil.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

type treeConfig struct {
	maxDepth int
	minLeaf  int
	// mtry is how many features are sampled per split; <= 0 means all.
	mtry int
}

// buildTree grows a tree over the given row subset by greedy variance
// reduction.
func buildTree(X *mat.Dense, y []float64, rows []int, cfg treeConfig, rng *rand.Rand, depth int) *treeNode {
	node := &treeNode{value: meanRows(y, rows)}
	if depth >= cfg.maxDepth || len(rows) < 2*cfg.minLeaf || constantRows(y, rows) {
		return node
	}
	feat, thr, ok := bestSplit(X, y, rows, cfg, rng)
	if !ok {
		return node
	}
	var left, right []int
	for _, r := range rows {
		if X.At(r, feat) <= thr {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < cfg.minLeaf || len(right) < cfg.minLeaf {
		return node
	}
	node.feature = feat
	node.threshold = thr
	node.left = buildTree(X, y, left, cfg, rng, depth+1)
	node.right = buildTree(X, y, right, cfg, rng, depth+1)
	return node
}

// bestSplit scans candidate features for the threshold minimizing the
// post-split sum of squared errors, using prefix sums over sorted values.
func bestSplit(X *mat.Dense, y []float64, rows []int, cfg treeConfig, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	_, nFeat := X.Dims()
	candidates := make([]int, nFeat)
	for j := range candidates {
		candidates[j] = j
	}
	if cfg.mtry > 0 && cfg.mtry < nFeat {
		rng.Shuffle(nFeat, func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		candidates = candidates[:cfg.mtry]
		sort.Ints(candidates)
	}

	var totalSum float64
	for _, r := range rows {
		totalSum += y[r]
	}
	n := len(rows)
	bestSSE := sseRows(y, rows)
	found := false

	order := make([]int, n)
	for _, j := range candidates {
		copy(order, rows)
		sort.Slice(order, func(a, b int) bool { return X.At(order[a], j) < X.At(order[b], j) })
		var leftSum, leftSq float64
		var totalSq float64
		for _, r := range rows {
			totalSq += y[r] * y[r]
		}
		for i := 0; i < n-1; i++ {
			v := y[order[i]]
			leftSum += v
			leftSq += v * v
			cur, next := X.At(order[i], j), X.At(order[i+1], j)
			if cur == next {
				continue
			}
			nl := float64(i + 1)
			nr := float64(n - i - 1)
			if int(nl) < cfg.minLeaf || int(nr) < cfg.minLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE-1e-12 {
				bestSSE = sse
				feature = j
				threshold = (cur + next) / 2
				found = true
			}
		}
	}
	return feature, threshold, found
}

func (t *treeNode) predict(X *mat.Dense, row int) float64 {
	node := t
	for node.left != nil {
		if X.At(row, node.feature) <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func meanRows(y []float64, rows []int) float64 {
	var s float64
	for _, r := range rows {
		s += y[r]
	}
	return s / float64(len(rows))
}

func sseRows(y []float64, rows []int) float64 {
	m := meanRows(y, rows)
	var s float64
	for _, r := range rows {
		d := y[r] - m
		s += d * d
	}
	return s
}

func constantRows(y []float64, rows []int) bool {
	for _, r := range rows[1:] {
		if y[r] != y[rows[0]] {
			return false
		}
	}
	return true
}
