package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ForestConfig holds the random forest hyperparameters.
type ForestConfig struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	// MTry is features sampled per split; 0 picks ceil(p/3), the regression
	// forest convention.
	MTry int
	Seed int64
}

// Forest is a bagged ensemble of CART regression trees.
type Forest struct {
	cfg    ForestConfig
	trees  []*treeNode
	fitted bool
}

// NewForest returns a random forest regressor.
func NewForest(cfg ForestConfig) (*Forest, error) {
	if cfg.Trees < 1 {
		return nil, fmt.Errorf("forest trees must be >= 1, got %d", cfg.Trees)
	}
	if cfg.MaxDepth < 1 {
		return nil, fmt.Errorf("forest max_depth must be >= 1, got %d", cfg.MaxDepth)
	}
	if cfg.MinLeaf < 1 {
		return nil, fmt.Errorf("forest min_leaf must be >= 1, got %d", cfg.MinLeaf)
	}
	return &Forest{cfg: cfg}, nil
}

func (m *Forest) Fit(X *mat.Dense, y []float64) error {
	r, c := X.Dims()
	if r != len(y) {
		return fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	mtry := m.cfg.MTry
	if mtry <= 0 {
		mtry = int(math.Ceil(float64(c) / 3))
	}
	tc := treeConfig{maxDepth: m.cfg.MaxDepth, minLeaf: m.cfg.MinLeaf, mtry: mtry}

	m.trees = make([]*treeNode, m.cfg.Trees)
	for t := 0; t < m.cfg.Trees; t++ {
		// Per-tree stream: tree t is the same regardless of how many trees
		// the ensemble grows or in which order they are built.
		rng := rand.New(rand.NewSource(m.cfg.Seed + int64(t)))
		rows := make([]int, r)
		for i := range rows {
			rows[i] = rng.Intn(r)
		}
		m.trees[t] = buildTree(X, y, rows, tc, rng, 0)
	}
	m.fitted = true
	return nil
}

func (m *Forest) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("forest model not fitted")
	}
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		var s float64
		for _, t := range m.trees {
			s += t.predict(X, i)
		}
		out[i] = s / float64(len(m.trees))
	}
	return out, nil
}
