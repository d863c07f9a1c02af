package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// BoostConfig holds the gradient boosting hyperparameters.
type BoostConfig struct {
	Trees     int
	Depth     int
	LearnRate float64
	// Subsample is the row fraction drawn without replacement per stage;
	// 0 uses 0.8.
	Subsample float64
	Seed      int64
}

// Boost is gradient-boosted regression: shallow trees fitted to residuals
// under a shrinkage factor, starting from the target mean.
type Boost struct {
	cfg    BoostConfig
	base   float64
	trees  []*treeNode
	fitted bool
}

// NewBoost returns a gradient boosting regressor.
func NewBoost(cfg BoostConfig) (*Boost, error) {
	if cfg.Trees < 1 {
		return nil, fmt.Errorf("boost trees must be >= 1, got %d", cfg.Trees)
	}
	if cfg.Depth < 1 {
		return nil, fmt.Errorf("boost depth must be >= 1, got %d", cfg.Depth)
	}
	if cfg.LearnRate <= 0 || cfg.LearnRate > 1 {
		return nil, fmt.Errorf("boost learn_rate must be in (0,1], got %g", cfg.LearnRate)
	}
	if cfg.Subsample == 0 {
		cfg.Subsample = 0.8
	}
	if cfg.Subsample < 0 || cfg.Subsample > 1 {
		return nil, fmt.Errorf("boost subsample must be in (0,1], got %g", cfg.Subsample)
	}
	return &Boost{cfg: cfg}, nil
}

func (m *Boost) Fit(X *mat.Dense, y []float64) error {
	r, _ := X.Dims()
	if r != len(y) {
		return fmt.Errorf("X has %d rows, y has %d", r, len(y))
	}
	m.base = meanOf(y)
	resid := make([]float64, r)
	for i, v := range y {
		resid[i] = v - m.base
	}
	tc := treeConfig{maxDepth: m.cfg.Depth, minLeaf: 1}
	nSub := int(m.cfg.Subsample * float64(r))
	if nSub < 1 {
		nSub = 1
	}

	all := make([]int, r)
	for i := range all {
		all[i] = i
	}
	m.trees = make([]*treeNode, 0, m.cfg.Trees)
	for t := 0; t < m.cfg.Trees; t++ {
		rng := rand.New(rand.NewSource(m.cfg.Seed + int64(t)))
		rows := all
		if nSub < r {
			perm := rng.Perm(r)[:nSub]
			rows = perm
		}
		tree := buildTree(X, resid, rows, tc, rng, 0)
		m.trees = append(m.trees, tree)
		for i := 0; i < r; i++ {
			resid[i] -= m.cfg.LearnRate * tree.predict(X, i)
		}
	}
	m.fitted = true
	return nil
}

func (m *Boost) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("boost model not fitted")
	}
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := m.base
		for _, t := range m.trees {
			v += m.cfg.LearnRate * t.predict(X, i)
		}
		out[i] = v
	}
	return out, nil
}
