// Package model defines the regressor contract and the registry of model
// families the tuner searches over.
package model

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Regressor is the contract every model family implements. Fit must be
// called before Predict; implementations return an error otherwise.
type Regressor interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) ([]float64, error)
}

// Params is one concrete hyperparameter assignment (a grid point).
type Params map[string]float64

// Get reads a parameter with a default for absent keys.
func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// String renders parameters deterministically, sorted by key.
func (p Params) String() string {
	if len(p) == 0 {
		return "(defaults)"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, p[k]))
	}
	return strings.Join(parts, " ")
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Grid enumerates candidate values per tunable parameter.
type Grid map[string][]float64

// Factory builds a fresh regressor for a grid point. seed feeds families
// with internal randomness (tree ensembles); deterministic families ignore
// it.
type Factory func(p Params, seed int64) (Regressor, error)

// Family pairs a named model family with its constructor and default grid.
type Family struct {
	Name        string
	New         Factory
	DefaultGrid Grid
}

// Registry returns all families in a fixed order.
func Registry() []Family {
	return []Family{
		{
			Name:        "linear",
			New:         func(Params, int64) (Regressor, error) { return NewLinear(), nil },
			DefaultGrid: Grid{},
		},
		{
			Name: "polynomial",
			New: func(p Params, _ int64) (Regressor, error) {
				return NewPolynomial(int(p.Get("degree", 2)))
			},
			DefaultGrid: Grid{"degree": {1, 2, 3}},
		},
		{
			Name: "ridge",
			New: func(p Params, _ int64) (Regressor, error) {
				return NewRidge(p.Get("lambda", 1))
			},
			DefaultGrid: Grid{"lambda": {0.001, 0.01, 0.1, 1, 10, 100}},
		},
		{
			Name: "lasso",
			New: func(p Params, _ int64) (Regressor, error) {
				return NewElasticNet(p.Get("lambda", 0.1), 1)
			},
			DefaultGrid: Grid{"lambda": {0.001, 0.01, 0.1, 1, 10}},
		},
		{
			Name: "elasticnet",
			New: func(p Params, _ int64) (Regressor, error) {
				return NewElasticNet(p.Get("lambda", 0.1), p.Get("mixing", 0.5))
			},
			DefaultGrid: Grid{
				"lambda": {0.001, 0.01, 0.1, 1, 10},
				"mixing": {0.1, 0.5, 0.9},
			},
		},
		{
			Name: "knn",
			New: func(p Params, _ int64) (Regressor, error) {
				return NewKNN(int(p.Get("k", 5)))
			},
			DefaultGrid: Grid{"k": {3, 5, 10, 20, 40}},
		},
		{
			Name: "forest",
			New: func(p Params, seed int64) (Regressor, error) {
				return NewForest(ForestConfig{
					Trees:    int(p.Get("trees", 100)),
					MaxDepth: int(p.Get("max_depth", 10)),
					MinLeaf:  int(p.Get("min_leaf", 1)),
					Seed:     seed,
				})
			},
			DefaultGrid: Grid{
				"trees":     {100},
				"max_depth": {10, 20},
				"min_leaf":  {1, 5},
			},
		},
		{
			Name: "boost",
			New: func(p Params, seed int64) (Regressor, error) {
				return NewBoost(BoostConfig{
					Trees:     int(p.Get("trees", 100)),
					Depth:     int(p.Get("depth", 3)),
					LearnRate: p.Get("learn_rate", 0.1),
					Seed:      seed,
				})
			},
			DefaultGrid: Grid{
				"trees":      {100, 300},
				"depth":      {3, 5},
				"learn_rate": {0.05, 0.1},
			},
		},
	}
}

// FamilyByName resolves a family from the registry.
func FamilyByName(name string) (Family, bool) {
	for _, f := range Registry() {
		if f.Name == name {
			return f, true
		}
	}
	return Family{}, false
}
