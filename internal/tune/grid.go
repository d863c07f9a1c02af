package tune

import (
	"sort"

	"github.com/alxjhc/sf-airbnb/internal/model"
)

// GridPoint is one concrete hyperparameter assignment plus a complexity
// score used as the final selection tie-break: each parameter contributes
// the rank of its value within that parameter's sorted grid values, so lower
// totals mean simpler settings.
type GridPoint struct {
	Params     model.Params
	Complexity int
}

// Expand enumerates every combination of a grid's values in a deterministic
// order: parameter names sorted, values in listed order, last parameter
// varying fastest. An empty grid yields the single default point.
func Expand(g model.Grid) []GridPoint {
	names := make([]string, 0, len(g))
	for name, vals := range g {
		if len(vals) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return []GridPoint{{Params: model.Params{}}}
	}

	ranks := make(map[string]map[float64]int, len(names))
	for _, name := range names {
		sorted := append([]float64(nil), g[name]...)
		sort.Float64s(sorted)
		r := make(map[float64]int, len(sorted))
		for i, v := range sorted {
			if _, seen := r[v]; !seen {
				r[v] = i
			}
		}
		ranks[name] = r
	}

	points := []GridPoint{{Params: model.Params{}}}
	for _, name := range names {
		next := make([]GridPoint, 0, len(points)*len(g[name]))
		for _, pt := range points {
			for _, v := range g[name] {
				p := pt.Params.Clone()
				p[name] = v
				next = append(next, GridPoint{
					Params:     p,
					Complexity: pt.Complexity + ranks[name][v],
				})
			}
		}
		points = next
	}
	return points
}

// GridFor returns the effective grid for a family: the configured override
// when present, the family default otherwise.
func GridFor(fam model.Family, overrides map[string]model.Grid) model.Grid {
	if g, ok := overrides[fam.Name]; ok && len(g) > 0 {
		return g
	}
	return fam.DefaultGrid
}
