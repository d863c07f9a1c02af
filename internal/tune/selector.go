package tune

import (
	"fmt"
	"sort"
)

// Selection is the outcome of model selection: the global winner and the
// per-family bests ranked by mean metric.
type Selection struct {
	Best    Result
	Ranking []Result // one entry per family, ascending mean
}

// Select picks the best grid point per family and ranks families by their
// best mean metric. It is a pure function of the metric records. Ties break
// by lower standard error, then lower complexity, then parameter string, so
// selection is total and deterministic — never by row position.
func Select(results []Result) (Selection, error) {
	if len(results) == 0 {
		return Selection{}, fmt.Errorf("no metric records to select from")
	}
	bestByFamily := map[string]Result{}
	order := []string{}
	for _, r := range results {
		cur, seen := bestByFamily[r.Family]
		if !seen {
			bestByFamily[r.Family] = r
			order = append(order, r.Family)
			continue
		}
		if better(r, cur) {
			bestByFamily[r.Family] = r
		}
	}
	ranking := make([]Result, 0, len(order))
	for _, fam := range order {
		ranking = append(ranking, bestByFamily[fam])
	}
	sort.SliceStable(ranking, func(i, j int) bool { return better(ranking[i], ranking[j]) })
	return Selection{Best: ranking[0], Ranking: ranking}, nil
}

// better reports whether a should be chosen over b.
func better(a, b Result) bool {
	if a.Mean != b.Mean {
		return a.Mean < b.Mean
	}
	if a.StdErr != b.StdErr {
		return a.StdErr < b.StdErr
	}
	if a.Complexity != b.Complexity {
		return a.Complexity < b.Complexity
	}
	return a.Params.String() < b.Params.String()
}
