// Package feature turns a cleaned dataset into a model-ready matrix. A
// Pipeline is fitted on the training partition only; the resulting Fitted
// value applies the captured parameters to any later partition, so test
// information can never leak into the fit.
package feature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/alxjhc/sf-airbnb/internal/dataset"
)

// Pipeline declares the transform sequence: numeric imputation by linear
// regression against a fixed predictor set (mean fallback), categorical mode
// imputation, rare-level collapse, one-hot encoding, and centering/scaling.
// Transform is only reachable through the Fitted value Fit returns.
type Pipeline struct {
	// Target is excluded from the feature matrix.
	Target string
	// ImputePredictors are the numeric columns regressed against to fill
	// missing numerics. Empty disables regression imputation (mean is used).
	ImputePredictors []string
	// RareThreshold collapses categorical levels seen in less than this
	// fraction of fit rows into a catch-all level.
	RareThreshold float64
}

type linImputer struct {
	predictors []string
	means      []float64 // fit-time predictor means, fill-in for their gaps
	coef       []float64
	intercept  float64
}

type numericParams struct {
	name    string
	mean    float64
	scale   float64
	imputer *linImputer // nil = impute with mean
}

type catParams struct {
	name     string
	mode     string
	levels   []string // kept levels, sorted; levels[0] is the baseline
	hasOther bool
}

// Fitted holds the parameters captured by Fit. It is immutable; Transform is
// a pure function of these parameters and its input.
type Fitted struct {
	target string
	nums   []numericParams
	cats   []catParams
	names  []string
}

// Fit captures imputation regressions, category vocabularies, and scaling
// parameters from the training partition.
func (p Pipeline) Fit(ds *dataset.Dataset) (*Fitted, error) {
	if _, ok := ds.Column(p.Target); !ok {
		return nil, fmt.Errorf("target column %q not in dataset", p.Target)
	}
	predictors, err := p.resolvePredictors(ds)
	if err != nil {
		return nil, err
	}

	f := &Fitted{target: p.Target}
	for _, c := range ds.Columns() {
		if c.Name == p.Target {
			continue
		}
		switch c.Kind {
		case dataset.KindNumeric, dataset.KindBool:
			np, err := fitNumeric(ds, c, predictors)
			if err != nil {
				return nil, err
			}
			f.nums = append(f.nums, np)
		case dataset.KindCategorical:
			cp, err := fitCategorical(ds, c, p.RareThreshold)
			if err != nil {
				return nil, err
			}
			f.cats = append(f.cats, cp)
		}
	}
	// Matrix layout: all numeric columns first, then the one-hot blocks.
	for _, np := range f.nums {
		f.names = append(f.names, np.name)
	}
	for _, cp := range f.cats {
		for _, lv := range cp.levels[1:] {
			f.names = append(f.names, cp.name+"="+lv)
		}
		if cp.hasOther {
			f.names = append(f.names, cp.name+"=other")
		}
	}
	if len(f.names) == 0 {
		return nil, fmt.Errorf("no feature columns left after excluding target %q", p.Target)
	}
	return f, nil
}

// Validate checks the pipeline's column references against a dataset schema
// without fitting anything, so a misconfigured predictor set is reported
// before any split or fold work starts.
func (p Pipeline) Validate(ds *dataset.Dataset) error {
	if _, ok := ds.Column(p.Target); !ok {
		return fmt.Errorf("target column %q not in dataset", p.Target)
	}
	_, err := p.resolvePredictors(ds)
	return err
}

func (p Pipeline) resolvePredictors(ds *dataset.Dataset) ([]string, error) {
	out := make([]string, 0, len(p.ImputePredictors))
	for _, name := range p.ImputePredictors {
		if name == p.Target {
			continue
		}
		c, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("impute predictor %q not in dataset", name)
		}
		if c.Kind == dataset.KindCategorical {
			return nil, fmt.Errorf("impute predictor %q is categorical", name)
		}
		if c.MissingCount() == len(c.Missing) {
			return nil, fmt.Errorf("impute predictor %q is entirely missing", name)
		}
		out = append(out, name)
	}
	return out, nil
}

func fitNumeric(ds *dataset.Dataset, c *dataset.Column, predictors []string) (numericParams, error) {
	var sum float64
	n := 0
	for i, v := range c.Nums {
		if !c.Missing[i] {
			sum += v
			n++
		}
	}
	if n == 0 {
		return numericParams{}, fmt.Errorf("numeric column %q is entirely missing in the fit partition", c.Name)
	}
	mean := sum / float64(n)

	np := numericParams{name: c.Name, mean: mean}
	if c.MissingCount() > 0 && len(predictors) > 0 {
		np.imputer = fitImputer(ds, c, predictors)
	}

	// Mean and scale are computed over imputed values so Transform sees the
	// same distribution the scaler was fitted on.
	filled := imputedValues(ds, c, np.imputer, mean)
	m, sd := meanStd(filled)
	np.mean = m
	np.scale = sd
	if np.scale == 0 {
		np.scale = 1
	}
	return np, nil
}

// fitImputer regresses the column on the predictor set over rows where the
// column is observed. A singular system falls back to mean imputation.
func fitImputer(ds *dataset.Dataset, c *dataset.Column, predictors []string) *linImputer {
	self := -1
	preds := make([]*dataset.Column, 0, len(predictors))
	names := make([]string, 0, len(predictors))
	for _, name := range predictors {
		if name == c.Name {
			self = len(preds)
		}
		pc, _ := ds.Column(name)
		preds = append(preds, pc)
		names = append(names, name)
	}
	// A column cannot predict itself.
	if self >= 0 {
		preds = append(preds[:self], preds[self+1:]...)
		names = append(names[:self], names[self+1:]...)
	}
	if len(preds) == 0 {
		return nil
	}

	means := make([]float64, len(preds))
	for j, pc := range preds {
		var s float64
		n := 0
		for i, v := range pc.Nums {
			if !pc.Missing[i] {
				s += v
				n++
			}
		}
		means[j] = s / float64(n)
	}

	var rows []int
	for i := range c.Nums {
		if !c.Missing[i] {
			rows = append(rows, i)
		}
	}
	if len(rows) <= len(preds)+1 {
		return nil
	}
	X := mat.NewDense(len(rows), len(preds)+1, nil)
	y := mat.NewVecDense(len(rows), nil)
	for ri, i := range rows {
		X.Set(ri, 0, 1)
		for j, pc := range preds {
			v := means[j]
			if !pc.Missing[i] {
				v = pc.Nums[i]
			}
			X.Set(ri, j+1, v)
		}
		y.SetVec(ri, c.Nums[i])
	}
	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(len(preds)+1, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil
	}
	coef := make([]float64, len(preds))
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	for _, v := range coef {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	return &linImputer{predictors: names, means: means, coef: coef, intercept: beta.AtVec(0)}
}

// imputedValues returns the column with gaps filled, on the raw scale.
func imputedValues(ds *dataset.Dataset, c *dataset.Column, imp *linImputer, mean float64) []float64 {
	out := make([]float64, len(c.Nums))
	for i, v := range c.Nums {
		if !c.Missing[i] {
			out[i] = v
			continue
		}
		if imp != nil {
			out[i] = imp.predict(ds, i)
		} else {
			out[i] = mean
		}
	}
	return out
}

func (imp *linImputer) predict(ds *dataset.Dataset, row int) float64 {
	v := imp.intercept
	for j, name := range imp.predictors {
		pc, ok := ds.Column(name)
		x := imp.means[j]
		if ok && !pc.Missing[row] {
			x = pc.Nums[row]
		}
		v += imp.coef[j] * x
	}
	return v
}

func fitCategorical(ds *dataset.Dataset, c *dataset.Column, rareThreshold float64) (catParams, error) {
	counts := map[string]int{}
	n := 0
	for i, s := range c.Strs {
		if !c.Missing[i] {
			counts[s]++
			n++
		}
	}
	if n == 0 {
		return catParams{}, fmt.Errorf("categorical column %q is entirely missing in the fit partition", c.Name)
	}
	mode := ""
	best := -1
	for _, lv := range c.Levels() {
		if counts[lv] > best {
			best = counts[lv]
			mode = lv
		}
	}
	minCount := int(math.Ceil(rareThreshold * float64(n)))
	var kept []string
	rare := false
	for _, lv := range c.Levels() {
		if counts[lv] >= minCount {
			kept = append(kept, lv)
		} else {
			rare = true
		}
	}
	if len(kept) == 0 {
		// Everything was rare; the catch-all becomes the only level.
		return catParams{name: c.Name, mode: mode, levels: []string{"other"}, hasOther: false}, nil
	}
	return catParams{name: c.Name, mode: mode, levels: kept, hasOther: rare}, nil
}

// FeatureNames returns the output column names in matrix order.
func (f *Fitted) FeatureNames() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Transform applies the fitted parameters to a dataset and returns the
// design matrix. The input schema must contain every column seen at fit
// time. Applying Transform twice to the same input yields the same output.
func (f *Fitted) Transform(ds *dataset.Dataset) (*mat.Dense, error) {
	X := mat.NewDense(ds.Rows(), len(f.names), nil)
	col := 0
	for _, np := range f.nums {
		c, ok := ds.Column(np.name)
		if !ok {
			return nil, fmt.Errorf("column %q missing from transform input", np.name)
		}
		if c.Kind == dataset.KindCategorical {
			return nil, fmt.Errorf("column %q is categorical, fitted as numeric", np.name)
		}
		filled := imputedValues(ds, c, np.imputer, np.mean)
		for i, v := range filled {
			X.Set(i, col, (v-np.mean)/np.scale)
		}
		col++
	}
	for _, cp := range f.cats {
		c, ok := ds.Column(cp.name)
		if !ok {
			return nil, fmt.Errorf("column %q missing from transform input", cp.name)
		}
		if c.Kind != dataset.KindCategorical {
			return nil, fmt.Errorf("column %q is %s, fitted as categorical", cp.name, c.Kind)
		}
		keptIdx := make(map[string]int, len(cp.levels))
		for j, lv := range cp.levels {
			keptIdx[lv] = j
		}
		width := len(cp.levels) - 1
		otherCol := -1
		if cp.hasOther {
			otherCol = col + width
			width++
		}
		for i := 0; i < ds.Rows(); i++ {
			v := cp.mode
			if !c.Missing[i] {
				v = c.Strs[i]
			}
			if j, ok := keptIdx[v]; ok {
				if j > 0 {
					X.Set(i, col+j-1, 1)
				}
				continue
			}
			// Rare at fit time, or unseen: the catch-all level.
			if otherCol >= 0 {
				X.Set(i, otherCol, 1)
			}
		}
		col += width
	}
	return X, nil
}

// TargetVector extracts the target column Fit was configured with.
func (f *Fitted) TargetVector(ds *dataset.Dataset) ([]float64, error) {
	return ds.Target(f.target)
}

func meanStd(vals []float64) (mean, std float64) {
	n := float64(len(vals))
	if n == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= n
	if len(vals) < 2 {
		return mean, 0
	}
	var m2 float64
	for _, v := range vals {
		d := v - mean
		m2 += d * d
	}
	return mean, math.Sqrt(m2 / (n - 1))
}
