// Package tune runs the model-selection workflow: grid search with k-fold
// cross-validation, programmatic selection, and the final hold-out
// evaluation.
package tune

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/alxjhc/sf-airbnb/internal/dataset"
	"github.com/alxjhc/sf-airbnb/internal/feature"
	"github.com/alxjhc/sf-airbnb/internal/model"
)

// Result is the aggregated cross-validation outcome for one grid point.
type Result struct {
	Family     string
	Params     model.Params
	Complexity int
	Mean       float64
	StdErr     float64
	Folds      int       // folds that produced a metric
	PerFold    []float64 // NaN marks a failed fold
}

// Options configures a cross-validation run.
type Options struct {
	Folds    int
	Workers  int
	Seed     int64
	Metric   MetricFunc
	Pipeline feature.Pipeline
	Logger   *zap.Logger
}

// foldData is the fold-local state shared read-only by every model trained
// against that fold: a pipeline fitted on the fold's training union, plus
// the transformed matrices. Each fold fits its own pipeline so no held-out
// information reaches any fit.
type foldData struct {
	xTrain, xHeld *mat.Dense
	yTrain, yHeld []float64
	err           error
}

// CrossValidate trains every (family, grid point) pair on each fold's
// training union and scores it on the held-out fold. A fold that fails to
// train records a missing metric; a grid point whose folds all fail is
// excluded from the returned results, and each exclusion is reported in the
// returned warnings so the run report can carry it.
func CrossValidate(ctx context.Context, ds *dataset.Dataset, foldIDs []int, families []model.Family, overrides map[string]model.Grid, opt Options) ([]Result, []string, error) {
	if opt.Folds < 2 {
		return nil, nil, fmt.Errorf("fold count must be >= 2, got %d", opt.Folds)
	}
	if len(foldIDs) != ds.Rows() {
		return nil, nil, fmt.Errorf("fold assignment covers %d rows, dataset has %d", len(foldIDs), ds.Rows())
	}
	if opt.Metric == nil {
		opt.Metric = RMSE
	}
	if err := opt.Pipeline.Validate(ds); err != nil {
		return nil, nil, err
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opt.Workers
	if workers < 1 {
		workers = 1
	}

	folds, err := prepareFolds(ds, foldIDs, opt)
	if err != nil {
		return nil, nil, err
	}

	type unit struct {
		fam  int
		pt   int
		fold int
	}
	points := make([][]GridPoint, len(families))
	scores := make([][][]float64, len(families))
	var units []unit
	for fi, fam := range families {
		points[fi] = Expand(GridFor(fam, overrides))
		scores[fi] = make([][]float64, len(points[fi]))
		for pi := range points[fi] {
			scores[fi][pi] = make([]float64, opt.Folds)
			for f := 0; f < opt.Folds; f++ {
				scores[fi][pi][f] = math.NaN()
				units = append(units, unit{fam: fi, pt: pi, fold: f})
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fd := folds[u.fold]
			if fd.err != nil {
				return nil // fold-level pipeline failure already logged
			}
			fam := families[u.fam]
			pt := points[u.fam][u.pt]
			reg, err := fam.New(pt.Params, unitSeed(opt.Seed, fam.Name, u.pt, u.fold))
			if err != nil {
				return fmt.Errorf("construct %s (%s): %w", fam.Name, pt.Params, err)
			}
			if err := reg.Fit(fd.xTrain, fd.yTrain); err != nil {
				log.Debug("fold training failed",
					zap.String("family", fam.Name),
					zap.String("params", pt.Params.String()),
					zap.Int("fold", u.fold),
					zap.Error(err))
				return nil
			}
			pred, err := reg.Predict(fd.xHeld)
			if err != nil {
				log.Debug("fold prediction failed",
					zap.String("family", fam.Name),
					zap.String("params", pt.Params.String()),
					zap.Int("fold", u.fold),
					zap.Error(err))
				return nil
			}
			scores[u.fam][u.pt][u.fold] = opt.Metric(pred, fd.yHeld)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var results []Result
	var warnings []string
	for fi, fam := range families {
		for pi, pt := range points[fi] {
			res := aggregate(fam.Name, pt, scores[fi][pi])
			if res.Folds == 0 {
				log.Warn("grid point excluded: every fold failed",
					zap.String("family", fam.Name),
					zap.String("params", pt.Params.String()))
				warnings = append(warnings,
					fmt.Sprintf("%s (%s) excluded: every fold failed to produce a metric", fam.Name, pt.Params))
				continue
			}
			results = append(results, res)
		}
	}
	if len(results) == 0 {
		return nil, nil, fmt.Errorf("no grid point produced a metric on any fold")
	}
	return results, warnings, nil
}

// prepareFolds fits one pipeline per fold on that fold's training union and
// transforms both partitions. The result is immutable for the rest of the
// run.
func prepareFolds(ds *dataset.Dataset, foldIDs []int, opt Options) ([]*foldData, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]*foldData, opt.Folds)
	anyOK := false
	var firstErr error
	for f := 0; f < opt.Folds; f++ {
		var trainRows, heldRows []int
		for i, id := range foldIDs {
			if id == f {
				heldRows = append(heldRows, i)
			} else {
				trainRows = append(trainRows, i)
			}
		}
		fd := &foldData{}
		out[f] = fd
		if len(heldRows) == 0 || len(trainRows) == 0 {
			fd.err = fmt.Errorf("fold %d is empty", f)
			if firstErr == nil {
				firstErr = fd.err
			}
			log.Warn("skipping empty fold", zap.Int("fold", f))
			continue
		}
		fd.err = fillFold(ds, trainRows, heldRows, opt.Pipeline, fd)
		if fd.err != nil {
			if firstErr == nil {
				firstErr = fd.err
			}
			log.Warn("fold pipeline fit failed", zap.Int("fold", f), zap.Error(fd.err))
			continue
		}
		anyOK = true
	}
	if !anyOK {
		return nil, fmt.Errorf("feature pipeline failed on every fold: %w", firstErr)
	}
	return out, nil
}

func fillFold(ds *dataset.Dataset, trainRows, heldRows []int, pipe feature.Pipeline, fd *foldData) error {
	trainDS, err := ds.Select(trainRows)
	if err != nil {
		return err
	}
	heldDS, err := ds.Select(heldRows)
	if err != nil {
		return err
	}
	fitted, err := pipe.Fit(trainDS)
	if err != nil {
		return err
	}
	if fd.xTrain, err = fitted.Transform(trainDS); err != nil {
		return err
	}
	if fd.xHeld, err = fitted.Transform(heldDS); err != nil {
		return err
	}
	if fd.yTrain, err = fitted.TargetVector(trainDS); err != nil {
		return err
	}
	fd.yHeld, err = fitted.TargetVector(heldDS)
	return err
}

// aggregate reduces per-fold metrics to mean and standard error over the
// folds that produced a value.
func aggregate(family string, pt GridPoint, perFold []float64) Result {
	var ok []float64
	for _, v := range perFold {
		if !math.IsNaN(v) {
			ok = append(ok, v)
		}
	}
	res := Result{
		Family:     family,
		Params:     pt.Params,
		Complexity: pt.Complexity,
		Folds:      len(ok),
		PerFold:    append([]float64(nil), perFold...),
	}
	if len(ok) == 0 {
		return res
	}
	res.Mean = stat.Mean(ok, nil)
	if len(ok) > 1 {
		res.StdErr = stat.StdDev(ok, nil) / math.Sqrt(float64(len(ok)))
	}
	return res
}

// unitSeed derives a per-unit seed so stochastic families are reproducible
// regardless of scheduling order.
func unitSeed(seed int64, family string, point, fold int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d/%d", family, point, fold)
	return seed + int64(h.Sum64()&0x7fffffff)
}
