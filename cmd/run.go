package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alxjhc/sf-airbnb/internal/dataset"
	"github.com/alxjhc/sf-airbnb/internal/feature"
	"github.com/alxjhc/sf-airbnb/internal/model"
	"github.com/alxjhc/sf-airbnb/internal/report"
	"github.com/alxjhc/sf-airbnb/internal/split"
	"github.com/alxjhc/sf-airbnb/internal/store"
	"github.com/alxjhc/sf-airbnb/internal/tune"
)

var (
	runSeed     int64
	runRatio    float64
	runFolds    int
	runWorkers  int
	runMetric   string
	runCap      float64
	runTarget   string
	runFamilies []string
	runOutPath  string
	runSave     bool
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <csv>",
	Short: "Run the full model-selection workflow on a listings CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration failed to load; check --config")
		}
		f := cmd.Flags()
		if f.Changed("seed") {
			cfg.Seed = runSeed
		}
		if f.Changed("train-ratio") {
			cfg.TrainRatio = runRatio
		}
		if f.Changed("folds") {
			cfg.Folds = runFolds
		}
		if f.Changed("workers") {
			cfg.Workers = runWorkers
		}
		if f.Changed("metric") {
			cfg.Metric = runMetric
		}
		if f.Changed("cap") {
			cfg.PriceCap = runCap
		}
		if f.Changed("target") {
			cfg.Target = runTarget
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		metric, err := tune.MetricByName(cfg.Metric)
		if err != nil {
			return err
		}
		families, err := pickFamilies(runFamilies)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}

		path := args[0]
		raw, err := dataset.Load(path, dataset.DefaultLoadOptions())
		if err != nil {
			return err
		}
		ds, err := dataset.Clean(raw, dataset.CleanOptions{
			Target:      cfg.Target,
			Cap:         cfg.PriceCap,
			Drop:        cfg.DropColumns,
			DeriveBools: cfg.DeriveBools,
		})
		if err != nil {
			return err
		}
		logger.Info("dataset cleaned",
			zap.Int("raw_rows", raw.Rows()),
			zap.Int("rows", ds.Rows()),
			zap.Int("columns", len(ds.Columns())))

		pipe := feature.Pipeline{
			Target:           cfg.Target,
			ImputePredictors: cfg.ImputePredictors,
			RareThreshold:    cfg.RareThreshold,
		}
		// Column references must resolve before any split or fit work.
		if err := pipe.Validate(ds); err != nil {
			return err
		}

		y, err := ds.Target(cfg.Target)
		if err != nil {
			return err
		}
		rng := split.NewRand(cfg.Seed)
		trainRows, testRows, err := split.TrainTest(y, cfg.TrainRatio, cfg.StratifyBins, rng)
		if err != nil {
			return err
		}
		trainDS, err := ds.Select(trainRows)
		if err != nil {
			return err
		}
		yTrain, err := trainDS.Target(cfg.Target)
		if err != nil {
			return err
		}
		foldIDs, err := split.Folds(yTrain, cfg.Folds, cfg.StratifyBins, rng)
		if err != nil {
			return err
		}

		opts := tune.Options{
			Folds:    cfg.Folds,
			Workers:  cfg.Workers,
			Seed:     cfg.Seed,
			Metric:   metric,
			Pipeline: pipe,
			Logger:   logger,
		}
		logger.Info("cross-validation starting",
			zap.Int("families", len(families)),
			zap.Int("folds", cfg.Folds),
			zap.Int("workers", cfg.Workers))
		start := time.Now()
		results, warnings, err := tune.CrossValidate(ctx, trainDS, foldIDs, families, gridOverrides(), opts)
		if err != nil {
			return err
		}
		logger.Info("cross-validation finished",
			zap.Int("grid_points", len(results)),
			zap.Duration("elapsed", time.Since(start)))

		sel, err := tune.Select(results)
		if err != nil {
			return err
		}
		final, err := tune.Evaluate(ds, trainRows, testRows, sel.Best, pipe, cfg.Seed, metric)
		if err != nil {
			return fmt.Errorf("final evaluation: %w", err)
		}

		rep := report.New(filepath.Base(path), ds.Rows(), len(trainRows), len(testRows),
			cfg.Seed, cfg.Folds, cfg.Metric, sel, final)
		rep.Warnings = warnings
		fmt.Println(rep.Markdown())

		if runOutPath != "" {
			b, err := rep.YAML()
			if err != nil {
				return err
			}
			if err := os.WriteFile(runOutPath, b, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s\n", runOutPath)
		}
		if runSave {
			st, err := store.Open(cfg.StorePath)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveRun(rep); err != nil {
				return err
			}
			fmt.Printf("✓ Saved run %s to %s\n", rep.RunID, st.Path())
		}
		return nil
	},
}

// pickFamilies resolves a family subset; empty means the whole registry.
func pickFamilies(names []string) ([]model.Family, error) {
	if len(names) == 0 {
		return model.Registry(), nil
	}
	out := make([]model.Family, 0, len(names))
	for _, n := range names {
		fam, ok := model.FamilyByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown model family %q", n)
		}
		out = append(out, fam)
	}
	return out, nil
}

func gridOverrides() map[string]model.Grid {
	out := make(map[string]model.Grid, len(cfg.Grids))
	for fam, g := range cfg.Grids {
		mg := make(model.Grid, len(g))
		for param, vals := range g {
			mg[param] = vals
		}
		out[fam] = mg
	}
	return out
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "random seed (overrides config)")
	runCmd.Flags().Float64Var(&runRatio, "train-ratio", 0.8, "training fraction of the split (overrides config)")
	runCmd.Flags().IntVar(&runFolds, "folds", 10, "cross-validation fold count (overrides config)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "parallel training workers (overrides config)")
	runCmd.Flags().StringVar(&runMetric, "metric", "rmse", "selection metric: rmse|mae|r2 (overrides config)")
	runCmd.Flags().Float64Var(&runCap, "cap", 1000, "target cap; rows above it are dropped (overrides config)")
	runCmd.Flags().StringVar(&runTarget, "target", "price", "target column (overrides config)")
	runCmd.Flags().StringSliceVar(&runFamilies, "families", nil, "model families to compare (default: all)")
	runCmd.Flags().StringVarP(&runOutPath, "output", "o", "", "optional path to write the report (YAML)")
	runCmd.Flags().BoolVar(&runSave, "save", false, "persist the run to the local history database")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "overall job timeout (0 = none)")
}
