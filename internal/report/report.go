// Package report renders the outcome of a selection run for humans (markdown)
// and for downstream consumers (yaml).
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/alxjhc/sf-airbnb/internal/tune"
)

// Entry is one leaderboard row: a family's best grid point.
type Entry struct {
	Family string  `yaml:"family"`
	Params string  `yaml:"params"`
	Mean   float64 `yaml:"mean"`
	StdErr float64 `yaml:"std_err"`
	Folds  int     `yaml:"folds"`
}

// Report captures everything a run produced.
type Report struct {
	RunID       string    `yaml:"run_id"`
	CreatedAt   time.Time `yaml:"created_at"`
	Dataset     string    `yaml:"dataset"`
	Rows        int       `yaml:"rows"`
	TrainRows   int       `yaml:"train_rows"`
	TestRows    int       `yaml:"test_rows"`
	Seed        int64     `yaml:"seed"`
	Folds       int       `yaml:"folds"`
	Metric      string    `yaml:"metric"`
	Leaderboard []Entry   `yaml:"leaderboard"`
	Best        Entry     `yaml:"best"`
	FinalMetric float64   `yaml:"final_metric"`
	Warnings    []string  `yaml:"warnings,omitempty"`
}

// New assembles a report from a selection and its final hold-out metric.
func New(dataset string, rows, trainRows, testRows int, seed int64, folds int, metric string, sel tune.Selection, final float64) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Dataset:     dataset,
		Rows:        rows,
		TrainRows:   trainRows,
		TestRows:    testRows,
		Seed:        seed,
		Folds:       folds,
		Metric:      metric,
		FinalMetric: final,
	}
	for _, res := range sel.Ranking {
		r.Leaderboard = append(r.Leaderboard, toEntry(res))
	}
	r.Best = toEntry(sel.Best)
	return r
}

func toEntry(res tune.Result) Entry {
	return Entry{
		Family: res.Family,
		Params: res.Params.String(),
		Mean:   res.Mean,
		StdErr: res.StdErr,
		Folds:  res.Folds,
	}
}

// Markdown renders the report in the compact section style used by inspect.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[MODEL SELECTION]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Dataset: %s (%d rows; %d train / %d test)\n", r.Dataset, r.Rows, r.TrainRows, r.TestRows))
	b.WriteString(fmt.Sprintf("Seed: %d  Folds: %d  Metric: %s\n\n", r.Seed, r.Folds, r.Metric))

	b.WriteString("[LEADERBOARD]\n")
	b.WriteString("| rank | family | params | mean | std err | folds |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for i, e := range r.Leaderboard {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %.4f | %.4f | %d |\n",
			i+1, e.Family, e.Params, e.Mean, e.StdErr, e.Folds))
	}

	b.WriteString("\n[FINAL EVALUATION]\n")
	b.WriteString(fmt.Sprintf("- winner: %s (%s)\n", r.Best.Family, r.Best.Params))
	b.WriteString(fmt.Sprintf("- hold-out %s: %.4f\n", r.Metric, r.FinalMetric))
	b.WriteString(fmt.Sprintf("- cross-validated %s: %.4f ± %.4f\n", r.Metric, r.Best.Mean, r.Best.StdErr))

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// YAML serializes the report for downstream consumers.
func (r *Report) YAML() ([]byte, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}
