package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// A config file that sets nothing leaves every default in place.
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, 0.8, c.TrainRatio)
	assert.Equal(t, 10, c.Folds)
	assert.Equal(t, 4, c.StratifyBins)
	assert.Equal(t, "rmse", c.Metric)
	assert.Equal(t, "price", c.Target)
	assert.Equal(t, float64(1000), c.PriceCap)
	assert.GreaterOrEqual(t, c.Workers, 1)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `seed: 7
folds: 5
metric: mae
target: nightly_rate
grids:
  knn:
    k: [3, 9]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.Seed)
	assert.Equal(t, 5, c.Folds)
	assert.Equal(t, "mae", c.Metric)
	assert.Equal(t, "nightly_rate", c.Target)
	require.Contains(t, c.Grids, "knn")
	assert.Equal(t, []float64{3, 9}, c.Grids["knn"]["k"])

	// Unset keys still fall back.
	assert.Equal(t, 0.8, c.TrainRatio)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("folds: 1\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{
		Seed:          9,
		TrainRatio:    0.7,
		Folds:         5,
		StratifyBins:  3,
		Metric:        "rmse",
		Workers:       2,
		Target:        "price",
		PriceCap:      800,
		DropColumns:   []string{"id", "name"},
		RareThreshold: 0.05,
	}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.Seed, out.Seed)
	assert.Equal(t, in.TrainRatio, out.TrainRatio)
	assert.Equal(t, in.PriceCap, out.PriceCap)
	assert.Equal(t, in.DropColumns, out.DropColumns)
	assert.Equal(t, in.RareThreshold, out.RareThreshold)
}

func TestValidate(t *testing.T) {
	good := Global{
		TrainRatio:   0.8,
		Folds:        10,
		StratifyBins: 4,
		Workers:      1,
		Target:       "price",
		PriceCap:     1000,
	}
	require.NoError(t, good.Validate())

	cases := []struct {
		name   string
		mutate func(*Global)
	}{
		{"train ratio zero", func(c *Global) { c.TrainRatio = 0 }},
		{"train ratio one", func(c *Global) { c.TrainRatio = 1 }},
		{"single fold", func(c *Global) { c.Folds = 1 }},
		{"no bins", func(c *Global) { c.StratifyBins = 0 }},
		{"no workers", func(c *Global) { c.Workers = 0 }},
		{"empty target", func(c *Global) { c.Target = "" }},
		{"negative cap", func(c *Global) { c.PriceCap = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := good
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
