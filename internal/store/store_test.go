package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxjhc/sf-airbnb/internal/report"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(id string, created time.Time) *report.Report {
	return &report.Report{
		RunID:     id,
		CreatedAt: created,
		Dataset:   "listings.csv",
		Rows:      6000,
		TrainRows: 4800,
		TestRows:  1200,
		Seed:      42,
		Folds:     10,
		Metric:    "rmse",
		Leaderboard: []report.Entry{
			{Family: "ridge", Params: "lambda=1", Mean: 47.9, StdErr: 1.2, Folds: 10},
			{Family: "knn", Params: "k=10", Mean: 64.2, StdErr: 2.8, Folds: 10},
		},
		Best:        report.Entry{Family: "ridge", Params: "lambda=1", Mean: 47.9, StdErr: 1.2, Folds: 10},
		FinalMetric: 49.3,
	}
}

func TestSaveAndListRuns(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(sampleReport("run-a", base)))
	require.NoError(t, s.SaveRun(sampleReport("run-b", base.Add(time.Hour))))

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)
	assert.Equal(t, "ridge", runs[0].BestFamily)
	assert.Equal(t, "lambda=1", runs[0].BestParams)
	assert.Equal(t, 49.3, runs[0].FinalMetric)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(time.Hour)))
}

func TestListRunsLimit(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.SaveRun(sampleReport(id, base.Add(time.Duration(i)*time.Minute))))
	}
	runs, err := s.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
}

func TestSaveRunDuplicateIDFails(t *testing.T) {
	s := openTemp(t)
	now := time.Now().UTC()
	require.NoError(t, s.SaveRun(sampleReport("dup", now)))
	assert.Error(t, s.SaveRun(sampleReport("dup", now)))

	// The failed insert must not leave partial leaderboard rows behind.
	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveRun(sampleReport("keep", time.Now().UTC())))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	runs, err := s2.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, path, s2.Path())
}
