package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxjhc/sf-airbnb/internal/config"
	"github.com/alxjhc/sf-airbnb/internal/model"
)

func TestPickFamilies(t *testing.T) {
	all, err := pickFamilies(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(model.Registry()))

	subset, err := pickFamilies([]string{"linear", "knn"})
	require.NoError(t, err)
	require.Len(t, subset, 2)
	assert.Equal(t, "linear", subset[0].Name)
	assert.Equal(t, "knn", subset[1].Name)

	_, err = pickFamilies([]string{"linear", "svm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "svm")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "4f2a91bc", shortID("4f2a91bc-773e-4c11-9d57-0a6d2f9b1e88"))
	assert.Equal(t, "run-a", shortID("run-a"))
	assert.Equal(t, "", shortID(""))
}

func TestGridOverridesFromConfig(t *testing.T) {
	prev := cfg
	defer func() { cfg = prev }()

	cfg = &config.Global{
		Grids: map[string]map[string][]float64{
			"ridge": {"lambda": {0.5, 5}},
		},
	}
	got := gridOverrides()
	require.Contains(t, got, "ridge")
	assert.Equal(t, model.Grid{"lambda": {0.5, 5}}, got["ridge"])

	cfg = &config.Global{}
	assert.Empty(t, gridOverrides())
}
