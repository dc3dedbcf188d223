package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/rqerr"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ClusteringShared, cfg.ClusteringAlgorithm)
	assert.Equal(t, families.SortByTime, cfg.SortFamiliesBy)
	assert.Greater(t, cfg.CCMin, 0.0)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cc_min: 0.95\nclustering_algorithm: UPGMA\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, cfg.CCMin, 1e-9)
	assert.Equal(t, ClusteringUPGMA, cfg.ClusteringAlgorithm)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ClusteringShared, cfg.ClusteringAlgorithm)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("distance_from sort without a reference point is a config error", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig()
		cfg.SortFamiliesBy = families.SortByDistanceFrom
		err := cfg.Validate()
		require.Error(t, err)
		var rqErr *rqerr.Error
		require.ErrorAs(t, err, &rqErr)
		assert.Equal(t, rqerr.KindConfigError, rqErr.Kind)
	})

	t.Run("unknown clustering algorithm is a config error", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig()
		cfg.ClusteringAlgorithm = ClusteringAlgorithm("bogus")
		err := cfg.Validate()
		require.Error(t, err)
		var rqErr *rqerr.Error
		require.ErrorAs(t, err, &rqErr)
		assert.Equal(t, rqerr.KindConfigError, rqErr.Kind)
	})

	t.Run("valid defaults pass", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig()
		assert.NoError(t, cfg.Validate())
	})
}
