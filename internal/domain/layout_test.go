package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T) Layout {
	t.Helper()
	return Layout{
		InputRoot:    t.TempDir(),
		OutputRoot:   "/out",
		TilePrefix:   "ERA5_LAND_DAILY",
		TileExt:      "tif",
		OutputPrefix: "ERA5_Land_Daily",
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestLayout_ArtifactPath(t *testing.T) {
	l := testLayout(t)
	date := time.Date(2024, time.February, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t,
		filepath.Join("/out", "Evaporation_Flux", "ERA5L", "2024", "02", "ERA5_Land_Daily_ET_20240209.nc"),
		l.ArtifactPath(Evaporation, date))
	assert.Equal(t,
		filepath.Join("/out", "Precipitation_Runoff", "2024", "02", "ERA5_Land_Daily_RunoffPrecip_20240209.nc"),
		l.ArtifactPath(RunoffPrecip, date))
}

func TestLayout_DiscoverTiles(t *testing.T) {
	l := testLayout(t)
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	dir := filepath.Join(l.InputRoot, "2024", "01")

	t.Run("none", func(t *testing.T) {
		_, err := l.DiscoverTiles(date)
		var discErr *InputDiscoveryError
		require.ErrorAs(t, err, &discErr)
		assert.Empty(t, discErr.Found)
		assert.Equal(t, "input_discovery", ErrorKind(err))
	})

	touch(t, filepath.Join(dir, "ERA5_LAND_DAILY_20240101-0000000000-0000003584.tif"))
	t.Run("one", func(t *testing.T) {
		_, err := l.DiscoverTiles(date)
		var discErr *InputDiscoveryError
		require.ErrorAs(t, err, &discErr)
		assert.Len(t, discErr.Found, 1)
	})

	touch(t, filepath.Join(dir, "ERA5_LAND_DAILY_20240101-0000000000-0000000000.tif"))
	touch(t, filepath.Join(dir, "ERA5_LAND_DAILY_20240102-0000000000-0000000000.tif"))
	touch(t, filepath.Join(dir, "ERA5_LAND_DAILY_20240101.json"))
	t.Run("two sorted", func(t *testing.T) {
		tiles, err := l.DiscoverTiles(date)
		require.NoError(t, err)
		require.Len(t, tiles, 2)
		assert.Equal(t, "ERA5_LAND_DAILY_20240101-0000000000-0000000000.tif", filepath.Base(tiles[0]))
		assert.Equal(t, "ERA5_LAND_DAILY_20240101-0000000000-0000003584.tif", filepath.Base(tiles[1]))
	})
}
