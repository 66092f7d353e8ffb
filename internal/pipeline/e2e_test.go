package pipeline_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/era5land-etl/internal/adapter/geotiff"
	"github.com/couchcryptid/era5land-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/era5land-etl/internal/domain"
	"github.com/couchcryptid/era5land-etl/internal/observability"
	"github.com/couchcryptid/era5land-etl/internal/pipeline"
)

const tileBands = 150

// writeTilePair writes real GeoTIFF tiles holding the same values mockReader serves.
func writeTilePair(t *testing.T, layout domain.Layout) {
	t.Helper()
	dir := filepath.Join(layout.InputRoot, day1.Format("2006"), day1.Format("01"))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	h, w := testGrid.Rows, testGrid.Cols/2
	for side, lonMin := range []float64{-180, 0} {
		name := filepath.Join(dir, fmt.Sprintf("ERA5_LAND_DAILY_20240101_%d.tif", side))
		err := geotiff.WriteTile(name, w, h, tileBands, lonMin, 180, func(band int, buf []float32) {
			for cell := range buf {
				buf[cell] = float32(band*1000 + side*100 + cell)
			}
		})
		require.NoError(t, err)
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	f := newFixture(t)
	writeTilePair(t, f.layout)

	writer, err := ncfile.NewWriter(string(ncfile.FormatClassic), 5)
	require.NoError(t, err)
	p := pipeline.New(geotiff.NewReader(), writer, nil, f.opts, slog.Default(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background(), oneDay(day1))
	require.NoError(t, err)
	require.Zero(t, sum.Failed)
	assert.Equal(t, 5, sum.Artifacts)

	for _, c := range domain.AllCategories() {
		path := f.layout.ArtifactPath(c, day1)
		s, err := ncfile.Inspect(path)
		require.NoError(t, err, c.String())

		want := make([]string, 0, len(c.Bands()))
		for _, b := range c.Bands() {
			want = append(want, b.VarName)
		}
		assert.ElementsMatch(t, want, s.VarNames(), c.String())
		assert.InDeltaSlice(t, testGrid.Latitudes(), s.Lat, 1e-9)
		assert.InDeltaSlice(t, testGrid.Longitudes(), s.Lon, 1e-9)
		assert.Equal(t, domain.ConventionsCF, s.Attrs["Conventions"])
		assert.Equal(t, sum.RunID, s.Attrs["run_id"])
		assert.Equal(t, "Finalized on 2024-01-06 06:00:00", s.Attrs["ProcessingStatus"])
	}

	es := domain.Evaporation.Bands()[0]
	data, err := ncfile.ReadVariable(f.layout.ArtifactPath(domain.Evaporation, day1), es.VarName)
	require.NoError(t, err)
	assert.Equal(t, expectedBand(es.Index), data)

	again, err := p.Run(context.Background(), oneDay(day1))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Skipped)
	assert.Zero(t, again.Artifacts)
}
