package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGrid = Grid{Rows: 2, Cols: 4}

type fakeBands map[int][]float32

func (f fakeBands) Band(index int) ([]float32, bool) {
	b, ok := f[index]
	return b, ok
}

// bandsFor returns a 2×4 band per catalog entry, every cell holding the band index.
func bandsFor(c Category) fakeBands {
	f := fakeBands{}
	for _, b := range c.Bands() {
		data := make([]float32, testGrid.Rows*testGrid.Cols)
		for i := range data {
			data[i] = float32(b.Index)
		}
		f[b.Index] = data
	}
	return f
}

func TestBuild(t *testing.T) {
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	ds, err := Build(Evaporation, date, Evaporation.Bands(), bandsFor(Evaporation), testGrid)
	require.NoError(t, err)

	require.Len(t, ds.Vars, 6)
	es := ds.Var("Es")
	require.NotNil(t, es)
	assert.Equal(t, float32(35), es.Data[0])
	longName, _ := es.Attrs.Get("long_name")
	units, _ := es.Attrs.Get("units")
	assert.Equal(t, "Evaporation from bare soil", longName)
	assert.Equal(t, "mm day-1", units)

	assert.Equal(t, []float64{90, -90}, ds.Lat)
	assert.Equal(t, -180.0, ds.Lon[0])
	assert.Equal(t, 180.0, ds.Lon[3])
	conv, _ := ds.Attrs.Get("Conventions")
	assert.Equal(t, ConventionsCF, conv)
	latUnits, _ := ds.LatAttrs.Get("units")
	assert.Equal(t, "degrees_north", latUnits)
}

func TestBuild_MissingBand(t *testing.T) {
	src := bandsFor(Evaporation)
	delete(src, 38)
	_, err := Build(Evaporation, time.Now(), Evaporation.Bands(), src, testGrid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "band 38")
}

func TestBuild_WrongGrid(t *testing.T) {
	_, err := Build(Vegetation, time.Now(), Vegetation.Bands(), bandsFor(Vegetation), Grid{Rows: 3, Cols: 4})
	var shapeErr *ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}

func TestFinalize(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	ds, err := Build(Vegetation, time.Now(), Vegetation.Bands(), bandsFor(Vegetation), testGrid)
	require.NoError(t, err)

	meta := DefaultMetadata()
	meta.RunID = "run-1"
	meta.CreatedAt = time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC)
	Finalize(ds, meta)

	assert.Equal(t, []float64{45, -45}, ds.Lat)
	assert.Equal(t, []float64{-135, -45, 45, 135}, ds.Lon)

	want := map[string]string{
		"title":            "ERA5-Land daily data from 1950 to present",
		"Conventions":      "CF-1.6",
		"CreationDate":     "05-Mar-2024 14:00:00",
		"CreatedBy":        "era5land-etl",
		"run_id":           "run-1",
		"ProcessingStatus": "Finalized on 2024-03-05 14:30:00",
	}
	for k, v := range want {
		got, ok := ds.Attrs.Get(k)
		assert.True(t, ok, k)
		assert.Equal(t, v, got, k)
	}
	_, hasContact := ds.Attrs.Get("contact_info")
	assert.False(t, hasContact)

	conventions := 0
	for _, a := range ds.Attrs {
		if a.Name == "Conventions" {
			conventions++
		}
	}
	assert.Equal(t, 1, conventions, "Conventions must not be duplicated")
}

func TestSwapEvaporation_CycleOfThree(t *testing.T) {
	ds, err := Build(Evaporation, time.Now(), Evaporation.Bands(), bandsFor(Evaporation), testGrid)
	require.NoError(t, err)

	first := func(name string) float32 { return ds.Var(name).Data[0] }
	es, ew, et := first("Es"), first("Ew"), first("Et")

	require.NoError(t, SwapEvaporation(ds))
	assert.Equal(t, []float32{ew, et, es}, []float32{first("Es"), first("Ew"), first("Et")})
	assert.Equal(t, "Es", ds.Vars[0].Name, "variable identities stay in place")
	longName, _ := ds.Var("Es").Attrs.Get("long_name")
	assert.Equal(t, "Evaporation from bare soil", longName)

	require.NoError(t, SwapEvaporation(ds))
	assert.NotEqual(t, es, first("Es"), "two applications are not the identity")

	require.NoError(t, SwapEvaporation(ds))
	assert.Equal(t, []float32{es, ew, et}, []float32{first("Es"), first("Ew"), first("Et")})
	assert.Equal(t, float32(37), first("Ec"), "Ec is never touched")
}

func TestSwapEvaporation_WrongCategory(t *testing.T) {
	ds, err := Build(Soil, time.Now(), Soil.Bands(), bandsFor(Soil), testGrid)
	require.NoError(t, err)
	require.Error(t, SwapEvaporation(ds))
}
