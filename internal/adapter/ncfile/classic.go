package ncfile

import (
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/era5land-etl/internal/domain"
)

func encodeClassic(path string, ds *domain.Dataset, _ int) (err error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cw.Close(); err == nil {
			err = cerr
		}
	}()

	latAttrs, err := attributeMap(ds.LatAttrs)
	if err != nil {
		return err
	}
	if err := cw.AddVar("lat", api.Variable{
		Values:     ds.Lat,
		Dimensions: []string{"lat"},
		Attributes: latAttrs,
	}); err != nil {
		return err
	}
	lonAttrs, err := attributeMap(ds.LonAttrs)
	if err != nil {
		return err
	}
	if err := cw.AddVar("lon", api.Variable{
		Values:     ds.Lon,
		Dimensions: []string{"lon"},
		Attributes: lonAttrs,
	}); err != nil {
		return err
	}

	cols := len(ds.Lon)
	for _, v := range ds.Vars {
		attrs, err := attributeMap(v.Attrs)
		if err != nil {
			return err
		}
		if err := cw.AddVar(v.Name, api.Variable{
			Values:     rows(v.Data, cols),
			Dimensions: []string{"lat", "lon"},
			Attributes: attrs,
		}); err != nil {
			return err
		}
	}

	global, err := attributeMap(ds.Attrs)
	if err != nil {
		return err
	}
	return cw.AddGlobalAttrs(global)
}

// rows views a row-major buffer as [][]float32 without copying.
func rows(data []float32, cols int) [][]float32 {
	out := make([][]float32, len(data)/cols)
	for r := range out {
		out[r] = data[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return out
}

func attributeMap(attrs domain.Attributes) (*util.OrderedMap, error) {
	keys := make([]string, len(attrs))
	vals := make(map[string]any, len(attrs))
	for i, a := range attrs {
		keys[i] = a.Name
		vals[a.Name] = a.Value
	}
	return util.NewOrderedMap(keys, vals)
}
