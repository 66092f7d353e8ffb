package ncfile

import (
	"github.com/fhs/go-netcdf/netcdf"

	"github.com/couchcryptid/era5land-etl/internal/domain"
)

func encodeNetCDF4(path string, ds *domain.Dataset, level int) (err error) {
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	latDim, err := f.AddDim("lat", uint64(len(ds.Lat)))
	if err != nil {
		return err
	}
	lonDim, err := f.AddDim("lon", uint64(len(ds.Lon)))
	if err != nil {
		return err
	}

	latVar, err := f.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	if err := writeAttrs(latVar.Attr, ds.LatAttrs); err != nil {
		return err
	}
	lonVar, err := f.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	if err := writeAttrs(lonVar.Attr, ds.LonAttrs); err != nil {
		return err
	}

	dataVars := make([]netcdf.Var, len(ds.Vars))
	for i, v := range ds.Vars {
		nv, err := f.AddVar(v.Name, netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})
		if err != nil {
			return err
		}
		if level > 0 {
			if err := nv.SetCompression(true, true, level); err != nil {
				return err
			}
		}
		if err := writeAttrs(nv.Attr, v.Attrs); err != nil {
			return err
		}
		dataVars[i] = nv
	}
	if err := writeAttrs(f.Attr, ds.Attrs); err != nil {
		return err
	}
	if err := f.EndDef(); err != nil {
		return err
	}

	if err := latVar.WriteFloat64s(ds.Lat); err != nil {
		return err
	}
	if err := lonVar.WriteFloat64s(ds.Lon); err != nil {
		return err
	}
	for i, v := range ds.Vars {
		if err := dataVars[i].WriteFloat32s(v.Data); err != nil {
			return err
		}
	}
	return nil
}

// writeAttrs stores each attribute as NC_CHAR text.
func writeAttrs(attr func(string) netcdf.Attr, attrs domain.Attributes) error {
	for _, a := range attrs {
		if err := attr(a.Name).WriteBytes([]byte(a.Value)); err != nil {
			return err
		}
	}
	return nil
}
