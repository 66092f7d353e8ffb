// Package geotiff reads ERA5-Land daily tiles through GDAL.
package geotiff

import (
	"context"
	"fmt"

	"github.com/lukeroth/gdal"

	"github.com/couchcryptid/era5land-etl/internal/domain"
)

// Reader loads selected bands from a GeoTIFF tile.
// It implements pipeline.TileReader.
type Reader struct{}

// NewReader returns a GDAL-backed tile reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadBands reads the given 1-based band indices, in order, into one
// band-major float32 buffer. The dataset is closed on every path.
func (r *Reader) ReadBands(ctx context.Context, path string, indices []int) (domain.Tile, error) {
	ds, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		return domain.Tile{}, &domain.IOError{Op: "open", Path: path, Err: err}
	}
	defer ds.Close()

	count := ds.RasterCount()
	for _, idx := range indices {
		if idx < 1 || idx > count {
			return domain.Tile{}, &domain.IOError{
				Op:   "read",
				Path: path,
				Err:  fmt.Errorf("band %d outside 1..%d", idx, count),
			}
		}
	}

	w, h := ds.RasterXSize(), ds.RasterYSize()
	n := w * h
	tile := domain.Tile{
		Path:    path,
		Indices: append([]int(nil), indices...),
		Height:  h,
		Width:   w,
		Data:    make([]float32, len(indices)*n),
	}

	for k, idx := range indices {
		if err := ctx.Err(); err != nil {
			return domain.Tile{}, err
		}
		buf := tile.Data[k*n : (k+1)*n]
		band := ds.RasterBand(idx)
		if err := band.IO(gdal.Read, 0, 0, w, h, buf, w, h, 0, 0); err != nil {
			return domain.Tile{}, &domain.IOError{Op: fmt.Sprintf("read band %d", idx), Path: path, Err: err}
		}
	}
	return tile, nil
}
