package geotiff

import (
	"fmt"

	"github.com/lukeroth/gdal"
)

// FillFunc fills buf with the row-major values of the 1-based band.
type FillFunc func(band int, buf []float32)

// WriteTile creates a deflate-compressed Float32 GTiff of width×height with
// bands bands, filled one band at a time. The geotransform spans
// lonMin..lonMin+lonSpan and 90..-90.
func WriteTile(path string, width, height, bands int, lonMin, lonSpan float64, fill FillFunc) error {
	drv, err := gdal.GetDriverByName("GTiff")
	if err != nil {
		return fmt.Errorf("gtiff driver: %w", err)
	}
	ds := drv.Create(path, width, height, bands, gdal.Float32, []string{"COMPRESS=DEFLATE"})
	defer ds.Close()

	gt := [6]float64{lonMin, lonSpan / float64(width), 0, 90, 0, -180 / float64(height)}
	if err := ds.SetGeoTransform(gt); err != nil {
		return fmt.Errorf("set geotransform %s: %w", path, err)
	}

	buf := make([]float32, width*height)
	for b := 1; b <= bands; b++ {
		fill(b, buf)
		band := ds.RasterBand(b)
		if err := band.IO(gdal.Write, 0, 0, width, height, buf, width, height, 0, 0); err != nil {
			return fmt.Errorf("write band %d of %s: %w", b, path, err)
		}
	}
	return nil
}
