// Package ncfile persists category datasets as NetCDF files and reads them back.
package ncfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/era5land-etl/internal/domain"
)

// Format selects the on-disk encoding.
type Format string

const (
	// FormatNetCDF4 writes HDF5-backed NetCDF-4 with per-variable deflate. Needs libnetcdf.
	FormatNetCDF4 Format = "netcdf4"
	// FormatClassic writes uncompressed CDF-1 in pure Go.
	FormatClassic Format = "classic"
)

type encodeFunc func(path string, ds *domain.Dataset, level int) error

// Writer writes datasets atomically: the file is encoded under a hidden
// sibling name and renamed into place only once complete.
// It implements pipeline.DatasetWriter.
type Writer struct {
	format Format
	level  int
	encode encodeFunc
}

// NewWriter returns a writer for the given format. level is the deflate level
// for netcdf4 and is ignored for classic.
func NewWriter(format string, level int) (*Writer, error) {
	w := &Writer{format: Format(format), level: level}
	switch w.format {
	case FormatNetCDF4:
		w.encode = encodeNetCDF4
	case FormatClassic:
		w.encode = encodeClassic
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	if level < 0 || level > 9 {
		return nil, fmt.Errorf("compression level %d outside 0..9", level)
	}
	return w, nil
}

// Format reports the configured encoding.
func (w *Writer) Format() Format { return w.format }

// Write encodes ds to path, creating parent directories. Failures leave
// neither a partial file at path nor a temporary file behind.
func (w *Writer) Write(ctx context.Context, ds *domain.Dataset, path string) error {
	if err := ctx.Err(); err != nil {
		return &domain.WriteError{Path: path, Err: err}
	}
	if err := checkDataset(ds); err != nil {
		return &domain.WriteError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".partial-*")
	if err != nil {
		return &domain.WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return &domain.WriteError{Path: path, Err: err}
	}

	if err := w.encode(tmpPath, ds, w.level); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return &domain.WriteError{Path: path, Err: fmt.Errorf("encode %s: %w", w.format, err)}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return &domain.WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return &domain.WriteError{Path: path, Err: err}
	}
	return nil
}

func checkDataset(ds *domain.Dataset) error {
	rows, cols := len(ds.Lat), len(ds.Lon)
	if rows == 0 || cols == 0 {
		return fmt.Errorf("empty coordinate axis (%d×%d)", rows, cols)
	}
	for _, v := range ds.Vars {
		if len(v.Data) != rows*cols {
			return &domain.ShapeMismatchError{
				What: "variable " + v.Name,
				Want: fmt.Sprintf("%d values", rows*cols),
				Got:  fmt.Sprintf("%d values", len(v.Data)),
			}
		}
	}
	return nil
}
