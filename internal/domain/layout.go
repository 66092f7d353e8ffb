package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"
)

// DateLayout is the yyyymmdd form used in file names and configuration.
const DateLayout = "20060102"

// Layout locates input tiles and output artifacts on disk.
type Layout struct {
	InputRoot    string
	OutputRoot   string
	TilePrefix   string // e.g. ERA5_LAND_DAILY
	TileExt      string // e.g. tif
	OutputPrefix string // e.g. ERA5_Land_Daily
}

// TilePattern returns the glob matching the tiles of a date:
// <input>/<yyyy>/<mm>/<prefix>_<yyyymmdd>*.<ext>.
func (l Layout) TilePattern(date time.Time) string {
	name := fmt.Sprintf("%s_%s*.%s", l.TilePrefix, date.Format(DateLayout), l.TileExt)
	return filepath.Join(l.InputRoot, date.Format("2006"), date.Format("01"), name)
}

// DiscoverTiles returns the two tiles of a date in lexicographic order, west
// half first.
func (l Layout) DiscoverTiles(date time.Time) ([]string, error) {
	pattern := l.TilePattern(date)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &IOError{Op: "glob", Path: pattern, Err: err}
	}
	slices.Sort(matches)
	if len(matches) != 2 {
		return nil, &InputDiscoveryError{Pattern: pattern, Found: matches}
	}
	return matches, nil
}

// ArtifactPath returns <output>/<category dir>/<yyyy>/<mm>/<prefix>_<tag>_<yyyymmdd>.nc.
func (l Layout) ArtifactPath(c Category, date time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.nc", l.OutputPrefix, c.FileTag(), date.Format(DateLayout))
	return filepath.Join(l.OutputRoot, filepath.FromSlash(c.Dir()), date.Format("2006"), date.Format("01"), name)
}
