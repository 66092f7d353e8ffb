// Command gentiles writes synthetic ERA5-Land daily tile pairs for smoke runs
// of the converter. Every band of every cell carries a value derived from its
// band index, row and hemisphere, and evaporation bands are negative metres
// as in the upstream export, so converted artifacts can be checked by eye.
//
// Usage:
//
//	go run ./cmd/gentiles \
//	  -input-root data/tif \
//	  -start 20240101 -end 20240103 \
//	  -rows 180 -cols 360
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/era5land-etl/internal/adapter/geotiff"
	"github.com/couchcryptid/era5land-etl/internal/domain"
)

// bandCount covers the highest catalog index.
const bandCount = 150

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	inputRoot := flag.String("input-root", "", "root directory for generated tiles")
	startStr := flag.String("start", "", "first date (yyyymmdd)")
	endStr := flag.String("end", "", "last date (yyyymmdd), defaults to -start")
	rows := flag.Int("rows", domain.CanonicalGrid.Rows, "merged grid rows")
	cols := flag.Int("cols", domain.CanonicalGrid.Cols, "merged grid columns (split evenly between tiles)")
	prefix := flag.String("prefix", "ERA5_LAND_DAILY", "tile file name prefix")
	flag.Parse()

	if *inputRoot == "" || *startStr == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -input-root, -start")
	}
	if *endStr == "" {
		endStr = startStr
	}
	if *rows < 1 || *cols < 2 || *cols%2 != 0 {
		return fmt.Errorf("invalid grid %d×%d: need rows >= 1 and an even cols >= 2", *rows, *cols)
	}

	start, err := time.ParseInLocation(domain.DateLayout, *startStr, time.UTC)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	end, err := time.ParseInLocation(domain.DateLayout, *endStr, time.UTC)
	if err != nil {
		return fmt.Errorf("parse -end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("-end %s is before -start %s", *endStr, *startStr)
	}

	evap := domain.EvaporationIndices()
	width := *cols / 2
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dir := filepath.Join(*inputRoot, date.Format("2006"), date.Format("01"))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		dayOfYear := float32(date.YearDay())

		// Upstream tiles are split at the prime meridian; suffixes sort west first.
		for side, suffix := range []string{"0000000000-0000000000", "0000000000-0000018000"} {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s-%s.tif", *prefix, date.Format(domain.DateLayout), suffix))
			lonMin := -180.0 + 180.0*float64(side)
			err := geotiff.WriteTile(path, width, *rows, bandCount, lonMin, 180, func(band int, buf []float32) {
				for i := range buf {
					r := i / width
					v := float32(band) + float32(r)/float32(*rows) + float32(side)*0.5 + dayOfYear/1000
					if _, ok := evap[band]; ok {
						v = -v * 1e-5
					}
					buf[i] = v
				}
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			log.Printf("wrote %s (%d bands, %d×%d)", path, bandCount, *rows, width)
		}
	}
	return nil
}
