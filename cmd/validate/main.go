// Command validate checks converted ERA5-Land artifacts for a date range:
// presence, variable catalog, coordinate grid and CF metadata. Each phase is
// reported PASS/FAIL with numbered details.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -output-root data/nc \
//	  -start 20240101 -end 20240131 \
//	  -categories evap,soil
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/era5land-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/era5land-etl/internal/domain"
)

const coordTolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type artifact struct {
	category domain.Category
	date     time.Time
	path     string
	summary  ncfile.Summary
}

func main() {
	outputRoot := flag.String("output-root", "", "root directory of converted artifacts")
	startStr := flag.String("start", "", "first date (yyyymmdd)")
	endStr := flag.String("end", "", "last date (yyyymmdd), defaults to -start")
	categories := flag.String("categories", "Evaporation,Vegetation,Radiation,Soil,RunoffPrecip", "comma-separated categories")
	prefix := flag.String("output-prefix", "ERA5_Land_Daily", "artifact file name prefix")
	rows := flag.Int("rows", domain.CanonicalGrid.Rows, "expected grid rows")
	cols := flag.Int("cols", domain.CanonicalGrid.Cols, "expected grid columns")
	flag.Parse()

	if *outputRoot == "" || *startStr == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *endStr == "" {
		endStr = startStr
	}

	start, err := time.ParseInLocation(domain.DateLayout, *startStr, time.UTC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse -start: %v\n", err)
		os.Exit(1)
	}
	end, err := time.ParseInLocation(domain.DateLayout, *endStr, time.UTC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse -end: %v\n", err)
		os.Exit(1)
	}
	cats, err := domain.ParseCategories(*categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse -categories: %v\n", err)
		os.Exit(1)
	}

	layout := domain.Layout{OutputRoot: *outputRoot, OutputPrefix: *prefix}
	grid := domain.Grid{Rows: *rows, Cols: *cols}
	os.Exit(run(layout, grid, cats, start, end))
}

func run(layout domain.Layout, grid domain.Grid, cats []domain.Category, start, end time.Time) int {
	fmt.Println("=== ERA5-Land Artifact Validation ===")
	fmt.Println()

	presence := &phase{name: "Phase 1: Artifact presence"}
	var artifacts []artifact
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for _, c := range cats {
			path := layout.ArtifactPath(c, date)
			info, err := os.Stat(path)
			switch {
			case err != nil:
				presence.errorf("%s %s: %v", c, date.Format(domain.DateLayout), err)
				continue
			case info.Size() == 0:
				presence.errorf("%s %s: zero-byte file %s", c, date.Format(domain.DateLayout), path)
				continue
			}
			s, err := ncfile.Inspect(path)
			if err != nil {
				presence.errorf("%s %s: unreadable: %v", c, date.Format(domain.DateLayout), err)
				continue
			}
			artifacts = append(artifacts, artifact{category: c, date: date, path: path, summary: s})
		}
	}

	phases := []*phase{
		presence,
		validateCatalog(artifacts),
		validateGrid(artifacts, grid),
		validateMetadata(artifacts),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Artifacts: %d readable across %d categories\n", len(artifacts), len(cats))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateCatalog checks that each artifact holds exactly its category's
// variables on (lat, lon) with the catalog units.
func validateCatalog(artifacts []artifact) *phase {
	p := &phase{name: "Phase 2: Variable catalog"}
	for _, a := range artifacts {
		bands := a.category.Bands()
		want := make([]string, len(bands))
		for i, b := range bands {
			want[i] = b.VarName
		}
		got := a.summary.VarNames()
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(want, got) {
			p.errorf("%s: variables %v, want %v", a.path, got, want)
			continue
		}
		for _, b := range bands {
			v, _ := a.summary.Var(b.VarName)
			if !slices.Equal(v.Dimensions, []string{"lat", "lon"}) {
				p.errorf("%s: %s dims %v, want [lat lon]", a.path, b.VarName, v.Dimensions)
			}
			if v.Attrs["units"] != b.Units {
				p.errorf("%s: %s units %q, want %q", a.path, b.VarName, v.Attrs["units"], b.Units)
			}
		}
	}
	return p
}

// validateGrid checks axis lengths, endpoints and strict monotonicity.
func validateGrid(artifacts []artifact, grid domain.Grid) *phase {
	p := &phase{name: "Phase 3: Coordinate grid"}
	wantLat, wantLon := grid.Latitudes(), grid.Longitudes()
	for _, a := range artifacts {
		checkAxis(p, a.path, "lat", a.summary.Lat, wantLat)
		checkAxis(p, a.path, "lon", a.summary.Lon, wantLon)
		if a.summary.LatAttrs["units"] != "degrees_north" {
			p.errorf("%s: lat units %q", a.path, a.summary.LatAttrs["units"])
		}
		if a.summary.LonAttrs["units"] != "degrees_east" {
			p.errorf("%s: lon units %q", a.path, a.summary.LonAttrs["units"])
		}
	}
	return p
}

func checkAxis(p *phase, path, name string, got, want []float64) {
	if len(got) != len(want) {
		p.errorf("%s: %s has %d values, want %d", path, name, len(got), len(want))
		return
	}
	for _, i := range []int{0, len(want) - 1} {
		if math.Abs(got[i]-want[i]) > coordTolerance {
			p.errorf("%s: %s[%d] = %.6f, want %.6f", path, name, i, got[i], want[i])
		}
	}
	ascending := want[len(want)-1] > want[0]
	for i := 1; i < len(got); i++ {
		if (got[i] > got[i-1]) != ascending {
			p.errorf("%s: %s not monotonic at %d", path, name, i)
			return
		}
	}
}

// validateMetadata checks the global attributes stamped at finalization.
func validateMetadata(artifacts []artifact) *phase {
	p := &phase{name: "Phase 4: CF metadata"}
	for _, a := range artifacts {
		attrs := a.summary.Attrs
		if attrs["Conventions"] != domain.ConventionsCF {
			p.errorf("%s: Conventions %q, want %q", a.path, attrs["Conventions"], domain.ConventionsCF)
		}
		for _, key := range []string{"title", "long_title", "CreationDate", "CreatedBy", "Download_source"} {
			if attrs[key] == "" {
				p.errorf("%s: missing global attribute %s", a.path, key)
			}
		}
		if !strings.HasPrefix(attrs["ProcessingStatus"], "Finalized on ") {
			p.errorf("%s: ProcessingStatus %q", a.path, attrs["ProcessingStatus"])
		}
	}
	return p
}
