package domain

import (
	"fmt"
	"time"
)

// Attribute is a named text attribute. Attribute lists keep insertion order so
// files are written deterministically.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an ordered attribute list.
type Attributes []Attribute

// Get returns the value of the named attribute.
func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it.
func (a *Attributes) Set(name, value string) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Name: name, Value: value})
}

// Variable is one 2D (lat, lon) data array of a dataset.
type Variable struct {
	Name  string
	Attrs Attributes
	Data  []float32 // row-major, len = rows*cols
}

// Dataset is the in-memory form of one category artifact.
type Dataset struct {
	Category Category
	Date     time.Time
	Grid     Grid
	Lat      []float64
	Lon      []float64
	LatAttrs Attributes
	LonAttrs Attributes
	Vars     []Variable
	Attrs    Attributes
}

// Var returns the named variable or nil.
func (d *Dataset) Var(name string) *Variable {
	for i := range d.Vars {
		if d.Vars[i].Name == name {
			return &d.Vars[i]
		}
	}
	return nil
}

// BandAccessor yields the 2D slice of a source band by index.
type BandAccessor interface {
	Band(index int) ([]float32, bool)
}

// ConventionsCF is the CF conventions tag stamped on every artifact.
const ConventionsCF = "CF-1.6"

// Build binds one variable per band spec and assigns the raw ingest
// coordinates. Variable data aliases the accessor's storage.
func Build(c Category, date time.Time, bands []BandSpec, src BandAccessor, g Grid) (*Dataset, error) {
	ds := &Dataset{
		Category: c,
		Date:     date,
		Grid:     g,
		Lat:      g.IngestLatitudes(),
		Lon:      g.IngestLongitudes(),
		LatAttrs: Attributes{{"units", "degrees_north"}, {"long_name", "latitude"}},
		LonAttrs: Attributes{{"units", "degrees_east"}, {"long_name", "longitude"}},
		Vars:     make([]Variable, 0, len(bands)),
		Attrs:    Attributes{{"Conventions", ConventionsCF}},
	}

	cells := g.Rows * g.Cols
	for _, b := range bands {
		data, ok := src.Band(b.Index)
		if !ok {
			return nil, fmt.Errorf("build %s: band %d (%s) was not loaded", c, b.Index, b.VarName)
		}
		if len(data) != cells {
			return nil, &ShapeMismatchError{
				What: fmt.Sprintf("%s/%s", c, b.VarName),
				Want: fmt.Sprintf("%d×%d", g.Rows, g.Cols),
				Got:  fmt.Sprintf("%d cells", len(data)),
			}
		}
		ds.Vars = append(ds.Vars, Variable{
			Name:  b.VarName,
			Attrs: Attributes{{"long_name", b.LongName}, {"units", b.Units}},
			Data:  data,
		})
	}
	return ds, nil
}

// Metadata carries the provenance attributes stamped by Finalize.
type Metadata struct {
	Title          string
	LongTitle      string
	CreatedBy      string
	DownloadSource string
	ContactInfo    string
	RunID          string
	CreatedAt      time.Time
}

// DefaultMetadata returns the ERA5-Land provenance attributes.
func DefaultMetadata() Metadata {
	return Metadata{
		Title:          "ERA5-Land daily data from 1950 to present",
		LongTitle:      "hourly-daily sum/24",
		CreatedBy:      "era5land-etl",
		DownloadSource: "https://cds.climate.copernicus.eu/cdsapp#!/dataset/reanalysis-era5-land?tab=overview",
	}
}

const (
	creationDateLayout = "02-Jan-2006 15:04:05"
	statusLayout       = "2006-01-02 15:04:05"
)

// Finalize relabels the coordinate axes onto the dataset's output grid and
// stamps global metadata. The processing status records the finalize time.
func Finalize(ds *Dataset, meta Metadata) {
	now := clock.Now()
	ds.Lat = ds.Grid.Latitudes()
	ds.Lon = ds.Grid.Longitudes()

	created := meta.CreatedAt
	if created.IsZero() {
		created = now
	}

	ds.Attrs.Set("title", meta.Title)
	ds.Attrs.Set("long_title", meta.LongTitle)
	ds.Attrs.Set("Conventions", ConventionsCF)
	ds.Attrs.Set("Conventions_help", "http://cfconventions.org/Data/cf-standard-names/docs/guidelines.html")
	ds.Attrs.Set("CreationDate", created.Format(creationDateLayout))
	ds.Attrs.Set("CreatedBy", meta.CreatedBy)
	ds.Attrs.Set("Download_source", meta.DownloadSource)
	if meta.ContactInfo != "" {
		ds.Attrs.Set("contact_info", meta.ContactInfo)
	}
	if meta.RunID != "" {
		ds.Attrs.Set("run_id", meta.RunID)
	}
	ds.Attrs.Set("ProcessingStatus", "Finalized on "+now.Format(statusLayout))
}

// SwapEvaporation rotates the data of the bare-soil, open-water and
// transpiration variables: Es takes Ew's data, Ew takes Et's, Et takes Es's.
// Names and attributes stay in place. Three applications are the identity.
func SwapEvaporation(ds *Dataset) error {
	es, ew, et := ds.Var(VarBareSoilEvap), ds.Var(VarOpenWaterEvap), ds.Var(VarTranspirationEvap)
	if es == nil || ew == nil || et == nil {
		return fmt.Errorf("evaporation swap: %s dataset lacks %s/%s/%s",
			ds.Category, VarBareSoilEvap, VarOpenWaterEvap, VarTranspirationEvap)
	}
	es.Data, ew.Data, et.Data = ew.Data, et.Data, es.Data
	return nil
}
