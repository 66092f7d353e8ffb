package domain

// Grid is a regular global latitude/longitude grid of Rows×Cols cells.
type Grid struct {
	Rows int
	Cols int
}

// CanonicalGrid is the 0.1° output grid of every artifact.
var CanonicalGrid = Grid{Rows: 1800, Cols: 3600}

// LatStep is the cell height in degrees.
func (g Grid) LatStep() float64 { return 180.0 / float64(g.Rows) }

// LonStep is the cell width in degrees.
func (g Grid) LonStep() float64 { return 360.0 / float64(g.Cols) }

// IngestLatitudes returns the raw ingest axis: Rows values evenly spaced
// from 90 to -90 inclusive.
func (g Grid) IngestLatitudes() []float64 { return linspace(90, -90, g.Rows) }

// IngestLongitudes returns Cols values evenly spaced from -180 to 180 inclusive.
func (g Grid) IngestLongitudes() []float64 { return linspace(-180, 180, g.Cols) }

// Latitudes returns the cell-centre latitudes, descending from the north pole.
// For CanonicalGrid this is 89.95, 89.85, ..., -89.95.
func (g Grid) Latitudes() []float64 {
	step := g.LatStep()
	return arange(90-step/2, -step, g.Rows)
}

// Longitudes returns the cell-centre longitudes, ascending from the antimeridian.
// For CanonicalGrid this is -179.95, -179.85, ..., 179.95.
func (g Grid) Longitudes() []float64 {
	step := g.LonStep()
	return arange(-180+step/2, step, g.Cols)
}

func arange(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func linspace(from, to float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = from
		return out
	}
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	out[n-1] = to
	return out
}
