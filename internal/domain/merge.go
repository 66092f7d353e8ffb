package domain

import (
	"fmt"
	"slices"
)

// evapScale converts ECMWF metres of water equivalent (downward-positive
// flux convention) to mm day-1 with evaporation positive.
const evapScale = -1000.0

// Tile holds the bands read from one hemispheric raster file. Data is
// band-major: band k occupies Data[k*Height*Width : (k+1)*Height*Width] in
// row-major order.
type Tile struct {
	Path    string
	Indices []int
	Height  int
	Width   int
	Data    []float32
}

func (t Tile) shape() string {
	return fmt.Sprintf("%d×%d×%d %v", len(t.Indices), t.Height, t.Width, t.Indices)
}

func (t Tile) validate() error {
	want := len(t.Indices) * t.Height * t.Width
	if len(t.Data) != want {
		return &ShapeMismatchError{
			What: "tile " + t.Path,
			Want: fmt.Sprintf("%d values", want),
			Got:  fmt.Sprintf("%d values", len(t.Data)),
		}
	}
	return nil
}

// BandArray is the merged, corrected stack of all bands read for one date.
type BandArray struct {
	Indices []int
	Height  int
	Width   int
	Data    []float32

	pos map[int]int
}

// Band returns a row-major Height×Width view of the band with the given
// source index.
func (a *BandArray) Band(index int) ([]float32, bool) {
	p, ok := a.pos[index]
	if !ok {
		return nil, false
	}
	n := a.Height * a.Width
	return a.Data[p*n : (p+1)*n : (p+1)*n], true
}

// CheckTilePair verifies that two tiles can be concatenated along longitude.
func CheckTilePair(west, east Tile) error {
	if err := west.validate(); err != nil {
		return err
	}
	if err := east.validate(); err != nil {
		return err
	}
	if west.Height != east.Height || west.Width != east.Width || !slices.Equal(west.Indices, east.Indices) {
		return &ShapeMismatchError{What: "tile pair", Want: west.shape(), Got: east.shape()}
	}
	return nil
}

// MergeAndCorrect concatenates west and east along the longitude axis and
// applies the evaporation sign/scale correction to every band whose source
// index is in evap. West supplies columns [0, W), east supplies [W, 2W).
func MergeAndCorrect(west, east Tile, evap map[int]struct{}) (*BandArray, error) {
	if err := CheckTilePair(west, east); err != nil {
		return nil, err
	}

	h, w := west.Height, west.Width
	out := &BandArray{
		Indices: slices.Clone(west.Indices),
		Height:  h,
		Width:   2 * w,
		Data:    make([]float32, len(west.Data)+len(east.Data)),
		pos:     make(map[int]int, len(west.Indices)),
	}

	for k, idx := range out.Indices {
		out.pos[idx] = k
		src := k * h * w
		dst := k * h * out.Width
		for r := 0; r < h; r++ {
			row := out.Data[dst+r*out.Width : dst+(r+1)*out.Width]
			copy(row[:w], west.Data[src+r*w:src+(r+1)*w])
			copy(row[w:], east.Data[src+r*w:src+(r+1)*w])
		}
		if _, ok := evap[idx]; ok {
			band := out.Data[dst : dst+h*out.Width]
			for i := range band {
				band[i] *= evapScale
			}
		}
	}
	return out, nil
}
