package ncfile

import (
	"fmt"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// VarInfo describes one data variable without loading its values.
type VarInfo struct {
	Name       string
	Dimensions []string
	Len        int64
	Attrs      map[string]string
}

// Summary is the structural view of an artifact used for validation.
type Summary struct {
	Path      string
	Lat       []float64
	Lon       []float64
	LatAttrs  map[string]string
	LonAttrs  map[string]string
	Variables []VarInfo // data variables, excluding lat and lon
	Attrs     map[string]string
}

// VarNames lists the data variable names in file order.
func (s Summary) VarNames() []string {
	names := make([]string, len(s.Variables))
	for i, v := range s.Variables {
		names[i] = v.Name
	}
	return names
}

// Var returns the named data variable.
func (s Summary) Var(name string) (VarInfo, bool) {
	i := slices.IndexFunc(s.Variables, func(v VarInfo) bool { return v.Name == name })
	if i < 0 {
		return VarInfo{}, false
	}
	return s.Variables[i], true
}

// Inspect reads coordinates, attributes and variable shapes of either
// supported format.
func Inspect(path string) (Summary, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	s := Summary{Path: path, Attrs: textAttrs(nc.Attributes())}

	s.Lat, s.LatAttrs, err = coordinate(nc, "lat")
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Lon, s.LonAttrs, err = coordinate(nc, "lon")
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}

	for _, name := range nc.ListVariables() {
		if name == "lat" || name == "lon" {
			continue
		}
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			return Summary{}, fmt.Errorf("%s: variable %s: %w", path, name, err)
		}
		s.Variables = append(s.Variables, VarInfo{
			Name:       name,
			Dimensions: vg.Dimensions(),
			Len:        vg.Len(),
			Attrs:      textAttrs(vg.Attributes()),
		})
	}
	return s, nil
}

// ReadVariable loads a 2D float32 variable as a row-major buffer.
func ReadVariable(path, name string) ([]float32, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("%s: variable %s: %w", path, name, err)
	}
	grid, ok := v.Values.([][]float32)
	if !ok {
		return nil, fmt.Errorf("%s: variable %s is %T, want [][]float32", path, name, v.Values)
	}
	var out []float32
	for _, row := range grid {
		out = append(out, row...)
	}
	return out, nil
}

func coordinate(nc api.Group, name string) ([]float64, map[string]string, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, nil, fmt.Errorf("coordinate %s: %w", name, err)
	}
	vals, ok := v.Values.([]float64)
	if !ok {
		return nil, nil, fmt.Errorf("coordinate %s is %T, want []float64", name, v.Values)
	}
	return vals, textAttrs(v.Attributes), nil
}

func textAttrs(am api.AttributeMap) map[string]string {
	out := make(map[string]string)
	if am == nil {
		return out
	}
	for _, k := range am.Keys() {
		v, _ := am.Get(k)
		out[k] = fmt.Sprint(v)
	}
	return out
}
