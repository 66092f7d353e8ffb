package domain

import (
	"fmt"
	"slices"
	"strings"
)

// BandSpec describes one source band and the output variable it becomes.
type BandSpec struct {
	Index    int    // 1-based band number in the source tile
	VarName  string // output variable name, unique within a category
	LongName string
	Units    string
}

// Category groups bands that share one output artifact per date.
type Category int

const (
	Evaporation Category = iota
	Vegetation
	Radiation
	Soil
	RunoffPrecip
)

type categoryInfo struct {
	name    string
	dir     string
	fileTag string
	aliases []string
	bands   []BandSpec
}

// AllCategories returns every category in catalog order.
func AllCategories() []Category {
	return []Category{Evaporation, Vegetation, Radiation, Soil, RunoffPrecip}
}

// String returns the canonical category name.
func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Dir is the sub-directory of the output root that holds this category's artifacts.
func (c Category) Dir() string { return categories[c].dir }

// FileTag is the token that identifies the category in artifact file names.
func (c Category) FileTag() string { return categories[c].fileTag }

// Bands returns the ordered band list of the category. The slice is a copy.
func (c Category) Bands() []BandSpec {
	return slices.Clone(categories[c].bands)
}

// ParseCategory resolves a canonical name or alias, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories() {
		info := categories[c]
		if s == strings.ToLower(info.name) || slices.Contains(info.aliases, s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// ParseCategories parses a comma-separated category list. The result is
// deduplicated and returned in catalog order.
func ParseCategories(s string) ([]Category, error) {
	seen := make(map[Category]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		seen[c] = true
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no categories in %q", s)
	}
	out := make([]Category, 0, len(seen))
	for _, c := range AllCategories() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// BandsForCategories returns the ascending, deduplicated union of band
// indices required by the selected categories.
func BandsForCategories(selected []Category) []int {
	set := make(map[int]struct{})
	for _, c := range selected {
		for _, b := range categories[c].bands {
			set[b.Index] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// EvaporationIndices returns the set of band indices that carry evaporation
// fluxes and therefore receive the sign/scale correction.
func EvaporationIndices() map[int]struct{} {
	set := make(map[int]struct{}, len(evaporationBands))
	for _, b := range evaporationBands {
		set[b.Index] = struct{}{}
	}
	return set
}

// Variable names taking part in the optional evaporation swap.
const (
	VarBareSoilEvap      = "Es"
	VarOpenWaterEvap     = "Ew"
	VarTranspirationEvap = "Et"
)

var categories = map[Category]categoryInfo{
	Evaporation: {
		name: "Evaporation", dir: "Evaporation_Flux/ERA5L", fileTag: "ET",
		aliases: []string{"evap", "et"}, bands: evaporationBands,
	},
	Vegetation: {
		name: "Vegetation", dir: "Vegetation", fileTag: "Vegetation",
		aliases: []string{"veg", "lai"}, bands: vegetationBands,
	},
	Radiation: {
		name: "Radiation", dir: "Radiation", fileTag: "Radiation",
		aliases: []string{"rad"}, bands: radiationBands,
	},
	Soil: {
		name: "Soil", dir: "SoilMoisture", fileTag: "Soil",
		aliases: []string{"soilmoisture"}, bands: soilBands,
	},
	RunoffPrecip: {
		name: "RunoffPrecip", dir: "Precipitation_Runoff", fileTag: "RunoffPrecip",
		aliases: []string{"ropr", "runoff", "precip", "runoff+precip"}, bands: runoffPrecipBands,
	},
}

var evaporationBands = []BandSpec{
	{35, "Es", "Evaporation from bare soil", "mm day-1"},
	{36, "Ew", "Evaporation from open water surfaces excluding oceans", "mm day-1"},
	{37, "Ec", "Evaporation from the top of canopy", "mm day-1"},
	{38, "Et", "Evaporation from vegetation transpiration", "mm day-1"},
	{39, "Ep", "Potential evaporation", "mm day-1"},
	{44, "E", "Total evaporation", "mm day-1"},
}

var vegetationBands = []BandSpec{
	{49, "lai_high", "Leaf area index of high vegetation (half of total green leaf area)", "1"},
	{50, "lai_low", "Leaf area index of low vegetation (half of total green leaf area)", "1"},
	{147, "lai_high_min", "Daily minimum leaf_area_index_high_vegetation", "1"},
	{148, "lai_high_max", "Daily maximum leaf_area_index_high_vegetation", "1"},
	{149, "lai_low_min", "Daily minimum leaf_area_index_low_vegetation", "1"},
	{150, "lai_low_max", "Daily maximum leaf_area_index_low_vegetation", "1"},
}

var radiationBands = []BandSpec{
	{28, "albedo", "Forecast albedo", "1"},
	{29, "lhf_sum", "Surface latent heat flux sum", "J m-2"},
	{30, "nsr_sum", "Surface net solar radiation sum", "J m-2"},
	{31, "ntr_sum", "Surface net thermal radiation sum", "J m-2"},
	{32, "shf_sum", "Surface sensible heat flux sum", "J m-2"},
	{33, "srd_sum", "Surface solar radiation downwards sum", "J m-2"},
	{34, "trd_sum", "Surface thermal radiation downwards sum", "J m-2"},
	{105, "albedo_min", "Daily minimum forecast albedo", "1"},
	{106, "albedo_max", "Daily maximum forecast albedo", "1"},
	{107, "lhf_min", "Daily minimum surface latent heat flux", "J m-2"},
	{108, "lhf_max", "Daily maximum surface latent heat flux", "J m-2"},
	{109, "nsr_min", "Daily minimum surface net solar radiation", "J m-2"},
	{110, "nsr_max", "Daily maximum surface net solar radiation", "J m-2"},
	{111, "ntr_min", "Daily minimum surface net thermal radiation", "J m-2"},
	{112, "ntr_max", "Daily maximum surface net thermal radiation", "J m-2"},
	{113, "shf_min", "Daily minimum surface sensible heat flux", "J m-2"},
	{114, "shf_max", "Daily maximum surface sensible heat flux", "J m-2"},
	{115, "srd_min", "Daily minimum surface solar radiation downwards", "J m-2"},
	{116, "srd_max", "Daily maximum surface solar radiation downwards", "J m-2"},
	{117, "trd_min", "Daily minimum surface thermal radiation downwards", "J m-2"},
	{118, "trd_max", "Daily maximum surface thermal radiation downwards", "J m-2"},
}

var soilBands = []BandSpec{
	{4, "stl1", "Soil temperature level 1 (0-7 cm)", "K"},
	{5, "stl2", "Soil temperature level 2 (7-28 cm)", "K"},
	{6, "stl3", "Soil temperature level 3 (28-100 cm)", "K"},
	{7, "stl4", "Soil temperature level 4 (100-289 cm)", "K"},
	{57, "stl1_min", "Daily minimum soil temperature level 1", "K"},
	{58, "stl1_max", "Daily maximum soil temperature level 1", "K"},
	{59, "stl2_min", "Daily minimum soil temperature level 2", "K"},
	{60, "stl2_max", "Daily maximum soil temperature level 2", "K"},
	{61, "stl3_min", "Daily minimum soil temperature level 3", "K"},
	{62, "stl3_max", "Daily maximum soil temperature level 3", "K"},
	{63, "stl4_min", "Daily minimum soil temperature level 4", "K"},
	{64, "stl4_max", "Daily maximum soil temperature level 4", "K"},
	{24, "vsw1", "Volumetric soil water layer 1 (0-7 cm)", "m3 m-3"},
	{25, "vsw2", "Volumetric soil water layer 2 (7-28 cm)", "m3 m-3"},
	{26, "vsw3", "Volumetric soil water layer 3 (28-100 cm)", "m3 m-3"},
	{27, "vsw4", "Volumetric soil water layer 4 (100-289 cm)", "m3 m-3"},
	{97, "vsw1_min", "Daily minimum volumetric soil water layer 1", "m3 m-3"},
	{98, "vsw1_max", "Daily maximum volumetric soil water layer 1", "m3 m-3"},
	{99, "vsw2_min", "Daily minimum volumetric soil water layer 2", "m3 m-3"},
	{100, "vsw2_max", "Daily maximum volumetric soil water layer 2", "m3 m-3"},
	{101, "vsw3_min", "Daily minimum volumetric soil water layer 3", "m3 m-3"},
	{102, "vsw3_max", "Daily maximum volumetric soil water layer 3", "m3 m-3"},
	{103, "vsw4_min", "Daily minimum volumetric soil water layer 4", "m3 m-3"},
	{104, "vsw4_max", "Daily maximum volumetric soil water layer 4", "m3 m-3"},
}

var runoffPrecipBands = []BandSpec{
	{40, "ro", "Runoff (total)", "m"},
	{42, "ro_sub", "Sub-surface runoff", "m"},
	{43, "ro_sfc", "Surface runoff", "m"},
	{48, "tp", "Total precipitation", "m"},
	{129, "ro_min", "Daily minimum runoff", "m"},
	{130, "ro_max", "Daily maximum runoff", "m"},
	{133, "ro_sub_min", "Daily minimum sub-surface runoff", "m"},
	{134, "ro_sub_max", "Daily maximum sub-surface runoff", "m"},
	{135, "ro_sfc_min", "Daily minimum surface runoff", "m"},
	{136, "ro_sfc_max", "Daily maximum surface runoff", "m"},
	{145, "tp_min", "Daily minimum total precipitation", "m"},
	{146, "tp_max", "Daily maximum total precipitation", "m"},
}
