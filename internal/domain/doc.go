// Package domain models ERA5-Land daily raster products and their conversion
// into per-category NetCDF artifacts.
//
// # Data Source
//
// Daily ERA5-Land aggregates are exported upstream as GeoTIFF, one file per
// hemispheric half. Each file stacks roughly 150 bands: daily means of the
// hourly fields plus daily minimum and maximum variants. Tiles live under
//
//	<input>/<yyyy>/<mm>/ERA5_LAND_DAILY_<yyyymmdd>*.tif
//
// and exactly two files exist per date. Sorted lexicographically, the first
// is the western half and the second the eastern half.
//
// # Categories
//
// Bands are partitioned into five categories, each written to its own file:
//
//	Evaporation   Es Ew Ec Et Ep E                   mm day-1
//	Vegetation    lai_high lai_low (+ daily min/max) 1
//	Radiation     albedo and surface flux sums       1, J m-2
//	Soil          stl1-4 vsw1-4 (+ daily min/max)    K, m3 m-3
//	RunoffPrecip  ro ro_sub ro_sfc tp (+ min/max)    m
//
// Band indices are 1-based and never shared between categories.
//
// # Evaporation Convention
//
// ECMWF reports evaporation in metres of water equivalent with downward
// fluxes positive, so evaporation is negative. Evaporation bands are
// multiplied by -1000 to yield positive mm day-1. No other band is scaled.
//
// Some historical exports carry Es, Ew and Et rotated. [SwapEvaporation]
// undoes this on request; it moves data between the three variables and
// leaves their names and attributes alone.
//
// # Grid
//
// Merged tiles cover the globe on a 1800×3600 grid. On ingest the axes are
// labelled with evenly spaced edges (90→-90, -180→180); [Finalize] relabels
// them with 0.1° cell centres (89.95→-89.95, -179.95→179.95). No resampling
// takes place.
//
// # Idempotency
//
// An artifact that exists with non-zero size marks its (category, date) as
// done. Zero-byte files are remnants of failed writes and are redone.
package domain
