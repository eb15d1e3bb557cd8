package grid

import (
	"fmt"
	"math"

	"github.com/mmp/squall/internal"
)

// LatLonGrid represents a GRIB2 Latitude/Longitude grid (Template 3.0).
//
// This is the most common grid type, consisting of a regular grid with
// constant spacing in latitude and longitude. All angular fields are
// stored as signed integers scaled by 1e-6 degrees, per the WMO GRIB2
// manual (Template 3.0, octets 31-72 of Section 3).
type LatLonGrid struct {
	Ni           uint32 // Number of points along a parallel (longitude)
	Nj           uint32 // Number of points along a meridian (latitude)
	La1          int32  // Latitude of first grid point (1e-6 degrees)
	Lo1          int32  // Longitude of first grid point (1e-6 degrees)
	ResFlags     uint8  // Resolution and component flags
	La2          int32  // Latitude of last grid point (1e-6 degrees)
	Lo2          int32  // Longitude of last grid point (1e-6 degrees)
	Di           uint32 // i direction increment (1e-6 degrees)
	Dj           uint32 // j direction increment (1e-6 degrees)
	ScanningMode uint8  // Scanning mode (Table 3.4)
}

// degreeScale converts the wire format's 1e-6-degree integer fields to
// floating point degrees.
const degreeScale = 1e6

// ParseLatLonGrid parses a Lat/Lon grid from template data (Template 3.0).
//
// The template data should be at least 72 bytes for Template 3.0. Byte
// offsets below are relative to the start of the template data (i.e. the
// start of Section 3's template-specific region):
//
//	Bytes 0-15:  Shape of the earth and related parameters
//	Bytes 16-19: Ni
//	Bytes 20-23: Nj
//	Bytes 24-31: Basic angle and subdivisions
//	Bytes 32-35: La1
//	Bytes 36-39: Lo1
//	Byte  40:    Resolution and component flags
//	Bytes 41-44: La2
//	Bytes 45-48: Lo2
//	Bytes 49-52: Di
//	Bytes 53-56: Dj
//	Byte  57:    Scanning mode
func ParseLatLonGrid(data []byte) (*LatLonGrid, error) {
	if len(data) < 72 {
		return nil, fmt.Errorf("template 3.0 requires at least 72 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	// Shape of the earth and related parameters; not yet modeled.
	r.Skip(16)

	ni, _ := r.Uint32()
	nj, _ := r.Uint32()

	// Basic angle and subdivisions of it; not used when these fields are
	// at their default (missing) values, which is the overwhelming
	// common case.
	r.Skip(8)

	la1, _ := r.Int32()
	lo1, _ := r.Int32()
	resFlags, _ := r.Uint8()
	la2, _ := r.Int32()
	lo2, _ := r.Int32()
	di, _ := r.Uint32()
	dj, _ := r.Uint32()
	scanningMode, _ := r.Uint8()

	return &LatLonGrid{
		Ni:           ni,
		Nj:           nj,
		La1:          la1,
		Lo1:          lo1,
		ResFlags:     resFlags,
		La2:          la2,
		Lo2:          lo2,
		Di:           di,
		Dj:           dj,
		ScanningMode: scanningMode,
	}, nil
}

// TemplateNumber returns 0 for Lat/Lon grids.
func (g *LatLonGrid) TemplateNumber() int {
	return 0
}

// NumPoints returns the total number of grid points.
func (g *LatLonGrid) NumPoints() int {
	return int(g.Ni * g.Nj)
}

// String returns a human-readable description of the grid.
func (g *LatLonGrid) String() string {
	lat1, lon1 := g.FirstGridPoint()
	lat2, lon2 := g.LastGridPoint()
	return fmt.Sprintf("Lat/Lon grid: %d x %d points (%.3f°, %.3f°) to (%.3f°, %.3f°)",
		g.Ni, g.Nj, lat1, lon1, lat2, lon2)
}

// FirstGridPoint returns the latitude and longitude of the first grid point in degrees.
func (g *LatLonGrid) FirstGridPoint() (lat, lon float64) {
	return float64(g.La1) / degreeScale, float64(g.Lo1) / degreeScale
}

// LastGridPoint returns the latitude and longitude of the last grid point as
// declared in Section 3, in degrees. Because some producers write a value
// here that is inconsistent with Ni/Nj/increment/scanning mode, prefer
// CanonicalLastGridPoint for anything that depends on it being correct.
func (g *LatLonGrid) LastGridPoint() (lat, lon float64) {
	return float64(g.La2) / degreeScale, float64(g.Lo2) / degreeScale
}

// CanonicalLastGridPoint recomputes the last grid point from the first
// point, the increments, the grid dimensions and the scanning mode, rather
// than trusting the declared La2/Lo2 fields.
func (g *LatLonGrid) CanonicalLastGridPoint() (lat, lon float64) {
	lat1, lon1 := g.FirstGridPoint()
	di, dj := g.Increment()
	iNeg, jPos, _ := g.ScanningFlags()

	lat = latAtStep(lat1, dj, jPos, int(g.Nj)-1)
	lon = lonAtStep(lon1, di, iNeg, int(g.Ni)-1)
	return lat, lon
}

// Increment returns the i and j direction increments in degrees.
func (g *LatLonGrid) Increment() (di, dj float64) {
	return float64(g.Di) / degreeScale, float64(g.Dj) / degreeScale
}

// ScanningFlags returns the scanning mode flags as individual booleans.
//
// Returns:
//   - iNegative: true if points scan in -i direction (east to west)
//   - jPositive: true if points scan in +j direction (south to north)
//   - consecutive: true if adjacent points in the array vary fastest in i
func (g *LatLonGrid) ScanningFlags() (iNegative, jPositive, consecutive bool) {
	iNegative = (g.ScanningMode & 0x80) != 0
	jPositive = (g.ScanningMode & 0x40) != 0
	consecutive = (g.ScanningMode & 0x20) == 0
	return
}

func latAtStep(lat1, dj float64, jPositive bool, j int) float64 {
	if jPositive {
		return lat1 + dj*float64(j)
	}
	return lat1 - dj*float64(j)
}

func lonAtStep(lon1, di float64, iNegative bool, i int) float64 {
	if iNegative {
		return lon1 - di*float64(i)
	}
	return lon1 + di*float64(i)
}

// LongitudeMode selects how Coordinates normalizes longitude values.
type LongitudeMode int

const (
	// LongitudePreserve leaves longitudes exactly as the wire encodes them,
	// relative to Lo1 and the scanning direction: a grid that crosses the
	// antimeridian eastward can produce values past 360.
	LongitudePreserve LongitudeMode = iota
	// Longitude0To360 wraps longitudes into [0, 360), the library's default.
	Longitude0To360
	// LongitudeSigned180 wraps longitudes into (-180, 180].
	LongitudeSigned180
)

// normalizeLongitude360 wraps a longitude in degrees into [0, 360).
func normalizeLongitude360(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// normalizeLongitudeSigned180 wraps a longitude in degrees into (-180, 180].
func normalizeLongitudeSigned180(lon float64) float64 {
	lon = normalizeLongitude360(lon)
	if lon > 180 {
		lon -= 360
	}
	return lon
}

// normalizeLongitude applies mode to a raw longitude value in degrees.
func normalizeLongitude(lon float64, mode LongitudeMode) float64 {
	switch mode {
	case Longitude0To360:
		return normalizeLongitude360(lon)
	case LongitudeSigned180:
		return normalizeLongitudeSigned180(lon)
	default:
		return lon
	}
}

// Coordinates materializes the latitude and longitude, in degrees, of every
// grid point in scan order. mode selects how longitudes are normalized;
// Longitude0To360 matches wgrib2's default display convention.
//
// Scan order follows the scanning mode: when consecutive (the common
// case), i varies fastest within each row (j is the outer loop); when
// non-consecutive, j varies fastest within each column (i is the outer
// loop). Direction within each axis follows the i-negative/j-positive
// flags.
func (g *LatLonGrid) Coordinates(mode LongitudeMode) ([]float32, []float32) {
	lat1, lon1 := g.FirstGridPoint()
	di, dj := g.Increment()
	iNeg, jPos, consecutive := g.ScanningFlags()

	ni, nj := int(g.Ni), int(g.Nj)
	n := ni * nj
	lats := make([]float32, n)
	lons := make([]float32, n)

	idx := 0
	if consecutive {
		for j := 0; j < nj; j++ {
			lat := float32(latAtStep(lat1, dj, jPos, j))
			for i := 0; i < ni; i++ {
				lon := normalizeLongitude(lonAtStep(lon1, di, iNeg, i), mode)
				lats[idx] = lat
				lons[idx] = float32(lon)
				idx++
			}
		}
	} else {
		for i := 0; i < ni; i++ {
			lon := float32(normalizeLongitude(lonAtStep(lon1, di, iNeg, i), mode))
			for j := 0; j < nj; j++ {
				lat := latAtStep(lat1, dj, jPos, j)
				lats[idx] = float32(lat)
				lons[idx] = lon
				idx++
			}
		}
	}

	return lats, lons
}

// Latitudes returns the latitude, in degrees, of every grid point in scan order.
func (g *LatLonGrid) Latitudes() []float32 {
	lats, _ := g.Coordinates(Longitude0To360)
	return lats
}

// Longitudes returns the longitude, in degrees and normalized to [0, 360),
// of every grid point in scan order.
func (g *LatLonGrid) Longitudes() []float32 {
	_, lons := g.Coordinates(Longitude0To360)
	return lons
}
