// Package grid provides grid definition types and parsers for GRIB2.
package grid

import "fmt"

// Grid represents a GRIB2 grid definition.
// Different grid templates implement this interface.
type Grid interface {
	// TemplateNumber returns the grid definition template number (Table 3.1).
	TemplateNumber() int

	// NumPoints returns the total number of grid points.
	NumPoints() int

	// String returns a human-readable description of the grid.
	String() string
}

// CoordinateGrid is implemented by grid templates that can materialize the
// latitude/longitude of every grid point. Only the regular lat/lon grid
// (Template 3.0) implements it today; projected grids (Mercator, Polar
// Stereographic, Lambert Conformal) have Coordinates methods of their own
// that take no LongitudeMode, so they do not implement this interface.
type CoordinateGrid interface {
	Grid
	Coordinates(mode LongitudeMode) ([]float32, []float32)
}

// OpaqueGrid stands in for a grid definition template this library doesn't
// parse into a structured type. It preserves the template number, point
// count and raw template bytes so the message remains usable (e.g. for
// inventory listings) even though coordinates can't be generated.
type OpaqueGrid struct {
	templateNumber int
	numPoints      int
	raw            []byte
}

// NewOpaqueGrid wraps an unsupported grid definition template.
func NewOpaqueGrid(templateNumber int, numPoints int, raw []byte) *OpaqueGrid {
	return &OpaqueGrid{templateNumber: templateNumber, numPoints: numPoints, raw: raw}
}

// TemplateNumber returns the unsupported template's number.
func (g *OpaqueGrid) TemplateNumber() int {
	return g.templateNumber
}

// NumPoints returns the total number of grid points as declared by Section 3.
func (g *OpaqueGrid) NumPoints() int {
	return g.numPoints
}

// RawBytes returns the raw, template-specific bytes as they appeared in
// Section 3.
func (g *OpaqueGrid) RawBytes() []byte {
	return g.raw
}

// String returns a human-readable description.
func (g *OpaqueGrid) String() string {
	return fmt.Sprintf("Grid Template 3.%d: unsupported (opaque, %d points, %d bytes)",
		g.templateNumber, g.numPoints, len(g.raw))
}
