package grib

import (
	"fmt"
	"io"
	"time"

	"github.com/mmp/squall/grid"
	"github.com/mmp/squall/product"
	"github.com/mmp/squall/tables"
)

// GRIB2 is a single decoded field: one message's worth of values plus the
// metadata needed to identify and locate them.
type GRIB2 struct {
	Data       []float32 // Decoded values in grid scan order
	Latitudes  []float32 // Latitude of each point, parallel to Data
	Longitudes []float32 // Longitude of each point, parallel to Data

	Discipline       string
	Center           string
	ProductionStatus string
	DataType         string
	ReferenceTime    time.Time
	Parameter        ParameterID
	Level            string
	LevelValue       float32

	GridType  string
	GridNi    int
	GridNj    int
	NumPoints int

	message *Message
}

// Read parses every GRIB2 message in r and returns one GRIB2 per message,
// in file order. Equivalent to ReadWithOptions(r) with no options: parsing
// is sequential and the first malformed message stops the scan and
// returns its error.
func Read(r io.Reader) ([]*GRIB2, error) {
	return ReadWithOptions(r)
}

// ReadWithOptions parses every GRIB2 message in r, applying the given
// options (filtering, worker-pool parallelism, error tolerance, context
// cancellation).
func ReadWithOptions(r io.Reader, opts ...ReadOption) ([]*GRIB2, error) {
	config := defaultReadConfig()
	for _, opt := range opts {
		opt(&config)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	messages, err := parseAll(data, config)
	if err != nil {
		return nil, err
	}

	fields := make([]*GRIB2, 0, len(messages))
	for _, msg := range messages {
		if !config.filter(msg) {
			continue
		}
		g2, err := messageToGRIB2(msg)
		if err != nil {
			if config.skipErrors {
				continue
			}
			return nil, err
		}
		fields = append(fields, g2)
	}

	return fields, nil
}

// parseAll dispatches to the sequential or worker-pool message parser
// according to config. Sequential is the default; a worker pool is only
// used when the caller opted in via WithWorkers.
func parseAll(data []byte, config readConfig) ([]*Message, error) {
	switch {
	case !config.sequential && config.workers > 0:
		if config.ctx != nil {
			return ParseMessagesWithContext(config.ctx, data, config.workers)
		}
		return ParseMessagesWithWorkers(data, config.workers)
	case config.skipErrors:
		return ParseMessagesSequentialSkipErrors(data)
	default:
		return ParseMessagesSequential(data)
	}
}

// messageToGRIB2 decodes a parsed message's data and coordinates and
// populates its metadata into a GRIB2.
func messageToGRIB2(msg *Message) (*GRIB2, error) {
	values, err := msg.DecodeData()
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	// Coordinates aren't available for every grid template (only
	// Template 3.0 implements CoordinateGrid); the field is still usable
	// without them.
	lats, lons, _ := msg.Coordinates(grid.Longitude0To360)

	g2 := &GRIB2{
		Data:       values,
		Latitudes:  lats,
		Longitudes: lons,
		message:    msg,
	}
	populateMetadata(g2, msg)
	return g2, nil
}

// populateMetadata fills in the descriptive fields of g2 from msg's
// parsed sections.
func populateMetadata(g2 *GRIB2, msg *Message) {
	if msg.Section0 != nil {
		g2.Discipline = msg.Section0.DisciplineName()
	}
	if msg.Section1 != nil {
		g2.Center = msg.Section1.CenterName()
		g2.ReferenceTime = msg.Section1.ReferenceTime
		g2.ProductionStatus = msg.Section1.ProductionStatusName()
		g2.DataType = msg.Section1.DataTypeName()
	}
	if msg.Section3 != nil && msg.Section3.Grid != nil {
		g2.NumPoints = msg.Section3.Grid.NumPoints()
		switch gr := msg.Section3.Grid.(type) {
		case *grid.LatLonGrid:
			g2.GridType = "latlon"
			g2.GridNi = int(gr.Ni)
			g2.GridNj = int(gr.Nj)
		case *grid.MercatorGrid:
			g2.GridType = "mercator"
		case *grid.PolarStereographicGrid:
			g2.GridType = "polar_stereographic"
		case *grid.LambertConformalGrid:
			g2.GridType = "lambert_conformal"
		case *grid.OpaqueGrid:
			g2.GridType = fmt.Sprintf("opaque(template %d)", gr.TemplateNumber())
		default:
			g2.GridType = "unknown"
		}
	}
	if msg.Section4 != nil && msg.Section4.Product != nil && msg.Section0 != nil {
		g2.Parameter = ParameterID{
			Discipline: msg.Section0.Discipline,
			Category:   msg.Section4.Product.GetParameterCategory(),
			Number:     msg.Section4.Product.GetParameterNumber(),
		}

		if t40, ok := msg.Section4.Product.(*product.Template40); ok {
			g2.Level = tables.GetLevelName(t40.FirstSurfaceType)
			if t40.FirstSurfaceValue != 0 {
				g2.LevelValue = float32(t40.FirstSurfaceValueScaled())
				g2.Level = fmt.Sprintf("%s %g", g2.Level, g2.LevelValue)
			}
		} else if t48, ok := msg.Section4.Product.(*product.Template48); ok {
			g2.Level = tables.GetLevelName(t48.FirstSurfaceType)
			if t48.FirstSurfaceValue != 0 {
				g2.LevelValue = float32(t48.FirstSurfaceValueScaled())
				g2.Level = fmt.Sprintf("%s %g", g2.Level, g2.LevelValue)
			}
		}
	}
}

// GetMessage returns the underlying parsed Message, for callers that need
// access to sections this type doesn't surface directly.
func (g *GRIB2) GetMessage() *Message {
	return g.message
}

// String returns a human-readable summary.
func (g *GRIB2) String() string {
	return fmt.Sprintf("%s at %s (%s): %d points, grid=%s %dx%d",
		g.Parameter, g.Level, g.ReferenceTime.Format(time.RFC3339), len(g.Data), g.GridType, g.GridNi, g.GridNj)
}

const missingValueThreshold = 9e20

func isMissing(v float32) bool {
	return v > missingValueThreshold
}

// MinValue returns the minimum non-missing value, and false if every
// value is missing or there is no data.
func (g *GRIB2) MinValue() (float32, bool) {
	found := false
	var min float32
	for _, v := range g.Data {
		if isMissing(v) {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	return min, found
}

// MaxValue returns the maximum non-missing value, and false if every
// value is missing or there is no data.
func (g *GRIB2) MaxValue() (float32, bool) {
	found := false
	var max float32
	for _, v := range g.Data {
		if isMissing(v) {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	return max, found
}

// CountValid returns the number of non-missing values.
func (g *GRIB2) CountValid() int {
	count := 0
	for _, v := range g.Data {
		if !isMissing(v) {
			count++
		}
	}
	return count
}
