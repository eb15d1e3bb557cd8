package grib

import (
	"fmt"
	"math"
	"regexp"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mmp/squall/grid"
)

// LongitudeFormat selects how GetData normalizes the longitudes it returns.
// It is an alias of grid.LongitudeMode so callers don't need to import the
// grid package just to pass WithLongitudeFormat.
type LongitudeFormat = grid.LongitudeMode

const (
	// LongitudePreserve leaves longitudes exactly as the wire encodes them.
	LongitudePreserve = grid.LongitudePreserve
	// LongitudeZeroTo360 wraps longitudes into [0, 360), the default.
	LongitudeZeroTo360 = grid.Longitude0To360
	// LongitudeSigned180 wraps longitudes into (-180, 180].
	LongitudeSigned180 = grid.LongitudeSigned180
)

// DataOption configures a GetData call. Options are applied in the order
// listed below regardless of the order passed to GetData:
//  1. messageIndex, pattern (regex against the inventory line), and
//     parameters/level/levelType/levelValue (exact match) narrow which
//     messages are selected; a message must satisfy every filter given.
//  2. Selected messages are decoded and merged into the returned DataView,
//     keyed by parameter short name. WithFirstParameterOnly (the default)
//     keeps the first matching message for a given name and skips later
//     ones; WithMultiLevel keys each level separately instead of collapsing
//     them onto one name.
//  3. WithDerivedWind computes WIND/WDIR from UGRD/VGRD if both were
//     selected in step 1. It does not add the components to the selection:
//     a parameters filter that omits UGRD or VGRD yields no derived wind.
//  4. WithAsObjects converts the column-oriented DataView into row-oriented
//     PointRecords.
type DataOption func(*dataQuery)

type dataQuery struct {
	pattern            string
	parameters         map[string]bool
	level              string
	levelType          *uint8
	levelValue         *float64
	messageIndex       *int
	firstParameterOnly bool
	multiLevel         bool
	longitudeMode      grid.LongitudeMode
	asObjects          bool
	derivedWind        bool
}

// WithPattern selects only messages whose inventory line (InventoryEntry.Line)
// matches the given regular expression.
func WithPattern(pattern string) DataOption {
	return func(q *dataQuery) { q.pattern = pattern }
}

// WithParameters selects only messages whose parameter short name
// (ParameterID.ShortName) is in names.
func WithParameters(names ...string) DataOption {
	return func(q *dataQuery) {
		if q.parameters == nil {
			q.parameters = make(map[string]bool, len(names))
		}
		for _, n := range names {
			q.parameters[n] = true
		}
	}
}

// WithLevel selects only messages whose derived level description equals
// level exactly.
func WithLevel(level string) DataOption {
	return func(q *dataQuery) { q.level = level }
}

// WithLevelType selects only messages whose fixed surface type (WMO Code
// Table 4.5, e.g. 100 for isobaric, 103 for height above ground) equals t.
func WithLevelType(t uint8) DataOption {
	return func(q *dataQuery) { q.levelType = &t }
}

// WithLevelValue selects only messages whose scaled first-surface value
// equals v exactly, in the level type's native unit.
func WithLevelValue(v float64) DataOption {
	return func(q *dataQuery) { q.levelValue = &v }
}

// WithMessageIndex selects only the message at the given 0-based index in
// file order.
func WithMessageIndex(index int) DataOption {
	return func(q *dataQuery) { q.messageIndex = &index }
}

// WithFirstParameterOnly controls what happens when more than one selected
// message would merge onto the same DataView key: true (the default) keeps
// the first occurrence and skips the rest, false lets every later match
// overwrite the earlier one. It has no effect when WithMultiLevel is set,
// since each level then gets its own key.
func WithFirstParameterOnly(v bool) DataOption {
	return func(q *dataQuery) { q.firstParameterOnly = v }
}

// WithMultiLevel keeps every selected level of a parameter, keying the
// DataView by "NAME@level" instead of collapsing all matching messages onto
// a single "NAME" entry.
func WithMultiLevel() DataOption {
	return func(q *dataQuery) { q.multiLevel = true }
}

// WithLongitudeFormat controls how GetData normalizes the longitudes it
// returns. The default, when no option is given, is LongitudeZeroTo360.
func WithLongitudeFormat(mode LongitudeFormat) DataOption {
	return func(q *dataQuery) { q.longitudeMode = mode }
}

// WithDerivedWind adds WIND (speed) and WDIR (meteorological direction, i.e.
// the direction the wind blows from) to the result, computed from UGRD/VGRD
// when both are present on the same grid. Earth-relative wind rotation for
// projected grids (10/20/30) is not performed: UGRD/VGRD on those grids are
// grid-relative, and WithDerivedWind silently skips them rather than
// reporting an incorrect direction.
func WithDerivedWind() DataOption {
	return func(q *dataQuery) { q.derivedWind = true }
}

// WithAsObjects returns DataView.Objects() pre-populated instead of leaving
// it for the caller to call explicitly.
func WithAsObjects() DataOption {
	return func(q *dataQuery) { q.asObjects = true }
}

// DataView holds the result of GetData: parallel coordinate arrays and one
// values slice per selected parameter short name, all aligned to the same
// point order.
type DataView struct {
	Lats   []float32
	Lngs   []float32
	Values map[string][]float32

	objects []PointRecord
}

// PointRecord is one grid point's coordinates and parameter values, used
// when WithAsObjects is set.
type PointRecord struct {
	Lat, Lng float32
	Values   map[string]float32
}

// ParameterNames returns the short names present in dv, sorted for
// deterministic display (map iteration order is otherwise unspecified).
func (dv *DataView) ParameterNames() []string {
	names := maps.Keys(dv.Values)
	slices.Sort(names)
	return names
}

// Objects converts dv into row-oriented records, computing them on first
// call and caching the result.
func (dv *DataView) Objects() []PointRecord {
	if dv.objects != nil {
		return dv.objects
	}
	records := make([]PointRecord, len(dv.Lats))
	for i := range dv.Lats {
		values := make(map[string]float32, len(dv.Values))
		for name, vs := range dv.Values {
			if i < len(vs) {
				values[name] = vs[i]
			}
		}
		records[i] = PointRecord{Lat: dv.Lats[i], Lng: dv.Lngs[i], Values: values}
	}
	dv.objects = records
	return records
}

// GetData selects messages per opts, decodes them, and merges the results
// into a single DataView keyed by parameter short name. Coordinates are
// taken from the first selected message that has a latlon grid (Template
// 3.0); coordinate materialisation, wind derivation, and interpolation are
// defined only for that grid template.
func (r *Reader) GetData(opts ...DataOption) (*DataView, error) {
	if err := r.ensureParsed(); err != nil {
		return nil, err
	}

	q := &dataQuery{firstParameterOnly: true, longitudeMode: grid.Longitude0To360}
	for _, opt := range opts {
		opt(q)
	}

	var pattern *regexp.Regexp
	if q.pattern != "" {
		re, err := regexp.Compile(q.pattern)
		if err != nil {
			return nil, newInvalidPatternError(err, q.pattern)
		}
		pattern = re
	}

	dv := &DataView{Values: make(map[string][]float32)}
	matched := false
	offset := 0

	for i, msg := range r.messages {
		entry, err := buildInventoryEntry(i, offset, msg)
		if err != nil {
			return nil, err
		}
		offset += len(msg.RawData)

		if q.messageIndex != nil && *q.messageIndex != i {
			continue
		}
		if pattern != nil && !pattern.MatchString(entry.Line) {
			continue
		}
		if len(q.parameters) > 0 && !q.parameters[entry.ShortName] {
			continue
		}
		if q.level != "" && q.level != entry.Level {
			continue
		}
		if q.levelType != nil && *q.levelType != entry.LevelType {
			continue
		}
		if q.levelValue != nil && *q.levelValue != entry.LevelValue {
			continue
		}

		latlon, ok := msg.Section3.Grid.(*grid.LatLonGrid)
		if !ok {
			continue
		}

		name := entry.ShortName
		if name == "" {
			name = fmt.Sprintf("PARAM_%d_%d", entry.ParameterID.Category, entry.ParameterID.Number)
		}
		if q.multiLevel && entry.Level != "" {
			name = fmt.Sprintf("%s@%s", name, entry.Level)
		}
		if _, exists := dv.Values[name]; exists && q.firstParameterOnly {
			continue
		}

		values, err := msg.DecodeData()
		if err != nil {
			return nil, err
		}

		if !matched {
			lats, lngs := latlon.Coordinates(q.longitudeMode)
			dv.Lats = lats
			dv.Lngs = lngs
			matched = true
		}

		dv.Values[name] = values
	}

	if !matched {
		return nil, newNoMatchError("no message matched the given query options")
	}

	if q.derivedWind {
		deriveWind(dv)
	}

	if q.asObjects {
		dv.Objects()
	}

	return dv, nil
}

// deriveWind adds WIND and WDIR to dv if UGRD and VGRD are both present.
func deriveWind(dv *DataView) {
	u, hasU := dv.Values["UGRD"]
	v, hasV := dv.Values["VGRD"]
	if !hasU || !hasV || len(u) != len(v) {
		return
	}

	speed := make([]float32, len(u))
	direction := make([]float32, len(u))
	for i := range u {
		if isMissing(u[i]) || isMissing(v[i]) {
			speed[i] = float32(missingValueThreshold)
			direction[i] = float32(missingValueThreshold)
			continue
		}
		speed[i] = float32(math.Hypot(float64(u[i]), float64(v[i])))
		// Meteorological convention: direction the wind blows FROM.
		deg := math.Atan2(float64(-u[i]), float64(-v[i])) * 180.0 / math.Pi
		if deg < 0 {
			deg += 360
		}
		direction[i] = float32(deg)
	}
	dv.Values["WIND"] = speed
	dv.Values["WDIR"] = direction
}
