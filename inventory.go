package grib

import (
	"fmt"

	"github.com/mmp/squall/product"
	"github.com/mmp/squall/tables"
)

// InventoryEntry is a synthetic, wgrib2-style inventory line for one
// message: enough to identify and locate a field without decoding its data.
type InventoryEntry struct {
	Index         int    // 1-based message number, matching wgrib2's convention
	ByteOffset    int    // byte offset of this message from the start of the buffer
	ParameterID   ParameterID
	ShortName     string  // e.g. "TMP"; empty if this parameter has no known abbreviation
	Level         string  // e.g. "2 m above ground"
	LevelType     uint8   // WMO Code Table 4.5 fixed surface type
	LevelValue    float64 // scaled first-surface value, in the surface type's native unit
	ForecastTime  string  // e.g. "anl", "6 hour fcst"
	ReferenceTime string  // reference (analysis) time, YYYYMMDDHH
	Line          string  // the fully formatted inventory line
}

// timeRangeUnitEntries maps WMO Code Table 4.4 (unit of time range) codes to
// their abbreviation, for forecast-time descriptions.
var timeRangeUnitEntries = map[uint8]string{
	0:  "minute",
	1:  "hour",
	2:  "day",
	3:  "month",
	4:  "year",
	5:  "decade",
	6:  "normal (30 years)",
	7:  "century",
	10: "3 hours",
	11: "6 hours",
	12: "12 hours",
	13: "second",
}

// buildInventoryEntry constructs the inventory line for message i (0-based
// in file order; reported as a 1-based Index, matching wgrib2), whose first
// byte sits at byteOffset from the start of the buffer.
func buildInventoryEntry(i, byteOffset int, msg *Message) (InventoryEntry, error) {
	entry := InventoryEntry{Index: i + 1, ByteOffset: byteOffset}

	if msg.Section1 != nil {
		entry.ReferenceTime = msg.Section1.ReferenceTime.Format("2006010215")
	}

	if msg.Section0 != nil && msg.Section4 != nil && msg.Section4.Product != nil {
		entry.ParameterID = ParameterID{
			Discipline: msg.Section0.Discipline,
			Category:   msg.Section4.Product.GetParameterCategory(),
			Number:     msg.Section4.Product.GetParameterNumber(),
		}
		entry.ShortName = entry.ParameterID.ShortName()
	}

	entry.Level, entry.LevelType, entry.LevelValue, entry.ForecastTime = levelAndForecastDescription(msg)

	name := entry.ShortName
	if name == "" {
		name = fmt.Sprintf("PARAM_%d_%d", entry.ParameterID.Category, entry.ParameterID.Number)
	}
	entry.Line = fmt.Sprintf("%d:%d:d=%s:%s:%s:%s:",
		entry.Index, entry.ByteOffset, entry.ReferenceTime, name, entry.Level, entry.ForecastTime)

	return entry, nil
}

// levelAndForecastDescription derives the level and forecast-time
// descriptions from a message's product definition template, following
// Template 4.0's layout directly; Template 4.8 carries the same leading
// fields so it's handled identically, with its statistical processing
// window appended.
func levelAndForecastDescription(msg *Message) (level string, levelType uint8, levelValue float64, forecast string) {
	if msg.Section4 == nil || msg.Section4.Product == nil {
		return "unknown", 0, 0, "unknown"
	}

	switch t := msg.Section4.Product.(type) {
	case *product.Template40:
		level, levelType, levelValue = describeLevel(t.FirstSurfaceType, t.FirstSurfaceScaleFactor, t.FirstSurfaceValue)
		forecast = describeForecastTime(t.TimeRangeUnit, t.ForecastTime)
		return level, levelType, levelValue, forecast
	case *product.Template48:
		level, levelType, levelValue = describeLevel(t.FirstSurfaceType, t.FirstSurfaceScaleFactor, t.FirstSurfaceValue)
		base := describeForecastTime(t.TimeRangeUnit, t.ForecastTime)
		if len(t.TimeRanges) > 0 {
			tr := t.TimeRanges[0]
			unit := timeRangeUnitEntries[tr.TimeRangeUnit]
			if unit == "" {
				unit = "unit"
			}
			forecast = fmt.Sprintf("%s, %d %s acc", base, tr.TimeRangeLength, unit)
		} else {
			forecast = base
		}
		return level, levelType, levelValue, forecast
	default:
		return "unknown", 0, 0, "unknown"
	}
}

func describeLevel(surfaceType uint8, scale uint8, value uint32) (description string, levelType uint8, levelValue float64) {
	levelName := tables.GetLevelName(int(surfaceType))
	if value == 0 {
		return levelName, surfaceType, 0
	}
	scaled := float64(value)
	for i := uint8(0); i < scale; i++ {
		scaled /= 10.0
	}
	unit := tables.GetLevelUnit(int(surfaceType))
	if unit == "" {
		return fmt.Sprintf("%s %g", levelName, scaled), surfaceType, scaled
	}
	return fmt.Sprintf("%s %g %s", levelName, scaled, unit), surfaceType, scaled
}

func describeForecastTime(unit uint8, value uint32) string {
	if value == 0 {
		return "anl"
	}
	unitName := timeRangeUnitEntries[unit]
	if unitName == "" {
		unitName = "unit"
	}
	return fmt.Sprintf("%d %s fcst", value, unitName)
}
