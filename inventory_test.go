package grib

import (
	"strings"
	"testing"
	"time"

	"github.com/mmp/squall/product"
	"github.com/mmp/squall/section"
)

func messageWithProduct(t *testing.T, p *product.Template40) *Message {
	t.Helper()
	return &Message{
		Section0: &section.Section0{Discipline: 0, Edition: 2},
		Section1: &section.Section1{ReferenceTime: time.Date(2024, 10, 18, 12, 0, 0, 0, time.UTC)},
		Section4: &section.Section4{Product: p},
	}
}

func TestBuildInventoryEntryAnalysis(t *testing.T) {
	p := &product.Template40{
		ParameterCategory:       0,
		ParameterNumber:         0,
		TimeRangeUnit:           1,
		ForecastTime:            0,
		FirstSurfaceType:        100,
		FirstSurfaceScaleFactor: 0,
		FirstSurfaceValue:       50000,
		SecondSurfaceType:       255,
	}
	msg := messageWithProduct(t, p)

	entry, err := buildInventoryEntry(0, 0, msg)
	if err != nil {
		t.Fatalf("buildInventoryEntry: %v", err)
	}

	if entry.Index != 1 {
		t.Errorf("Index = %d, want 1", entry.Index)
	}
	if entry.ShortName != "TMP" {
		t.Errorf("ShortName = %q, want TMP", entry.ShortName)
	}
	if entry.Level != "Isobaric 50000 Pa" {
		t.Errorf("Level = %q, want %q", entry.Level, "Isobaric 50000 Pa")
	}
	if entry.LevelType != 100 {
		t.Errorf("LevelType = %d, want 100", entry.LevelType)
	}
	if entry.LevelValue != 50000 {
		t.Errorf("LevelValue = %g, want 50000", entry.LevelValue)
	}
	if entry.ForecastTime != "anl" {
		t.Errorf("ForecastTime = %q, want anl", entry.ForecastTime)
	}
	wantLine := "1:0:d=2024101812:TMP:Isobaric 50000 Pa:anl:"
	if entry.Line != wantLine {
		t.Errorf("Line = %q, want %q", entry.Line, wantLine)
	}
}

func TestBuildInventoryEntryForecast(t *testing.T) {
	p := &product.Template40{
		ParameterCategory:       2,
		ParameterNumber:         2, // UGRD
		TimeRangeUnit:           1, // hour
		ForecastTime:            6,
		FirstSurfaceType:        103,
		FirstSurfaceScaleFactor: 0,
		FirstSurfaceValue:       10,
		SecondSurfaceType:       255,
	}
	msg := messageWithProduct(t, p)

	entry, err := buildInventoryEntry(4, 512, msg)
	if err != nil {
		t.Fatalf("buildInventoryEntry: %v", err)
	}
	if entry.ByteOffset != 512 {
		t.Errorf("ByteOffset = %d, want 512", entry.ByteOffset)
	}
	if entry.Index != 5 {
		t.Errorf("Index = %d, want 5", entry.Index)
	}
	if entry.ShortName != "UGRD" {
		t.Errorf("ShortName = %q, want UGRD", entry.ShortName)
	}
	if entry.Level != "Height AGL 10 m" {
		t.Errorf("Level = %q, want %q", entry.Level, "Height AGL 10 m")
	}
	if entry.ForecastTime != "6 hour fcst" {
		t.Errorf("ForecastTime = %q, want \"6 hour fcst\"", entry.ForecastTime)
	}
}

func TestBuildInventoryEntryUnknownParameter(t *testing.T) {
	// Category/number with no wgrib2 abbreviation: ShortName falls back to
	// PARAM_{category}_{number} in the inventory line.
	p := &product.Template40{
		ParameterCategory:       199,
		ParameterNumber:         199,
		FirstSurfaceType:        1,
		SecondSurfaceType:       255,
	}
	msg := messageWithProduct(t, p)

	entry, err := buildInventoryEntry(0, 0, msg)
	if err != nil {
		t.Fatalf("buildInventoryEntry: %v", err)
	}
	if entry.ShortName != "" {
		t.Errorf("ShortName = %q, want empty", entry.ShortName)
	}
	if want := "PARAM_199_199"; !strings.Contains(entry.Line, want) {
		t.Errorf("Line = %q, want it to contain fallback name %q", entry.Line, want)
	}
}
