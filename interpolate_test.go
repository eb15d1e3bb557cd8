package grib

import (
	"math"
	"testing"
)

// gradientFieldReader builds a 3x3 grid (1 degree spacing, la1=2N..0N,
// lo1=0E..2E) whose TMP values increase linearly with longitude: 0, 10, 20
// in every row, so bilinear interpolation has an exactly known answer.
func gradientFieldReader(t *testing.T) *Reader {
	t.Helper()
	grid := testGridSpec{ni: 3, nj: 3, la1: 2_000_000, lo1: 0, la2: 0, lo2: 2_000_000, di: 1_000_000, dj: 1_000_000, scanMode: 0}
	values := []byte{0, 10, 20, 0, 10, 20, 0, 10, 20}
	data := buildTestMessage(t, 0, 0, 1, 0, grid, values)
	return NewReader(data)
}

func TestBilinearInterpolateExactGridPoint(t *testing.T) {
	r := gradientFieldReader(t)
	dv, err := r.GetData(WithParameters("TMP"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}

	rec, err := r.BilinearInterpolate(dv, 1.0, 1.0, []string{"TMP"})
	if err != nil {
		t.Fatalf("BilinearInterpolate: %v", err)
	}
	if rec.Values["TMP"] != 10 {
		t.Errorf("TMP = %g, want 10", rec.Values["TMP"])
	}
}

func TestBilinearInterpolateMidpoint(t *testing.T) {
	r := gradientFieldReader(t)
	dv, err := r.GetData(WithParameters("TMP"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}

	// Halfway between longitude columns 0 (value 0) and 1 (value 10):
	// bilinear interpolation should return 5, independent of latitude.
	rec, err := r.BilinearInterpolate(dv, 1.0, 0.5, []string{"TMP"})
	if err != nil {
		t.Fatalf("BilinearInterpolate: %v", err)
	}
	if math.Abs(float64(rec.Values["TMP"]-5)) > 1e-4 {
		t.Errorf("TMP = %g, want 5", rec.Values["TMP"])
	}
}

func TestBilinearInterpolateOutOfBounds(t *testing.T) {
	r := gradientFieldReader(t)
	dv, err := r.GetData(WithParameters("TMP"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}

	if _, err := r.BilinearInterpolate(dv, 50.0, 50.0, []string{"TMP"}); err == nil {
		t.Fatal("expected an out-of-bounds error")
	}
}

func TestRegridBilinear(t *testing.T) {
	r := gradientFieldReader(t)
	dv, err := r.GetData(WithParameters("TMP"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}

	// Span the full source grid domain (0..2 in both axes), including its
	// outermost rows/columns: BilinearInterpolate clamps the upper index at
	// those boundaries rather than rejecting them, so this also exercises
	// that clamping.
	spec := GridSpec{LatMin: 0, LatMax: 2, LngMin: 0, LngMax: 2, LatStep: 0.5, LngStep: 0.5}
	out, err := r.RegridBilinear(dv, spec, []string{"TMP"})
	if err != nil {
		t.Fatalf("RegridBilinear: %v", err)
	}

	// Every output row spans longitudes 0, 0.5, 1.0, 1.5, 2.0 -> TMP 0, 5,
	// 10, 15, 20, independent of latitude since the source field doesn't
	// vary with it.
	want := []float32{0, 5, 10, 15, 20}
	row := out.Values["TMP"][:5]
	for i, w := range want {
		if math.Abs(float64(row[i]-w)) > 1e-3 {
			t.Errorf("row[%d] = %g, want %g", i, row[i], w)
		}
	}
}

func TestBilinearInterpolateReversedScanDirection(t *testing.T) {
	// Same field, but scanning mode 0x40 (+j, south to north) with la1/la2
	// swapped: the grid is laid out bottom row first. The interpolator
	// should produce the same physical answer regardless.
	grid := testGridSpec{ni: 3, nj: 3, la1: 0, lo1: 0, la2: 2_000_000, lo2: 2_000_000, di: 1_000_000, dj: 1_000_000, scanMode: 0x40}
	values := []byte{0, 10, 20, 0, 10, 20, 0, 10, 20}
	data := buildTestMessage(t, 0, 0, 1, 0, grid, values)
	r := NewReader(data)

	dv, err := r.GetData(WithParameters("TMP"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}

	rec, err := r.BilinearInterpolate(dv, 1.0, 1.0, []string{"TMP"})
	if err != nil {
		t.Fatalf("BilinearInterpolate: %v", err)
	}
	if rec.Values["TMP"] != 10 {
		t.Errorf("TMP = %g, want 10", rec.Values["TMP"])
	}
}
