package grib

import "testing"

func windComponentBuffer(t *testing.T) []byte {
	t.Helper()
	grid := testGridSpec{ni: 2, nj: 2, la1: 10_000_000, lo1: 0, la2: 9_000_000, lo2: 1_000_000, di: 1_000_000, dj: 1_000_000}
	ugrd := buildTestMessage(t, 2, 2, 103, 10, grid, []byte{3, 3, 3, 3}) // UGRD = 3
	vgrd := buildTestMessage(t, 2, 3, 103, 10, grid, []byte{4, 4, 4, 4}) // VGRD = 4
	return append(append([]byte{}, ugrd...), vgrd...)
}

func TestGetDataByParameters(t *testing.T) {
	r := NewReader(windComponentBuffer(t))

	dv, err := r.GetData(WithParameters("UGRD"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if len(dv.Lats) != 4 {
		t.Fatalf("got %d points, want 4", len(dv.Lats))
	}
	vals, ok := dv.Values["UGRD"]
	if !ok {
		t.Fatal("expected UGRD in result")
	}
	for i, v := range vals {
		if v != 3 {
			t.Errorf("UGRD[%d] = %g, want 3", i, v)
		}
	}
	if _, ok := dv.Values["VGRD"]; ok {
		t.Error("VGRD should not be present when only UGRD was requested")
	}
}

func TestGetDataDerivedWind(t *testing.T) {
	r := NewReader(windComponentBuffer(t))

	dv, err := r.GetData(WithParameters("UGRD", "VGRD"), WithDerivedWind())
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}

	wind, ok := dv.Values["WIND"]
	if !ok {
		t.Fatal("expected WIND to be derived")
	}
	for i, v := range wind {
		if got, want := v, float32(5); got != want {
			t.Errorf("WIND[%d] = %g, want %g", i, got, want)
		}
	}

	dir, ok := dv.Values["WDIR"]
	if !ok {
		t.Fatal("expected WDIR to be derived")
	}
	// u=3 (eastward), v=4 (northward): wind blows toward the northeast,
	// i.e. FROM the southwest, which is 180+atan2(3,4) degrees.
	for i, v := range dir {
		if v <= 0 || v >= 360 {
			t.Errorf("WDIR[%d] = %g, want a value in (0, 360)", i, v)
		}
	}
}

func TestGetDataPatternFilter(t *testing.T) {
	r := NewReader(windComponentBuffer(t))

	dv, err := r.GetData(WithPattern(`:UGRD:`))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	names := dv.ParameterNames()
	if len(names) != 1 || names[0] != "UGRD" {
		t.Errorf("ParameterNames() = %v, want [UGRD]", names)
	}
}

func TestGetDataNoMatch(t *testing.T) {
	r := NewReader(windComponentBuffer(t))

	if _, err := r.GetData(WithParameters("NOSUCHPARAM")); err == nil {
		t.Fatal("expected a NoMatch error")
	}
}

func TestGetDataAsObjects(t *testing.T) {
	r := NewReader(windComponentBuffer(t))

	dv, err := r.GetData(WithParameters("UGRD"), WithAsObjects())
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	objects := dv.Objects()
	if len(objects) != 4 {
		t.Fatalf("got %d objects, want 4", len(objects))
	}
	for _, obj := range objects {
		if obj.Values["UGRD"] != 3 {
			t.Errorf("object UGRD = %g, want 3", obj.Values["UGRD"])
		}
	}
}

func TestGetDataInvalidPattern(t *testing.T) {
	r := NewReader(windComponentBuffer(t))

	if _, err := r.GetData(WithPattern("(")); err == nil {
		t.Fatal("expected an InvalidPattern error for malformed regex")
	}
}

func TestGetDataNegativeLongitudeNormalization(t *testing.T) {
	// A grid just west of the prime meridian whose raw wire longitudes are
	// -2 and -1 degrees, which Coordinates() must normalize into
	// [358, 359] rather than leaving negative.
	grid := testGridSpec{ni: 2, nj: 1, la1: 0, lo1: -2_000_000, la2: 0, lo2: -1_000_000, di: 1_000_000, dj: 1_000_000}
	data := buildTestMessage(t, 0, 0, 1, 0, grid, []byte{1, 1})

	r := NewReader(data)
	dv, err := r.GetData(WithParameters("TMP"))
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	for _, lon := range dv.Lngs {
		if lon < 0 || lon >= 360 {
			t.Errorf("longitude %g not normalized into [0, 360)", lon)
		}
	}
	if dv.Lngs[0] != 358 || dv.Lngs[1] != 359 {
		t.Errorf("Lngs = %v, want [358 359]", dv.Lngs)
	}
}
