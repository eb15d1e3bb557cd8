package grib

import "testing"

func constantFieldGrid() testGridSpec {
	return testGridSpec{ni: 2, nj: 2, la1: 10_000_000, lo1: 0, la2: 9_000_000, lo2: 1_000_000, di: 1_000_000, dj: 1_000_000}
}

func TestReaderParseAndGetGrid(t *testing.T) {
	data := buildTestMessage(t, 0, 0, 100, 50000, constantFieldGrid(), []byte{7, 7, 7, 7})

	r := NewReader(data)
	messages, err := r.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	info, err := r.GetGrid(0)
	if err != nil {
		t.Fatalf("GetGrid: %v", err)
	}
	if info.GridType != "latlon" {
		t.Errorf("GridType = %q, want latlon", info.GridType)
	}
	if info.Ni != 2 || info.Nj != 2 {
		t.Errorf("Ni/Nj = %d/%d, want 2/2", info.Ni, info.Nj)
	}
	if info.NumPoints != 4 {
		t.Errorf("NumPoints = %d, want 4", info.NumPoints)
	}
}

func TestReaderGetGridOutOfBounds(t *testing.T) {
	data := buildTestMessage(t, 0, 0, 100, 50000, constantFieldGrid(), []byte{1, 1, 1, 1})
	r := NewReader(data)

	if _, err := r.GetGrid(5); err == nil {
		t.Fatal("expected an error for an out-of-range message index")
	}
}

func TestReaderGetInventory(t *testing.T) {
	data := buildTestMessage(t, 0, 0, 100, 50000, constantFieldGrid(), []byte{1, 1, 1, 1})
	r := NewReader(data)

	inv, err := r.GetInventory()
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if len(inv) != 1 {
		t.Fatalf("got %d entries, want 1", len(inv))
	}
	if inv[0].ShortName != "TMP" {
		t.Errorf("ShortName = %q, want TMP", inv[0].ShortName)
	}
	if inv[0].Index != 1 {
		t.Errorf("Index = %d, want 1", inv[0].Index)
	}
}

func TestReaderGetGridImplicitParse(t *testing.T) {
	// GetGrid should trigger Parse itself when it hasn't run yet.
	data := buildTestMessage(t, 0, 0, 100, 50000, constantFieldGrid(), []byte{1, 1, 1, 1})
	r := NewReader(data)

	if _, err := r.GetGrid(0); err != nil {
		t.Fatalf("GetGrid without prior Parse: %v", err)
	}
}
