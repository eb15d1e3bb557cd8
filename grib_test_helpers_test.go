package grib

import "testing"

// testGridSpec describes a small regular lat/lon grid (Template 3.0) in the
// wire format's 1e-6-degree units, for building synthetic messages in
// tests below.
type testGridSpec struct {
	ni, nj             int
	la1, lo1, la2, lo2 int32
	di, dj             uint32
	scanMode           uint8
}

// buildTestMessage assembles a single, complete GRIB2 message (Sections
// 0,1,3,4,5,6,7,8 — Section 2 is omitted, matching the common case) around
// a Template 3.0 grid, a Template 4.0 product, and Template 5.0 (simple,
// 8-bit, unscaled) packed data, so that DecodeData() returns values equal
// to the raw bytes in values.
func buildTestMessage(t *testing.T, paramCategory, paramNumber, surfaceType uint8, surfaceValue uint32, grid testGridSpec, values []uint8) []byte {
	t.Helper()

	numPoints := uint32(grid.ni * grid.nj)
	if len(values) != int(numPoints) {
		t.Fatalf("buildTestMessage: %d values, want %d", len(values), numPoints)
	}

	sec0 := make([]byte, 16)
	copy(sec0, "GRIB")
	sec0[6] = 0 // discipline: meteorological
	sec0[7] = 2 // edition 2

	sec1 := make([]byte, 21)
	putUint32(sec1[0:4], 21)
	sec1[4] = 1
	putUint16(sec1[5:7], 7) // originating center: NCEP
	sec1[9] = 2             // master tables version
	sec1[10] = 1            // local tables version
	sec1[11] = 1            // significance of reference time: start of forecast
	putUint16(sec1[12:14], 2024)
	sec1[14] = 1 // month
	sec1[15] = 1 // day
	sec1[19] = 0 // production status: operational
	sec1[20] = 1 // type of data: forecast

	sec3 := make([]byte, 86)
	putUint32(sec3[0:4], 86)
	sec3[4] = 3
	sec3[5] = 0 // source of grid definition: specified in template
	putUint32(sec3[6:10], numPoints)
	putUint16(sec3[12:14], 0) // template number 0
	putUint32(sec3[30:34], uint32(grid.ni))
	putUint32(sec3[34:38], uint32(grid.nj))
	putInt32(sec3[46:50], grid.la1)
	putInt32(sec3[50:54], grid.lo1)
	putInt32(sec3[55:59], grid.la2)
	putInt32(sec3[59:63], grid.lo2)
	putUint32(sec3[63:67], grid.di)
	putUint32(sec3[67:71], grid.dj)
	sec3[71] = grid.scanMode

	sec4 := make([]byte, 43)
	putUint32(sec4[0:4], 43)
	sec4[4] = 4
	sec4[9] = paramCategory
	sec4[10] = paramNumber
	sec4[17] = 1 // time range unit: hour
	sec4[22] = surfaceType
	sec4[23] = 0 // surface scale factor
	putUint32(sec4[24:28], surfaceValue)
	sec4[28] = 255 // second surface type: missing

	sec5 := make([]byte, 21)
	putUint32(sec5[0:4], 21)
	sec5[4] = 5
	putUint32(sec5[5:9], numPoints)
	// template number 0 left zero; reference value/scale factors left
	// zero so Decode() returns the packed byte values unchanged
	sec5[19] = 8 // bits per value
	sec5[20] = 0 // original field type

	sec6 := make([]byte, 6)
	putUint32(sec6[0:4], 6)
	sec6[4] = 6
	sec6[5] = 255 // no bitmap

	sec7 := make([]byte, 5+len(values))
	putUint32(sec7[0:4], uint32(5+len(values)))
	sec7[4] = 7
	copy(sec7[5:], values)

	sec8 := []byte("7777")

	total := len(sec0) + len(sec1) + len(sec3) + len(sec4) + len(sec5) + len(sec6) + len(sec7) + len(sec8)
	putUint64(sec0[8:16], uint64(total))

	buf := make([]byte, 0, total)
	buf = append(buf, sec0...)
	buf = append(buf, sec1...)
	buf = append(buf, sec3...)
	buf = append(buf, sec4...)
	buf = append(buf, sec5...)
	buf = append(buf, sec6...)
	buf = append(buf, sec7...)
	buf = append(buf, sec8...)
	return buf
}

func putUint16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func putInt32(b []byte, v int32) { putUint32(b, uint32(v)) }

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> uint((7-i)*8))
	}
}
