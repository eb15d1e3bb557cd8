package grib

import "math"

// GridSpec describes a regular lat/lon target grid for RegridBilinear.
type GridSpec struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
	LatStep        float64
	LngStep        float64
}

// BilinearInterpolate returns the value of each requested parameter at
// (lat, lng), bilinearly interpolated from dv's regular grid.
//
// This requires dv to have come from a Template 3.0 (regular lat/lon) grid:
// the implementation assumes Lats/Lngs are laid out in the consecutive,
// row-major scan order CoordinateGrid.Coordinates() produces for that
// template; interpolation is only defined for that grid type.
func (r *Reader) BilinearInterpolate(dv *DataView, lat, lng float64, params []string) (*PointRecord, error) {
	ni, nj, err := regularGridShape(dv)
	if err != nil {
		return nil, err
	}

	lat0 := float64(dv.Lats[0])
	lng0 := float64(dv.Lngs[0])
	dlat := gridStep(dv.Lats, nj, ni, true)
	dlng := gridStep(dv.Lngs, nj, ni, false)
	if dlat == 0 || dlng == 0 {
		return nil, newOutOfRangeError("grid has zero spacing, cannot interpolate")
	}

	fi := (lng - lng0) / dlng
	fj := (lat - lat0) / dlat
	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))

	if i0 < 0 || j0 < 0 || fi > float64(ni-1)+1e-6 || fj > float64(nj-1)+1e-6 {
		return nil, newOutOfBoundsError("point (%g, %g) is outside the grid", lat, lng)
	}
	// A point sitting exactly on the grid's last row/column would otherwise
	// need a corner one past the end; clamp it so the four corners used
	// below stay inside the grid (ti/tj are then 1, so the weights fall
	// entirely on that last row/column).
	if i0 >= ni-1 {
		i0 = ni - 2
	}
	if j0 >= nj-1 {
		j0 = nj - 2
	}

	ti := fi - float64(i0)
	tj := fj - float64(j0)

	values := make(map[string]float32, len(params))
	for _, name := range params {
		vs, ok := dv.Values[name]
		if !ok {
			continue
		}
		v00 := vs[j0*ni+i0]
		v10 := vs[j0*ni+i0+1]
		v01 := vs[(j0+1)*ni+i0]
		v11 := vs[(j0+1)*ni+i0+1]
		if isMissing(v00) || isMissing(v10) || isMissing(v01) || isMissing(v11) {
			values[name] = float32(missingValueThreshold)
			continue
		}
		top := float64(v00)*(1-ti) + float64(v10)*ti
		bottom := float64(v01)*(1-ti) + float64(v11)*ti
		values[name] = float32(top*(1-tj) + bottom*tj)
	}

	return &PointRecord{Lat: float32(lat), Lng: float32(lng), Values: values}, nil
}

// RegridBilinear resamples params from dv onto the regular grid described by
// spec, bilinearly interpolating each target point.
func (r *Reader) RegridBilinear(dv *DataView, spec GridSpec, params []string) (*DataView, error) {
	if spec.LatStep <= 0 || spec.LngStep <= 0 {
		return nil, newOutOfRangeError("grid spec step must be positive, got lat=%g lng=%g", spec.LatStep, spec.LngStep)
	}

	var lats, lngs []float32
	for lat := spec.LatMin; lat <= spec.LatMax+1e-9; lat += spec.LatStep {
		for lng := spec.LngMin; lng <= spec.LngMax+1e-9; lng += spec.LngStep {
			lats = append(lats, float32(lat))
			lngs = append(lngs, float32(lng))
		}
	}

	out := &DataView{Lats: lats, Lngs: lngs, Values: make(map[string][]float32)}
	for _, name := range params {
		out.Values[name] = make([]float32, len(lats))
	}

	for idx := range lats {
		rec, err := r.BilinearInterpolate(dv, float64(lats[idx]), float64(lngs[idx]), params)
		if err != nil {
			for _, name := range params {
				out.Values[name][idx] = float32(missingValueThreshold)
			}
			continue
		}
		for _, name := range params {
			out.Values[name][idx] = rec.Values[name]
		}
	}

	return out, nil
}

// regularGridShape recovers Ni/Nj from a DataView's coordinate arrays by
// counting the run of distinct longitudes before the latitude changes,
// matching the consecutive (i-fastest) scan order CoordinateGrid produces.
func regularGridShape(dv *DataView) (ni, nj int, err error) {
	if len(dv.Lats) == 0 || len(dv.Lats) != len(dv.Lngs) {
		return 0, 0, newOutOfRangeError("data view has no coordinates to interpolate against")
	}
	first := dv.Lats[0]
	ni = 1
	for ni < len(dv.Lats) && dv.Lats[ni] == first {
		ni++
	}
	if len(dv.Lats)%ni != 0 {
		return 0, 0, newOutOfRangeError("data view is not a regular grid: %d points not divisible by row length %d", len(dv.Lats), ni)
	}
	nj = len(dv.Lats) / ni
	return ni, nj, nil
}

// gridStep returns the signed spacing between consecutive rows (forLat)
// or columns (forLng=false) of a regular, row-major coordinate array.
func gridStep(coords []float32, nj, ni int, forLat bool) float64 {
	if forLat {
		if nj < 2 {
			return 0
		}
		return float64(coords[ni]) - float64(coords[0])
	}
	if ni < 2 {
		return 0
	}
	return float64(coords[1]) - float64(coords[0])
}
