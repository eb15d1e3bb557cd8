package data

import (
	"fmt"
	"math"

	"github.com/golang/glog"

	"github.com/mmp/squall/internal"
)

// ComplexPacking represents Data Representation Templates 5.2 (Complex
// Packing) and 5.3 (Complex Packing with Spatial Differencing).
//
// Both templates divide the data into variable-length, variable-width
// groups and pack each group with only the bits its range requires.
// Template 5.3 additionally applies first- or second-order spatial
// differencing before grouping, which greatly improves compression on
// smoothly varying fields (commonly used by regional forecast models like
// HRRR and NAM). Template 5.2 is the same scheme with SpatialDiffOrder 0:
// no differencing header, no reversal step.
type ComplexPacking struct {
	templateNumber int // 2 or 3

	ReferenceValue         float32 // Reference value (R) - base value for all data
	BinaryScaleFactor      int16   // Binary scale factor (E)
	DecimalScaleFactor     int16   // Decimal scale factor (D)
	NumBitsPerValue        uint8   // Number of bits for each group reference value
	OriginalFieldType      uint8   // Type of original field values (Table 5.1)
	GroupSplittingMethod   uint8   // Method used to split data into groups (Table 5.4)
	MissingValueManagement uint8   // Missing value management (Table 5.5)
	PrimaryMissingValue    float32 // Primary missing value substitute
	SecondaryMissingValue  float32 // Secondary missing value substitute
	NumberOfGroups         uint32  // Number of groups

	ReferenceGroupWidth  uint8  // Reference for group widths
	NumBitsGroupWidth    uint8  // Number of bits for group widths
	ReferenceGroupLength uint32 // Reference for group lengths
	GroupLengthIncrement uint8  // Increment for group lengths
	TrueLengthLastGroup  uint32 // True length of last group
	NumBitsGroupLength   uint8  // Number of bits for scaled group lengths

	SpatialDiffOrder          uint8 // Order of spatial differencing (0, 1 or 2); 0 for Template 5.2
	NumOctetsExtraDescriptors uint8 // Number of octets for the spatial-differencing header values

	NumberOfDataValues uint32 // Total number of data values to unpack
}

const complexPackingBaseLen = 36

// ParseTemplate52 parses Data Representation Template 5.2: Complex Packing
// (no spatial differencing). The template data should be at least 36 bytes.
func ParseTemplate52(numDataValues uint32, data []byte) (*ComplexPacking, error) {
	return parseComplexPacking(2, numDataValues, data)
}

// ParseTemplate53 parses Data Representation Template 5.3: Complex Packing
// with Spatial Differencing. The template data should be at least 38 bytes.
func ParseTemplate53(numDataValues uint32, data []byte) (*ComplexPacking, error) {
	return parseComplexPacking(3, numDataValues, data)
}

func parseComplexPacking(templateNumber int, numDataValues uint32, data []byte) (*ComplexPacking, error) {
	minLen := complexPackingBaseLen
	if templateNumber == 3 {
		minLen += 2
	}
	if len(data) < minLen {
		return nil, fmt.Errorf("template 5.%d requires at least %d bytes, got %d", templateNumber, minLen, len(data))
	}

	r := internal.NewReader(data)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	groupSplittingMethod, _ := r.Uint8()
	missingValueManagement, _ := r.Uint8()
	primaryMissingValue, _ := r.Float32()
	secondaryMissingValue, _ := r.Float32()
	numberOfGroups, _ := r.Uint32()
	referenceGroupWidth, _ := r.Uint8()
	numBitsGroupWidth, _ := r.Uint8()
	referenceGroupLength, _ := r.Uint32()
	groupLengthIncrement, _ := r.Uint8()
	trueLengthLastGroup, _ := r.Uint32()
	numBitsGroupLength, _ := r.Uint8()

	var spatialDiffOrder, numOctetsExtraDescriptors uint8
	if templateNumber == 3 {
		spatialDiffOrder, _ = r.Uint8()
		numOctetsExtraDescriptors, _ = r.Uint8()
	}

	return &ComplexPacking{
		templateNumber:            templateNumber,
		ReferenceValue:            referenceValue,
		BinaryScaleFactor:         binaryScaleFactor,
		DecimalScaleFactor:        decimalScaleFactor,
		NumBitsPerValue:           bitsPerValue,
		OriginalFieldType:         originalFieldType,
		GroupSplittingMethod:      groupSplittingMethod,
		MissingValueManagement:    missingValueManagement,
		PrimaryMissingValue:       primaryMissingValue,
		SecondaryMissingValue:     secondaryMissingValue,
		NumberOfGroups:            numberOfGroups,
		ReferenceGroupWidth:       referenceGroupWidth,
		NumBitsGroupWidth:         numBitsGroupWidth,
		ReferenceGroupLength:      referenceGroupLength,
		GroupLengthIncrement:      groupLengthIncrement,
		TrueLengthLastGroup:       trueLengthLastGroup,
		NumBitsGroupLength:        numBitsGroupLength,
		SpatialDiffOrder:          spatialDiffOrder,
		NumOctetsExtraDescriptors: numOctetsExtraDescriptors,
		NumberOfDataValues:        numDataValues,
	}, nil
}

// TemplateNumber returns 2 or 3, depending on which template was parsed.
func (t *ComplexPacking) TemplateNumber() int {
	return t.templateNumber
}

// NumDataValues returns the number of data values.
func (t *ComplexPacking) NumDataValues() uint32 {
	return t.NumberOfDataValues
}

// BitsPerValue returns the number of bits per group reference value.
func (t *ComplexPacking) BitsPerValue() uint8 {
	return t.NumBitsPerValue
}

// Decode unpacks data using complex packing, reversing spatial
// differencing when SpatialDiffOrder is 1 or 2.
//
// Algorithm:
//  1. If spatial differencing is in use, read the order-many first values
//     and the overall minimum, all byte-aligned (sign-magnitude for the
//     minimum).
//  2. Read the per-group reference (minimum) values.
//  3. Unpack group widths and lengths.
//  4. Unpack data values for each group.
//  5. Reverse spatial differencing, if any.
//  6. Apply scaling.
//
// Per the GRIB2 complex-packing layout, each of the group-reference,
// group-width and group-length arrays is followed by padding to the next
// byte boundary; the spatial-differencing header itself is not.
//
// If bitmap is provided, it must have length equal to the number of grid
// points. The output will have the same length as the bitmap, with
// undefined values set to 9.999e20 where bitmap is false.
func (t *ComplexPacking) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	if len(packedData) == 0 {
		return nil, fmt.Errorf("no packed data to decode")
	}

	bitReader := internal.NewBitReader(packedData)

	ndata := t.NumberOfDataValues
	if bitmap != nil {
		ndata = uint32(len(bitmap))
	}

	var firstVals []int32
	var minVal int32
	if t.SpatialDiffOrder == 1 || t.SpatialDiffOrder == 2 {
		if t.NumOctetsExtraDescriptors == 0 {
			return nil, fmt.Errorf("spatial differencing order %d requires NumOctetsExtraDescriptors > 0, got 0",
				t.SpatialDiffOrder)
		}

		numFirstVals := int(t.SpatialDiffOrder)
		firstVals = make([]int32, numFirstVals)
		numOctets := int(t.NumOctetsExtraDescriptors)

		for i := 0; i < numFirstVals; i++ {
			val, err := bitReader.ReadBytes(numOctets)
			if err != nil {
				return nil, fmt.Errorf("failed to read first value %d: %w", i, err)
			}
			firstVals[i] = int32(val)
		}

		// The overall minimum is sign-magnitude encoded, like every other
		// signed octet field in GRIB2 - not two's complement.
		val, err := bitReader.ReadSignedBytesSignMagnitude(numOctets)
		if err != nil {
			return nil, fmt.Errorf("failed to read min_val: %w", err)
		}
		minVal = int32(val)
	}

	groupMinVals := make([]int32, t.NumberOfGroups)
	for i := uint32(0); i < t.NumberOfGroups; i++ {
		val, err := bitReader.ReadBits(int(t.NumBitsPerValue))
		if err != nil {
			return nil, fmt.Errorf("failed to read group min value %d: %w", i, err)
		}
		groupMinVals[i] = int32(val)
	}
	bitReader.Align()

	groupWidths := make([]uint8, t.NumberOfGroups)
	if t.NumBitsGroupWidth > 0 {
		for i := uint32(0); i < t.NumberOfGroups; i++ {
			val, err := bitReader.ReadBits(int(t.NumBitsGroupWidth))
			if err != nil {
				return nil, fmt.Errorf("failed to read group width %d: %w", i, err)
			}
			groupWidths[i] = uint8(val) + t.ReferenceGroupWidth
		}
	} else {
		for i := uint32(0); i < t.NumberOfGroups; i++ {
			groupWidths[i] = t.ReferenceGroupWidth
		}
	}
	bitReader.Align()

	groupLengths := make([]uint32, t.NumberOfGroups)
	if t.NumBitsGroupLength > 0 {
		for i := uint32(0); i < t.NumberOfGroups; i++ {
			val, err := bitReader.ReadBits(int(t.NumBitsGroupLength))
			if err != nil {
				return nil, fmt.Errorf("failed to read group length %d: %w", i, err)
			}
			groupLengths[i] = t.ReferenceGroupLength + uint32(val)*uint32(t.GroupLengthIncrement)
		}
		if t.NumberOfGroups > 0 {
			groupLengths[t.NumberOfGroups-1] = t.TrueLengthLastGroup
		}
	} else {
		for i := uint32(0); i < t.NumberOfGroups; i++ {
			groupLengths[i] = t.ReferenceGroupLength
		}
		if t.NumberOfGroups > 0 {
			groupLengths[t.NumberOfGroups-1] = t.TrueLengthLastGroup
		}
	}
	bitReader.Align()

	numUnpackedVals := int(ndata) - len(firstVals)
	unpackedVals := make([]int32, numUnpackedVals)

	// A short Section 7 payload (groups running past the available bits) is
	// recoverable: the remaining values are left at the zero value instead
	// of aborting the whole decode.
	idx := 0
truncated:
	for i := uint32(0); i < t.NumberOfGroups; i++ {
		groupWidth := groupWidths[i]
		groupLength := groupLengths[i]
		groupMin := groupMinVals[i]

		for j := uint32(0); j < groupLength; j++ {
			if idx >= numUnpackedVals {
				break
			}

			if groupWidth == 0 {
				unpackedVals[idx] = groupMin
			} else {
				val, err := bitReader.ReadBits(int(groupWidth))
				if err != nil {
					glog.Warningf("grib: complex packing payload truncated in group %d of %d: %v, zero-filling remainder",
						i, t.NumberOfGroups, err)
					break truncated
				}
				unpackedVals[idx] = groupMin + int32(val)
			}
			idx++
		}
	}

	allVals := make([]int32, len(firstVals)+len(unpackedVals))
	copy(allVals, firstVals)
	copy(allVals[len(firstVals):], unpackedVals)

	var finalVals []int32
	switch t.SpatialDiffOrder {
	case 1:
		finalVals = reverseSpatialDifferencing1(allVals, minVal)
	case 2:
		finalVals = reverseSpatialDifferencing2(allVals, minVal)
	default:
		finalVals = allVals
	}

	if bitmap != nil {
		return t.applyScalingWithBitmap(finalVals, bitmap)
	}
	return t.applyScalingWithoutBitmap(finalVals), nil
}

// reverseSpatialDifferencing1 reverses first-order spatial differencing.
//
// First-order differencing: Y[n] = X[n] - X[n-1]
// Reversal: X[n] = X[n-1] + Y[n] + min_val
func reverseSpatialDifferencing1(diffVals []int32, minVal int32) []int32 {
	if len(diffVals) == 0 {
		return diffVals
	}

	vals := make([]int32, len(diffVals))
	vals[0] = diffVals[0]

	for i := 1; i < len(diffVals); i++ {
		vals[i] = vals[i-1] + diffVals[i] + minVal
	}

	return vals
}

// reverseSpatialDifferencing2 reverses second-order spatial differencing.
//
// Second-order differencing: Z[n] = (X[n] - X[n-1]) - (X[n-1] - X[n-2])
//
//	= X[n] - 2*X[n-1] + X[n-2]
//
// Reversal: X[n] = Z[n] + 2*X[n-1] - X[n-2] + min_val
func reverseSpatialDifferencing2(diffVals []int32, minVal int32) []int32 {
	if len(diffVals) < 2 {
		return diffVals
	}

	vals := make([]int32, len(diffVals))
	vals[0] = diffVals[0]
	vals[1] = diffVals[1]

	for i := 2; i < len(diffVals); i++ {
		vals[i] = diffVals[i] + 2*vals[i-1] - vals[i-2] + minVal
	}

	return vals
}

// applyScalingWithoutBitmap applies scaling when all values are valid.
func (t *ComplexPacking) applyScalingWithoutBitmap(packedValues []int32) []float32 {
	values := make([]float32, len(packedValues))
	for i, packed := range packedValues {
		values[i] = t.applyScaling(packed)
	}
	return values
}

// applyScalingWithBitmap applies scaling and bitmap.
func (t *ComplexPacking) applyScalingWithBitmap(packedValues []int32, bitmap []bool) ([]float32, error) {
	if len(packedValues) > len(bitmap) {
		return nil, fmt.Errorf("more packed values (%d) than bitmap entries (%d)",
			len(packedValues), len(bitmap))
	}

	values := make([]float32, len(bitmap))
	packedIdx := 0

	for i := range bitmap {
		if bitmap[i] {
			if packedIdx >= len(packedValues) {
				return nil, fmt.Errorf("bitmap indicates more valid points than packed values available")
			}
			values[i] = t.applyScaling(packedValues[packedIdx])
			packedIdx++
		} else {
			values[i] = 9.999e20 // Missing value
		}
	}

	if packedIdx != len(packedValues) {
		return nil, fmt.Errorf("bitmap mismatch: used %d packed values, have %d",
			packedIdx, len(packedValues))
	}

	return values, nil
}

// applyScaling applies the scaling formula to a packed value.
//
// Formula: value = (R + X * 2^E) / 10^D
func (t *ComplexPacking) applyScaling(packedValue int32) float32 {
	value := float64(t.ReferenceValue)

	if packedValue != 0 {
		binaryScale := math.Pow(2.0, float64(t.BinaryScaleFactor))
		value += float64(packedValue) * binaryScale
	}

	if t.DecimalScaleFactor != 0 {
		decimalScale := math.Pow(10.0, float64(t.DecimalScaleFactor))
		value /= decimalScale
	}

	return float32(value)
}

// String returns a human-readable description.
func (t *ComplexPacking) String() string {
	if t.SpatialDiffOrder == 0 {
		return fmt.Sprintf("Template 5.%d: Complex Packing, %d values, %d groups, R=%g, E=%d, D=%d",
			t.templateNumber, t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue,
			t.BinaryScaleFactor, t.DecimalScaleFactor)
	}
	return fmt.Sprintf("Template 5.%d: Complex Packing (Spatial Diff Order %d), %d values, %d groups, R=%g, E=%d, D=%d",
		t.templateNumber, t.SpatialDiffOrder, t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
