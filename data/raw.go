package data

import "fmt"

// RawRepresentation stands in for a data representation template this
// library doesn't know how to decode. It preserves the template number and
// raw bytes so that a message using it remains inspectable (section
// lengths, metadata, inventory) even though its field values can't be
// unpacked.
type RawRepresentation struct {
	templateNumber int
	numDataValues  uint32
	raw            []byte
}

// NewRawRepresentation wraps an unsupported data representation template.
func NewRawRepresentation(templateNumber int, numDataValues uint32, raw []byte) *RawRepresentation {
	return &RawRepresentation{templateNumber: templateNumber, numDataValues: numDataValues, raw: raw}
}

// TemplateNumber returns the unsupported template's number.
func (r *RawRepresentation) TemplateNumber() int {
	return r.templateNumber
}

// NumDataValues returns the number of data values the template declares.
func (r *RawRepresentation) NumDataValues() uint32 {
	return r.numDataValues
}

// BitsPerValue always returns 0, since the packing scheme is unknown.
func (r *RawRepresentation) BitsPerValue() uint8 {
	return 0
}

// RawBytes returns the raw, template-specific bytes as they appeared in
// Section 5, for callers that want to attempt their own decoding.
func (r *RawRepresentation) RawBytes() []byte {
	return r.raw
}

// Decode always fails: the packing scheme for this template isn't
// implemented.
func (r *RawRepresentation) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	return nil, fmt.Errorf("data representation template %d is not supported for decoding", r.templateNumber)
}

// String returns a human-readable description.
func (r *RawRepresentation) String() string {
	return fmt.Sprintf("Template 5.%d: unsupported (raw, %d bytes)", r.templateNumber, len(r.raw))
}
