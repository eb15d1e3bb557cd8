package grib

import (
	"fmt"

	"github.com/mmp/squall/grid"
)

// Reader is the primary entry point for consuming a GRIB2 byte buffer: it
// parses messages once and lets callers query grid metadata, build a
// synthetic inventory, filter/select decoded fields, and interpolate them,
// without re-walking the buffer for each operation.
//
// A Reader holds no goroutines or open file handles; it operates entirely
// on the in-memory buffer passed to NewReader. It is not safe for
// concurrent use by multiple goroutines, matching the library's
// synchronous, single-buffer concurrency model; distinct Readers over
// distinct buffers may be used concurrently without synchronization.
type Reader struct {
	buffer   []byte
	messages []*Message
}

// NewReader creates a Reader over buffer. The buffer is not copied; callers
// must not mutate it while the Reader is in use.
func NewReader(buffer []byte) *Reader {
	return &Reader{buffer: buffer}
}

// Parse walks every message in the buffer sequentially, stopping at the
// first malformed message, and caches the result for subsequent GetGrid /
// GetInventory / GetData calls. Calling Parse again re-walks the buffer.
func (r *Reader) Parse() ([]*Message, error) {
	messages, err := ParseMessagesSequential(r.buffer)
	if err != nil {
		return nil, err
	}
	r.messages = messages
	return messages, nil
}

// ParseWithOptions parses the buffer with the given options, e.g.
// WithWorkers(n) for bounded parallel parsing of independent messages.
// Results are cached the same as Parse.
func (r *Reader) ParseWithOptions(opts ...ReadOption) ([]*Message, error) {
	config := defaultReadConfig()
	for _, opt := range opts {
		opt(&config)
	}
	messages, err := parseAll(r.buffer, config)
	if err != nil {
		return nil, err
	}
	r.messages = messages
	return messages, nil
}

func (r *Reader) ensureParsed() error {
	if r.messages != nil {
		return nil
	}
	_, err := r.Parse()
	return err
}

// GridInfo describes a message's grid without requiring callers to type
// switch on the underlying grid.Grid implementation.
type GridInfo struct {
	TemplateNumber int
	GridType       string
	Ni, Nj         int
	NumPoints      int
}

// GetGrid returns grid metadata for the message at messageIndex (0-based,
// in file order). Parse is called implicitly if it hasn't run yet.
func (r *Reader) GetGrid(messageIndex int) (*GridInfo, error) {
	if err := r.ensureParsed(); err != nil {
		return nil, err
	}
	if messageIndex < 0 || messageIndex >= len(r.messages) {
		return nil, newOutOfBoundsError("message index %d out of range [0, %d)", messageIndex, len(r.messages))
	}
	msg := r.messages[messageIndex]
	if msg.Section3 == nil || msg.Section3.Grid == nil {
		return nil, newUnexpectedSectionError(3, 0, "message %d has no grid definition", messageIndex)
	}

	g := msg.Section3.Grid
	info := &GridInfo{
		TemplateNumber: g.TemplateNumber(),
		NumPoints:      g.NumPoints(),
	}
	switch gr := g.(type) {
	case *grid.LatLonGrid:
		info.GridType = "latlon"
		info.Ni = int(gr.Ni)
		info.Nj = int(gr.Nj)
	case *grid.MercatorGrid:
		info.GridType = "mercator"
	case *grid.PolarStereographicGrid:
		info.GridType = "polar_stereographic"
	case *grid.LambertConformalGrid:
		info.GridType = "lambert_conformal"
	case *grid.OpaqueGrid:
		info.GridType = fmt.Sprintf("opaque(template %d)", gr.TemplateNumber())
	default:
		info.GridType = "unknown"
	}
	return info, nil
}

// GetInventory builds one InventoryEntry per message, in file order. Parse
// is called implicitly if it hasn't run yet.
func (r *Reader) GetInventory() ([]InventoryEntry, error) {
	if err := r.ensureParsed(); err != nil {
		return nil, err
	}
	entries := make([]InventoryEntry, 0, len(r.messages))
	offset := 0
	for i, msg := range r.messages {
		entry, err := buildInventoryEntry(i, offset, msg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		offset += len(msg.RawData)
	}
	return entries, nil
}
