package grib

import (
	"bytes"
	"io"

	"github.com/golang/glog"
	"github.com/mmp/squall/section"
)

// WalkPolicy controls how a MessageWalker reacts to a malformed message
// while scanning a multi-message buffer.
type WalkPolicy int

const (
	// WalkStopOnError returns the error from Next. For a bad signature,
	// section 0 or declared length, the walker stays on the same bytes so a
	// subsequent call would retry them; for a message whose sections fail
	// to parse, it has already moved past that message.
	WalkStopOnError WalkPolicy = iota
	// WalkSkipOnError logs the condition via glog.Warningf, resynchronizes
	// to the next "GRIB" signature in the buffer, and continues.
	WalkSkipOnError
)

// MessageWalker performs a sequential, single-pass scan of a byte buffer
// that may contain one or more concatenated GRIB2 messages, yielding one
// parsed Message per call to Next.
//
// A MessageWalker holds no goroutines and touches no shared state; it is
// safe to use from a single goroutine only, matching the library's
// synchronous concurrency model.
type MessageWalker struct {
	data   []byte
	offset int
	index  int
	policy WalkPolicy
}

// NewMessageWalker creates a walker over data using the given error policy.
func NewMessageWalker(data []byte, policy WalkPolicy) *MessageWalker {
	return &MessageWalker{data: data, policy: policy}
}

// Next returns the next message in the buffer. It returns io.EOF once the
// buffer is exhausted (including when no "GRIB" signature remains).
//
// Under WalkSkipOnError, a malformed message is skipped: the walker logs a
// warning and resumes scanning from the next "GRIB" signature rather than
// returning an error, so a single corrupt message doesn't prevent later
// messages in the buffer from being read.
func (w *MessageWalker) Next() (*Message, error) {
	for {
		if w.offset >= len(w.data) {
			return nil, io.EOF
		}

		rel := bytes.Index(w.data[w.offset:], []byte("GRIB"))
		if rel < 0 {
			w.offset = len(w.data)
			return nil, io.EOF
		}
		start := w.offset + rel

		if rel != 0 {
			if w.policy == WalkSkipOnError {
				glog.Warningf("grib: resynced to GRIB signature at offset %d, skipped %d bytes", start, rel)
			} else {
				return nil, newInvalidSignatureError(w.offset, "expected GRIB magic number at offset %d, found junk", w.offset)
			}
		}

		if start+16 > len(w.data) {
			if w.policy == WalkSkipOnError {
				glog.Warningf("grib: incomplete section 0 at offset %d, stopping scan", start)
				w.offset = len(w.data)
				return nil, io.EOF
			}
			return nil, newTruncatedPayloadError(0, start, "incomplete section 0 at end of buffer")
		}

		sec0, err := section.ParseSection0(w.data[start : start+16])
		if err != nil {
			if w.policy == WalkSkipOnError {
				glog.Warningf("grib: invalid section 0 at offset %d: %v, resyncing", start, err)
				w.offset = start + 4
				continue
			}
			return nil, newUnsupportedEditionError(0)
		}

		end := start + int(sec0.MessageLength)
		if end > len(w.data) || end < start {
			if w.policy == WalkSkipOnError {
				glog.Warningf("grib: message at offset %d declares length %d past end of buffer, resyncing", start, sec0.MessageLength)
				w.offset = start + 4
				continue
			}
			return nil, newTruncatedPayloadError(0, start, "message length %d exceeds available data", sec0.MessageLength)
		}

		msgData := w.data[start:end]
		msg, err := ParseMessage(msgData)
		w.index++
		w.offset = end
		if err != nil {
			if w.policy == WalkSkipOnError {
				glog.Warningf("grib: skipping message %d at offset %d: %v", w.index, start, err)
				continue
			}
			return nil, err
		}

		return msg, nil
	}
}

// Index returns the number of messages successfully handed out so far
// (including ones skipped due to a downstream error, under WalkSkipOnError).
func (w *MessageWalker) Index() int {
	return w.index
}
