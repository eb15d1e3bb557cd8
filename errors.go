// Package grib provides a clean, idiomatic Go library for reading GRIB2
// (GRIdded Binary, edition 2) meteorological data files.
//
// Basic usage:
//
//	f, err := os.Open("forecast.grib2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	fields, err := grib.Read(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, field := range fields {
//	    fmt.Printf("%s at %s: %d values\n", field.Parameter, field.Level, field.NumPoints)
//	}
//
// For access to the parsed messages of an in-memory buffer, construct a
// Reader:
//
//	r := grib.NewReader(data)
//	msgs, err := r.Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	inv, err := r.GetInventory()
//	...
//
// Concurrency:
//
// The core parsing and decoding operations are synchronous: a Reader and the
// values it returns must not be shared across goroutines without external
// synchronization. Multi-message files can optionally be parsed with a
// worker pool via ReadWithOptions(r, grib.WithWorkers(n)); the default is
// sequential, in-order parsing.
package grib

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a parsing or query error into one of the named error
// categories described by the library's error-handling design. Callers that
// need to distinguish recoverable conditions from fatal ones should inspect
// Kind rather than match on error strings.
type Kind string

const (
	// KindInvalidSignature means the data does not begin with the "GRIB"
	// magic number. Fatal: there is no message to recover.
	KindInvalidSignature Kind = "invalid_signature"
	// KindUnsupportedEdition means Section 0 declares an edition other
	// than 2. Fatal for that message.
	KindUnsupportedEdition Kind = "unsupported_edition"
	// KindUnexpectedSection means a section number was out of the order
	// mandated by the GRIB2 layout (0,1,[2],3,4,5,6,7,[4,5,6,7...],8).
	// Fatal for that message.
	KindUnexpectedSection Kind = "unexpected_section"
	// KindUnsupportedTemplate means a section's template number isn't
	// implemented. Recoverable for Section 3 (grid) and Section 5 (data
	// representation other than 0/2/3): the section's raw bytes are
	// retained and the message is kept. Fatal for Section 4, since the
	// parameter identity cannot be recovered without it.
	KindUnsupportedTemplate Kind = "unsupported_template"
	// KindOutOfBounds means a requested index (message, grid point) is
	// outside the valid range.
	KindOutOfBounds Kind = "out_of_bounds"
	// KindTruncatedPayload means Section 7's packed data is shorter than
	// the bit width implied by Section 5 requires. Recoverable: the
	// decoder zero-fills the remainder and the condition is logged.
	KindTruncatedPayload Kind = "truncated_payload"
	// KindNoMatch means a Query/GetData filter matched zero messages.
	// GetData returns it as an error rather than an empty result.
	KindNoMatch Kind = "no_match"
	// KindInvalidPattern means a regular expression supplied to a
	// Query/GetData filter failed to compile.
	KindInvalidPattern Kind = "invalid_pattern"
	// KindOutOfRange means a numeric parameter (e.g. an interpolation
	// coordinate) falls outside the grid's covered domain.
	KindOutOfRange Kind = "out_of_range"
)

// Error is the library's structured error type. It always carries a Kind so
// callers can branch on category with errors.As, plus positional context
// (section number and byte offset, where applicable) and an optional wrapped
// cause produced via github.com/pkg/errors so stack traces survive
// propagation.
type Error struct {
	Kind    Kind
	Section int // section number (0-8), or -1 if not section-specific
	Offset  int // byte offset where the condition was detected, or -1
	Message string
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Section >= 0 && e.Offset >= 0:
		return fmt.Sprintf("%s: section %d at offset %d: %s", e.Kind, e.Section, e.Offset, e.Message)
	case e.Section >= 0:
		return fmt.Sprintf("%s: section %d: %s", e.Kind, e.Section, e.Message)
	case e.Offset >= 0:
		return fmt.Sprintf("%s: offset %d: %s", e.Kind, e.Offset, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap allows errors.Is and errors.As to reach the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, section, offset int, cause error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	var wrapped error
	if cause != nil {
		wrapped = errors.Wrap(cause, msg)
	}
	return &Error{Kind: kind, Section: section, Offset: offset, Message: msg, cause: wrapped}
}

func newInvalidSignatureError(offset int, format string, args ...interface{}) *Error {
	return newError(KindInvalidSignature, -1, offset, nil, format, args...)
}

func newUnsupportedEditionError(edition uint8) *Error {
	return newError(KindUnsupportedEdition, 0, -1, nil, "edition %d is not supported, only GRIB2 (edition 2)", edition)
}

func newUnexpectedSectionError(section int, offset int, format string, args ...interface{}) *Error {
	return newError(KindUnexpectedSection, section, offset, nil, format, args...)
}

func newUnsupportedTemplateError(section, templateNumber int) *Error {
	sectionName := "unknown"
	switch section {
	case 3:
		sectionName = "grid definition"
	case 4:
		sectionName = "product definition"
	case 5:
		sectionName = "data representation"
	}
	return newError(KindUnsupportedTemplate, section, -1, nil, "unsupported %s template %d", sectionName, templateNumber)
}

func newOutOfBoundsError(format string, args ...interface{}) *Error {
	return newError(KindOutOfBounds, -1, -1, nil, format, args...)
}

func newTruncatedPayloadError(section, offset int, format string, args ...interface{}) *Error {
	return newError(KindTruncatedPayload, section, offset, nil, format, args...)
}

func newNoMatchError(format string, args ...interface{}) *Error {
	return newError(KindNoMatch, -1, -1, nil, format, args...)
}

func newInvalidPatternError(cause error, pattern string) *Error {
	return newError(KindInvalidPattern, -1, -1, cause, "invalid regular expression %q", pattern)
}

func newOutOfRangeError(format string, args ...interface{}) *Error {
	return newError(KindOutOfRange, -1, -1, nil, format, args...)
}

// ParseError represents an error during GRIB2 parsing that is not yet
// classified into one of the named Kinds above. It includes context about
// where in the message the error occurred. It is retained for the
// lower-level boundary scanner (FindMessages, ValidateMessageStructure)
// which runs before enough of the message is known to classify the failure.
type ParseError struct {
	Section    int    // Which section (0-7), or -1 if message-level
	Offset     int    // Byte offset in the message where the error occurred
	Message    string // Description of the error
	Underlying error  // Wrapped error, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Section == -1 {
		if e.Underlying != nil {
			return fmt.Sprintf("at offset %d: %s: %v", e.Offset, e.Message, e.Underlying)
		}
		return fmt.Sprintf("at offset %d: %s", e.Offset, e.Message)
	}

	if e.Underlying != nil {
		return fmt.Sprintf("section %d at offset %d: %s: %v",
			e.Section, e.Offset, e.Message, e.Underlying)
	}
	return fmt.Sprintf("section %d at offset %d: %s",
		e.Section, e.Offset, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// UnsupportedTemplateError indicates a template number that isn't
// implemented. Prefer the Kind-based *Error returned by section parsers;
// this type remains for direct construction in tests and call sites that
// predate the Kind taxonomy.
type UnsupportedTemplateError struct {
	Section        int // Which section (3=grid, 4=product, 5=data)
	TemplateNumber int // The unsupported template number
}

// Error implements the error interface.
func (e *UnsupportedTemplateError) Error() string {
	return newUnsupportedTemplateError(e.Section, e.TemplateNumber).Error()
}

// InvalidFormatError indicates that the data is not a valid GRIB2 message.
type InvalidFormatError struct {
	Message string // Description of what's invalid
	Offset  int    // Byte offset where the invalid data was found
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid GRIB2 format at offset %d: %s", e.Offset, e.Message)
}
