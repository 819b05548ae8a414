// Package pngerr defines the typed error taxonomy shared across the
// codec's packages (chunk framing, filtering, interlacing, sample
// normalisation, and the Reader/Writer façades).
package pngerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by what it signals, not by which package
// raised it.
type Kind int

const (
	// Format errors: the byte stream does not conform to the PNG grammar.
	KindMalformedSignature Kind = iota
	KindUnexpectedChunk
	KindDuplicateChunk
	KindMissingIHDR
	KindMissingIEND
	KindUnknownFilter
	KindBadIHDR

	// Integrity errors: the stream is grammatically plausible but its
	// checks fail.
	KindBadCRC
	KindChecksumMismatch
	KindTruncatedChunk
	KindTruncatedData

	// Compression errors.
	KindDeflateError

	// Semantic errors: the request is grammatically valid but not
	// meaningful for this image.
	KindPaletteRequired
	KindPaletteOutOfRange
	KindBadConfig
	KindSampleOutOfRange
	KindRowLengthMismatch
	KindUnsupportedDepth

	// Conversion errors.
	KindLossyConversionRefused
)

func (k Kind) String() string {
	switch k {
	case KindMalformedSignature:
		return "MalformedSignature"
	case KindUnexpectedChunk:
		return "UnexpectedChunk"
	case KindDuplicateChunk:
		return "DuplicateChunk"
	case KindMissingIHDR:
		return "MissingIHDR"
	case KindMissingIEND:
		return "MissingIEND"
	case KindUnknownFilter:
		return "UnknownFilter"
	case KindBadIHDR:
		return "BadIHDR"
	case KindBadCRC:
		return "BadCRC"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindTruncatedChunk:
		return "TruncatedChunk"
	case KindTruncatedData:
		return "TruncatedData"
	case KindDeflateError:
		return "DeflateError"
	case KindPaletteRequired:
		return "PaletteRequired"
	case KindPaletteOutOfRange:
		return "PaletteOutOfRange"
	case KindBadConfig:
		return "BadConfig"
	case KindSampleOutOfRange:
		return "SampleOutOfRange"
	case KindRowLengthMismatch:
		return "RowLengthMismatch"
	case KindUnsupportedDepth:
		return "UnsupportedDepth"
	case KindLossyConversionRefused:
		return "LossyConversionRefused"
	default:
		return "Unknown"
	}
}

// Error is the typed error value returned across the codec. It always
// carries a Kind so callers can branch on failure category without
// string matching.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error that wraps an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err, or any error in its Unwrap chain, is a *Error
// of the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok && pe.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
