// Package png decodes PNG byte streams into row-oriented pixel data and
// encodes row-oriented pixel data into PNG byte streams, for every PNG
// colour type, every bit depth, interlaced or not, with correct handling
// of the ancillary chunks that affect pixel interpretation.
//
// The hard engineering lives in four tightly coupled pieces, implemented
// by the subpackages: the chunked container parser with CRC validation
// and DEFLATE plumbing (pkg/png/chunk, pkg/png/idat), row reconstruction
// via inverse scanline filtering (pkg/png/filter), Adam7 interlace
// (de)interleaving (pkg/png/adam7), and bit-depth/colour-type
// normalisation (pkg/png/sample). This package's Reader and Writer
// orchestrate them.
//
// Basic usage:
//
//	r := png.NewReader(f, false)
//	width, height, pixels, info, err := r.AsRGBA8()
//
//	w, err := png.NewWriter(png.Config{Width: width, Height: height, ColourType: png.TrueColour, BitDepth: 8})
//	err = w.Write(out, rows)
package png

import (
	"github.com/drj11/pngcodec/pkg/png/chunk"
	"github.com/drj11/pngcodec/pkg/png/filter"
	"github.com/drj11/pngcodec/pkg/png/imgmeta"
	"github.com/drj11/pngcodec/pkg/png/pngerr"
)

// Chunk is a single raw chunk, as returned by the Chunks verbatim
// iterator.
type Chunk = chunk.Chunk

// RowIter is a lazy, forward-only, non-restartable, pull-driven sequence
// of exactly Height rows (or, for Chunks, of chunks). Calling Next after
// the sequence is exhausted returns io.EOF.
type RowIter[T any] struct {
	nextFn func() (T, error)
}

// Next pulls the next element of the sequence.
func (it *RowIter[T]) Next() (T, error) {
	return it.nextFn()
}

// NewRowIter wraps a pull function as a RowIter, for callers (such as a
// synthetic row generator) that produce rows rather than decode them.
func NewRowIter[T any](next func() (T, error)) *RowIter[T] {
	return &RowIter[T]{nextFn: next}
}

// Re-exported data model types, so callers need only import this package
// for everyday use.
type (
	Info           = imgmeta.Info
	ColourType     = imgmeta.ColourType
	Interlace      = imgmeta.Interlace
	Palette        = imgmeta.Palette
	PaletteEntry   = imgmeta.PaletteEntry
	Ancillary      = imgmeta.Ancillary
	TextRecord     = imgmeta.TextRecord
	Time           = imgmeta.Time
	Transparency   = imgmeta.Transparency
	Chromaticities = imgmeta.Chromaticities
	Physical       = imgmeta.Physical
	ICCPProfile    = imgmeta.ICCPProfile
	UnknownChunk   = imgmeta.UnknownChunk
)

// Re-exported colour type and interlace constants.
const (
	Greyscale       = imgmeta.Greyscale
	TrueColour      = imgmeta.TrueColour
	PaletteColour   = imgmeta.PaletteColour
	GreyscaleAlpha  = imgmeta.GreyscaleAlpha
	TrueColourAlpha = imgmeta.TrueColourAlpha

	InterlaceNone  = imgmeta.InterlaceNone
	InterlaceAdam7 = imgmeta.InterlaceAdam7
)

// Chunk placement buckets for unknown ancillary chunks.
const (
	BucketBeforePLTE = 0
	BucketBeforeIDAT = 1
	BucketAfterIDAT  = 2
)

// FilterType identifies a PNG scanline filter, for callers that want a
// fixed filter instead of the Writer's default per-scanline adaptive
// heuristic.
type FilterType = filter.Type

// Re-exported filter type constants.
const (
	FilterNone    = filter.None
	FilterSub     = filter.Sub
	FilterUp      = filter.Up
	FilterAverage = filter.Avg
	FilterPaeth   = filter.Paeth
)

// Error is the typed error returned by every failure in this module.
type Error = pngerr.Error

// Kind classifies an Error by what it signals.
type Kind = pngerr.Kind

// Is reports whether err is a pngerr.Error of the given Kind, unwrapping
// as errors.Is does.
func Is(err error, kind Kind) bool {
	return pngerr.Is(err, kind)
}

// Re-exported error kinds, per the §7 taxonomy.
const (
	KindMalformedSignature   = pngerr.KindMalformedSignature
	KindUnexpectedChunk      = pngerr.KindUnexpectedChunk
	KindDuplicateChunk       = pngerr.KindDuplicateChunk
	KindMissingIHDR          = pngerr.KindMissingIHDR
	KindMissingIEND          = pngerr.KindMissingIEND
	KindUnknownFilter        = pngerr.KindUnknownFilter
	KindBadIHDR              = pngerr.KindBadIHDR
	KindBadCRC               = pngerr.KindBadCRC
	KindChecksumMismatch     = pngerr.KindChecksumMismatch
	KindTruncatedChunk       = pngerr.KindTruncatedChunk
	KindTruncatedData        = pngerr.KindTruncatedData
	KindDeflateError         = pngerr.KindDeflateError
	KindPaletteRequired      = pngerr.KindPaletteRequired
	KindPaletteOutOfRange    = pngerr.KindPaletteOutOfRange
	KindBadConfig            = pngerr.KindBadConfig
	KindSampleOutOfRange     = pngerr.KindSampleOutOfRange
	KindRowLengthMismatch    = pngerr.KindRowLengthMismatch
	KindUnsupportedDepth     = pngerr.KindUnsupportedDepth
	KindLossyConversionRefused = pngerr.KindLossyConversionRefused
)
