// Package imgmeta holds the PNG image descriptor, palette and ancillary
// state shared between the chunk, filter, sample, and façade layers.
package imgmeta

import "github.com/drj11/pngcodec/pkg/png/pngerr"

// ColourType is the PNG IHDR colour-type byte.
type ColourType byte

const (
	Greyscale      ColourType = 0
	TrueColour     ColourType = 2
	PaletteColour  ColourType = 3
	GreyscaleAlpha ColourType = 4
	TrueColourAlpha ColourType = 6
)

// Planes returns the channel count for a colour type.
func (c ColourType) Planes() int {
	switch c {
	case Greyscale:
		return 1
	case TrueColour:
		return 3
	case PaletteColour:
		return 1
	case GreyscaleAlpha:
		return 2
	case TrueColourAlpha:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the colour type carries a stored alpha channel.
func (c ColourType) HasAlpha() bool {
	return c == GreyscaleAlpha || c == TrueColourAlpha
}

// IsGreyscale reports whether the colour type is grey-based (with or
// without alpha).
func (c ColourType) IsGreyscale() bool {
	return c == Greyscale || c == GreyscaleAlpha
}

// IsPalette reports whether the colour type indexes a palette.
func (c ColourType) IsPalette() bool {
	return c == PaletteColour
}

func (c ColourType) Valid() bool {
	switch c {
	case Greyscale, TrueColour, PaletteColour, GreyscaleAlpha, TrueColourAlpha:
		return true
	default:
		return false
	}
}

// SBITPlanes returns the number of significant-bits values an sBIT chunk
// carries for this colour type: always 3 for palette, since sBIT
// describes the fidelity of the palette's RGB entries rather than the
// index itself.
func (c ColourType) SBITPlanes() int {
	if c == PaletteColour {
		return 3
	}
	return c.Planes()
}

// Interlace identifies the PNG interlace method.
type Interlace byte

const (
	InterlaceNone  Interlace = 0
	InterlaceAdam7 Interlace = 1
)

// Info is the immutable image descriptor established by IHDR on decode,
// or by constructor arguments on encode.
type Info struct {
	Width, Height int
	BitDepth      int
	ColourType    ColourType
	Interlace     Interlace
}

// Planes is a pure function of ColourType.
func (i Info) Planes() int {
	return i.ColourType.Planes()
}

// BytesPerPixel is ceil(planes*bitdepth/8), the stride used to derive
// the filter unit.
func (i Info) BytesPerPixel() int {
	return (i.Planes()*i.BitDepth + 7) / 8
}

// RowBytes is the number of filtered-scanline bytes (excluding the
// filter-type byte) for a row of the given pixel width under this
// descriptor's planes/bitdepth.
func (i Info) RowBytes(width int) int {
	return (width*i.Planes()*i.BitDepth + 7) / 8
}

// Validate checks the IHDR-level invariants from the data model: bit
// depth 16 is forbidden with palette; bit depths below 8 are allowed
// only with greyscale or palette.
func (i Info) Validate() error {
	if i.Width < 1 || i.Height < 1 {
		return pngerr.New(pngerr.KindBadIHDR, "width and height must be >= 1")
	}
	if !i.ColourType.Valid() {
		return pngerr.Newf(pngerr.KindBadIHDR, "invalid colour type %d", i.ColourType)
	}
	switch i.BitDepth {
	case 1, 2, 4, 8, 16:
	default:
		return pngerr.Newf(pngerr.KindUnsupportedDepth, "invalid bit depth %d", i.BitDepth)
	}
	if i.BitDepth == 16 && i.ColourType.IsPalette() {
		return pngerr.New(pngerr.KindBadIHDR, "bit depth 16 is forbidden with palette")
	}
	if i.BitDepth < 8 && i.ColourType != Greyscale && !i.ColourType.IsPalette() {
		return pngerr.Newf(pngerr.KindBadIHDR, "bit depth %d only allowed with greyscale or palette", i.BitDepth)
	}
	return nil
}

// PaletteEntry is one RGB or RGBA palette entry, always stored as 8-bit
// samples with Alpha defaulting to 255 (opaque) when the source had no
// per-entry alpha.
type PaletteEntry struct {
	R, G, B, A uint8
}

// Palette is an ordered sequence of 1-256 entries; index i in a
// pixel row refers to entry i.
type Palette []PaletteEntry

// HasAlpha reports whether any entry has alpha < 255.
func (p Palette) HasAlpha() bool {
	for _, e := range p {
		if e.A != 255 {
			return true
		}
	}
	return false
}

// TextRecord is one textual metadata record: tEXt, zTXt or iTXt,
// normalised to a single shape (covers all three chunk kinds uniformly).
type TextRecord struct {
	Keyword           string
	Text              string
	Compressed        bool
	International      bool
	LanguageTag       string
	TranslatedKeyword string
}

// Time is the PNG tIME chunk: a UTC timestamp with second resolution.
type Time struct {
	Year                     int
	Month, Day               int
	Hour, Minute, Second     int
}

// Transparency is the tRNS chunk's content: either a palette alpha
// vector, or a single transparent colour (as stored-depth samples,
// greyscale: 1 value, true colour: 3 values).
type Transparency struct {
	PaletteAlpha []uint8
	Colour       []int
}

// Ancillary bundles all of the non-pixel, round-tripped PNG state.
type Ancillary struct {
	Gamma        *uint32 // fixed-point, x100000; nil if absent
	Chroma       *Chromaticities
	SBIT         []uint8 // 1-4 values, one per channel
	Background   []int   // stored-depth samples, shape per colour type
	Transparency *Transparency
	Physical     *Physical
	Time         *Time
	Text         []TextRecord
	SRGB         *uint8 // rendering intent; mutually exclusive with ICCP
	ICCP         *ICCPProfile
	Unknown      []UnknownChunk
}

// Chromaticities holds the cHRM chunk's eight fixed-point (x100000)
// values: white point plus red/green/blue primaries.
type Chromaticities struct {
	WhiteX, WhiteY uint32
	RedX, RedY     uint32
	GreenX, GreenY uint32
	BlueX, BlueY   uint32
}

// Physical holds the pHYs chunk.
type Physical struct {
	PixelsPerUnitX, PixelsPerUnitY uint32
	UnitIsMeter                    bool
}

// ICCPProfile holds the iCCP chunk.
type ICCPProfile struct {
	Name    string
	Profile []byte
}

// UnknownChunk preserves an unrecognised ancillary chunk verbatim along
// with the bucket marking where it was encountered.
type UnknownChunk struct {
	Type   [4]byte
	Data   []byte
	Bucket int
}
