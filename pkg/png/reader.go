package png

import (
	"encoding/binary"
	"io"

	"github.com/drj11/pngcodec/pkg/png/adam7"
	"github.com/drj11/pngcodec/pkg/png/ancillary"
	"github.com/drj11/pngcodec/pkg/png/chunk"
	"github.com/drj11/pngcodec/pkg/png/chunktype"
	"github.com/drj11/pngcodec/pkg/png/filter"
	"github.com/drj11/pngcodec/pkg/png/idat"
	"github.com/drj11/pngcodec/pkg/png/imgmeta"
	"github.com/drj11/pngcodec/pkg/png/pngerr"
	"github.com/drj11/pngcodec/pkg/png/sample"
)

// Reader decodes a PNG byte stream. It is pull-driven and forward-only:
// each row method returns a RowIter that must be drained (or abandoned)
// before any other row method is called on the same Reader.
type Reader struct {
	cr      *chunk.Reader
	lenient bool

	info     imgmeta.Info
	haveInfo bool
	palette  imgmeta.Palette
	anc      imgmeta.Ancillary
	seenPLTE bool

	preambleDone bool
	finalized    bool

	src *idatSource
	dec *idat.Decompressor

	prevScan    []byte
	rowsEmitted int

	interlacedRows  [][]int
	interlacedReady bool
}

// NewReader creates a Reader over r. In lenient mode, CRC and checksum
// failures are recorded in Warnings rather than aborting the decode;
// structural grammar violations are never downgraded.
func NewReader(r io.Reader, lenient bool) *Reader {
	return &Reader{cr: chunk.NewReader(r, lenient), lenient: lenient}
}

// Warnings returns the non-fatal issues accumulated so far in lenient
// mode.
func (r *Reader) Warnings() []string {
	return r.cr.Warnings
}

// Chunks returns a verbatim, low-level iterator over every chunk in the
// stream, including the ones the façade itself interprets. It is an
// alternative entry point to Preamble/Read, not a complement to it: use
// one or the other on a given Reader.
func (r *Reader) Chunks() *RowIter[Chunk] {
	return &RowIter[Chunk]{nextFn: r.cr.Next}
}

// idatSource bridges chunk.Reader's per-chunk pull model into
// idat.ChunkSource's byte-stream pull model. It holds a one-chunk
// lookahead so the end of the IDAT run can be detected without losing
// the first non-IDAT chunk that follows it.
type idatSource struct {
	cr        *chunk.Reader
	firstIDAT []byte
	handed    bool
	stashed   *chunk.Chunk
}

func (s *idatSource) NextIDAT() ([]byte, error) {
	if !s.handed {
		s.handed = true
		return s.firstIDAT, nil
	}
	c, err := s.cr.Next()
	if err != nil {
		return nil, err
	}
	if c.Type != chunktype.IDAT {
		s.stashed = &c
		return nil, io.EOF
	}
	return c.Data, nil
}

// Preamble reads and interprets every chunk up to (not including) the
// first IDAT chunk: IHDR, an optional PLTE, and any ancillary chunks
// that precede the pixel data. It is idempotent. Info, Palette and
// Ancillary are only valid to call after Preamble succeeds; every row
// method calls it implicitly.
func (r *Reader) Preamble() error {
	if r.preambleDone {
		return nil
	}
	for {
		c, err := r.cr.Next()
		if err != nil {
			return err
		}
		switch c.Type {
		case chunktype.IHDR:
			info, err := parseIHDR(c.Data)
			if err != nil {
				return err
			}
			r.info = info
			r.haveInfo = true
		case chunktype.PLTE:
			pal, err := parsePLTE(c.Data)
			if err != nil {
				return err
			}
			r.palette = pal
			r.seenPLTE = true
		case chunktype.IDAT:
			if r.info.ColourType.IsPalette() && len(r.palette) == 0 {
				return pngerr.New(pngerr.KindPaletteRequired, "palette colour type requires a PLTE chunk")
			}
			r.src = &idatSource{cr: r.cr, firstIDAT: c.Data}
			r.preambleDone = true
			r.applyPaletteAlpha()
			return nil
		default:
			if err := r.processAncillary(c, r.preBucket()); err != nil {
				return err
			}
		}
	}
}

func (r *Reader) preBucket() int {
	if r.seenPLTE {
		return BucketBeforeIDAT
	}
	return BucketBeforePLTE
}

func (r *Reader) applyPaletteAlpha() {
	if r.anc.Transparency == nil || r.anc.Transparency.PaletteAlpha == nil {
		return
	}
	for i, a := range r.anc.Transparency.PaletteAlpha {
		if i < len(r.palette) {
			r.palette[i].A = a
		}
	}
}

func (r *Reader) processAncillary(c chunk.Chunk, bucket int) error {
	switch c.Type {
	case chunktype.TRNS:
		t, err := ancillary.ParseTRNS(c.Data, r.info.ColourType, r.info.BitDepth, len(r.palette))
		if err != nil {
			return err
		}
		r.anc.Transparency = t
	case chunktype.GAMA:
		g, err := ancillary.ParseGAMA(c.Data)
		if err != nil {
			return err
		}
		r.anc.Gamma = &g
	case chunktype.CHRM:
		ch, err := ancillary.ParseCHRM(c.Data)
		if err != nil {
			return err
		}
		r.anc.Chroma = ch
	case chunktype.SBIT:
		s, err := ancillary.ParseSBIT(c.Data, r.info.ColourType.SBITPlanes())
		if err != nil {
			return err
		}
		r.anc.SBIT = s
	case chunktype.BKGD:
		b, err := ancillary.ParseBKGD(c.Data, r.info.ColourType, r.info.BitDepth)
		if err != nil {
			return err
		}
		r.anc.Background = b
	case chunktype.PHYS:
		p, err := ancillary.ParsePHYS(c.Data)
		if err != nil {
			return err
		}
		r.anc.Physical = p
	case chunktype.TIME:
		t, err := ancillary.ParseTIME(c.Data)
		if err != nil {
			return err
		}
		r.anc.Time = t
	case chunktype.TEXT:
		rec, err := ancillary.ParseTEXT(c.Data)
		if err != nil {
			return err
		}
		r.anc.Text = append(r.anc.Text, rec)
	case chunktype.ZTXT:
		rec, err := ancillary.ParseZTXT(c.Data)
		if err != nil {
			return err
		}
		r.anc.Text = append(r.anc.Text, rec)
	case chunktype.ITXT:
		rec, err := ancillary.ParseITXT(c.Data)
		if err != nil {
			return err
		}
		r.anc.Text = append(r.anc.Text, rec)
	case chunktype.ICCP:
		p, err := ancillary.ParseICCP(c.Data)
		if err != nil {
			return err
		}
		r.anc.ICCP = p
	case chunktype.SRGB:
		v, err := ancillary.ParseSRGB(c.Data)
		if err != nil {
			return err
		}
		r.anc.SRGB = &v
	case chunktype.IHDR, chunktype.PLTE, chunktype.IDAT, chunktype.IEND:
		return pngerr.Newf(pngerr.KindUnexpectedChunk, "unexpected critical chunk %s", c.Type)
	default:
		r.anc.Unknown = append(r.anc.Unknown, imgmeta.UnknownChunk{Type: [4]byte(c.Type), Data: c.Data, Bucket: bucket})
	}
	return nil
}

func parseIHDR(data []byte) (imgmeta.Info, error) {
	if len(data) != 13 {
		return imgmeta.Info{}, pngerr.Newf(pngerr.KindBadIHDR, "IHDR length %d, want 13", len(data))
	}
	width := binary.BigEndian.Uint32(data[0:4])
	height := binary.BigEndian.Uint32(data[4:8])
	compression := data[10]
	filterMethod := data[11]
	interlace := data[12]
	if compression != 0 {
		return imgmeta.Info{}, pngerr.Newf(pngerr.KindBadIHDR, "unsupported compression method %d", compression)
	}
	if filterMethod != 0 {
		return imgmeta.Info{}, pngerr.Newf(pngerr.KindBadIHDR, "unsupported filter method %d", filterMethod)
	}
	if interlace > 1 {
		return imgmeta.Info{}, pngerr.Newf(pngerr.KindBadIHDR, "unsupported interlace method %d", interlace)
	}
	info := imgmeta.Info{
		Width:      int(width),
		Height:     int(height),
		BitDepth:   int(data[8]),
		ColourType: imgmeta.ColourType(data[9]),
		Interlace:  imgmeta.Interlace(interlace),
	}
	if err := info.Validate(); err != nil {
		return info, err
	}
	return info, nil
}

func parsePLTE(data []byte) (imgmeta.Palette, error) {
	if len(data)%3 != 0 {
		return nil, pngerr.Newf(pngerr.KindBadIHDR, "PLTE length %d is not a multiple of 3", len(data))
	}
	n := len(data) / 3
	if n < 1 || n > 256 {
		return nil, pngerr.Newf(pngerr.KindBadIHDR, "PLTE has %d entries, want 1-256", n)
	}
	pal := make(imgmeta.Palette, n)
	for i := range pal {
		pal[i] = imgmeta.PaletteEntry{R: data[i*3], G: data[i*3+1], B: data[i*3+2], A: 255}
	}
	return pal, nil
}

// Info returns the image descriptor established by IHDR. Preamble must
// have already run (directly, or via a row method).
func (r *Reader) Info() imgmeta.Info { return r.info }

// Palette returns the decoded PLTE entries, with tRNS alpha already
// merged in, or nil if the image has no palette.
func (r *Reader) Palette() imgmeta.Palette { return r.palette }

// Ancillary returns every non-pixel chunk decoded so far: complete once
// the row iterator returned by a Read method has been fully drained.
func (r *Reader) Ancillary() imgmeta.Ancillary { return r.anc }

func (r *Reader) ensureDecompressor() error {
	if r.dec != nil {
		return nil
	}
	dec, err := idat.NewDecompressor(r.src)
	if err != nil {
		return err
	}
	r.dec = dec
	return nil
}

func readFilterAndScanline(r io.Reader, buf []byte) (byte, error) {
	var ft [1]byte
	if _, err := io.ReadFull(r, ft[:]); err != nil {
		return 0, truncated(err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, truncated(err)
	}
	return ft[0], nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return pngerr.Wrap(pngerr.KindTruncatedData, "scanline data ended early", err)
	}
	return err
}

// nextPackedRowStraight reads and reconstructs one scanline of a
// non-interlaced image, in the image's stored (packed) representation.
func (r *Reader) nextPackedRowStraight() ([]byte, error) {
	if r.rowsEmitted >= r.info.Height {
		return nil, io.EOF
	}
	buf := make([]byte, r.info.RowBytes(r.info.Width))
	ft, err := readFilterAndScanline(r.dec, buf)
	if err != nil {
		return nil, err
	}
	fu := filter.Unit(r.info.BytesPerPixel())
	if err := filter.Unfilter(filter.Type(ft), buf, r.prevScan, fu); err != nil {
		return nil, err
	}
	r.prevScan = buf
	r.rowsEmitted++
	if r.rowsEmitted == r.info.Height {
		if err := r.finalizeAfterIDAT(); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// materializeInterlaced eagerly decodes all seven Adam7 passes into a
// full-image direct sample grid; interlaced streams cannot be decoded
// scanline-by-scanline since each output row is assembled from samples
// spread across multiple passes.
func (r *Reader) materializeInterlaced() error {
	if r.interlacedReady {
		return nil
	}
	planes := r.info.Planes()
	full := make([]int, r.info.Width*r.info.Height*planes)
	fu := filter.Unit(r.info.BytesPerPixel())
	for _, p := range adam7.Passes {
		pw, ph := p.Dims(r.info.Width, r.info.Height)
		if pw == 0 || ph == 0 {
			continue
		}
		rowBytes := r.info.RowBytes(pw)
		var prev []byte
		for j := 0; j < ph; j++ {
			buf := make([]byte, rowBytes)
			ft, err := readFilterAndScanline(r.dec, buf)
			if err != nil {
				return err
			}
			if err := filter.Unfilter(filter.Type(ft), buf, prev, fu); err != nil {
				return err
			}
			prev = buf
			direct := sample.Unpack(buf, pw, planes, r.info.BitDepth)
			adam7.Deinterlace(full, r.info.Width, planes, p, j, direct)
		}
	}
	stride := r.info.Width * planes
	rows := make([][]int, r.info.Height)
	for y := range rows {
		rows[y] = full[y*stride : (y+1)*stride]
	}
	r.interlacedRows = rows
	r.interlacedReady = true
	return r.finalizeAfterIDAT()
}

func (r *Reader) nextDirectRowInterlaced() ([]int, error) {
	if err := r.materializeInterlaced(); err != nil {
		return nil, err
	}
	if r.rowsEmitted >= r.info.Height {
		return nil, io.EOF
	}
	row := r.interlacedRows[r.rowsEmitted]
	r.rowsEmitted++
	return row, nil
}

// finalizeAfterIDAT closes the DEFLATE stream (verifying the Adler-32
// trailer) and consumes the remaining chunks through IEND, recording
// any trailing ancillary chunks.
func (r *Reader) finalizeAfterIDAT() error {
	if r.finalized {
		return nil
	}
	if err := r.dec.Close(); err != nil {
		if !r.lenient {
			return err
		}
		r.cr.Warnings = append(r.cr.Warnings, err.Error())
	}
	var next *chunk.Chunk
	if r.src.stashed != nil {
		next = r.src.stashed
		r.src.stashed = nil
	}
	for {
		var c chunk.Chunk
		if next != nil {
			c = *next
			next = nil
		} else {
			var err error
			c, err = r.cr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}
		if c.Type == chunktype.IEND {
			break
		}
		if err := r.processAncillary(c, BucketAfterIDAT); err != nil {
			return err
		}
	}
	r.finalized = true
	return nil
}

// Read returns the image's dimensions, descriptor, and a row iterator of
// packed scanlines in the file's stored representation (so 1/2/4-bit
// rows are bit-packed and 16-bit rows are big-endian byte pairs).
func (r *Reader) Read() (width, height int, rows *RowIter[[]byte], info imgmeta.Info, err error) {
	if err = r.Preamble(); err != nil {
		return
	}
	if err = r.ensureDecompressor(); err != nil {
		return
	}
	width, height, info = r.info.Width, r.info.Height, r.info
	rows = &RowIter[[]byte]{nextFn: func() ([]byte, error) {
		if r.info.Interlace == imgmeta.InterlaceAdam7 {
			direct, err := r.nextDirectRowInterlaced()
			if err != nil {
				return nil, err
			}
			return sample.Pack(direct, r.info.BitDepth), nil
		}
		return r.nextPackedRowStraight()
	}}
	return
}

func (r *Reader) nextDirectRow() ([]int, error) {
	if r.info.Interlace == imgmeta.InterlaceAdam7 {
		return r.nextDirectRowInterlaced()
	}
	packed, err := r.nextPackedRowStraight()
	if err != nil {
		return nil, err
	}
	return sample.Unpack(packed, r.info.Width, r.info.Planes(), r.info.BitDepth), nil
}

// directInfo computes the colour type and bit depth produced by AsDirect
// (palette expansion, tRNS alpha synthesis and sBIT bit-depth reduction,
// applied in that order), and the right-shift the sBIT reduction applies
// to every sample.
func (r *Reader) directInfo() (imgmeta.Info, int) {
	out := r.info
	base := out.BitDepth
	switch {
	case out.ColourType.IsPalette():
		base = 8
		out.BitDepth = 8
		out.ColourType = imgmeta.TrueColour
		if r.anc.Transparency != nil && r.anc.Transparency.PaletteAlpha != nil {
			out.ColourType = imgmeta.TrueColourAlpha
		}
	case r.anc.Transparency != nil && r.anc.Transparency.Colour != nil:
		if out.ColourType.IsGreyscale() {
			out.ColourType = imgmeta.GreyscaleAlpha
		} else {
			out.ColourType = imgmeta.TrueColourAlpha
		}
	}
	shift := 0
	if len(r.anc.SBIT) > 0 {
		target := 0
		for _, v := range r.anc.SBIT {
			if int(v) > target {
				target = int(v)
			}
		}
		if target > 0 && target < base {
			out.BitDepth = target
			shift = base - target
		} else {
			out.BitDepth = base
		}
	} else {
		out.BitDepth = base
	}
	return out, shift
}

// AsDirect returns a row iterator of unpacked, value-preserving samples
// with the palette expanded to RGB(A), the tRNS transparent colour (if
// any, and not already palette alpha) synthesised into a real alpha
// channel, and any sBIT-declared noise bits shifted away. The descriptor
// returned reflects these transformations, not the stored IHDR values.
func (r *Reader) AsDirect() (width, height int, rows *RowIter[[]int], info imgmeta.Info, err error) {
	if err = r.Preamble(); err != nil {
		return
	}
	if err = r.ensureDecompressor(); err != nil {
		return
	}
	out, shift := r.directInfo()
	isPalette := r.info.ColourType.IsPalette()
	hasColourTRNS := !isPalette && r.anc.Transparency != nil && r.anc.Transparency.Colour != nil
	withAlpha := out.ColourType.HasAlpha()
	width, height, info = out.Width, out.Height, out
	rows = &RowIter[[]int]{nextFn: func() ([]int, error) {
		row, err := r.nextDirectRow()
		if err != nil {
			return nil, err
		}
		switch {
		case isPalette:
			row, err = sample.ExpandPalette(row, r.palette, withAlpha)
			if err != nil {
				return nil, err
			}
		case hasColourTRNS:
			row = sample.SynthesizeAlpha(row, r.info.Planes(), r.info.BitDepth, r.anc.Transparency.Colour)
		}
		if shift > 0 {
			row = sample.ShiftRow(row, shift)
		}
		return row, nil
	}}
	return
}

// AsRGB returns direct samples coerced to 3-channel RGB at the bit depth
// AsDirect reports, greyscale replicated into all three channels. It refuses
// (KindLossyConversionRefused) when the image carries an alpha channel,
// since dropping alpha is a lossy, opinionated conversion this library
// will not perform silently.
func (r *Reader) AsRGB() (width, height int, rows *RowIter[[]int], info imgmeta.Info, err error) {
	dw, dh, drows, dinfo, err := r.AsDirect()
	if err != nil {
		return
	}
	if dinfo.ColourType.HasAlpha() {
		err = pngerr.New(pngerr.KindLossyConversionRefused, "AsRGB refuses to drop an alpha channel; use AsDirect")
		return
	}
	info = dinfo
	info.ColourType = imgmeta.TrueColour
	needsReplicate := dinfo.ColourType.IsGreyscale()
	width, height = dw, dh
	rows = &RowIter[[]int]{nextFn: func() ([]int, error) {
		row, err := drows.Next()
		if err != nil {
			return nil, err
		}
		if needsReplicate {
			row = sample.ReplicateGrey(row, false)
		}
		return row, nil
	}}
	return
}

// AsRGBA returns direct samples coerced to 4-channel RGBA at the bit
// depth AsDirect reports: greyscale replicated, and a fully opaque alpha channel
// synthesised if the image has none.
func (r *Reader) AsRGBA() (width, height int, rows *RowIter[[]int], info imgmeta.Info, err error) {
	dw, dh, drows, dinfo, err := r.AsDirect()
	if err != nil {
		return
	}
	info = dinfo
	info.ColourType = imgmeta.TrueColourAlpha
	grey := dinfo.ColourType.IsGreyscale()
	alpha := dinfo.ColourType.HasAlpha()
	width, height = dw, dh
	maxval := (1 << dinfo.BitDepth) - 1
	rows = &RowIter[[]int]{nextFn: func() ([]int, error) {
		row, err := drows.Next()
		if err != nil {
			return nil, err
		}
		if grey {
			row = sample.ReplicateGrey(row, alpha)
		}
		if !alpha {
			out := make([]int, 0, len(row)/3*4)
			for i := 0; i+3 <= len(row); i += 3 {
				out = append(out, row[i], row[i+1], row[i+2], maxval)
			}
			row = out
		}
		return row, nil
	}}
	return
}

func coerceTo(bitdepth int, width, height int, rows *RowIter[[]int], info imgmeta.Info, err error) (int, int, *RowIter[[]int], imgmeta.Info, error) {
	if err != nil {
		return width, height, rows, info, err
	}
	from := info.BitDepth
	info.BitDepth = bitdepth
	out := &RowIter[[]int]{nextFn: func() ([]int, error) {
		row, err := rows.Next()
		if err != nil {
			return nil, err
		}
		return sample.RescaleRowRound(row, from, bitdepth), nil
	}}
	return width, height, out, info, nil
}

// AsRGB8 is AsRGB rescaled to 8 bits per sample.
func (r *Reader) AsRGB8() (int, int, *RowIter[[]int], imgmeta.Info, error) {
	w, h, rows, info, err := r.AsRGB()
	return coerceTo(8, w, h, rows, info, err)
}

// AsRGBA8 is AsRGBA rescaled to 8 bits per sample.
func (r *Reader) AsRGBA8() (int, int, *RowIter[[]int], imgmeta.Info, error) {
	w, h, rows, info, err := r.AsRGBA()
	return coerceTo(8, w, h, rows, info, err)
}

// AsRGB16 is AsRGB rescaled to 16 bits per sample.
func (r *Reader) AsRGB16() (int, int, *RowIter[[]int], imgmeta.Info, error) {
	w, h, rows, info, err := r.AsRGB()
	return coerceTo(16, w, h, rows, info, err)
}

// AsRGBA16 is AsRGBA rescaled to 16 bits per sample.
func (r *Reader) AsRGBA16() (int, int, *RowIter[[]int], imgmeta.Info, error) {
	w, h, rows, info, err := r.AsRGBA()
	return coerceTo(16, w, h, rows, info, err)
}

// AsFloat returns AsDirect's samples rescaled to floats in [0, maxval],
// without forcing a particular channel layout.
func (r *Reader) AsFloat(maxval float64) (width, height int, rows *RowIter[[]float64], info imgmeta.Info, err error) {
	dw, dh, drows, dinfo, err := r.AsDirect()
	if err != nil {
		return
	}
	width, height, info = dw, dh, dinfo
	bitdepth := dinfo.BitDepth
	rows = &RowIter[[]float64]{nextFn: func() ([]float64, error) {
		row, err := drows.Next()
		if err != nil {
			return nil, err
		}
		return sample.ToFloat(row, bitdepth, maxval), nil
	}}
	return
}
