package png

import (
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

// Config describes the image a Writer will produce: the IHDR fields,
// plus any palette and ancillary metadata to round-trip onto the
// output stream.
type Config struct {
	Width, Height int
	BitDepth      int
	ColourType    imgmeta.ColourType
	Interlace     imgmeta.Interlace

	Palette   imgmeta.Palette
	Ancillary imgmeta.Ancillary

	// CompressionLevel is a zlib level (0-9), or -1 for the zlib default.
	CompressionLevel int
	// MaxIDATSize caps the size of each emitted IDAT chunk; 0 selects
	// chunk.DefaultMaxIDATSize.
	MaxIDATSize int

	// FilterType, when non-nil, fixes every scanline to this filter
	// instead of the adaptive minimum-sum-of-absolute-deviations choice.
	FilterType *filter.Type
}

// Writer encodes row-oriented pixel data into a PNG byte stream.
type Writer struct {
	cfg  Config
	info imgmeta.Info

	cw   *chunk.Writer
	comp *idat.Compressor

	wroteIHDR  bool
	wrotePLTE  bool
	wroteIDAT  bool
}

type chunkSink struct{ cw *chunk.Writer }

func (s *chunkSink) WriteIDAT(data []byte) error {
	return s.cw.WriteChunk(chunktype.IDAT, data)
}

// NewWriter validates cfg and returns a Writer. A palette colour type
// requires a non-empty Palette; a tRNS entry that synthesises alpha for
// a colour type that already carries a stored alpha channel is refused,
// since the two cannot coexist in a conforming PNG stream.
func NewWriter(cfg Config) (*Writer, error) {
	info := imgmeta.Info{
		Width: cfg.Width, Height: cfg.Height,
		BitDepth: cfg.BitDepth, ColourType: cfg.ColourType, Interlace: cfg.Interlace,
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if info.ColourType.IsPalette() {
		if len(cfg.Palette) == 0 {
			return nil, pngerr.New(pngerr.KindPaletteRequired, "palette colour type requires a non-empty Palette")
		}
		if len(cfg.Palette) > 256 {
			return nil, pngerr.Newf(pngerr.KindBadConfig, "palette has %d entries, max 256", len(cfg.Palette))
		}
	}
	if cfg.Ancillary.Transparency != nil && info.ColourType.HasAlpha() {
		return nil, pngerr.New(pngerr.KindBadConfig, "tRNS cannot coexist with a colour type that already carries alpha")
	}
	if cfg.Ancillary.SRGB != nil && cfg.Ancillary.ICCP != nil {
		return nil, pngerr.New(pngerr.KindBadConfig, "sRGB and iCCP are mutually exclusive")
	}
	if cfg.CompressionLevel < -1 || cfg.CompressionLevel > 9 {
		return nil, pngerr.Newf(pngerr.KindBadConfig, "compression level %d out of range [-1, 9]", cfg.CompressionLevel)
	}
	if cfg.FilterType != nil {
		switch *cfg.FilterType {
		case filter.None, filter.Sub, filter.Up, filter.Avg, filter.Paeth:
		default:
			return nil, pngerr.Newf(pngerr.KindBadConfig, "invalid fixed filter type %d", *cfg.FilterType)
		}
	}
	return &Writer{cfg: cfg, info: info}, nil
}

// Write encodes rows, each width*planes direct (unpacked) samples in
// stored bit-depth range, writing the complete PNG stream to out.
// Interlaced configs require every row up front, since Adam7 passes
// draw samples from across the whole image; non-interlaced configs are
// streamed one scanline at a time.
func (w *Writer) Write(out io.Writer, rows *RowIter[[]int]) error {
	if err := w.writePreamble(out); err != nil {
		return err
	}
	if w.info.Interlace == imgmeta.InterlaceAdam7 {
		return w.writeInterlaced(out, rows)
	}
	return w.writeStraight(out, rows)
}

// WritePacked is like Write, but accepts rows already packed into the
// stored byte representation (bit-packed for depths below 8, big-endian
// byte pairs at depth 16).
func (w *Writer) WritePacked(out io.Writer, rows *RowIter[[]byte]) error {
	planes, bitdepth := w.info.Planes(), w.info.BitDepth
	direct := &RowIter[[]int]{nextFn: func() ([]int, error) {
		packed, err := rows.Next()
		if err != nil {
			return nil, err
		}
		return sample.Unpack(packed, w.info.Width, planes, bitdepth), nil
	}}
	return w.Write(out, direct)
}

func (w *Writer) writePreamble(out io.Writer) error {
	if w.wroteIHDR {
		return nil
	}
	w.cw = chunk.NewWriter(out)
	if err := w.cw.WriteChunk(chunktype.IHDR, serializeIHDR(w.info)); err != nil {
		return err
	}
	w.wroteIHDR = true

	anc := w.cfg.Ancillary
	if anc.Gamma != nil {
		if err := w.cw.WriteChunk(chunktype.GAMA, ancillary.SerializeGAMA(*anc.Gamma)); err != nil {
			return err
		}
	}
	if anc.Chroma != nil {
		if err := w.cw.WriteChunk(chunktype.CHRM, ancillary.SerializeCHRM(anc.Chroma)); err != nil {
			return err
		}
	}
	switch {
	case anc.SRGB != nil:
		if err := w.cw.WriteChunk(chunktype.SRGB, ancillary.SerializeSRGB(*anc.SRGB)); err != nil {
			return err
		}
	case anc.ICCP != nil:
		data, err := ancillary.SerializeICCP(anc.ICCP)
		if err != nil {
			return err
		}
		if err := w.cw.WriteChunk(chunktype.ICCP, data); err != nil {
			return err
		}
	}
	if len(anc.SBIT) > 0 {
		if err := w.cw.WriteChunk(chunktype.SBIT, ancillary.SerializeSBIT(anc.SBIT)); err != nil {
			return err
		}
	}
	if err := w.writeUnknown(BucketBeforePLTE); err != nil {
		return err
	}
	if len(w.cfg.Palette) > 0 {
		if err := w.cw.WriteChunk(chunktype.PLTE, serializePLTE(w.cfg.Palette)); err != nil {
			return err
		}
		w.wrotePLTE = true
	}
	if anc.Background != nil {
		if err := w.cw.WriteChunk(chunktype.BKGD, ancillary.SerializeBKGD(anc.Background, w.info.ColourType, w.info.BitDepth)); err != nil {
			return err
		}
	}
	if anc.Transparency != nil {
		if err := w.cw.WriteChunk(chunktype.TRNS, ancillary.SerializeTRNS(anc.Transparency, w.info.ColourType, w.info.BitDepth)); err != nil {
			return err
		}
	}
	if anc.Physical != nil {
		if err := w.cw.WriteChunk(chunktype.PHYS, ancillary.SerializePHYS(anc.Physical)); err != nil {
			return err
		}
	}
	if anc.Time != nil {
		if err := w.cw.WriteChunk(chunktype.TIME, ancillary.SerializeTIME(anc.Time)); err != nil {
			return err
		}
	}
	for _, rec := range anc.Text {
		if err := w.writeTextRecord(rec); err != nil {
			return err
		}
	}
	return w.writeUnknown(BucketBeforeIDAT)
}

func (w *Writer) writeUnknown(bucket int) error {
	for _, u := range w.cfg.Ancillary.Unknown {
		if u.Bucket != bucket {
			continue
		}
		if err := w.cw.WriteChunk(chunktype.Type(u.Type), u.Data); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTextRecord(rec imgmeta.TextRecord) error {
	switch {
	case rec.International:
		data, err := ancillary.SerializeITXT(rec)
		if err != nil {
			return err
		}
		return w.cw.WriteChunk(chunktype.ITXT, data)
	case rec.Compressed:
		data, err := ancillary.SerializeZTXT(rec)
		if err != nil {
			return err
		}
		return w.cw.WriteChunk(chunktype.ZTXT, data)
	default:
		return w.cw.WriteChunk(chunktype.TEXT, ancillary.SerializeTEXT(rec))
	}
}

func serializeIHDR(info imgmeta.Info) []byte {
	data := make([]byte, 13)
	putU32(data[0:4], uint32(info.Width))
	putU32(data[4:8], uint32(info.Height))
	data[8] = byte(info.BitDepth)
	data[9] = byte(info.ColourType)
	data[10] = 0
	data[11] = 0
	data[12] = byte(info.Interlace)
	return data
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func serializePLTE(pal imgmeta.Palette) []byte {
	data := make([]byte, len(pal)*3)
	for i, e := range pal {
		data[i*3] = e.R
		data[i*3+1] = e.G
		data[i*3+2] = e.B
	}
	return data
}

func (w *Writer) ensureCompressor() error {
	if w.comp != nil {
		return nil
	}
	comp, err := idat.NewCompressor(&chunkSink{cw: w.cw}, w.cfg.MaxIDATSize, w.cfg.CompressionLevel)
	if err != nil {
		return err
	}
	w.comp = comp
	return nil
}

func validateSamples(row []int, bitdepth int) error {
	maxval := (1 << bitdepth) - 1
	for _, v := range row {
		if v < 0 || v > maxval {
			return pngerr.Newf(pngerr.KindSampleOutOfRange, "sample %d out of range [0, %d]", v, maxval)
		}
	}
	return nil
}

func (w *Writer) writeFilteredRow(direct []int, prev []byte, fu int) ([]byte, error) {
	if err := validateSamples(direct, w.info.BitDepth); err != nil {
		return nil, err
	}
	packed := sample.Pack(direct, w.info.BitDepth)
	var ft filter.Type
	var filtered []byte
	if w.cfg.FilterType != nil {
		ft = *w.cfg.FilterType
		filtered = filter.Filter(ft, packed, prev, fu)
	} else {
		ft, filtered = filter.ChooseAdaptive(packed, prev, fu)
	}
	buf := make([]byte, 1+len(filtered))
	buf[0] = byte(ft)
	copy(buf[1:], filtered)
	if _, err := w.comp.Write(buf); err != nil {
		return nil, err
	}
	return packed, nil
}

func (w *Writer) writeStraight(out io.Writer, rows *RowIter[[]int]) error {
	if err := w.ensureCompressor(); err != nil {
		return err
	}
	fu := filter.Unit(w.info.BytesPerPixel())
	planes := w.info.Planes()
	var prev []byte
	count := 0
	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) != w.info.Width*planes {
			return pngerr.Newf(pngerr.KindRowLengthMismatch, "row %d has %d samples, want %d", count, len(row), w.info.Width*planes)
		}
		packed, err := w.writeFilteredRow(row, prev, fu)
		if err != nil {
			return err
		}
		prev = packed
		count++
	}
	if count != w.info.Height {
		return pngerr.Newf(pngerr.KindRowLengthMismatch, "wrote %d rows, want %d", count, w.info.Height)
	}
	return w.finish()
}

func (w *Writer) writeInterlaced(out io.Writer, rows *RowIter[[]int]) error {
	planes := w.info.Planes()
	full := make([]int, w.info.Width*w.info.Height*planes)
	stride := w.info.Width * planes
	count := 0
	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if count >= w.info.Height {
			return pngerr.New(pngerr.KindRowLengthMismatch, "more rows supplied than Height")
		}
		if len(row) != stride {
			return pngerr.Newf(pngerr.KindRowLengthMismatch, "row %d has %d samples, want %d", count, len(row), stride)
		}
		copy(full[count*stride:(count+1)*stride], row)
		count++
	}
	if count != w.info.Height {
		return pngerr.Newf(pngerr.KindRowLengthMismatch, "wrote %d rows, want %d", count, w.info.Height)
	}
	if err := w.ensureCompressor(); err != nil {
		return err
	}
	fu := filter.Unit(w.info.BytesPerPixel())
	for _, p := range adam7.Passes {
		pw, ph := p.Dims(w.info.Width, w.info.Height)
		if pw == 0 || ph == 0 {
			continue
		}
		var prev []byte
		for j := 0; j < ph; j++ {
			passRow := adam7.Interlace(full, w.info.Width, planes, p, j, pw)
			packed, err := w.writeFilteredRow(passRow, prev, fu)
			if err != nil {
				return err
			}
			prev = packed
		}
	}
	return w.finish()
}

// WritePasses is the interlaced variant of Write that accepts the seven
// Adam7 passes as independent row sub-iterators, each already in that
// pass's own (narrower) width, rather than buffering a full-image grid
// and slicing the passes out of it. Passes index 1:1 into adam7.Passes;
// a pass whose Dims come out empty for this image is never read from.
// The Config must specify Interlace: imgmeta.InterlaceAdam7.
func (w *Writer) WritePasses(out io.Writer, passes [7]*RowIter[[]int]) error {
	if w.info.Interlace != imgmeta.InterlaceAdam7 {
		return pngerr.New(pngerr.KindBadConfig, "WritePasses requires Config.Interlace = InterlaceAdam7")
	}
	if err := w.writePreamble(out); err != nil {
		return err
	}
	if err := w.ensureCompressor(); err != nil {
		return err
	}
	planes := w.info.Planes()
	fu := filter.Unit(w.info.BytesPerPixel())
	for i, p := range adam7.Passes {
		pw, ph := p.Dims(w.info.Width, w.info.Height)
		if pw == 0 || ph == 0 {
			continue
		}
		var prev []byte
		for j := 0; j < ph; j++ {
			row, err := passes[i].Next()
			if err != nil {
				return err
			}
			if len(row) != pw*planes {
				return pngerr.Newf(pngerr.KindRowLengthMismatch, "pass %d row %d has %d samples, want %d", i, j, len(row), pw*planes)
			}
			packed, err := w.writeFilteredRow(row, prev, fu)
			if err != nil {
				return err
			}
			prev = packed
		}
		if _, err := passes[i].Next(); err != io.EOF {
			if err == nil {
				return pngerr.Newf(pngerr.KindRowLengthMismatch, "pass %d supplied more rows than %d", i, ph)
			}
			return err
		}
	}
	return w.finish()
}

func (w *Writer) finish() error {
	if err := w.comp.Close(); err != nil {
		return err
	}
	w.wroteIDAT = true
	if err := w.writeUnknown(BucketAfterIDAT); err != nil {
		return err
	}
	return w.cw.WriteChunk(chunktype.IEND, nil)
}
