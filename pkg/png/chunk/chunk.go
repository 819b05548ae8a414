// Package chunk implements the length-prefixed, type-tagged,
// CRC-validated chunk framing that every PNG stream is built from.
package chunk

import (
	"encoding/binary"
	"io"

	"github.com/drj11/pngcodec/pkg/png/chunktype"
	"github.com/drj11/pngcodec/pkg/png/crc"
	"github.com/drj11/pngcodec/pkg/png/pngerr"
)

// Signature is the 8-byte PNG file signature.
var Signature = [8]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// Chunk is a single raw chunk as read from, or to be written to, a PNG
// stream: a type tag plus its data, CRC-validated but otherwise
// uninterpreted.
type Chunk struct {
	Type chunktype.Type
	Data []byte
}

// Reader reads chunks from a PNG byte stream, validating the signature
// and each chunk's CRC, and enforcing the structural rules from the PNG
// grammar: IHDR first, IEND last and exactly once, PLTE (if present)
// before any IDAT, and IDAT chunks contiguous.
type Reader struct {
	r       io.Reader
	lenient bool

	sawSignature bool
	sawIHDR      bool
	sawPLTE      bool
	sawIDAT      bool
	idatClosed   bool
	sawIEND      bool

	// Warnings accumulates non-fatal issues recorded in lenient mode.
	Warnings []string
}

// NewReader creates a chunk Reader. In lenient mode, BadCRC and
// (at a higher layer) Adler-32 mismatches are downgraded to warnings
// instead of aborting the read; structural errors are never downgraded.
func NewReader(r io.Reader, lenient bool) *Reader {
	return &Reader{r: r, lenient: lenient}
}

// ReadSignature reads and validates the 8-byte PNG signature. It is
// idempotent: calling it more than once is a no-op after the first
// successful call.
func (cr *Reader) ReadSignature() error {
	if cr.sawSignature {
		return nil
	}
	var sig [8]byte
	if _, err := io.ReadFull(cr.r, sig[:]); err != nil {
		return pngerr.Wrap(pngerr.KindMalformedSignature, "reading signature", err)
	}
	if sig != Signature {
		return pngerr.New(pngerr.KindMalformedSignature, "signature does not match PNG magic")
	}
	cr.sawSignature = true
	return nil
}

// Next reads and returns the next chunk, validating its CRC and its
// position in the chunk stream. It returns io.EOF once IEND has been
// consumed.
func (cr *Reader) Next() (Chunk, error) {
	if cr.sawIEND {
		return Chunk{}, io.EOF
	}
	if !cr.sawSignature {
		if err := cr.ReadSignature(); err != nil {
			return Chunk{}, err
		}
	}

	var length uint32
	if err := binary.Read(cr.r, binary.BigEndian, &length); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			if !cr.sawIEND {
				return Chunk{}, pngerr.New(pngerr.KindMissingIEND, "stream ended without IEND")
			}
		}
		return Chunk{}, pngerr.Wrap(pngerr.KindTruncatedChunk, "reading chunk length", err)
	}

	var typeBytes [4]byte
	if _, err := io.ReadFull(cr.r, typeBytes[:]); err != nil {
		return Chunk{}, pngerr.Wrap(pngerr.KindTruncatedChunk, "reading chunk type", err)
	}
	ctype := chunktype.Type(typeBytes)

	data := make([]byte, length)
	if _, err := io.ReadFull(cr.r, data); err != nil {
		return Chunk{}, pngerr.Wrap(pngerr.KindTruncatedChunk, "reading chunk data", err)
	}

	var wantCRC uint32
	if err := binary.Read(cr.r, binary.BigEndian, &wantCRC); err != nil {
		return Chunk{}, pngerr.Wrap(pngerr.KindTruncatedChunk, "reading chunk CRC", err)
	}
	if !crc.Verify(typeBytes, data, wantCRC) {
		if cr.lenient {
			cr.Warnings = append(cr.Warnings, "BadCRC: "+ctype.String())
		} else {
			return Chunk{}, pngerr.Newf(pngerr.KindBadCRC, "chunk %s failed CRC check", ctype)
		}
	}

	if err := cr.validatePosition(ctype); err != nil {
		return Chunk{}, err
	}

	if ctype == chunktype.IEND {
		cr.sawIEND = true
	}

	return Chunk{Type: ctype, Data: data}, nil
}

func (cr *Reader) validatePosition(t chunktype.Type) error {
	switch {
	case !cr.sawIHDR && t != chunktype.IHDR:
		return pngerr.Newf(pngerr.KindMissingIHDR, "first chunk was %s, not IHDR", t)
	case t == chunktype.IHDR:
		if cr.sawIHDR {
			return pngerr.New(pngerr.KindDuplicateChunk, "duplicate IHDR")
		}
		cr.sawIHDR = true
	case t == chunktype.PLTE:
		if cr.sawPLTE {
			return pngerr.New(pngerr.KindDuplicateChunk, "duplicate PLTE")
		}
		if cr.sawIDAT {
			return pngerr.New(pngerr.KindUnexpectedChunk, "PLTE after IDAT")
		}
		cr.sawPLTE = true
	case t == chunktype.IDAT:
		if cr.idatClosed {
			return pngerr.New(pngerr.KindUnexpectedChunk, "IDAT chunks are not contiguous")
		}
		cr.sawIDAT = true
	case t == chunktype.IEND:
		// no further constraint beyond "last chunk", enforced by the
		// caller treating io.EOF after this as success.
	default:
		if cr.sawIDAT && !cr.idatClosed {
			cr.idatClosed = true
		}
	}
	if t != chunktype.IDAT && cr.sawIDAT {
		cr.idatClosed = true
	}
	return nil
}

// Writer emits a well-formed chunk stream: the signature once, then one
// frame per chunk (length, type, data, CRC).
type Writer struct {
	w              io.Writer
	wroteSignature bool
}

// NewWriter creates a chunk Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteSignature writes the 8-byte PNG signature. Idempotent.
func (cw *Writer) WriteSignature() error {
	if cw.wroteSignature {
		return nil
	}
	if _, err := cw.w.Write(Signature[:]); err != nil {
		return err
	}
	cw.wroteSignature = true
	return nil
}

// WriteChunk writes a single chunk: length, type, data, and its CRC.
func (cw *Writer) WriteChunk(t chunktype.Type, data []byte) error {
	if err := cw.WriteSignature(); err != nil {
		return err
	}
	if err := binary.Write(cw.w, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	if _, err := cw.w.Write(t[:]); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := cw.w.Write(data); err != nil {
			return err
		}
	}
	sum := crc.Checksum([4]byte(t), data)
	return binary.Write(cw.w, binary.BigEndian, sum)
}

// DefaultMaxIDATSize is the default segment size used to split a
// compressed scanline stream into IDAT chunks.
const DefaultMaxIDATSize = 8192

// WriteIDAT splits data into chunks no larger than maxSize (at least 1)
// and writes each as its own IDAT chunk, preserving order.
func (cw *Writer) WriteIDAT(data []byte, maxSize int) error {
	if maxSize < 1 {
		maxSize = DefaultMaxIDATSize
	}
	if len(data) == 0 {
		return cw.WriteChunk(chunktype.IDAT, nil)
	}
	for off := 0; off < len(data); off += maxSize {
		end := off + maxSize
		if end > len(data) {
			end = len(data)
		}
		if err := cw.WriteChunk(chunktype.IDAT, data[off:end]); err != nil {
			return err
		}
	}
	return nil
}
