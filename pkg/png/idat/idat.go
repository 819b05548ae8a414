// Package idat plumbs the IDAT chunk stream through a streaming
// zlib-wrapped DEFLATE codec: concatenating chunk payloads into a
// logical byte stream on decode, and cutting a compressor's output into
// chunk-sized segments on encode.
package idat

import (
	"compress/zlib"
	"io"

	"github.com/drj11/pngcodec/pkg/png/pngerr"
)

// ChunkSource supplies the next IDAT chunk's raw bytes, in order. It
// returns io.EOF once no more IDAT chunks remain; it must not be called
// again after returning io.EOF.
type ChunkSource interface {
	NextIDAT() ([]byte, error)
}

// feeder adapts a ChunkSource to an io.Reader, so the standard zlib
// reader can pull compressed bytes a chunk at a time without caring
// that scanline and IDAT-chunk boundaries need not coincide.
type feeder struct {
	src ChunkSource
	buf []byte
}

func (f *feeder) Read(p []byte) (int, error) {
	for len(f.buf) == 0 {
		b, err := f.src.NextIDAT()
		if err != nil {
			return 0, err
		}
		f.buf = b
	}
	n := copy(p, f.buf)
	f.buf = f.buf[n:]
	return n, nil
}

// Decompressor is a streaming zlib/DEFLATE reader over the concatenated
// IDAT payloads.
type Decompressor struct {
	zr io.ReadCloser
}

// NewDecompressor opens the zlib stream fed by src. It reads just enough
// of the stream to validate the 2-byte zlib header.
func NewDecompressor(src ChunkSource) (*Decompressor, error) {
	zr, err := zlib.NewReader(&feeder{src: src})
	if err != nil {
		return nil, translateErr(err)
	}
	return &Decompressor{zr: zr}, nil
}

// Read implements io.Reader, translating zlib/DEFLATE failures into the
// codec's typed errors.
func (d *Decompressor) Read(p []byte) (int, error) {
	n, err := d.zr.Read(p)
	if err != nil && err != io.EOF {
		err = translateErr(err)
	}
	return n, err
}

// Close reads the zlib stream through to its end, so that the Adler-32
// trailer is verified even when the caller stopped after the last
// scanline, and then releases the underlying zlib reader.
func (d *Decompressor) Close() error {
	if _, err := io.Copy(io.Discard, d.zr); err != nil {
		d.zr.Close()
		return translateErr(err)
	}
	if err := d.zr.Close(); err != nil {
		return translateErr(err)
	}
	return nil
}

func translateErr(err error) error {
	if err == zlib.ErrChecksum {
		return pngerr.Wrap(pngerr.KindChecksumMismatch, "Adler-32 mismatch in IDAT stream", err)
	}
	if err == zlib.ErrHeader {
		return pngerr.Wrap(pngerr.KindDeflateError, "invalid zlib header in IDAT stream", err)
	}
	if err == io.ErrUnexpectedEOF {
		return pngerr.Wrap(pngerr.KindTruncatedData, "IDAT stream ended before all scanlines were produced", err)
	}
	return pngerr.Wrap(pngerr.KindDeflateError, "DEFLATE decode error", err)
}

// ChunkSink receives segments of compressed output to be framed as
// individual IDAT chunks.
type ChunkSink interface {
	WriteIDAT(data []byte) error
}

// splitter buffers compressor output and flushes it to the sink in
// segments no larger than maxSize, so at most one nearly-full segment is
// held in memory at a time.
type splitter struct {
	sink    ChunkSink
	maxSize int
	buf     []byte
}

func (s *splitter) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	for len(s.buf) >= s.maxSize {
		if err := s.sink.WriteIDAT(s.buf[:s.maxSize]); err != nil {
			return 0, err
		}
		s.buf = s.buf[s.maxSize:]
	}
	return len(p), nil
}

func (s *splitter) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	err := s.sink.WriteIDAT(s.buf)
	s.buf = nil
	return err
}

// Compressor is a streaming zlib/DEFLATE writer whose output is cut into
// IDAT-sized segments as it is produced.
type Compressor struct {
	zw *zlib.Writer
	sp *splitter
}

// NewCompressor creates a Compressor writing level-compressed output to
// sink in segments of at most maxSize bytes; a maxSize below 1 selects
// 8192.
func NewCompressor(sink ChunkSink, maxSize int, level int) (*Compressor, error) {
	if maxSize < 1 {
		maxSize = 8192
	}
	sp := &splitter{sink: sink, maxSize: maxSize}
	zw, err := zlib.NewWriterLevel(sp, level)
	if err != nil {
		return nil, pngerr.Wrap(pngerr.KindDeflateError, "creating DEFLATE encoder", err)
	}
	return &Compressor{zw: zw, sp: sp}, nil
}

// Write feeds filtered scanline bytes into the compressor.
func (c *Compressor) Write(p []byte) (int, error) {
	n, err := c.zw.Write(p)
	if err != nil {
		return n, pngerr.Wrap(pngerr.KindDeflateError, "DEFLATE encode error", err)
	}
	return n, nil
}

// Close flushes the zlib stream (including its Adler-32 trailer) and
// emits any remaining buffered bytes as a final IDAT chunk.
func (c *Compressor) Close() error {
	if err := c.zw.Close(); err != nil {
		return pngerr.Wrap(pngerr.KindDeflateError, "closing DEFLATE encoder", err)
	}
	return c.sp.flush()
}
