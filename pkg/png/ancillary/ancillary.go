// Package ancillary parses and serialises the PNG ancillary chunks that
// affect pixel interpretation or round-trip fidelity: tRNS, gAMA, cHRM,
// sBIT, bKGD, pHYs, tEXt, zTXt, iTXt, iCCP, sRGB and tIME.
package ancillary

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"

	"github.com/drj11/pngcodec/pkg/png/imgmeta"
	"github.com/drj11/pngcodec/pkg/png/pngerr"
)

// ParseGAMA decodes a gAMA chunk: a single u32 fixed-point (x100000)
// gamma value.
func ParseGAMA(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, pngerr.New(pngerr.KindBadIHDR, "gAMA chunk has incorrect length")
	}
	return binary.BigEndian.Uint32(data), nil
}

// SerializeGAMA encodes a gAMA chunk.
func SerializeGAMA(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

// ParseCHRM decodes a cHRM chunk: eight u32 fixed-point (x100000) values.
func ParseCHRM(data []byte) (*imgmeta.Chromaticities, error) {
	if len(data) != 32 {
		return nil, pngerr.New(pngerr.KindBadIHDR, "cHRM chunk has incorrect length")
	}
	vals := make([]uint32, 8)
	for i := range vals {
		vals[i] = binary.BigEndian.Uint32(data[i*4:])
	}
	return &imgmeta.Chromaticities{
		WhiteX: vals[0], WhiteY: vals[1],
		RedX: vals[2], RedY: vals[3],
		GreenX: vals[4], GreenY: vals[5],
		BlueX: vals[6], BlueY: vals[7],
	}, nil
}

// SerializeCHRM encodes a cHRM chunk.
func SerializeCHRM(c *imgmeta.Chromaticities) []byte {
	out := make([]byte, 32)
	vals := []uint32{c.WhiteX, c.WhiteY, c.RedX, c.RedY, c.GreenX, c.GreenY, c.BlueX, c.BlueY}
	for i, v := range vals {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// ParseSBIT decodes an sBIT chunk: one byte per channel (1-4 bytes
// depending on colour type).
func ParseSBIT(data []byte, planes int) ([]uint8, error) {
	if len(data) != planes {
		return nil, pngerr.Newf(pngerr.KindBadIHDR, "sBIT chunk has incorrect length: want %d, got %d", planes, len(data))
	}
	out := make([]uint8, planes)
	copy(out, data)
	return out, nil
}

// SerializeSBIT encodes an sBIT chunk.
func SerializeSBIT(sbit []uint8) []byte {
	out := make([]byte, len(sbit))
	copy(out, sbit)
	return out
}

// ParseBKGD decodes a bKGD chunk according to colour type: a palette
// index (1 byte) for Palette images, one grey sample for Greyscale(Alpha),
// or three samples for TrueColour(Alpha). Samples are bitdepth-sized
// (1 or 2 bytes).
func ParseBKGD(data []byte, ct imgmeta.ColourType, bitdepth int) ([]int, error) {
	sampleBytes := 1
	if bitdepth == 16 {
		sampleBytes = 2
	}
	var n int
	if ct.IsPalette() {
		n = 1
		sampleBytes = 1
	} else if ct.IsGreyscale() {
		n = 1
	} else {
		n = 3
	}
	if len(data) != n*sampleBytes {
		return nil, pngerr.New(pngerr.KindBadIHDR, "bKGD chunk has incorrect length")
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if sampleBytes == 2 {
			out[i] = int(binary.BigEndian.Uint16(data[i*2:]))
		} else {
			out[i] = int(data[i])
		}
	}
	return out, nil
}

// SerializeBKGD encodes a bKGD chunk.
func SerializeBKGD(vals []int, ct imgmeta.ColourType, bitdepth int) []byte {
	if ct.IsPalette() {
		return []byte{byte(vals[0])}
	}
	if bitdepth == 16 {
		out := make([]byte, len(vals)*2)
		for i, v := range vals {
			binary.BigEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v)
	}
	return out
}

// ParseTRNS decodes a tRNS chunk. For Palette images it is an alpha
// value per palette entry (up to paletteLen bytes); otherwise it is a
// single transparent colour: one grey sample or three RGB samples,
// bitdepth-sized.
func ParseTRNS(data []byte, ct imgmeta.ColourType, bitdepth, paletteLen int) (*imgmeta.Transparency, error) {
	if ct.IsPalette() {
		if len(data) > paletteLen {
			return nil, pngerr.New(pngerr.KindBadIHDR, "tRNS chunk is too long")
		}
		out := make([]uint8, len(data))
		copy(out, data)
		return &imgmeta.Transparency{PaletteAlpha: out}, nil
	}
	if ct.HasAlpha() {
		return nil, pngerr.New(pngerr.KindBadIHDR, "tRNS chunk is not valid with an alpha colour type")
	}
	sampleBytes := 1
	if bitdepth == 16 {
		sampleBytes = 2
	}
	n := 1
	if !ct.IsGreyscale() {
		n = 3
	}
	if len(data) != n*sampleBytes {
		return nil, pngerr.New(pngerr.KindBadIHDR, "tRNS chunk has incorrect length")
	}
	colour := make([]int, n)
	for i := 0; i < n; i++ {
		if sampleBytes == 2 {
			colour[i] = int(binary.BigEndian.Uint16(data[i*2:]))
		} else {
			colour[i] = int(data[i])
		}
	}
	return &imgmeta.Transparency{Colour: colour}, nil
}

// SerializeTRNS encodes a tRNS chunk.
func SerializeTRNS(t *imgmeta.Transparency, ct imgmeta.ColourType, bitdepth int) []byte {
	if t.PaletteAlpha != nil {
		out := make([]byte, len(t.PaletteAlpha))
		copy(out, t.PaletteAlpha)
		return out
	}
	if bitdepth == 16 {
		out := make([]byte, len(t.Colour)*2)
		for i, v := range t.Colour {
			binary.BigEndian.PutUint16(out[i*2:], uint16(v))
		}
		return out
	}
	out := make([]byte, len(t.Colour))
	for i, v := range t.Colour {
		out[i] = byte(v)
	}
	return out
}

// ParsePHYS decodes a pHYs chunk.
func ParsePHYS(data []byte) (*imgmeta.Physical, error) {
	if len(data) != 9 {
		return nil, pngerr.New(pngerr.KindBadIHDR, "pHYs chunk has incorrect length")
	}
	return &imgmeta.Physical{
		PixelsPerUnitX: binary.BigEndian.Uint32(data[0:4]),
		PixelsPerUnitY: binary.BigEndian.Uint32(data[4:8]),
		UnitIsMeter:    data[8] == 1,
	}, nil
}

// SerializePHYS encodes a pHYs chunk.
func SerializePHYS(p *imgmeta.Physical) []byte {
	out := make([]byte, 9)
	binary.BigEndian.PutUint32(out[0:4], p.PixelsPerUnitX)
	binary.BigEndian.PutUint32(out[4:8], p.PixelsPerUnitY)
	if p.UnitIsMeter {
		out[8] = 1
	}
	return out
}

// ParseTIME decodes a tIME chunk.
func ParseTIME(data []byte) (*imgmeta.Time, error) {
	if len(data) != 7 {
		return nil, pngerr.New(pngerr.KindBadIHDR, "tIME chunk has incorrect length")
	}
	return &imgmeta.Time{
		Year:   int(binary.BigEndian.Uint16(data[0:2])),
		Month:  int(data[2]),
		Day:    int(data[3]),
		Hour:   int(data[4]),
		Minute: int(data[5]),
		Second: int(data[6]),
	}, nil
}

// SerializeTIME encodes a tIME chunk.
func SerializeTIME(t *imgmeta.Time) []byte {
	out := make([]byte, 7)
	binary.BigEndian.PutUint16(out[0:2], uint16(t.Year))
	out[2] = byte(t.Month)
	out[3] = byte(t.Day)
	out[4] = byte(t.Hour)
	out[5] = byte(t.Minute)
	out[6] = byte(t.Second)
	return out
}

// ParseSRGB decodes an sRGB chunk: a single rendering-intent byte.
func ParseSRGB(data []byte) (uint8, error) {
	if len(data) != 1 {
		return 0, pngerr.New(pngerr.KindBadIHDR, "sRGB chunk has incorrect length")
	}
	return data[0], nil
}

// SerializeSRGB encodes an sRGB chunk.
func SerializeSRGB(intent uint8) []byte {
	return []byte{intent}
}

// ParseTEXT decodes a tEXt chunk: keyword NUL text, both Latin-1.
func ParseTEXT(data []byte) (imgmeta.TextRecord, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return imgmeta.TextRecord{}, pngerr.New(pngerr.KindBadIHDR, "tEXt chunk is missing its NUL separator")
	}
	return imgmeta.TextRecord{Keyword: string(data[:i]), Text: string(data[i+1:])}, nil
}

// SerializeTEXT encodes a tEXt chunk.
func SerializeTEXT(r imgmeta.TextRecord) []byte {
	var buf bytes.Buffer
	buf.WriteString(r.Keyword)
	buf.WriteByte(0)
	buf.WriteString(r.Text)
	return buf.Bytes()
}

// ParseZTXT decodes a zTXt chunk: keyword NUL compression-method
// zlib-compressed-text.
func ParseZTXT(data []byte) (imgmeta.TextRecord, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 || i+1 >= len(data) {
		return imgmeta.TextRecord{}, pngerr.New(pngerr.KindBadIHDR, "zTXt chunk is malformed")
	}
	keyword := string(data[:i])
	text, err := inflate(data[i+2:])
	if err != nil {
		return imgmeta.TextRecord{}, pngerr.Wrap(pngerr.KindDeflateError, "decompressing zTXt text", err)
	}
	return imgmeta.TextRecord{Keyword: keyword, Text: string(text), Compressed: true}, nil
}

// SerializeZTXT encodes a zTXt chunk.
func SerializeZTXT(r imgmeta.TextRecord) ([]byte, error) {
	compressed, err := deflate([]byte(r.Text))
	if err != nil {
		return nil, pngerr.Wrap(pngerr.KindDeflateError, "compressing zTXt text", err)
	}
	var buf bytes.Buffer
	buf.WriteString(r.Keyword)
	buf.WriteByte(0)
	buf.WriteByte(0) // compression method 0 = deflate
	buf.Write(compressed)
	return buf.Bytes(), nil
}

// ParseITXT decodes an iTXt chunk: keyword NUL compression-flag
// compression-method NUL language-tag NUL translated-keyword NUL text.
func ParseITXT(data []byte) (imgmeta.TextRecord, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 || i+2 >= len(data) {
		return imgmeta.TextRecord{}, pngerr.New(pngerr.KindBadIHDR, "iTXt chunk is malformed")
	}
	keyword := string(data[:i])
	flag := data[i+1]
	rest := data[i+3:] // skip flag + compression method

	j := bytes.IndexByte(rest, 0)
	if j < 0 {
		return imgmeta.TextRecord{}, pngerr.New(pngerr.KindBadIHDR, "iTXt chunk missing language tag")
	}
	lang := string(rest[:j])
	rest = rest[j+1:]

	k := bytes.IndexByte(rest, 0)
	if k < 0 {
		return imgmeta.TextRecord{}, pngerr.New(pngerr.KindBadIHDR, "iTXt chunk missing translated keyword")
	}
	translated := string(rest[:k])
	textBytes := rest[k+1:]

	rec := imgmeta.TextRecord{
		Keyword:           keyword,
		International:     true,
		LanguageTag:       lang,
		TranslatedKeyword: translated,
	}
	if flag == 0 {
		rec.Text = string(textBytes)
		return rec, nil
	}
	rec.Compressed = true
	plain, err := inflate(textBytes)
	if err != nil {
		return imgmeta.TextRecord{}, pngerr.Wrap(pngerr.KindDeflateError, "decompressing iTXt text", err)
	}
	rec.Text = string(plain)
	return rec, nil
}

// SerializeITXT encodes an iTXt chunk.
func SerializeITXT(r imgmeta.TextRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(r.Keyword)
	buf.WriteByte(0)
	if r.Compressed {
		buf.WriteByte(1)
		buf.WriteByte(0)
		buf.WriteString(r.LanguageTag)
		buf.WriteByte(0)
		buf.WriteString(r.TranslatedKeyword)
		buf.WriteByte(0)
		compressed, err := deflate([]byte(r.Text))
		if err != nil {
			return nil, pngerr.Wrap(pngerr.KindDeflateError, "compressing iTXt text", err)
		}
		buf.Write(compressed)
		return buf.Bytes(), nil
	}
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.WriteString(r.LanguageTag)
	buf.WriteByte(0)
	buf.WriteString(r.TranslatedKeyword)
	buf.WriteByte(0)
	buf.WriteString(r.Text)
	return buf.Bytes(), nil
}

// ParseICCP decodes an iCCP chunk: name NUL compression-method
// zlib-compressed-profile.
func ParseICCP(data []byte) (*imgmeta.ICCPProfile, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 || i+1 >= len(data) {
		return nil, pngerr.New(pngerr.KindBadIHDR, "iCCP chunk is malformed")
	}
	profile, err := inflate(data[i+2:])
	if err != nil {
		return nil, pngerr.Wrap(pngerr.KindDeflateError, "decompressing iCCP profile", err)
	}
	return &imgmeta.ICCPProfile{Name: string(data[:i]), Profile: profile}, nil
}

// SerializeICCP encodes an iCCP chunk.
func SerializeICCP(p *imgmeta.ICCPProfile) ([]byte, error) {
	compressed, err := deflate(p.Profile)
	if err != nil {
		return nil, pngerr.Wrap(pngerr.KindDeflateError, "compressing iCCP profile", err)
	}
	var buf bytes.Buffer
	buf.WriteString(p.Name)
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.Write(compressed)
	return buf.Bytes(), nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
