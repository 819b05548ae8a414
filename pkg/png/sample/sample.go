// Package sample converts between the stored bit-depth/channel-count
// format of a PNG's scanlines and the caller-visible row formats: packed
// bytes, direct (unpacked) samples, and value-preserving coerced forms
// (8- or 16-bit RGB/RGBA, or floating point).
package sample

import (
	"github.com/drj11/pngcodec/pkg/png/bitpack"
	"github.com/drj11/pngcodec/pkg/png/imgmeta"
	"github.com/drj11/pngcodec/pkg/png/pngerr"
)

// Pack converts a row of direct samples into packed bytes at the given
// bit depth. For bit depth 16, samples are written big-endian, two bytes
// each; for 8, one byte each; for 1/2/4, samples are packed MSB-first
// with the row's trailing bits zero-padded.
func Pack(row []int, bitdepth int) []byte {
	if bitdepth == 16 {
		out := make([]byte, len(row)*2)
		for i, v := range row {
			out[i*2] = byte(v >> 8)
			out[i*2+1] = byte(v)
		}
		return out
	}
	bytesRow := make([]byte, len(row))
	for i, v := range row {
		bytesRow[i] = byte(v)
	}
	if bitdepth == 8 {
		return bytesRow
	}
	return bitpack.Pack(bytesRow, bitdepth)
}

// Unpack converts packed bytes back into width*planes direct samples at
// the given bit depth; the inverse of Pack.
func Unpack(packed []byte, width, planes, bitdepth int) []int {
	n := width * planes
	if bitdepth == 16 {
		out := make([]int, n)
		for i := range out {
			if i*2+1 < len(packed) {
				out[i] = int(packed[i*2])<<8 | int(packed[i*2+1])
			}
		}
		return out
	}
	var bytesOut []byte
	if bitdepth == 8 {
		bytesOut = make([]byte, n)
		copy(bytesOut, packed)
	} else {
		bytesOut = bitpack.Unpack(packed, n, bitdepth)
	}
	out := make([]int, n)
	for i, b := range bytesOut {
		out[i] = int(b)
	}
	return out
}

// Rescale maps a sample from a source bit depth to a target bit depth
// such that 0 maps to 0 and 2^from-1 maps to 2^to-1, computed by
// left-shift-and-fill (exact, not rounded, at the endpoints).
func Rescale(v, from, to int) int {
	if from == to {
		return v
	}
	srcMax := (1 << from) - 1
	dstMax := (1 << to) - 1
	return v * dstMax / srcMax
}

// RescaleRow rescales every sample in row from one bit depth to another.
func RescaleRow(row []int, from, to int) []int {
	if from == to {
		out := make([]int, len(row))
		copy(out, row)
		return out
	}
	out := make([]int, len(row))
	for i, v := range row {
		out[i] = Rescale(v, from, to)
	}
	return out
}

// RescaleRowRound is like RescaleRow but rounds to nearest, used by the
// coerced (asRGB8/asRGBA8/...) conversions rather than the bit-depth
// identities in property 7/8.
func RescaleRowRound(row []int, from, to int) []int {
	if from == to {
		out := make([]int, len(row))
		copy(out, row)
		return out
	}
	srcMax := (1 << from) - 1
	dstMax := (1 << to) - 1
	out := make([]int, len(row))
	for i, v := range row {
		out[i] = (v*dstMax*2 + srcMax) / (srcMax * 2)
	}
	return out
}

// ExpandPalette replaces each palette index in row with its palette
// entry's RGB (or RGBA, if withAlpha) samples.
func ExpandPalette(row []int, pal imgmeta.Palette, withAlpha bool) ([]int, error) {
	n := 3
	if withAlpha {
		n = 4
	}
	out := make([]int, 0, len(row)*n)
	for _, idx := range row {
		if idx < 0 || idx >= len(pal) {
			return nil, pngerr.Newf(pngerr.KindPaletteOutOfRange, "palette index %d out of range [0, %d)", idx, len(pal))
		}
		e := pal[idx]
		out = append(out, int(e.R), int(e.G), int(e.B))
		if withAlpha {
			out = append(out, int(e.A))
		}
	}
	return out, nil
}

// SynthesizeAlpha adds an alpha channel to a planes-per-pixel row,
// setting alpha to 0 where the pixel equals the tRNS transparent colour
// and to maxval (2^bitdepth-1) elsewhere.
func SynthesizeAlpha(row []int, planes, bitdepth int, transparent []int) []int {
	maxval := (1 << bitdepth) - 1
	out := make([]int, 0, len(row)/planes*(planes+1))
	for i := 0; i+planes <= len(row); i += planes {
		px := row[i : i+planes]
		out = append(out, px...)
		if sampleEquals(px, transparent) {
			out = append(out, 0)
		} else {
			out = append(out, maxval)
		}
	}
	return out
}

func sampleEquals(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ReplicateGrey expands a 1 (or 2, with alpha) channel greyscale row
// into a 3 (or 4) channel RGB(A) row by replicating the grey sample into
// R, G and B.
func ReplicateGrey(row []int, hasAlpha bool) []int {
	stride := 1
	if hasAlpha {
		stride = 2
	}
	outStride := 3
	if hasAlpha {
		outStride = 4
	}
	out := make([]int, 0, len(row)/stride*outStride)
	for i := 0; i+stride <= len(row); i += stride {
		g := row[i]
		out = append(out, g, g, g)
		if hasAlpha {
			out = append(out, row[i+1])
		}
	}
	return out
}

// ShiftRow right-shifts every sample by the given number of bits,
// implementing sBIT's "low bits are noise" policy on decode.
func ShiftRow(row []int, shift int) []int {
	if shift <= 0 {
		out := make([]int, len(row))
		copy(out, row)
		return out
	}
	out := make([]int, len(row))
	for i, v := range row {
		out[i] = v >> shift
	}
	return out
}

// ToFloat rescales a row of integer samples at the given bit depth into
// floats in [0, maxval].
func ToFloat(row []int, bitdepth int, maxval float64) []float64 {
	maxInt := 1 << bitdepth
	srcMax := float64(maxInt - 1)
	out := make([]float64, len(row))
	factor := maxval / srcMax
	for i, v := range row {
		out[i] = float64(v) * factor
	}
	return out
}
