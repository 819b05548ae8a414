// Package chunktype classifies PNG chunk type tags by their case bits,
// per the PNG specification's chunk naming convention.
package chunktype

// Type is a 4-byte PNG chunk type tag, e.g. "IHDR" or "tEXt".
type Type [4]byte

// ParseType converts a 4-character ASCII string into a Type.
func ParseType(s string) Type {
	var t Type
	copy(t[:], s)
	return t
}

func (t Type) String() string {
	return string(t[:])
}

// IsCritical reports whether the chunk is critical to decoding (bit 5 of
// the first byte is clear).
func (t Type) IsCritical() bool {
	return t[0]&0x20 == 0
}

// IsAncillary is the complement of IsCritical.
func (t Type) IsAncillary() bool {
	return !t.IsCritical()
}

// IsPublic reports whether the chunk type is a registered public type
// (bit 5 of the second byte is clear).
func (t Type) IsPublic() bool {
	return t[1]&0x20 == 0
}

// IsReserved reports whether the reserved bit (bit 5 of the third byte,
// which must be clear per the spec) is set, signalling an invalid chunk
// type in a conforming PNG stream.
func (t Type) IsReserved() bool {
	return t[2]&0x20 != 0
}

// IsSafeToCopy reports whether bit 5 of the fourth byte is set, meaning
// editors that do not understand the chunk may copy it unmodified.
func (t Type) IsSafeToCopy() bool {
	return t[3]&0x20 != 0
}

// Well-known critical chunk types.
var (
	IHDR = ParseType("IHDR")
	PLTE = ParseType("PLTE")
	IDAT = ParseType("IDAT")
	IEND = ParseType("IEND")
)

// Well-known ancillary chunk types implemented with round-trip fidelity.
var (
	TRNS = ParseType("tRNS")
	GAMA = ParseType("gAMA")
	CHRM = ParseType("cHRM")
	SBIT = ParseType("sBIT")
	BKGD = ParseType("bKGD")
	PHYS = ParseType("pHYs")
	TEXT = ParseType("tEXt")
	ZTXT = ParseType("zTXt")
	ITXT = ParseType("iTXt")
	ICCP = ParseType("iCCP")
	SRGB = ParseType("sRGB")
	TIME = ParseType("tIME")
)

// Bucket identifies where an unknown ancillary chunk was encountered
// relative to the critical chunks, so it can be re-emitted in the same
// place on write.
type Bucket int

const (
	// BeforePLTE holds chunks seen before the palette (or before IDAT,
	// for non-palette images).
	BeforePLTE Bucket = iota
	// BeforeIDAT holds chunks seen after PLTE but before the first IDAT.
	BeforeIDAT
	// AfterIDAT holds chunks seen after the last IDAT but before IEND.
	AfterIDAT
)
