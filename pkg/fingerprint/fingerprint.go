// Package fingerprint derives a stable, content-addressed identifier
// for a decoded PNG's structural descriptor, for use as a cache or
// dedup key by callers that decode the same stream repeatedly.
package fingerprint

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/drj11/pngcodec/pkg/png/imgmeta"
)

// OfInfo hashes the IHDR descriptor and palette (if any) into a
// UUID-formatted string made of the raw MD5 digest; no UUID version or
// variant bits are set. Two streams with identical width,
// height, bit depth, colour type, interlace method and palette produce
// the same fingerprint regardless of their pixel data or ancillary
// chunks; it deliberately ignores those, the distinguishing weight
// belongs to a caller's own content hash, not this codec's.
func OfInfo(info imgmeta.Info, pal imgmeta.Palette) string {
	h := md5.New()
	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(info.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(info.Height))
	ihdr[8] = byte(info.BitDepth)
	ihdr[9] = byte(info.ColourType)
	ihdr[12] = byte(info.Interlace)
	h.Write(ihdr[:])
	for _, e := range pal {
		h.Write([]byte{e.R, e.G, e.B, e.A})
	}
	sum := h.Sum(nil)
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		return ""
	}
	return id.String()
}
