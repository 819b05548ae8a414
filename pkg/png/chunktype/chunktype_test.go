package chunktype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseBits(t *testing.T) {
	tests := []struct {
		name         string
		t            Type
		critical     bool
		public       bool
		reserved     bool
		safeToCopy   bool
	}{
		{"IHDR", IHDR, true, true, false, false},
		{"tEXt", TEXT, false, true, false, true},
		{"tRNS", TRNS, false, true, false, false},
		// bit 5 of byte 4 set -> safe to copy; PLTE's 4th byte is 'E'
		// (uppercase, bit clear), IHDR's is 'R' (also clear).
		{"PLTE", PLTE, true, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.critical, tt.t.IsCritical())
			assert.Equal(t, !tt.critical, tt.t.IsAncillary())
			assert.Equal(t, tt.public, tt.t.IsPublic())
			assert.Equal(t, tt.reserved, tt.t.IsReserved())
			assert.Equal(t, tt.safeToCopy, tt.t.IsSafeToCopy())
		})
	}
}

func TestParseType_String(t *testing.T) {
	tt := ParseType("gAMA")
	assert.Equal(t, "gAMA", tt.String())
	assert.Equal(t, GAMA, tt)
}

func TestPrivateAndSafeToCopy(t *testing.T) {
	// A lowercase-fourth-letter private ancillary chunk: "prIv" is
	// ancillary (lowercase first letter), private (lowercase second),
	// and safe to copy (lowercase fourth).
	t1 := ParseType("prIv")
	assert.True(t, t1.IsAncillary())
	assert.False(t, t1.IsPublic())
	assert.True(t, t1.IsSafeToCopy())
}
