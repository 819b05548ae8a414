package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drj11/pngcodec/pkg/png/imgmeta"
)

func TestOfInfo_DeterministicAndDistinguishing(t *testing.T) {
	a := imgmeta.Info{Width: 10, Height: 10, BitDepth: 8, ColourType: imgmeta.TrueColour}
	b := imgmeta.Info{Width: 10, Height: 10, BitDepth: 8, ColourType: imgmeta.TrueColour}
	c := imgmeta.Info{Width: 11, Height: 10, BitDepth: 8, ColourType: imgmeta.TrueColour}

	fa := OfInfo(a, nil)
	fb := OfInfo(b, nil)
	fc := OfInfo(c, nil)

	assert.NotEmpty(t, fa)
	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
}

func TestOfInfo_PaletteAffectsFingerprint(t *testing.T) {
	info := imgmeta.Info{Width: 4, Height: 4, BitDepth: 8, ColourType: imgmeta.PaletteColour}
	pal1 := imgmeta.Palette{{R: 1, G: 2, B: 3, A: 255}}
	pal2 := imgmeta.Palette{{R: 9, G: 9, B: 9, A: 255}}
	assert.NotEqual(t, OfInfo(info, pal1), OfInfo(info, pal2))
}
