package adam7

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassDims_KnownImage(t *testing.T) {
	// The canonical 8x8 Adam7 tiling: pass 1 gets exactly one pixel,
	// passes grow from there; widths/heights from the PNG specification.
	w, h := 8, 8
	wantW := []int{1, 1, 2, 2, 4, 4, 8}
	wantH := []int{1, 1, 1, 2, 2, 4, 4}
	for i, p := range Passes {
		pw, ph := p.Dims(w, h)
		assert.Equal(t, wantW[i], pw, "pass %d width", i)
		assert.Equal(t, wantH[i], ph, "pass %d height", i)
	}
}

func TestVisit_SkipsEmptyPasses(t *testing.T) {
	// A 1x1 image only has content in pass 0.
	var seen []int
	Visit(1, 1, func(pass, w, h int) {
		seen = append(seen, pass)
		assert.Equal(t, 1, w)
		assert.Equal(t, 1, h)
	})
	assert.Equal(t, []int{0}, seen)
}

func TestPassesTileTheImageExactly(t *testing.T) {
	// Every pixel of a w x h image belongs to exactly one Adam7 pass.
	w, h := 13, 11
	covered := make([][]bool, h)
	for y := range covered {
		covered[y] = make([]bool, w)
	}
	for _, p := range Passes {
		pw, ph := p.Dims(w, h)
		for j := 0; j < ph; j++ {
			y := p.PixelRow(j)
			for i := 0; i < pw; i++ {
				x := p.PixelCol(i)
				assert.False(t, covered[y][x], "pixel (%d,%d) covered twice", x, y)
				covered[y][x] = true
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			assert.True(t, covered[y][x], "pixel (%d,%d) never covered", x, y)
		}
	}
}

func TestDeinterlaceInterlace_RoundTrip(t *testing.T) {
	width, height, planes := 13, 11, 2
	full := make([]int, width*height*planes)
	for i := range full {
		full[i] = i % 97
	}
	for _, p := range Passes {
		pw, ph := p.Dims(width, height)
		if pw == 0 || ph == 0 {
			continue
		}
		for j := 0; j < ph; j++ {
			row := Interlace(full, width, planes, p, j, pw)
			scattered := make([]int, width*height*planes)
			Deinterlace(scattered, width, planes, p, j, row)
			y := p.PixelRow(j)
			for i := 0; i < pw; i++ {
				x := p.PixelCol(i)
				off := (y*width + x) * planes
				assert.Equal(t, full[off:off+planes], scattered[off:off+planes])
			}
		}
	}
}
