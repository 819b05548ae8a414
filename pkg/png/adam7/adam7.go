// Package adam7 implements the Adam7 interlacing scheme: pass scheduling
// for decomposing an image into seven passes on encode, and reassembling
// them on decode.
package adam7

// Pass describes one of the seven Adam7 passes: pixel (x, y) of the full
// image belongs to this pass when x%XStride == XOffset and
// y%YStride == YOffset.
type Pass struct {
	XOffset, YOffset int
	XStride, YStride int
}

// Passes is the fixed Adam7 pass table, in emission order.
var Passes = [7]Pass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Width returns the pass width for a full image of width w.
func (p Pass) Width(w int) int {
	if w <= p.XOffset {
		return 0
	}
	return ceilDiv(w-p.XOffset, p.XStride)
}

// Height returns the pass height for a full image of height h.
func (p Pass) Height(h int) int {
	if h <= p.YOffset {
		return 0
	}
	return ceilDiv(h-p.YOffset, p.YStride)
}

// Dims returns (width, height) for a pass over a w x h image. Passes
// with zero width or height are skipped entirely by callers.
func (p Pass) Dims(w, h int) (int, int) {
	return p.Width(w), p.Height(h)
}

// PixelRow maps pass-relative row j to an absolute image row.
func (p Pass) PixelRow(j int) int {
	return p.YOffset + j*p.YStride
}

// PixelCol maps pass-relative column i to an absolute image column.
func (p Pass) PixelCol(i int) int {
	return p.XOffset + i*p.XStride
}

// VisitFunc is called once per non-empty pass with its index (0-6),
// width and height.
type VisitFunc func(pass int, width, height int)

// Visit calls fn for each of the seven passes that has non-zero width
// and height for a w x h image, skipping empty passes entirely.
func Visit(w, h int, fn VisitFunc) {
	for i, p := range Passes {
		pw, ph := p.Dims(w, h)
		if pw == 0 || ph == 0 {
			continue
		}
		fn(i, pw, ph)
	}
}

// Deinterlace scatters the planes-wide samples of one reconstructed pass
// row into the full-image sample grid dst (width*height*planes samples),
// given the pass and the pass-relative row index j.
func Deinterlace(dst []int, width, planes int, pass Pass, j int, row []int) {
	y := pass.PixelRow(j)
	rowBase := y * width * planes
	for i := 0; i*planes < len(row); i++ {
		x := pass.PixelCol(i)
		dstOff := rowBase + x*planes
		srcOff := i * planes
		copy(dst[dstOff:dstOff+planes], row[srcOff:srcOff+planes])
	}
}

// Interlace gathers the planes-wide samples for pass-relative row j out
// of the full-image sample grid src (width*height*planes samples).
func Interlace(src []int, width, planes int, pass Pass, j, passWidth int) []int {
	y := pass.PixelRow(j)
	rowBase := y * width * planes
	out := make([]int, passWidth*planes)
	for i := 0; i < passWidth; i++ {
		x := pass.PixelCol(i)
		srcOff := rowBase + x*planes
		dstOff := i * planes
		copy(out[dstOff:dstOff+planes], src[srcOff:srcOff+planes])
	}
	return out
}
