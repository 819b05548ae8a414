// Package filter implements the PNG scanline filters: None, Sub, Up,
// Average and Paeth, for both inverse filtering (decode) and forward
// filtering (encode).
package filter

import "github.com/drj11/pngcodec/pkg/png/pngerr"

// Type identifies a PNG scanline filter.
type Type byte

const (
	None Type = 0
	Sub  Type = 1
	Up   Type = 2
	Avg  Type = 3
	Paeth Type = 4
)

// Unit returns the filter unit fu = max(1, bytesPerPixel), the stride
// used to find the left neighbour for Sub/Average/Paeth.
func Unit(bytesPerPixel int) int {
	if bytesPerPixel < 1 {
		return 1
	}
	return bytesPerPixel
}

// Unfilter reconstructs a scanline in place. scanline holds the filtered
// bytes (without the leading filter-type byte) and is overwritten with
// the reconstructed bytes. prev is the previous reconstructed scanline,
// or nil for the first scanline of a pass (treated as all-zero).
func Unfilter(t Type, scanline, prev []byte, fu int) error {
	switch t {
	case None:
		return nil
	case Sub:
		unfilterSub(scanline, fu)
		return nil
	case Up:
		unfilterUp(scanline, prev)
		return nil
	case Avg:
		unfilterAverage(scanline, prev, fu)
		return nil
	case Paeth:
		unfilterPaeth(scanline, prev, fu)
		return nil
	default:
		return pngerr.Newf(pngerr.KindUnknownFilter, "unknown filter type %d", t)
	}
}

func prevAt(prev []byte, i int) int {
	if prev == nil {
		return 0
	}
	return int(prev[i])
}

func unfilterSub(s []byte, fu int) {
	for i := range s {
		a := 0
		if i >= fu {
			a = int(s[i-fu])
		}
		s[i] = byte(int(s[i]) + a)
	}
}

func unfilterUp(s, prev []byte) {
	for i := range s {
		s[i] = byte(int(s[i]) + prevAt(prev, i))
	}
}

func unfilterAverage(s, prev []byte, fu int) {
	for i := range s {
		a := 0
		if i >= fu {
			a = int(s[i-fu])
		}
		b := prevAt(prev, i)
		s[i] = byte(int(s[i]) + (a+b)/2)
	}
}

func unfilterPaeth(s, prev []byte, fu int) {
	for i := range s {
		a, b, c := 0, prevAt(prev, i), 0
		if i >= fu {
			a = int(s[i-fu])
			c = prevAt(prev, i-fu)
		}
		s[i] = byte(int(s[i]) + paethPredictor(a, b, c))
	}
}

func paethPredictor(a, b, c int) int {
	p := a + b - c
	pa := abs(p - a)
	pb := abs(p - b)
	pc := abs(p - c)
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Filter applies filter type t to an unfiltered scanline, returning the
// filtered bytes (without the leading filter-type byte). prev is the
// previous unfiltered scanline, or nil for the first scanline of a pass.
func Filter(t Type, line, prev []byte, fu int) []byte {
	if prev == nil {
		// The first scanline of a pass reduces Up to None and Paeth to
		// Sub; Average still needs its prev-is-zero special case.
		switch t {
		case Up:
			t = None
		case Paeth:
			t = Sub
		}
	}
	out := make([]byte, len(line))
	switch t {
	case None:
		copy(out, line)
	case Sub:
		filterSub(line, out, fu)
	case Up:
		filterUp(line, prev, out)
	case Avg:
		filterAverage(line, prev, out, fu)
	case Paeth:
		filterPaeth(line, prev, out, fu)
	}
	return out
}

func filterSub(line, out []byte, fu int) {
	for i, x := range line {
		a := 0
		if i >= fu {
			a = int(line[i-fu])
		}
		out[i] = byte(int(x) - a)
	}
}

func filterUp(line, prev, out []byte) {
	for i, x := range line {
		out[i] = byte(int(x) - prevAt(prev, i))
	}
}

func filterAverage(line, prev, out []byte, fu int) {
	for i, x := range line {
		a := 0
		if i >= fu {
			a = int(line[i-fu])
		}
		b := prevAt(prev, i)
		out[i] = byte(int(x) - (a+b)/2)
	}
}

func filterPaeth(line, prev, out []byte, fu int) {
	for i, x := range line {
		a, b, c := 0, prevAt(prev, i), 0
		if i >= fu {
			a = int(line[i-fu])
			c = prevAt(prev, i-fu)
		}
		out[i] = byte(int(x) - paethPredictor(a, b, c))
	}
}

// signedDeviationSum is the "sum of absolute signed deviations"
// heuristic used to pick an adaptive filter: each output byte is
// interpreted as a signed value in [-128, 127].
func signedDeviationSum(filtered []byte) int {
	sum := 0
	for _, b := range filtered {
		v := int(int8(b))
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}

// ChooseAdaptive selects, for one scanline, the filter type that
// minimises the sum-of-absolute-signed-deviations heuristic, and returns
// the filtered bytes for that choice.
func ChooseAdaptive(line, prev []byte, fu int) (Type, []byte) {
	best := None
	bestOut := Filter(None, line, prev, fu)
	bestSum := signedDeviationSum(bestOut)
	for _, t := range []Type{Sub, Up, Avg, Paeth} {
		out := Filter(t, line, prev, fu)
		sum := signedDeviationSum(out)
		if sum < bestSum {
			best, bestOut, bestSum = t, out, sum
		}
	}
	return best, bestOut
}
