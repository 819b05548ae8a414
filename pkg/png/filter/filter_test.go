package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterUnfilter_RoundTrip(t *testing.T) {
	line := []byte{10, 200, 30, 255, 5, 6, 7, 8}
	prev := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	fu := 4

	for _, ft := range []Type{None, Sub, Up, Avg, Paeth} {
		t.Run(ft.stringForTest(), func(t *testing.T) {
			filtered := Filter(ft, line, prev, fu)
			reconstructed := make([]byte, len(filtered))
			copy(reconstructed, filtered)
			require.NoError(t, Unfilter(ft, reconstructed, prev, fu))
			assert.Equal(t, line, reconstructed)
		})
	}
}

func TestFilterUnfilter_FirstScanline(t *testing.T) {
	line := []byte{10, 200, 30, 255}
	fu := 1
	for _, ft := range []Type{None, Sub, Up, Avg, Paeth} {
		filtered := Filter(ft, line, nil, fu)
		reconstructed := make([]byte, len(filtered))
		copy(reconstructed, filtered)
		require.NoError(t, Unfilter(ft, reconstructed, nil, fu))
		assert.Equal(t, line, reconstructed)
	}
}

func TestFilter_FirstScanlineReducesUpAndPaeth(t *testing.T) {
	line := []byte{10, 200, 30, 255}
	fu := 1
	assert.Equal(t, Filter(None, line, nil, fu), Filter(Up, line, nil, fu))
	assert.Equal(t, Filter(Sub, line, nil, fu), Filter(Paeth, line, nil, fu))
}

func TestUnfilter_UnknownType(t *testing.T) {
	err := Unfilter(Type(99), []byte{1, 2, 3}, nil, 1)
	require.Error(t, err)
}

func TestPaethPredictor_TieBreaks(t *testing.T) {
	// pa <= pb && pa <= pc selects a.
	assert.Equal(t, 5, paethPredictor(5, 5, 5))
	// a ties with c but not b: c = a, so p = b -> pb = 0 < pa = pc = 10,
	// selects b.
	assert.Equal(t, 20, paethPredictor(10, 20, 10))
}

func TestChooseAdaptive_PicksMinimalDeviation(t *testing.T) {
	// A flat line matches its previous scanline exactly: Up (all zero
	// deviations) must win over every other filter.
	prev := []byte{5, 5, 5, 5}
	line := []byte{5, 5, 5, 5}
	best, out := ChooseAdaptive(line, prev, 1)
	assert.Equal(t, Up, best)
	assert.Equal(t, []byte{0, 0, 0, 0}, out)
}

func (t Type) stringForTest() string {
	switch t {
	case None:
		return "None"
	case Sub:
		return "Sub"
	case Up:
		return "Up"
	case Avg:
		return "Avg"
	case Paeth:
		return "Paeth"
	default:
		return "?"
	}
}
