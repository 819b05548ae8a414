package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drj11/pngcodec/pkg/png/imgmeta"
)

func TestPackUnpack_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bitdepth int
		planes   int
		width    int
		row      []int
	}{
		{"Depth1", 1, 1, 8, []int{0, 1, 1, 0, 1, 0, 0, 1}},
		{"Depth4Palette", 4, 1, 4, []int{0, 15, 8, 1}},
		{"Depth8RGB", 8, 3, 2, []int{255, 0, 128, 1, 2, 3}},
		{"Depth16Grey", 16, 1, 3, []int{0, 65535, 256}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := Pack(tt.row, tt.bitdepth)
			got := Unpack(packed, tt.width, tt.planes, tt.bitdepth)
			assert.Equal(t, tt.row, got)
		})
	}
}

func TestRescale_IdentityAtEndpoints(t *testing.T) {
	for _, depth := range []int{1, 2, 4, 8, 16} {
		assert.Equal(t, 0, Rescale(0, depth, 8))
		max := (1 << depth) - 1
		assert.Equal(t, 255, Rescale(max, depth, 8))
	}
}

func TestRescale_SameDepthIsIdentity(t *testing.T) {
	assert.Equal(t, 42, Rescale(42, 8, 8))
}

func TestExpandPalette(t *testing.T) {
	pal := imgmeta.Palette{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 40, G: 50, B: 60, A: 128},
	}
	out, err := ExpandPalette([]int{0, 1}, pal, true)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 255, 40, 50, 60, 128}, out)

	out, err = ExpandPalette([]int{1, 0}, pal, false)
	require.NoError(t, err)
	assert.Equal(t, []int{40, 50, 60, 10, 20, 30}, out)
}

func TestExpandPalette_OutOfRange(t *testing.T) {
	pal := imgmeta.Palette{{R: 1, G: 2, B: 3, A: 255}}
	_, err := ExpandPalette([]int{0, 5}, pal, false)
	require.Error(t, err)
}

func TestSynthesizeAlpha(t *testing.T) {
	row := []int{0, 0, 0, 255, 255, 255}
	out := SynthesizeAlpha(row, 3, 8, []int{0, 0, 0})
	assert.Equal(t, []int{0, 0, 0, 0, 255, 255, 255, 255}, out)
}

func TestReplicateGrey(t *testing.T) {
	assert.Equal(t, []int{5, 5, 5, 9, 9, 9}, ReplicateGrey([]int{5, 9}, false))
	assert.Equal(t, []int{5, 5, 5, 128, 9, 9, 9, 255}, ReplicateGrey([]int{5, 128, 9, 255}, true))
}

func TestShiftRow(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, ShiftRow([]int{4, 8, 12}, 2))
	assert.Equal(t, []int{4, 8, 12}, ShiftRow([]int{4, 8, 12}, 0))
}

func TestToFloat(t *testing.T) {
	out := ToFloat([]int{0, 128, 255}, 8, 1.0)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 1.0, out[2], 1e-9)
}
