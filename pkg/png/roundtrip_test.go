package png

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drj11/pngcodec/pkg/png/adam7"
	"github.com/drj11/pngcodec/pkg/png/imgmeta"
)

func gradientRows(width, height, planes, maxval int) [][]int {
	rows := make([][]int, height)
	for y := 0; y < height; y++ {
		row := make([]int, width*planes)
		for x := 0; x < width; x++ {
			for p := 0; p < planes; p++ {
				row[x*planes+p] = ((x + y + p) * maxval) / (width + height + planes)
			}
		}
		rows[y] = row
	}
	return rows
}

func writePNG(t *testing.T, cfg Config, rows [][]int) []byte {
	t.Helper()
	w, err := NewWriter(cfg)
	require.NoError(t, err)
	i := 0
	iter := NewRowIter(func() ([]int, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	})
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, iter))
	return buf.Bytes()
}

func drainInts(t *testing.T, rows *RowIter[[]int]) [][]int {
	t.Helper()
	var got [][]int
	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, row)
	}
	return got
}

func TestRoundTrip_TrueColour8_NonInterlaced(t *testing.T) {
	rows := gradientRows(6, 5, 3, 255)
	data := writePNG(t, Config{Width: 6, Height: 5, BitDepth: 8, ColourType: TrueColour}, rows)

	r := NewReader(bytes.NewReader(data), false)
	_, _, riter, info, err := r.AsDirect()
	require.NoError(t, err)
	assert.Equal(t, 6, info.Width)
	assert.Equal(t, 5, info.Height)
	assert.Equal(t, 8, info.BitDepth)
	assert.Equal(t, TrueColour, info.ColourType)

	got := drainInts(t, riter)
	assert.Equal(t, rows, got)
}

func TestRoundTrip_TrueColour8_Interlaced(t *testing.T) {
	rows := gradientRows(13, 11, 3, 255)
	data := writePNG(t, Config{Width: 13, Height: 11, BitDepth: 8, ColourType: TrueColour, Interlace: InterlaceAdam7}, rows)

	r := NewReader(bytes.NewReader(data), false)
	_, _, riter, info, err := r.AsDirect()
	require.NoError(t, err)
	assert.Equal(t, InterlaceAdam7, info.Interlace)

	got := drainInts(t, riter)
	assert.Equal(t, rows, got)
}

func TestRoundTrip_Greyscale1Bit(t *testing.T) {
	rows := [][]int{
		{1, 0, 1, 0, 1, 0, 1, 0},
		{0, 1, 0, 1, 0, 1, 0, 1},
	}
	data := writePNG(t, Config{Width: 8, Height: 2, BitDepth: 1, ColourType: Greyscale}, rows)

	r := NewReader(bytes.NewReader(data), false)
	_, _, riter, info, err := r.AsDirect()
	require.NoError(t, err)
	assert.Equal(t, 1, info.BitDepth)
	got := drainInts(t, riter)
	assert.Equal(t, rows, got)
}

func TestRoundTrip_Palette_WithTRNS(t *testing.T) {
	pal := imgmeta.Palette{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
	}
	rows := [][]int{{0, 1, 2}, {2, 1, 0}}
	cfg := Config{
		Width: 3, Height: 2, BitDepth: 8, ColourType: PaletteColour,
		Palette: pal,
		Ancillary: Ancillary{
			Transparency: &Transparency{PaletteAlpha: []uint8{0, 255, 128}},
		},
	}
	data := writePNG(t, cfg, rows)

	r := NewReader(bytes.NewReader(data), false)
	_, _, riter, info, err := r.AsDirect()
	require.NoError(t, err)
	assert.Equal(t, TrueColourAlpha, info.ColourType)

	got := drainInts(t, riter)
	// Row 0: index 0 (red, alpha 0), index 1 (green, alpha 255), index 2 (blue, alpha 128).
	assert.Equal(t, []int{255, 0, 0, 0, 0, 255, 0, 255, 0, 0, 255, 128}, got[0])
}

func TestRoundTrip_Ancillary(t *testing.T) {
	gamma := uint32(45455)
	phys := &Physical{PixelsPerUnitX: 2835, PixelsPerUnitY: 2835, UnitIsMeter: true}
	tm := &Time{Year: 2026, Month: 8, Day: 6, Hour: 1, Minute: 2, Second: 3}
	cfg := Config{
		Width: 2, Height: 2, BitDepth: 8, ColourType: Greyscale,
		Ancillary: Ancillary{
			Gamma:    &gamma,
			Physical: phys,
			Time:     tm,
			Text:     []TextRecord{{Keyword: "Comment", Text: "hand-written metadata"}},
		},
	}
	data := writePNG(t, cfg, gradientRows(2, 2, 1, 255))

	r := NewReader(bytes.NewReader(data), false)
	require.NoError(t, r.Preamble())
	_, _, riter, _, err := r.AsDirect()
	require.NoError(t, err)
	drainInts(t, riter)

	anc := r.Ancillary()
	require.NotNil(t, anc.Gamma)
	assert.Equal(t, gamma, *anc.Gamma)
	assert.Equal(t, phys, anc.Physical)
	assert.Equal(t, tm, anc.Time)
	require.Len(t, anc.Text, 1)
	assert.Equal(t, "hand-written metadata", anc.Text[0].Text)
}

func TestReader_TruncatedStream(t *testing.T) {
	rows := gradientRows(4, 4, 1, 255)
	data := writePNG(t, Config{Width: 4, Height: 4, BitDepth: 8, ColourType: Greyscale}, rows)

	r := NewReader(bytes.NewReader(data[:len(data)-20]), false)
	_, _, riter, _, err := r.AsDirect()
	if err == nil {
		_, err = drainAll(riter)
	}
	require.Error(t, err)
}

func drainAll(rows *RowIter[[]int]) ([][]int, error) {
	var got [][]int
	for {
		row, err := rows.Next()
		if err == io.EOF {
			return got, nil
		}
		if err != nil {
			return got, err
		}
		got = append(got, row)
	}
}

func TestWriter_RefusesPaletteWithoutPalette(t *testing.T) {
	_, err := NewWriter(Config{Width: 1, Height: 1, BitDepth: 8, ColourType: PaletteColour})
	require.Error(t, err)
	assert.True(t, Is(err, KindPaletteRequired))
}

func TestWriter_RefusesRowLengthMismatch(t *testing.T) {
	w, err := NewWriter(Config{Width: 2, Height: 1, BitDepth: 8, ColourType: TrueColour})
	require.NoError(t, err)
	iter := NewRowIter(func() ([]int, error) {
		return []int{1, 2, 3}, nil // wrong length, and never terminates with io.EOF either
	})
	var buf bytes.Buffer
	err = w.Write(&buf, iter)
	require.Error(t, err)
	assert.True(t, Is(err, KindRowLengthMismatch))
}

func TestRoundTrip_FixedFilterType(t *testing.T) {
	rows := gradientRows(5, 4, 1, 255)
	ft := FilterNone
	cfg := Config{Width: 5, Height: 4, BitDepth: 8, ColourType: Greyscale, FilterType: &ft}
	data := writePNG(t, cfg, rows)

	r := NewReader(bytes.NewReader(data), false)
	_, _, riter, _, err := r.AsDirect()
	require.NoError(t, err)
	got := drainInts(t, riter)
	assert.Equal(t, rows, got)
}

func TestRoundTrip_FixedFilterType_UpAndPaeth(t *testing.T) {
	rows := gradientRows(9, 6, 3, 255)
	for _, ft := range []FilterType{FilterUp, FilterPaeth, FilterSub, FilterAverage} {
		ft := ft
		cfg := Config{Width: 9, Height: 6, BitDepth: 8, ColourType: TrueColour, FilterType: &ft}
		data := writePNG(t, cfg, rows)

		r := NewReader(bytes.NewReader(data), false)
		_, _, riter, _, err := r.AsDirect()
		require.NoError(t, err)
		got := drainInts(t, riter)
		assert.Equal(t, rows, got)
	}
}

func TestWriter_RejectsInvalidFixedFilterType(t *testing.T) {
	bad := FilterType(99)
	_, err := NewWriter(Config{Width: 1, Height: 1, BitDepth: 8, ColourType: Greyscale, FilterType: &bad})
	require.Error(t, err)
	assert.True(t, Is(err, KindBadConfig))
}

func TestWriter_WritePasses_RoundTrip(t *testing.T) {
	width, height, planes := 13, 11, 3
	full := gradientRows(width, height, planes, 255)
	flat := make([]int, 0, width*height*planes)
	for _, row := range full {
		flat = append(flat, row...)
	}

	w, err := NewWriter(Config{Width: width, Height: height, BitDepth: 8, ColourType: TrueColour, Interlace: InterlaceAdam7})
	require.NoError(t, err)

	var passes [7]*RowIter[[]int]
	for i, p := range adam7.Passes {
		p := p
		pw, ph := p.Dims(width, height)
		j := 0
		passes[i] = NewRowIter(func() ([]int, error) {
			if j >= ph {
				return nil, io.EOF
			}
			row := adam7.Interlace(flat, width, planes, p, j, pw)
			j++
			return row, nil
		})
	}

	var buf bytes.Buffer
	require.NoError(t, w.WritePasses(&buf, passes))

	r := NewReader(bytes.NewReader(buf.Bytes()), false)
	_, _, riter, info, err := r.AsDirect()
	require.NoError(t, err)
	assert.Equal(t, InterlaceAdam7, info.Interlace)
	got := drainInts(t, riter)
	assert.Equal(t, full, got)
}

func TestAsRGB_RefusesAlphaSource(t *testing.T) {
	rows := gradientRows(2, 2, 4, 255)
	data := writePNG(t, Config{Width: 2, Height: 2, BitDepth: 8, ColourType: TrueColourAlpha}, rows)
	r := NewReader(bytes.NewReader(data), false)
	_, _, _, _, err := r.AsRGB()
	require.Error(t, err)
	assert.True(t, Is(err, KindLossyConversionRefused))
}
