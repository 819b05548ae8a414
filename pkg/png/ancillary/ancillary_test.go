package ancillary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drj11/pngcodec/pkg/png/imgmeta"
)

func TestGAMA_RoundTrip(t *testing.T) {
	got, err := ParseGAMA(SerializeGAMA(45455))
	require.NoError(t, err)
	assert.Equal(t, uint32(45455), got)
}

func TestCHRM_RoundTrip(t *testing.T) {
	c := &imgmeta.Chromaticities{WhiteX: 31270, WhiteY: 32900, RedX: 64000, RedY: 33000, GreenX: 30000, GreenY: 60000, BlueX: 15000, BlueY: 6000}
	got, err := ParseCHRM(SerializeCHRM(c))
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSBIT_WrongLength(t *testing.T) {
	_, err := ParseSBIT([]byte{1, 2}, 3)
	require.Error(t, err)
}

func TestBKGD_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		ct       imgmeta.ColourType
		bitdepth int
		vals     []int
	}{
		{"Palette", imgmeta.PaletteColour, 8, []int{3}},
		{"Greyscale8", imgmeta.Greyscale, 8, []int{200}},
		{"Greyscale16", imgmeta.Greyscale, 16, []int{40000}},
		{"TrueColour8", imgmeta.TrueColour, 8, []int{1, 2, 3}},
		{"TrueColour16", imgmeta.TrueColour, 16, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := SerializeBKGD(tt.vals, tt.ct, tt.bitdepth)
			got, err := ParseBKGD(data, tt.ct, tt.bitdepth)
			require.NoError(t, err)
			assert.Equal(t, tt.vals, got)
		})
	}
}

func TestTRNS_PaletteAlpha(t *testing.T) {
	trns := &imgmeta.Transparency{PaletteAlpha: []uint8{255, 0, 128}}
	data := SerializeTRNS(trns, imgmeta.PaletteColour, 8)
	got, err := ParseTRNS(data, imgmeta.PaletteColour, 8, 5)
	require.NoError(t, err)
	assert.Equal(t, trns, got)
}

func TestTRNS_SingleColour(t *testing.T) {
	trns := &imgmeta.Transparency{Colour: []int{1, 2, 3}}
	data := SerializeTRNS(trns, imgmeta.TrueColour, 8)
	got, err := ParseTRNS(data, imgmeta.TrueColour, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, trns, got)
}

func TestTRNS_RejectsAlphaColourType(t *testing.T) {
	_, err := ParseTRNS([]byte{1, 2, 3}, imgmeta.TrueColourAlpha, 8, 0)
	require.Error(t, err)
}

func TestPHYS_RoundTrip(t *testing.T) {
	p := &imgmeta.Physical{PixelsPerUnitX: 2835, PixelsPerUnitY: 2835, UnitIsMeter: true}
	got, err := ParsePHYS(SerializePHYS(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTIME_RoundTrip(t *testing.T) {
	tm := &imgmeta.Time{Year: 2026, Month: 8, Day: 6, Hour: 12, Minute: 30, Second: 45}
	got, err := ParseTIME(SerializeTIME(tm))
	require.NoError(t, err)
	assert.Equal(t, tm, got)
}

func TestTEXT_RoundTrip(t *testing.T) {
	rec := imgmeta.TextRecord{Keyword: "Title", Text: "a small PNG"}
	got, err := ParseTEXT(SerializeTEXT(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestZTXT_RoundTrip(t *testing.T) {
	rec := imgmeta.TextRecord{Keyword: "Comment", Text: "repeated repeated repeated text", Compressed: true}
	data, err := SerializeZTXT(rec)
	require.NoError(t, err)
	got, err := ParseZTXT(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestITXT_RoundTrip_Plain(t *testing.T) {
	rec := imgmeta.TextRecord{Keyword: "Title", International: true, LanguageTag: "en", TranslatedKeyword: "Titre", Text: "hello"}
	data, err := SerializeITXT(rec)
	require.NoError(t, err)
	got, err := ParseITXT(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestITXT_RoundTrip_Compressed(t *testing.T) {
	rec := imgmeta.TextRecord{
		Keyword: "Description", International: true, Compressed: true,
		LanguageTag: "fr", TranslatedKeyword: "Description", Text: "bonjour bonjour bonjour bonjour",
	}
	data, err := SerializeITXT(rec)
	require.NoError(t, err)
	got, err := ParseITXT(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestICCP_RoundTrip(t *testing.T) {
	p := &imgmeta.ICCPProfile{Name: "sRGB IEC61966-2.1", Profile: []byte("pretend-icc-bytes-pretend-icc-bytes")}
	data, err := SerializeICCP(p)
	require.NoError(t, err)
	got, err := ParseICCP(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSRGB_RoundTrip(t *testing.T) {
	got, err := ParseSRGB(SerializeSRGB(1))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), got)
}
