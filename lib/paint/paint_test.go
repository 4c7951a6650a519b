package paint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaint(t *testing.T) {
	testcases := []struct {
		colour   Colour
		expected string
	}{
		{Red, "\033[31mx\033[0m"},
		{Orange, "\033[38;5;208mx\033[0m"},
		{Yellow, "\033[33mx\033[0m"},
		{Green, "\033[32mx\033[0m"},
		{Blue, "\033[34mx\033[0m"},
		{Indigo, "\033[38;2;75;0;130mx\033[0m"},
		{Violet, "\033[38;2;238;130;238mx\033[0m"},
		{Teal, "\033[38;2;0;128;128mx\033[0m"},
		{Colour(8), "x"},
		{Colour(999), "x"},
		{Colour(-1), "x"},
	}
	for _, tc := range testcases {
		t.Run(tc.colour.String(), func(tt *testing.T) {
			require.Equal(tt, tc.expected, Paint("x", tc.colour))
			require.Equal(tt, tc.expected, NewPainter(tc.colour)("x"))
		})
	}
	require.Equal(t, "\033[31m\033[0m", Paint("", Red))
}

func TestPaintRGB(t *testing.T) {
	require.Equal(t, "\033[38;2;0;255;128mx\033[0m", PaintRGB("x", -10, 300, 128))
	require.Equal(t, "\033[38;2;0;0;0mx\033[0m", PaintRGB("x", 0, 0, 0))
	require.Equal(t, "\033[38;2;255;255;255mx\033[0m", PaintRGB("x", 255, 256, 1<<20))
	require.Equal(t, PaintRGB("abc", 1, 2, 3), NewRGBPainter(1, 2, 3)("abc"))
}

func TestPaintHex(t *testing.T) {
	testcases := []struct {
		hex      string
		expected string
		wantErr  bool
	}{
		{"#FF8000", "\033[38;2;255;128;0mx\033[0m", false},
		{"ff8000", "\033[38;2;255;128;0mx\033[0m", false},
		{"#00ff7F", "\033[38;2;0;255;127mx\033[0m", false},
		{"#000000", "\033[38;2;0;0;0mx\033[0m", false},
		{"", "", true},
		{"#", "", true},
		{"#FFF", "", true},
		{"#FF80000", "", true},
		{"#GG0000", "", true},
		{"0x1234", "", true},
		{"#-12345", "", true},
		{"##FF8000", "", true},
	}
	for _, tc := range testcases {
		t.Run(tc.hex, func(tt *testing.T) {
			res, err := PaintHex("x", tc.hex)
			if tc.wantErr {
				require.ErrorIs(tt, err, ErrPaintInvalidFormat)
				require.Contains(tt, err.Error(), tc.hex)
				_, err = NewHexPainter(tc.hex)
				require.ErrorIs(tt, err, ErrPaintInvalidFormat)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, res)
			p, err := NewHexPainter(tc.hex)
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, p("x"))
		})
	}
}

func TestColour(t *testing.T) {
	require.Equal(t, "red", Red.String())
	require.Equal(t, "teal", Teal.String())
	require.Equal(t, "Colour(42)", Colour(42).String())

	testcases := []struct {
		in     string
		colour Colour
		ok     bool
	}{
		{"red", Red, true},
		{"Indigo", Indigo, true},
		{" TEAL ", Teal, true},
		{"3", Green, true},
		{"8", Colour(8), false},
		{"-1", Colour(-1), false},
		{"pink", _colourMax, false},
	}
	for _, tc := range testcases {
		c, ok := ParseColour(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		require.Equal(t, tc.colour, c, tc.in)
	}
	require.Equal(t, "x", NopPainter("x"))
}
