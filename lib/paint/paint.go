package paint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var ErrPaintInvalidFormat = errors.New("[paint] invalid format")

const resetCode = "\033[0m"

// Paint wraps text in the escape code of colour. Text is returned
// unchanged for an unknown colour.
func Paint(text string, colour Colour) string {
	if colour < Red || colour >= _colourMax {
		return text
	}
	return colourCodes[colour] + text + resetCode
}

// PaintRGB uses a 24-bit foreground colour, every component is
// clamped into [0, 255].
func PaintRGB(text string, r, g, b int) string {
	r, g, b = lo.Clamp(r, 0, 255), lo.Clamp(g, 0, 255), lo.Clamp(b, 0, 255)
	return "\033[38;2;" +
		strconv.Itoa(r) + ";" +
		strconv.Itoa(g) + ";" +
		strconv.Itoa(b) + "m" +
		text + resetCode
}

// PaintHex accepts "#RRGGBB" or "RRGGBB".
func PaintHex(text, hex string) (string, error) {
	r, g, b, err := ParseHex(hex)
	if err != nil {
		return "", err
	}
	return PaintRGB(text, r, g, b), nil
}

func ParseHex(hex string) (r, g, b int, err error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return 0, 0, 0, fmt.Errorf("hex colour %q, %w", hex, ErrPaintInvalidFormat)
	}
	val, parseErr := strconv.ParseUint(digits, 16, 32)
	if parseErr != nil {
		return 0, 0, 0, fmt.Errorf("hex colour %q, %w", hex, ErrPaintInvalidFormat)
	}
	return int(val>>16) & 0xFF, int(val>>8) & 0xFF, int(val) & 0xFF, nil
}

type Painter func(text string) string

func NewPainter(colour Colour) Painter {
	return func(text string) string {
		return Paint(text, colour)
	}
}

func NewRGBPainter(r, g, b int) Painter {
	return func(text string) string {
		return PaintRGB(text, r, g, b)
	}
}

func NewHexPainter(hex string) (Painter, error) {
	r, g, b, err := ParseHex(hex)
	if err != nil {
		return nil, err
	}
	return NewRGBPainter(r, g, b), nil
}

// NopPainter leaves the text as is.
func NopPainter(text string) string {
	return text
}
