package paint

import (
	"strconv"
	"strings"
)

type Colour int

const (
	Red Colour = iota
	Orange
	Yellow
	Green
	Blue
	Indigo
	Violet
	Teal
	_colourMax
)

func (c Colour) String() string {
	switch c {
	case Red:
		return "red"
	case Orange:
		return "orange"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Indigo:
		return "indigo"
	case Violet:
		return "violet"
	case Teal:
		return "teal"
	default:
	}
	return "Colour(" + strconv.Itoa(int(c)) + ")"
}

// ParseColour accepts a colour name case-insensitively or its index.
func ParseColour(name string) (Colour, bool) {
	if idx, err := strconv.Atoi(name); err == nil {
		return Colour(idx), idx >= int(Red) && idx < int(_colourMax)
	}
	for c := Red; c < _colourMax; c++ {
		if strings.EqualFold(c.String(), strings.TrimSpace(name)) {
			return c, true
		}
	}
	return _colourMax, false
}

// escape codes, indexed by Colour
var colourCodes = [_colourMax]string{
	Red:    "\033[31m",
	Orange: "\033[38;5;208m",
	Yellow: "\033[33m",
	Green:  "\033[32m",
	Blue:   "\033[34m",
	Indigo: "\033[38;2;75;0;130m",
	Violet: "\033[38;2;238;130;238m",
	Teal:   "\033[38;2;0;128;128m",
}
