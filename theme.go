package chip8

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
)

var ErrInvalidTheme = errors.New("invalid theme color, expected #rrggbb")

// Theme are the colors used to paint unlit and lit cells
type Theme struct {
	Off, On color.RGBA
}

var DefaultTheme = Theme{
	Off: color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF},
	On:  color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
}

var hexColorRe = regexp.MustCompile(`(?i)^#([0-9a-f]{2})([0-9a-f]{2})([0-9a-f]{2})$`)

// ParseHexColor parses an opaque #rrggbb color, case insensitive
func ParseHexColor(hex string) (color.RGBA, error) {
	m := hexColorRe.FindStringSubmatch(hex)
	if m == nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidTheme, hex)
	}

	var rgb [3]uint8
	for i, part := range m[1:] {
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidTheme, hex)
		}
		rgb[i] = uint8(v)
	}

	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}, nil
}

func ParseTheme(off, on string) (Theme, error) {
	offColor, err := ParseHexColor(off)
	if err != nil {
		return Theme{}, err
	}
	onColor, err := ParseHexColor(on)
	if err != nil {
		return Theme{}, err
	}

	return Theme{Off: offColor, On: onColor}, nil
}

// Color returns the color of a cell
func (t Theme) Color(lit bool) color.RGBA {
	if lit {
		return t.On
	}
	return t.Off
}

// RGBA paints the screen into a row-major RGBA buffer, 4 bytes per cell
func (t Theme) RGBA(screen Screen) []byte {
	buf := make([]byte, 0, 4*ScreenSize)
	for _, lit := range screen {
		c := t.Color(lit)
		buf = append(buf, c.R, c.G, c.B, c.A)
	}

	return buf
}
