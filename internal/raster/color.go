package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	// Black is the default dark module color.
	Black = color.RGBA{0, 0, 0, 255}
	// White is the default light module and background color.
	White = color.RGBA{255, 255, 255, 255}
)

// ParseHex parses a #RRGGBB (or RRGGBB) color into an opaque RGBA.
func ParseHex(s string) (color.RGBA, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, err1 := strconv.ParseUint(v[0:2], 16, 8)
	g, err2 := strconv.ParseUint(v[2:4], 16, 8)
	b, err3 := strconv.ParseUint(v[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}, nil
}

// ParseHexOr parses s and returns def when s is empty or malformed.
func ParseHexOr(s string, def color.RGBA) color.RGBA {
	if strings.TrimSpace(s) == "" {
		return def
	}
	c, err := ParseHex(s)
	if err != nil {
		return def
	}
	return c
}

// Hex formats an RGBA as #rrggbb, ignoring alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luminance returns the perceived brightness of c on a 0..255 scale.
func Luminance(c color.RGBA) float64 {
	return (float64(c.R)*299 + float64(c.G)*587 + float64(c.B)*114) / 1000
}

// IsLightColor reports whether c is too bright to read as a foreground on white.
func IsLightColor(c color.RGBA) bool {
	return Luminance(c) > 200
}

// Invert returns the RGB complement of c with the same alpha.
func Invert(c color.RGBA) color.RGBA {
	return color.RGBA{255 - c.R, 255 - c.G, 255 - c.B, c.A}
}

// blendOver composites a non-premultiplied src over a premultiplied dst pixel.
func blendOver(dst color.RGBA, src color.NRGBA) color.RGBA {
	a := uint32(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: uint8((a*255 + uint32(dst.A)*inv) / 255),
	}
}
