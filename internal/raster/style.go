package raster

import (
	"fmt"
	"image/color"
	"strings"
)

// StyleID selects a render strategy.
type StyleID string

const (
	StyleClassic           StyleID = "classic"
	StyleGlassmorphismDots StyleID = "glassmorphism-dots"
	StylePixelPerfect      StyleID = "pixel-perfect"
)

// ParseStyleID maps a form value to a StyleID; empty selects classic.
func ParseStyleID(s string) (StyleID, error) {
	switch id := StyleID(strings.ToLower(strings.TrimSpace(s))); id {
	case "":
		return StyleClassic, nil
	case StyleClassic, StyleGlassmorphismDots, StylePixelPerfect:
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

// WhiteMode decides how a light foreground on a transparent background is kept readable.
type WhiteMode string

const (
	WhiteModeInvert           WhiteMode = "invert-colors"
	WhiteModeDarkBackground   WhiteMode = "dark-background"
	WhiteModeOutlined         WhiteMode = "outlined"
	WhiteModeBorder           WhiteMode = "with-border"
	WhiteModeForceTransparent WhiteMode = "force-transparent"
)

// ParseWhiteMode maps a form value to a WhiteMode; empty selects invert-colors.
func ParseWhiteMode(s string) (WhiteMode, error) {
	switch m := WhiteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return WhiteModeInvert, nil
	case WhiteModeInvert, WhiteModeDarkBackground, WhiteModeOutlined, WhiteModeBorder, WhiteModeForceTransparent:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWhiteMode, s)
	}
}

// DefaultCanvasSize is the output edge length in pixels.
const DefaultCanvasSize = 512

// Style is the full set of render parameters for one image.
type Style struct {
	ID          StyleID
	Dark        color.RGBA
	Light       color.RGBA
	Transparent bool
	CanvasSize  int
	WhiteMode   WhiteMode
}

// DefaultStyle returns black-on-white classic at the default canvas size.
func DefaultStyle() Style {
	return Style{
		ID:         StyleClassic,
		Dark:       Black,
		Light:      White,
		CanvasSize: DefaultCanvasSize,
		WhiteMode:  WhiteModeInvert,
	}
}

// Validate checks the fields that cannot be defaulted.
func (s Style) Validate() error {
	if s.CanvasSize <= 0 {
		return ErrInvalidCanvas
	}
	if _, err := ParseStyleID(string(s.ID)); err != nil {
		return err
	}
	if _, err := ParseWhiteMode(string(s.WhiteMode)); err != nil {
		return err
	}
	return nil
}

// NeedsWhiteMode reports whether the white-QR override applies to this style.
func (s Style) NeedsWhiteMode() bool {
	return s.Transparent && IsLightColor(s.Dark)
}

// Background returns the color used for the canvas outside the modules,
// which is also the flattening color for formats without alpha.
func (s Style) Background() color.RGBA {
	switch s.ID {
	case StyleGlassmorphismDots:
		return glassBackground
	case StylePixelPerfect:
		return pixelBackground
	}
	if s.Transparent {
		if s.NeedsWhiteMode() && s.WhiteMode == WhiteModeDarkBackground {
			return whiteModeBackground
		}
		return color.RGBA{}
	}
	return s.Light
}
