package raster

import (
	"fmt"
	"image/color"
	"math"
)

// Strategy paints modules for one render style. Rasterize owns the loop over
// modules; a Strategy only decides what a single module looks like.
type Strategy interface {
	Background() color.RGBA
	Paint(c *canvas, g Grid, mx, my int) error
}

// finisher is implemented by strategies that draw over the whole canvas once
// every module has been painted.
type finisher interface {
	Finish(c *canvas)
}

var (
	glassBackground     = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
	pixelBackground     = color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	pixelLightModule    = color.RGBA{0x14, 0x14, 0x14, 0xff}
	whiteModeBackground = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	outlineColor        = Black

	neonPalette = [3]color.RGBA{
		{0x00, 0xff, 0x88, 0xff},
		{0x00, 0xcc, 0xff, 0xff},
		{0xff, 0x00, 0x80, 0xff},
	}
)

// newStrategy selects the strategy for s. moduleSize is already known to be positive.
func newStrategy(s Style, moduleSize int) (Strategy, error) {
	switch s.ID {
	case StyleClassic, "":
		return newClassic(s), nil
	case StyleGlassmorphismDots:
		radius := int(math.Floor(float64(moduleSize) * 0.4))
		if radius <= 0 {
			return nil, fmt.Errorf("%w: dot radius is zero at module size %d", ErrModuleTooSmall, moduleSize)
		}
		return glassDots{radius: radius}, nil
	case StylePixelPerfect:
		return pixelPerfect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, s.ID)
	}
}

// classic fills dark modules with a flat color over a flat or transparent background.
type classic struct {
	dark    color.RGBA
	bg      color.RGBA
	outline bool
	border  bool
}

func newClassic(s Style) classic {
	cl := classic{dark: s.Dark, bg: s.Background()}
	if !s.NeedsWhiteMode() {
		return cl
	}
	switch s.WhiteMode {
	case WhiteModeInvert, "":
		cl.dark = Invert(s.Dark)
	case WhiteModeOutlined:
		cl.outline = true
	case WhiteModeBorder:
		cl.border = true
	}
	return cl
}

func (cl classic) Background() color.RGBA { return cl.bg }

func (cl classic) Paint(c *canvas, g Grid, mx, my int) error {
	if !g.Dark(mx, my) {
		return nil
	}
	px, py := c.block(mx, my)
	ms := c.moduleSize
	c.fillRect(px, py, ms, ms, cl.dark)
	if !cl.outline {
		return nil
	}
	w := max(1, ms/8)
	if !g.Dark(mx, my-1) {
		c.fillRect(px, py, ms, w, outlineColor)
	}
	if !g.Dark(mx, my+1) {
		c.fillRect(px, py+ms-w, ms, w, outlineColor)
	}
	if !g.Dark(mx-1, my) {
		c.fillRect(px, py, w, ms, outlineColor)
	}
	if !g.Dark(mx+1, my) {
		c.fillRect(px+ms-w, py, w, ms, outlineColor)
	}
	return nil
}

func (cl classic) Finish(c *canvas) {
	if cl.border {
		drawRoundedFrame(c, c.moduleSize, outlineColor)
	}
}

// glassDots draws a soft white dot per dark module over a fixed dark backdrop.
type glassDots struct {
	radius int
}

func (glassDots) Background() color.RGBA { return glassBackground }

func (gd glassDots) Paint(c *canvas, g Grid, mx, my int) error {
	if !g.Dark(mx, my) {
		return nil
	}
	px, py := c.block(mx, my)
	cx := px + c.moduleSize/2
	cy := py + c.moduleSize/2
	r := gd.radius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			alpha, ok := glassAlpha(math.Sqrt(float64(dx*dx+dy*dy)), float64(r))
			if !ok {
				return fmt.Errorf("%w: alpha is not a number at (%d,%d)", ErrModulePanic, cx+dx, cy+dy)
			}
			c.blend(cx+dx, cy+dy, color.NRGBA{255, 255, 255, alpha})
		}
	}
	return nil
}

// glassAlpha fades from 255 at the dot center to 55 at its rim.
func glassAlpha(distance, radius float64) (uint8, bool) {
	a := (1-distance/radius)*200 + 55
	if math.IsNaN(a) {
		return 0, false
	}
	a = math.Floor(a)
	if a < 0 {
		a = 0
	}
	if a > 255 {
		a = 255
	}
	return uint8(a), true
}

// pixelPerfect fills every module: dark ones cycle through a neon palette by
// position, light ones get a gray slightly above the background.
type pixelPerfect struct{}

func (pixelPerfect) Background() color.RGBA { return pixelBackground }

func (pixelPerfect) Paint(c *canvas, g Grid, mx, my int) error {
	col := pixelLightModule
	if g.Dark(mx, my) {
		col = neonPalette[(mx+my)%len(neonPalette)]
	}
	px, py := c.block(mx, my)
	c.fillRect(px, py, c.moduleSize, c.moduleSize, col)
	return nil
}
