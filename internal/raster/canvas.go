package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// canvas is the mutable pixel buffer owned by a single Rasterize call.
type canvas struct {
	img        *image.RGBA
	size       int
	moduleSize int
}

func newCanvas(size, moduleSize int) *canvas {
	return &canvas{
		img:        image.NewRGBA(image.Rect(0, 0, size, size)),
		size:       size,
		moduleSize: moduleSize,
	}
}

func (c *canvas) fill(col color.RGBA) {
	if col.A == 0 {
		return // NewRGBA starts fully transparent
	}
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.size && y < c.size
}

// set overwrites one pixel; coordinates off the canvas are skipped.
func (c *canvas) set(x, y int, col color.RGBA) {
	if !c.inside(x, y) {
		return
	}
	c.img.SetRGBA(x, y, col)
}

// blend composites src over the existing pixel; coordinates off the canvas are skipped.
func (c *canvas) blend(x, y int, src color.NRGBA) {
	if !c.inside(x, y) {
		return
	}
	c.img.SetRGBA(x, y, blendOver(c.img.RGBAAt(x, y), src))
}

// fillRect overwrites the w×h rectangle at (x, y), clipped to the canvas.
func (c *canvas) fillRect(x, y, w, h int, col color.RGBA) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			c.set(px, py, col)
		}
	}
}

// block returns the pixel origin of module (mx, my).
func (c *canvas) block(mx, my int) (int, int) {
	return mx * c.moduleSize, my * c.moduleSize
}
