package raster

import (
	"image/color"
	"math"
)

// insideRoundedRect reports whether (x, y) lies in the rounded rectangle with
// inclusive bounds and corner radius r.
func insideRoundedRect(x, y, left, top, right, bottom, r int) bool {
	if left > right || top > bottom {
		return false
	}
	if r <= 0 {
		return x >= left && x <= right && y >= top && y <= bottom
	}
	// straight bands
	if x >= left+r && x <= right-r && y >= top && y <= bottom {
		return true
	}
	if y >= top+r && y <= bottom-r && x >= left && x <= right {
		return true
	}
	// corner circles
	for _, corner := range [4][2]int{
		{left + r, top + r},
		{right - r, top + r},
		{left + r, bottom - r},
		{right - r, bottom - r},
	} {
		dx, dy := x-corner[0], y-corner[1]
		if dx*dx+dy*dy <= r*r {
			return true
		}
	}
	return false
}

// drawRoundedFrame paints a band of the given width along the canvas edge with
// rounded outer and inner corners. Pixels outside the outer curve are left untouched.
func drawRoundedFrame(c *canvas, width int, col color.RGBA) {
	if width <= 0 {
		return
	}
	innerR := int(math.Max(2, math.Round(float64(width)*0.55)))
	outerR := innerR + width
	last := c.size - 1
	for y := 0; y < c.size; y++ {
		for x := 0; x < c.size; x++ {
			if !insideRoundedRect(x, y, 0, 0, last, last, outerR) {
				continue
			}
			if insideRoundedRect(x, y, width, width, last-width, last-width, innerR) {
				continue
			}
			c.set(x, y, col)
		}
	}
}
