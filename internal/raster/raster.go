// Package raster turns a QR module grid into a styled RGBA image.
//
// Three strategies are available (classic, glassmorphism-dots and
// pixel-perfect). They share the module loop in Rasterize and differ only in
// how a single module is painted. Each call owns its image exclusively, so
// Rasterize is safe to call from many goroutines at once.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

// Option configures a Rasterize call.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for per-module failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// ModuleSize returns the pixel edge of one module for a grid of n modules on a
// canvas of the given size, or 0 when the grid does not fit.
func ModuleSize(canvasSize, n int) int {
	if canvasSize <= 0 || n <= 0 {
		return 0
	}
	return canvasSize / n
}

// Rasterize renders g with style s into a new CanvasSize×CanvasSize image.
//
// A failure painting one module is logged and the loop moves on. Errors that
// prevent rendering altogether are returned as *RasterizationError.
func Rasterize(g Grid, s Style, opts ...Option) (*image.RGBA, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if g.Size() == 0 {
		return nil, &RasterizationError{Style: s.ID, Err: ErrEmptyGrid}
	}
	if s.CanvasSize <= 0 {
		return nil, &RasterizationError{Style: s.ID, Err: ErrInvalidCanvas}
	}
	ms := ModuleSize(s.CanvasSize, g.Size())
	if ms <= 0 {
		return nil, &RasterizationError{
			Style: s.ID,
			Err:   fmt.Errorf("%w: %d modules on %dpx", ErrModuleTooSmall, g.Size(), s.CanvasSize),
		}
	}

	strategy, err := newStrategy(s, ms)
	if err != nil {
		return nil, &RasterizationError{Style: s.ID, Err: err}
	}

	c := newCanvas(s.CanvasSize, ms)
	c.fill(strategy.Background())

	failed := 0
	for my := 0; my < g.Size(); my++ {
		for mx := 0; mx < g.Size(); mx++ {
			if err := paintModule(strategy, c, g, mx, my); err != nil {
				failed++
				o.logger.Warn("module skipped",
					slog.String("style", string(s.ID)),
					slog.Int("x", mx),
					slog.Int("y", my),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	if f, ok := strategy.(finisher); ok {
		f.Finish(c)
	}
	if failed > 0 {
		o.logger.Warn("rasterized with skipped modules",
			slog.String("style", string(s.ID)),
			slog.Int("failed", failed),
		)
	}
	return c.img, nil
}

func paintModule(st Strategy, c *canvas, g Grid, mx, my int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrModulePanic, r)
		}
	}()
	return st.Paint(c, g, mx, my)
}

// Native renders g at one pixel per module without any styling. It is the
// last resort when the grid does not fit the requested canvas.
func Native(g Grid, dark, light color.RGBA, transparent bool) *image.RGBA {
	n := g.Size()
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	if !transparent {
		draw.Draw(img, img.Bounds(), &image.Uniform{C: light}, image.Point{}, draw.Src)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if g.Dark(x, y) {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}

// ScaleNearest resizes src to size×size with nearest-neighbour sampling, which
// keeps module edges sharp. A source already at that size is copied as is.
func ScaleNearest(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if b := src.Bounds(); b.Dx() == size && b.Dy() == size {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
