package qrgen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	skip2 "github.com/skip2/go-qrcode"

	"github.com/cristianadrielbraun/qrstudio/internal/raster"
)

// Skip2 encodes with github.com/skip2/go-qrcode.
type Skip2 struct{}

func (Skip2) Name() string { return "skip2" }

func skip2Level(l Level) skip2.RecoveryLevel {
	switch l {
	case LevelLow:
		return skip2.Low
	case LevelQuart:
		return skip2.High
	case LevelHigh:
		return skip2.Highest
	default:
		return skip2.Medium
	}
}

func (s Skip2) symbol(text string, level Level) (*skip2.QRCode, error) {
	q, err := skip2.New(text, skip2Level(level))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	q.DisableBorder = true
	return q, nil
}

func (s Skip2) Encode(text string, level Level) (raster.Grid, error) {
	q, err := s.symbol(text, level)
	if err != nil {
		return raster.Grid{}, err
	}
	return withQuietZone(q.Bitmap(), QuietZone)
}

// Base draws the symbol at one pixel per module and pads it with the quiet zone.
func (s Skip2) Base(text string, level Level, dark, light color.RGBA) (image.Image, error) {
	q, err := s.symbol(text, level)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = dark
	q.BackgroundColor = light
	sym := q.Image(-1)

	n := sym.Bounds().Dx() + 2*QuietZone
	out := image.NewRGBA(image.Rect(0, 0, n, n))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: light}, image.Point{}, draw.Src)
	draw.Draw(out, sym.Bounds().Add(image.Pt(QuietZone, QuietZone)), sym, sym.Bounds().Min, draw.Src)
	return out, nil
}
