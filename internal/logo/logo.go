// Package logo decodes uploaded logos and places them at the center of a
// rendered QR image on a white rounded backing square.
package logo

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const (
	// Padding is the white margin between the logo and its backing square.
	Padding = 10
	// cornerRatio sets the backing square corner radius relative to its side.
	cornerRatio = 0.12
)

// Logo is a decoded logo, either a raster image or a parsed SVG icon.
type Logo struct {
	img image.Image
	svg *oksvg.SvgIcon
}

// Decode parses data as SVG when it looks like one and as png or jpeg otherwise.
func Decode(data []byte) (*Logo, error) {
	if len(data) == 0 {
		return nil, &Error{Op: "decode", Err: ErrDecode}
	}
	if looksLikeSVG(data) {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
		if err != nil {
			return nil, &Error{Op: "decode", Err: fmt.Errorf("%w: %v", ErrDecode, err)}
		}
		if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
			return nil, &Error{Op: "decode", Err: fmt.Errorf("%w: svg has no size", ErrDecode)}
		}
		return &Logo{svg: icon}, nil
	}
	if err := CheckDimensions(data); err != nil {
		return nil, &Error{Op: "decode", Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Op: "decode", Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return &Logo{img: img}, nil
}

// Size returns the natural dimensions of the logo.
func (l *Logo) Size() (int, int) {
	if l.svg != nil {
		return int(l.svg.ViewBox.W), int(l.svg.ViewBox.H)
	}
	b := l.img.Bounds()
	return b.Dx(), b.Dy()
}

// TargetWidth is the largest logo edge for a canvas of the given size.
func TargetWidth(canvasSize int) int {
	return canvasSize / 5
}

// Fit scales the logo so its longer edge equals target, keeping the aspect ratio.
func (l *Logo) Fit(target int) (image.Image, error) {
	if target <= 0 {
		return nil, &Error{Op: "fit", Err: fmt.Errorf("target size %d", target)}
	}
	if l.svg != nil {
		return l.rasterizeSVG(target), nil
	}
	b := l.img.Bounds()
	if b.Dx() >= b.Dy() {
		return imaging.Resize(l.img, target, 0, imaging.Lanczos), nil
	}
	return imaging.Resize(l.img, 0, target, imaging.Lanczos), nil
}

func (l *Logo) rasterizeSVG(target int) image.Image {
	w, h := l.svg.ViewBox.W, l.svg.ViewBox.H
	scale := float64(target) / max(w, h)
	outW := max(1, int(w*scale))
	outH := max(1, int(h*scale))

	l.svg.SetTarget(0, 0, float64(outW), float64(outH))
	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	dasher := rasterx.NewDasher(outW, outH, scanner)
	l.svg.Draw(dasher, 1.0)
	return img
}

// Composite returns a copy of base with the logo centered on a white rounded
// square. base is not modified.
func Composite(base *image.RGBA, l *Logo) (*image.RGBA, error) {
	canvas := base.Bounds().Dx()
	fitted, err := l.Fit(TargetWidth(canvas))
	if err != nil {
		return nil, err
	}
	fb := fitted.Bounds()
	w, h := fb.Dx(), fb.Dy()
	side := max(w, h) + 2*Padding

	dc := gg.NewContext(side, side)
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(0, 0, float64(side), float64(side), float64(side)*cornerRatio)
	dc.Fill()
	dc.DrawImage(fitted, (side-w)/2, (side-h)/2)

	out := image.NewRGBA(base.Bounds())
	draw.Draw(out, out.Bounds(), base, base.Bounds().Min, draw.Src)

	origin := base.Bounds().Min.Add(image.Pt((canvas-side)/2, (base.Bounds().Dy()-side)/2))
	draw.Draw(out, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(side, side))}, dc.Image(), image.Point{}, draw.Over)
	return out, nil
}
