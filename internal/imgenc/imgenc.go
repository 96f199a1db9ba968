// Package imgenc serializes rendered images as PNG or JPEG.
package imgenc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrEncoding is returned when an image cannot be serialized.
	ErrEncoding = errors.New("image encoding failed")
	// ErrUnknownFormat is returned for a format outside png and jpg.
	ErrUnknownFormat = errors.New("unknown image format")
)

// JPEGQuality is the quality used for every JPEG.
const JPEGQuality = 92

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// ParseFormat accepts png, jpg or jpeg. Empty selects png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Ext returns the file extension of f including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// Encode serializes img in format f. JPEG has no alpha channel, so the
// image is first flattened onto matte.
func Encode(img image.Image, f Format, matte color.Color) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case PNG, "":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncoding, err)
		}
	case JPEG:
		if err := imaging.Encode(&buf, Flatten(img, matte), imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncoding, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque matte color.
func Flatten(img image.Image, matte color.Color) *image.NRGBA {
	if matte == nil {
		matte = color.White
	}
	b := img.Bounds()
	out := imaging.New(b.Dx(), b.Dy(), matte)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// DataURL wraps encoded bytes in a base64 data URL.
func DataURL(data []byte, f Format) string {
	return "data:" + f.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(data)
}
