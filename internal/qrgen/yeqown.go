package qrgen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/cristianadrielbraun/qrstudio/internal/raster"
)

// Yeqown encodes with github.com/yeqown/go-qrcode/v2.
type Yeqown struct{}

func (Yeqown) Name() string { return "yeqown" }

func yeqownLevel(l Level) qrcode.EncodeOption {
	switch l {
	case LevelLow:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case LevelQuart:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	case LevelHigh:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	default:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	}
}

func (y Yeqown) Encode(text string, level Level) (raster.Grid, error) {
	qrc, err := qrcode.NewWith(text, yeqownLevel(level))
	if err != nil {
		return raster.Grid{}, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	capture := &matrixCapture{}
	if err := qrc.Save(capture); err != nil {
		return raster.Grid{}, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return withQuietZone(capture.rows, QuietZone)
}

// Base draws the symbol through the standard image writer, one pixel per
// module with a QuietZone pixel border.
func (y Yeqown) Base(text string, level Level, dark, light color.RGBA) (image.Image, error) {
	qrc, err := qrcode.NewWith(text, yeqownLevel(level))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	buf := &closeBuffer{}
	writer := standard.NewWithWriter(buf,
		standard.WithQRWidth(1),
		standard.WithBorderWidth(QuietZone),
		standard.WithBgColor(light),
		standard.WithFgColor(dark),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := qrc.Save(writer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	img, _, err := image.Decode(&buf.Buffer)
	if err != nil {
		return nil, fmt.Errorf("decode base image: %w", err)
	}
	return img, nil
}

// matrixCapture is a qrcode.Writer that keeps the module matrix instead of drawing it.
type matrixCapture struct {
	rows [][]bool
}

func (m *matrixCapture) Write(mat qrcode.Matrix) error {
	w, h := mat.Width(), mat.Height()
	if w == 0 || w != h {
		return fmt.Errorf("unexpected matrix %dx%d", w, h)
	}
	m.rows = make([][]bool, h)
	for y := range m.rows {
		m.rows[y] = make([]bool, w)
	}
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		if x >= 0 && y >= 0 && x < w && y < h {
			m.rows[y][x] = v.IsSet()
		}
	})
	return nil
}

func (m *matrixCapture) Close() error { return nil }

// closeBuffer adapts bytes.Buffer to the io.WriteCloser the standard writer expects.
type closeBuffer struct {
	bytes.Buffer
}

func (*closeBuffer) Close() error { return nil }
