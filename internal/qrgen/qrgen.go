// Package qrgen wraps the QR symbol libraries behind a small Encoder
// interface that yields a raster.Grid with a light quiet zone already added.
package qrgen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/cristianadrielbraun/qrstudio/internal/raster"
)

// QuietZone is the light margin, in modules, added around every symbol.
const QuietZone = 2

var (
	// ErrEncode is returned when the payload cannot be turned into a symbol,
	// usually because it exceeds the capacity of the largest version.
	ErrEncode = errors.New("qr symbol encoding failed")
	// ErrUnknownEncoder is returned by New for an unsupported backend name.
	ErrUnknownEncoder = errors.New("unknown qr encoder")
	// ErrInvalidLevel is returned for an error-correction level outside L, M, Q, H.
	ErrInvalidLevel = errors.New("invalid error correction level")
)

// Level is a QR error-correction level.
type Level string

const (
	LevelAuto  Level = ""
	LevelLow   Level = "L"
	LevelMed   Level = "M"
	LevelQuart Level = "Q"
	LevelHigh  Level = "H"
)

// ParseLevel accepts L, M, Q or H in any case. Empty returns LevelAuto.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelAuto, LevelLow, LevelMed, LevelQuart, LevelHigh:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Resolve picks the concrete level for a request. An explicit level wins;
// otherwise a logo needs H to survive the covered center, and M is used elsewhere.
func (l Level) Resolve(withLogo bool) Level {
	if l != LevelAuto {
		return l
	}
	if withLogo {
		return LevelHigh
	}
	return LevelMed
}

// Encoder produces the module grid for a payload.
type Encoder interface {
	Name() string
	Encode(text string, level Level) (raster.Grid, error)
}

// BaseRenderer is implemented by encoders that can also draw an unstyled
// symbol at one pixel per module, quiet zone included.
type BaseRenderer interface {
	Base(text string, level Level, dark, light color.RGBA) (image.Image, error)
}

// New returns the encoder registered under name. Empty selects yeqown.
func New(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yeqown":
		return Yeqown{}, nil
	case "skip2":
		return Skip2{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoder, name)
	}
}

// withQuietZone surrounds the symbol rows with margin light modules on every side.
func withQuietZone(symbol [][]bool, margin int) (raster.Grid, error) {
	n := len(symbol)
	if n == 0 {
		return raster.Grid{}, raster.ErrEmptyGrid
	}
	size := n + 2*margin
	rows := make([][]bool, size)
	for y := range rows {
		rows[y] = make([]bool, size)
	}
	for y, row := range symbol {
		if len(row) != n {
			return raster.Grid{}, fmt.Errorf("%w: row %d has %d modules", raster.ErrNotSquare, y, len(row))
		}
		copy(rows[y+margin][margin:], row)
	}
	return raster.NewGrid(rows)
}
