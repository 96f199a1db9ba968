package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGrid is returned when a module grid has no modules.
	ErrEmptyGrid = errors.New("module grid is empty")
	// ErrNotSquare is returned when a module grid row length differs from the row count.
	ErrNotSquare = errors.New("module grid is not square")
	// ErrInvalidCanvas is returned for a non-positive canvas size.
	ErrInvalidCanvas = errors.New("canvas size must be positive")
	// ErrModuleTooSmall is returned when the grid has more modules per side than the canvas has pixels.
	ErrModuleTooSmall = errors.New("grid does not fit the canvas")
	// ErrUnknownStyle is returned for a style id outside the supported set.
	ErrUnknownStyle = errors.New("unknown render style")
	// ErrUnknownWhiteMode is returned for a white-QR mode outside the supported set.
	ErrUnknownWhiteMode = errors.New("unknown white qr mode")
	// ErrInvalidColor is returned when a hex color is not in #RRGGBB form.
	ErrInvalidColor = errors.New("invalid hex color")
	// ErrModulePanic marks a single module that could not be painted.
	ErrModulePanic = errors.New("module paint failed")
)

// RasterizationError reports a style renderer that could not produce an image.
// Callers are expected to fall back to the classic renderer or to the native grid.
type RasterizationError struct {
	Style StyleID
	Err   error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterize %s: %v", e.Style, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }
