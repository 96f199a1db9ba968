package logo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks an upload that is rejected before any rendering.
	ErrInvalid = errors.New("invalid logo")
	// ErrTooLarge is returned when the upload exceeds the configured size or
	// declares more pixels than MaxDimension allows.
	ErrTooLarge = fmt.Errorf("%w: file too large", ErrInvalid)
	// ErrUnsupportedType is returned for anything other than png, jpeg or svg.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported file type", ErrInvalid)
	// ErrDecode is returned when the bytes cannot be turned into an image.
	ErrDecode = errors.New("logo could not be decoded")
)

// Error reports a logo that passed upload checks but failed later. The
// caller logs it and renders without the logo.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("logo %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
