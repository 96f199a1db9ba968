package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// Type is the detected format of an uploaded logo.
type Type string

const (
	TypePNG  Type = "png"
	TypeJPEG Type = "jpeg"
	TypeSVG  Type = "svg"
)

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes int64 = 2 << 20

// MaxDimension bounds either edge of a raster logo. A few kilobytes of png
// can declare a canvas far too large to decode.
const MaxDimension = 4096

// ReadUpload reads at most max bytes from the uploaded file and checks its type.
func ReadUpload(fh *multipart.FileHeader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	if fh.Size > max {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, fh.Size, max)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: limit %d", ErrTooLarge, max)
	}
	typ, err := Sniff(data, fh.Filename)
	if err != nil {
		return nil, err
	}
	if typ != TypeSVG {
		// An unreadable header is left to Decode, which drops the logo.
		if err := CheckDimensions(data); errors.Is(err, ErrTooLarge) {
			return nil, err
		}
	}
	return data, nil
}

// CheckDimensions reads only the png or jpeg header and rejects images whose
// width or height exceeds MaxDimension.
func CheckDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d pixels, limit %dx%d", ErrTooLarge, cfg.Width, cfg.Height, MaxDimension, MaxDimension)
	}
	return nil
}

// Sniff checks that the file name and the leading bytes agree on one of the
// accepted formats.
func Sniff(data []byte, filename string) (Type, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	detected := http.DetectContentType(data)

	switch {
	case ext == ".png" && detected == "image/png":
		return TypePNG, nil
	case (ext == ".jpg" || ext == ".jpeg") && detected == "image/jpeg":
		return TypeJPEG, nil
	case ext == ".svg" && looksLikeSVG(data):
		return TypeSVG, nil
	}
	return "", fmt.Errorf("%w: %q detected as %s", ErrUnsupportedType, filename, detected)
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}
