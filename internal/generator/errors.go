package generator

import "errors"

var (
	// ErrTimeout is returned when a render does not finish within the configured timeout.
	ErrTimeout = errors.New("qr generation timed out")
	// ErrEncoding is returned when the final image cannot be serialized.
	ErrEncoding = errors.New("qr image encoding failed")
	// ErrDelivery is returned when the encoded image cannot be stored.
	ErrDelivery = errors.New("qr image could not be stored")
)
