package imgenc_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstudio/internal/imgenc"
)

func halfTransparent() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]imgenc.Format{"": imgenc.PNG, "PNG": imgenc.PNG, "jpg": imgenc.JPEG, "jpeg": imgenc.JPEG} {
		got, err := imgenc.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := imgenc.ParseFormat("webp")
	assert.ErrorIs(t, err, imgenc.ErrUnknownFormat)

	assert.Equal(t, "image/jpeg", imgenc.JPEG.ContentType())
	assert.Equal(t, ".png", imgenc.PNG.Ext())
}

func TestEncodePNGKeepsAlpha(t *testing.T) {
	t.Parallel()

	data, err := imgenc.Encode(halfTransparent(), imgenc.PNG, nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, _, _, a := img.At(12, 3).RGBA()
	assert.Equal(t, uint32(0), a)
	_, _, _, a = img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeJPEGFlattens(t *testing.T) {
	t.Parallel()

	data, err := imgenc.Encode(halfTransparent(), imgenc.JPEG, color.White)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, _, _, _ := img.At(13, 8).RGBA()
	assert.Greater(t, r>>8, uint32(230), "transparent area becomes the matte")
	r, _, _, _ = img.At(2, 8).RGBA()
	assert.Less(t, r>>8, uint32(25))
}

func TestEncodeUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := imgenc.Encode(halfTransparent(), imgenc.Format("bmp"), nil)
	assert.ErrorIs(t, err, imgenc.ErrUnknownFormat)
}

func TestDataURL(t *testing.T) {
	t.Parallel()

	data, err := imgenc.Encode(halfTransparent(), imgenc.PNG, nil)
	require.NoError(t, err)

	u := imgenc.DataURL(data, imgenc.PNG)
	require.True(t, strings.HasPrefix(u, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}
