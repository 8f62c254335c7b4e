package imageutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	src.Set(11, 11, color.NRGBA{R: 255, A: 255})
	src.Set(12, 11, color.NRGBA{G: 255, A: 0})

	data, err := EncodePNG(src)
	require.NoError(t, err)
	assert.Equal(t, "image/png", SniffMIME(data))

	img, err := DecodeRGB(data)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.Equal(t, uint32(0xffff), a)

	// fully transparent pixels flatten onto black
	_, g, _, a = img.At(2, 1).RGBA()
	assert.Zero(t, g)
	assert.Equal(t, uint32(0xffff), a)
}

func TestDecodeRGBInvalid(t *testing.T) {
	_, err := DecodeRGB(nil)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodeRGB([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h 8-bit RGB
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	return buf.Bytes()
}

func TestDecodeRGBRejectsOversizedDimensions(t *testing.T) {
	data := pngHeader(20000, 20000)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 20000, cfg.Width)

	_, err = DecodeRGB(data)
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "20000x20000 exceeds")

	_, err = DecodeRGB(pngHeader(100, 100), WithMaxPixels(99*100))
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "100x100 exceeds 9900 pixels")
}

func TestDecodeRGBMaxPixelsBoundary(t *testing.T) {
	data, err := EncodePNG(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	require.NoError(t, err)

	img, err := DecodeRGB(data, WithMaxPixels(100))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())

	_, err = DecodeRGB(data, WithMaxPixels(99))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodeRGB(data, WithMaxPixels(0))
	assert.NoError(t, err)
}

func TestDecodeRGBRejectsNonImageContent(t *testing.T) {
	_, err := DecodeRGB([]byte(`{"image": "not really"}`))
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "unsupported content type text/plain")
}
