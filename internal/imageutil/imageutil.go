// Package imageutil converts uploaded image bytes into RGB bitmaps and back.
package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrInvalidImage is returned when uploaded bytes cannot be decoded.
var ErrInvalidImage = errors.New("invalid image uploaded")

// DefaultMaxPixels bounds the declared width*height of a decoded image.
const DefaultMaxPixels int64 = 25_000_000

// DecodeOptions configure DecodeRGB.
type DecodeOptions struct {
	// MaxPixels rejects images whose header declares more pixels. Zero or
	// negative disables the check.
	MaxPixels int64
}

// WithMaxPixels overrides DefaultMaxPixels.
func WithMaxPixels(n int64) func(o *DecodeOptions) {
	return func(o *DecodeOptions) { o.MaxPixels = n }
}

// DecodeRGB decodes data with any registered format and flattens it onto an
// opaque RGBA canvas, dropping palette and alpha information. The header is
// checked against MaxPixels before any pixel data is allocated.
func DecodeRGB(data []byte, optFns ...func(o *DecodeOptions)) (image.Image, error) {
	opts := DecodeOptions{MaxPixels: DefaultMaxPixels}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(data) == 0 {
		return nil, ErrInvalidImage
	}

	if mime := SniffMIME(data); !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d image", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	if opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, opts.MaxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return ToRGB(src), nil
}

// ToRGB flattens img onto an opaque black canvas with origin (0,0).
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SniffMIME reports the content type of encoded image bytes.
func SniffMIME(data []byte) string {
	return http.DetectContentType(data)
}
