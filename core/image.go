package core

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// PlaceholderSize is the edge length of the placeholder bitmap.
const PlaceholderSize = 224

// PlaceholderImage returns a fresh all-black RGB bitmap of PlaceholderSize².
// It stands in for "no image" because the multimodal models expect a fixed
// input shape of exactly one image per prompt.
func PlaceholderImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

// ImageOrPlaceholder returns img, or the placeholder when img is nil.
func ImageOrPlaceholder(img image.Image) image.Image {
	if img == nil {
		return PlaceholderImage()
	}
	return img
}

// IsPlaceholder reports whether img has the placeholder geometry and is entirely black.
func IsPlaceholder(img image.Image) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	if b.Dx() != PlaceholderSize || b.Dy() != PlaceholderSize {
		return false
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0 || g != 0 || bl != 0 {
				return false
			}
		}
	}
	return true
}

// DescribeImage renders the short textual image slot used inside prompts.
// Only a nil image counts as absent; uploaded pixels are never inspected.
func DescribeImage(img image.Image) string {
	if img == nil {
		return "No image provided"
	}
	b := img.Bounds()
	return fmt.Sprintf("attached image (%dx%d RGB)", b.Dx(), b.Dy())
}
