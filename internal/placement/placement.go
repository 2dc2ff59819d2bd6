// Package placement decides where result overlays first appear.
package placement

import (
	"image"

	"github.com/example/tenzor/internal/geom"
)

// BoundingBox returns the smallest rectangle, inclusive of its Max corner,
// covering every pixel whose alpha is non-zero. ok is false when the bitmap
// holds no content.
func BoundingBox(img *image.RGBA) (box image.Rectangle, ok bool) {
	if img == nil {
		return image.Rectangle{}, false
	}
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}

// Center returns the midpoint of the content bounding box. For an empty
// bitmap it returns the zero point and false.
func Center(img *image.RGBA) (geom.Point, bool) {
	box, ok := BoundingBox(img)
	if !ok {
		return geom.Point{}, false
	}
	return geom.Pt(float64(box.Min.X+box.Max.X)/2, float64(box.Min.Y+box.Max.Y)/2), true
}
