package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Shadow describes the soft drop shadow cast by overlay cards.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// Shadowed is a card composited over its shadow.
type Shadowed struct {
	Image *image.RGBA
	// Offset is where the card's top-left corner lies inside Image. Callers
	// subtract it from the card position so the card itself does not move.
	Offset image.Point
}

// CardShadow returns the shadow used under result cards at the given pixel
// ratio.
func CardShadow(ratio float64) Shadow {
	if ratio <= 0 {
		ratio = 1
	}
	scale := func(v int) int { return int(float64(v)*ratio + 0.5) }
	return Shadow{
		Radius:  scale(10),
		Offset:  image.Pt(0, scale(6)),
		Opacity: 0.5,
	}
}

// Cast composites card over its blurred silhouette. The result is zero based;
// Offset reports where card ended up.
func (s Shadow) Cast(card *image.RGBA) Shadowed {
	if card == nil {
		return Shadowed{}
	}
	src := card.Bounds()
	if src.Empty() || s.Opacity <= 0 {
		return Shadowed{Image: card}
	}
	alpha := uint8(min(s.Opacity, 1)*255 + 0.5)
	radius := max(s.Radius, 0)

	padded := src.Inset(-radius)
	silhouette := padded.Add(s.Offset)
	total := src.Union(silhouette)

	mask := image.NewGray(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := card.RGBAAt(x, y).A; a != 0 {
				mask.Pix[(y-padded.Min.Y)*mask.Stride+x-padded.Min.X] = a
			}
		}
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	for y := 0; y < h; y++ {
		boxBlur(mask.Pix, y*mask.Stride, 1, w, radius)
	}
	for x := 0; x < w; x++ {
		boxBlur(mask.Pix, x, mask.Stride, h, radius)
	}

	dst := image.NewRGBA(total.Sub(total.Min))
	at := silhouette.Min.Sub(total.Min)
	draw.DrawMask(dst, mask.Rect.Add(at), image.NewUniform(color.RGBA{A: alpha}), image.Point{}, mask, image.Point{}, draw.Over)
	shift := src.Min.Sub(total.Min)
	draw.Draw(dst, src.Sub(src.Min).Add(shift), card, src.Min, draw.Over)
	return Shadowed{Image: dst, Offset: shift}
}

// boxBlur averages n samples of pix, starting at off and step apart, over a
// window of radius on either side. The window shrinks at the edges.
func boxBlur(pix []uint8, off, step, n, radius int) {
	if radius <= 0 || n == 0 {
		return
	}
	prefix := make([]int, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i] + int(pix[off+i*step])
	}
	for i := 0; i < n; i++ {
		lo, hi := max(i-radius, 0), min(i+radius, n-1)
		pix[off+i*step] = uint8((prefix[hi+1] - prefix[lo]) / (hi - lo + 1))
	}
}
