// Package canvas implements the freehand drawing surface of the board.
//
// Callers work in logical pixels. The backing bitmap is sized by the device
// pixel ratio so strokes stay crisp on dense displays.
package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/example/tenzor/internal/geom"
)

// DefaultLineWidth is the stroke width in logical pixels.
const DefaultLineWidth = 4

// Style holds the drawing defaults applied after every resize.
type Style struct {
	Width float64
	Cap   gg.LineCap
	Join  gg.LineJoin
}

// DefaultStyle returns round caps and joins at DefaultLineWidth.
func DefaultStyle() Style {
	return Style{Width: DefaultLineWidth, Cap: gg.LineCapRound, Join: gg.LineJoinRound}
}

// Surface is a resizable bitmap that records strokes. It is not safe for
// concurrent use.
type Surface struct {
	dc      *gg.Context
	width   int
	height  int
	ratio   float64
	style   Style
	color   color.Color
	drawing bool
	last    geom.Point
}

// Option configures a Surface.
type Option func(*Surface)

// WithStyle overrides the drawing defaults.
func WithStyle(st Style) Option { return func(s *Surface) { s.style = st } }

// WithColor sets the initial stroke colour.
func WithColor(c color.Color) Option { return func(s *Surface) { s.color = c } }

// New creates a surface of width x height logical pixels.
func New(width, height int, ratio float64, opts ...Option) (*Surface, error) {
	s := &Surface{
		style: DefaultStyle(),
		color: color.White,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.Resize(width, height, ratio); err != nil {
		return nil, err
	}
	return s, nil
}

func backing(n int, ratio float64) int {
	v := int(math.Ceil(float64(n) * ratio))
	if v < 1 {
		v = 1
	}
	return v
}

// Resize recomputes the backing bitmap for the given logical size and pixel
// ratio. The bitmap is always cleared and the drawing defaults reapplied.
func (s *Surface) Resize(width, height int, ratio float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize canvas: invalid size %dx%d", width, height)
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	bw, bh := backing(width, ratio), backing(height, ratio)
	if s.dc == nil {
		s.dc = gg.NewContext(bw, bh)
	} else if err := s.dc.Resize(bw, bh); err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}
	s.width, s.height, s.ratio = width, height, ratio
	s.drawing = false
	s.dc.Clear()
	s.applyStyle()
	return nil
}

func (s *Surface) applyStyle() {
	s.dc.SetStroke(gg.DefaultStroke().
		WithWidth(s.style.Width * s.ratio).
		WithCap(s.style.Cap).
		WithJoin(s.style.Join))
}

// Style reports the drawing defaults currently in effect, in logical pixels.
func (s *Surface) Style() Style {
	st := s.dc.GetStroke()
	return Style{Width: st.Width / s.ratio, Cap: st.Cap, Join: st.Join}
}

// Size returns the logical size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// BackingSize returns the bitmap size in device pixels.
func (s *Surface) BackingSize() (int, int) { return s.dc.Width(), s.dc.Height() }

// Ratio returns the device pixel ratio.
func (s *Surface) Ratio() float64 { return s.ratio }

// SetColor changes the colour used by subsequent segments.
func (s *Surface) SetColor(c color.Color) { s.color = c }

// Drawing reports whether a stroke is in progress.
func (s *Surface) Drawing() bool { return s.drawing }

// BeginStroke starts a stroke at p. It returns false if a stroke is already
// active.
func (s *Surface) BeginStroke(p geom.Point) bool {
	if s.drawing {
		return false
	}
	s.drawing = true
	s.last = p
	return true
}

// ExtendStroke paints a segment from the previous point to p. It does
// nothing when no stroke is active.
func (s *Surface) ExtendStroke(p geom.Point) error {
	if !s.drawing {
		return nil
	}
	from := s.last.Scale(s.ratio)
	to := p.Scale(s.ratio)
	s.last = p
	s.dc.SetColor(s.color)
	s.dc.MoveTo(from.X, from.Y)
	s.dc.LineTo(to.X, to.Y)
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke: %w", err)
	}
	return nil
}

// EndStroke finishes the active stroke. Calling it while idle is harmless.
func (s *Surface) EndStroke() { s.drawing = false }

// Clear erases every pixel. Size and style are kept.
func (s *Surface) Clear() { s.dc.Clear() }

// Image returns a copy of the backing bitmap.
func (s *Surface) Image() *image.RGBA {
	src := s.dc.Image()
	if img, ok := src.(*image.RGBA); ok {
		return img
	}
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

// EncodePNG writes the bitmap as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// DataURI returns the bitmap as a base64 PNG data URI.
func (s *Surface) DataURI() (string, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return DataURI(buf.Bytes()), nil
}

// DataURI wraps PNG bytes in a data URI.
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}

// Local translates a viewport pointer position into canvas coordinates using
// the canvas's on-screen bounds.
func Local(pointer geom.Point, bounds image.Rectangle) geom.Point {
	return pointer.Sub(geom.FromImage(bounds.Min))
}

// Close releases the drawing context.
func (s *Surface) Close() error {
	return s.dc.Close()
}
