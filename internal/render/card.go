package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Faces groups the fonts used on cards.
type Faces struct {
	Title font.Face
	Body  font.Face
	Large font.Face
}

var (
	facesOnce sync.Once
	faces     Faces
)

// DefaultFaces returns Go Regular faces, falling back to the fixed 7x13
// bitmap font if the TrueType data cannot be parsed.
func DefaultFaces() Faces {
	facesOnce.Do(func() {
		faces = Faces{Title: basicfont.Face7x13, Body: basicfont.Face7x13, Large: basicfont.Face7x13}
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		mk := func(size float64) font.Face {
			face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
			if err != nil {
				return basicfont.Face7x13
			}
			return face
		}
		faces = Faces{Title: mk(13), Body: mk(16), Large: mk(26)}
	})
	return faces
}

// CardStyle holds the colours of an overlay card.
type CardStyle struct {
	Background color.RGBA
	Border     color.RGBA
	Title      color.RGBA
	Text       color.RGBA
}

// Card draws a titled overlay of the given size. The body is typeset from
// markup when it uses the \(...\) delimiters and drawn verbatim otherwise.
func Card(size image.Point, title, body string, st CardStyle, fc Faces) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	r := img.Bounds()
	draw.Draw(img, r, &image.Uniform{st.Background}, image.Point{}, draw.Src)
	outline(img, r, st.Border, 2)

	pad := 12
	d := &font.Drawer{Dst: img, Src: image.NewUniform(st.Title), Face: fc.Title}
	titleBase := pad + fc.Title.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(pad, titleBase)
	d.DrawString(title)

	text, large := Typeset(body)
	face := fc.Body
	if large {
		face = fc.Large
	}
	d = &font.Drawer{Dst: img, Src: image.NewUniform(st.Text), Face: face}
	text = Fit(d, text, size.X-2*pad)
	m := face.Metrics()
	top := titleBase + fc.Title.Metrics().Descent.Ceil()
	free := size.Y - top - pad
	base := top + (free-(m.Ascent+m.Descent).Ceil())/2 + m.Ascent.Ceil()
	d.Dot = fixed.P(pad, base)
	d.DrawString(text)
	return img
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA, thick int) {
	u := &image.Uniform{c}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// Typeset reduces inline math markup of the form \(\LARGE{...}\) to the
// text drawn on a card and reports whether the large size was requested.
func Typeset(markup string) (string, bool) {
	s := strings.TrimSpace(markup)
	if !strings.HasPrefix(s, `\(`) || !strings.HasSuffix(s, `\)`) {
		return s, false
	}
	s = strings.TrimSpace(s[2 : len(s)-2])
	large := false
	if strings.HasPrefix(s, `\LARGE{`) && strings.HasSuffix(s, "}") {
		s = s[len(`\LARGE{`) : len(s)-1]
		large = true
	}
	r := strings.NewReplacer(`\cdot`, "·", `\times`, "×", `\div`, "÷", `\pi`, "π", `\sqrt`, "√", `\,`, " ")
	return r.Replace(s), large
}

// Fit shortens s with an ellipsis until it fits in width pixels.
func Fit(d *font.Drawer, s string, width int) string {
	if d.MeasureString(s).Ceil() <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if t := string(runes) + "…"; d.MeasureString(t).Ceil() <= width {
			return t
		}
	}
	return ""
}
