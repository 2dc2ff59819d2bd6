package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/tenzor/internal/render"
	"github.com/example/tenzor/internal/theme"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states. The
// frame goroutine draws while the event loop lays out, so access is locked.
type CacheButton struct {
	Button
	mu    sync.Mutex
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	rect := cb.Button.Rect()
	if rect.Empty() {
		return
	}
	if cb.cache[state] == nil {
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, rect, cb.cache[state], rect.Min, draw.Over)
}

func (cb *CacheButton) Rect() image.Rectangle {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.Button.Rect()
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// LabelButton is a text button with a coloured accent border.
type LabelButton struct {
	label      string
	accent     color.RGBA
	theme      *theme.Theme
	rect       image.Rectangle
	onActivate func()
}

func (lb *LabelButton) Draw(dst *image.RGBA, state ButtonState) {
	bg := lb.theme.ButtonBackground
	switch state {
	case StateHover:
		bg = lb.theme.ButtonBackgroundHover
	case StatePressed:
		bg = lb.theme.ButtonBackgroundPress
	}
	draw.Draw(dst, lb.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, lb.rect, lb.accent, 2)
	face := render.DefaultFaces().Title
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(lb.theme.ButtonText), Face: face}
	w := d.MeasureString(lb.label).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	x := lb.rect.Min.X + (lb.rect.Dx()-w)/2
	y := lb.rect.Min.Y + (lb.rect.Dy()-h)/2 + m.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(lb.label)
}

func (lb *LabelButton) Rect() image.Rectangle { return lb.rect }

func (lb *LabelButton) SetRect(r image.Rectangle) { lb.rect = r }

func (lb *LabelButton) Activate() {
	if lb.onActivate != nil {
		lb.onActivate()
	}
}

// SwatchButton selects a stroke colour. The pressed state marks the
// current selection.
type SwatchButton struct {
	color    color.RGBA
	theme    *theme.Theme
	rect     image.Rectangle
	onSelect func()
}

func (sb *SwatchButton) Draw(dst *image.RGBA, state ButtonState) {
	cx := (sb.rect.Min.X + sb.rect.Max.X) / 2
	cy := (sb.rect.Min.Y + sb.rect.Max.Y) / 2
	r := sb.rect.Dx()/2 - 3
	drawFilledCircle(dst, cx, cy, r, sb.color)
	switch state {
	case StatePressed:
		drawCircle(dst, cx, cy, r+2, sb.theme.SwatchSelected, 2)
	case StateHover:
		drawCircle(dst, cx, cy, r+1, sb.theme.SwatchSelected, 1)
	default:
		drawCircle(dst, cx, cy, r, sb.theme.SwatchBorder, 1)
	}
}

func (sb *SwatchButton) Rect() image.Rectangle { return sb.rect }

func (sb *SwatchButton) SetRect(r image.Rectangle) { sb.rect = r }

func (sb *SwatchButton) Activate() {
	if sb.onSelect != nil {
		sb.onSelect()
	}
}
