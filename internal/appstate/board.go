package appstate

import (
	"image"
	"log"
	"math"

	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/tenzor/internal/canvas"
	"github.com/example/tenzor/internal/drag"
	"github.com/example/tenzor/internal/events"
	"github.com/example/tenzor/internal/geom"
	"github.com/example/tenzor/internal/session"
	"github.com/example/tenzor/internal/theme"
)

// Toolbar metrics in logical pixels.
const (
	toolbarHeight = 48
	toolbarPad    = 8
	resetWidth    = 96
	calcWidth     = 110
	swatchSize    = 28
	swatchGap     = 6
)

// board routes pointer input to the toolbar, the overlay cards and the
// drawing surface. It is owned by the event loop goroutine.
type board struct {
	sess  *session.State
	disp  *events.Dispatcher
	theme *theme.Theme
	ratio float64
	size  image.Point
	// sizePx is the window size in device pixels.
	sizePx image.Point
	// surface is the drawing area in logical pixels.
	surface image.Rectangle

	touchSeq touch.Sequence
	touching bool

	reset     *CacheButton
	calculate *CacheButton
	swatches  []*CacheButton
	hover     Button

	overlays []*drag.Controller
	status   *drag.Controller
	subs     []*events.Subscription
}

func newBoard(sess *session.State, th *theme.Theme, ratio float64, onReset, onCalculate func()) *board {
	if ratio <= 0 {
		ratio = 1
	}
	b := &board{
		sess:  sess,
		disp:  events.NewDispatcher(),
		theme: th,
		ratio: ratio,
	}
	b.reset = &CacheButton{Button: &LabelButton{label: "Reset", accent: th.ResetAccent, theme: th, onActivate: onReset}}
	b.calculate = &CacheButton{Button: &LabelButton{label: "Calculate", accent: th.CalculateAccent, theme: th, onActivate: onCalculate}}
	for i, sw := range sess.Palette().Swatches() {
		idx := i
		b.swatches = append(b.swatches, &CacheButton{Button: &SwatchButton{
			color:    sw.Color,
			theme:    th,
			onSelect: func() { sess.SelectColor(idx) },
		}})
	}
	b.status = drag.New(b.disp, session.DefaultOverlayPosition(), drag.DefaultBounds(b.size), sess.MoveStatus)
	b.subs = append(b.subs,
		b.disp.Subscribe(b.pointerDown, events.PointerDown),
		b.disp.Subscribe(b.pointerMove, events.PointerMove),
		b.disp.Subscribe(b.pointerEnd, events.PointerUp, events.PointerLeave),
	)
	return b
}

func (b *board) close() {
	for _, sub := range b.subs {
		sub.Close()
	}
	b.subs = nil
	for _, c := range b.overlays {
		c.Close()
	}
	b.overlays = nil
	b.status.Close()
}

// px converts a logical length to device pixels.
func (b *board) px(v int) int { return int(math.Round(float64(v) * b.ratio)) }

// resize adopts a new window size in device pixels.
func (b *board) resize(widthPx, heightPx int) {
	w := int(math.Ceil(float64(widthPx) / b.ratio))
	h := int(math.Ceil(float64(heightPx) / b.ratio))
	b.size = image.Pt(w, h)
	b.sizePx = image.Pt(widthPx, heightPx)
	b.surface = image.Rectangle{Max: b.size}
	if err := b.sess.Resize(w, h, b.ratio); err != nil {
		log.Printf("resize board: %v", err)
	}
	for _, c := range b.overlays {
		c.SetViewport(b.size)
	}
	b.status.SetViewport(b.size)
	b.layout(widthPx)
	b.disp.Dispatch(events.Event{Kind: events.Resize, Size: b.size})
}

// layout places Reset on the left, Calculate on the right and the swatches
// centred between them.
func (b *board) layout(widthPx int) {
	pad, h := b.px(toolbarPad), b.px(toolbarHeight)
	top, bottom := pad, h-pad
	b.reset.SetRect(image.Rect(pad, top, pad+b.px(resetWidth), bottom))
	b.calculate.SetRect(image.Rect(widthPx-pad-b.px(calcWidth), top, widthPx-pad, bottom))

	d, gap := b.px(swatchSize), b.px(swatchGap)
	total := len(b.swatches)*d + (len(b.swatches)-1)*gap
	x := (widthPx - total) / 2
	if min := b.reset.Rect().Max.X + gap; x < min {
		x = min
	}
	y := (h - d) / 2
	for _, s := range b.swatches {
		s.SetRect(image.Rect(x, y, x+d, y+d))
		x += d + gap
	}
}

func (b *board) buttons() []*CacheButton {
	out := make([]*CacheButton, 0, len(b.swatches)+2)
	out = append(out, b.reset)
	out = append(out, b.swatches...)
	return append(out, b.calculate)
}

// buttonAt returns the toolbar button under the logical point p.
func (b *board) buttonAt(p geom.Point) *CacheButton {
	pt := p.Scale(b.ratio).Image()
	for _, btn := range b.buttons() {
		if pt.In(btn.Rect()) {
			return btn
		}
	}
	return nil
}

func (b *board) inToolbar(p geom.Point) bool { return p.Y < toolbarHeight }

// overlayAt returns the topmost card under p. The status card sits above
// the results while loading.
func (b *board) overlayAt(p geom.Point) *drag.Controller {
	if b.sess.Loading() && b.status.Contains(p) {
		return b.status
	}
	for i := len(b.overlays) - 1; i >= 0; i-- {
		if b.overlays[i].Contains(p) {
			return b.overlays[i]
		}
	}
	return nil
}

func (b *board) pointerDown(ev events.Event) bool {
	if b.inToolbar(ev.Pos) {
		if btn := b.buttonAt(ev.Pos); btn != nil {
			btn.Activate()
		}
		return true
	}
	if c := b.overlayAt(ev.Pos); c != nil {
		c.Start(ev.Pos)
		return true
	}
	b.sess.BeginStroke(canvas.Local(ev.Pos, b.surface))
	return true
}

func (b *board) pointerMove(ev events.Event) bool {
	b.hover = nil
	if btn := b.buttonAt(ev.Pos); btn != nil {
		b.hover = btn
	}
	if b.sess.Drawing() {
		if err := b.sess.ExtendStroke(canvas.Local(ev.Pos, b.surface)); err != nil {
			log.Printf("stroke: %v", err)
		}
	}
	return true
}

func (b *board) pointerEnd(ev events.Event) bool {
	b.sess.EndStroke()
	if ev.Kind == events.PointerLeave {
		b.hover = nil
	}
	return true
}

// logical converts a device pixel position into logical coordinates.
func (b *board) logical(x, y float32) geom.Point {
	return geom.Pt(float64(x)/b.ratio, float64(y)/b.ratio)
}

// handleMouse translates a window mouse event into a pointer event. Only the
// left button presses and releases; motion outside the window ends the
// gesture. It reports whether anything was dispatched.
func (b *board) handleMouse(e mouse.Event) bool {
	var kind events.Kind
	switch e.Direction {
	case mouse.DirPress, mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		kind = events.PointerDown
		if e.Direction == mouse.DirRelease {
			kind = events.PointerUp
		}
	case mouse.DirNone:
		kind = events.PointerMove
		if e.X < 0 || e.Y < 0 || int(e.X) >= b.sizePx.X || int(e.Y) >= b.sizePx.Y {
			kind = events.PointerLeave
		}
	default:
		return false
	}
	b.disp.Dispatch(events.Event{Kind: kind, Pos: b.logical(e.X, e.Y)})
	return true
}

// handleTouch follows the first finger down until it lifts. Other touch
// sequences are ignored while it is active.
func (b *board) handleTouch(e touch.Event) bool {
	var kind events.Kind
	switch e.Type {
	case touch.TypeBegin:
		if b.touching {
			return false
		}
		b.touching, b.touchSeq = true, e.Sequence
		kind = events.PointerDown
	case touch.TypeMove:
		if !b.touching || e.Sequence != b.touchSeq {
			return false
		}
		kind = events.PointerMove
	case touch.TypeEnd:
		if !b.touching || e.Sequence != b.touchSeq {
			return false
		}
		b.touching = false
		kind = events.PointerUp
	default:
		return false
	}
	b.disp.Dispatch(events.Event{Kind: kind, Pos: b.logical(e.X, e.Y), Touch: true})
	return true
}

// sync brings the drag controllers in line with v. Positions recorded in
// the session win over the controllers except during a drag.
func (b *board) sync(v session.View) {
	for len(b.overlays) > len(v.Results) {
		last := len(b.overlays) - 1
		b.overlays[last].Close()
		b.overlays = b.overlays[:last]
	}
	for i := len(b.overlays); i < len(v.Results); i++ {
		idx := i
		c := drag.New(b.disp, v.Overlays[i], drag.DefaultBounds(b.size), func(p geom.Point) {
			b.sess.MoveOverlay(idx, p)
		})
		b.overlays = append(b.overlays, c)
		if c.Position() != v.Overlays[i] {
			b.sess.MoveOverlay(idx, c.Position())
		}
	}
	for i, c := range b.overlays {
		if c.State() == drag.Idle && c.Position() != v.Overlays[i] {
			c.SetPosition(v.Overlays[i])
		}
	}
	if b.status.State() == drag.Idle && b.status.Position() != v.Status {
		b.status.SetPosition(v.Status)
	}
}

// states returns the visual state of each toolbar button.
func (b *board) states(v session.View) ([]*CacheButton, []ButtonState) {
	btns := b.buttons()
	states := make([]ButtonState, len(btns))
	for i, btn := range btns {
		if btn == b.hover {
			states[i] = StateHover
		}
	}
	if v.ColorIndex >= 0 && v.ColorIndex < len(b.swatches) {
		states[1+v.ColorIndex] = StatePressed
	}
	return btns, states
}

// cards lists the overlays to draw in device pixels.
func (b *board) cards(v session.View) []card {
	var out []card
	for i, r := range v.Results {
		if i >= len(b.overlays) {
			break
		}
		out = append(out, card{rect: b.toPx(b.overlays[i].Rect()), title: "Result", body: r.Markup()})
	}
	if v.Loading {
		out = append(out, card{rect: b.toPx(b.status.Rect()), title: "Status", body: "Calculating...", loading: true})
	}
	return out
}

func (b *board) toPx(r image.Rectangle) image.Rectangle {
	return image.Rect(b.px(r.Min.X), b.px(r.Min.Y), b.px(r.Max.X), b.px(r.Max.Y))
}
