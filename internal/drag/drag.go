// Package drag moves overlay cards with the pointer while keeping them on
// screen.
package drag

import (
	"image"
	"math"
	"sync"

	"github.com/example/tenzor/internal/events"
	"github.com/example/tenzor/internal/geom"
)

// State is the controller's gesture state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Bounds describes the area an overlay may occupy.
type Bounds struct {
	Viewport image.Point
	// Size is the overlay's assumed width and height.
	Size            image.Point
	Padding         float64
	HeaderAllowance float64
}

// DefaultBounds matches the result cards drawn by the board window.
func DefaultBounds(viewport image.Point) Bounds {
	return Bounds{
		Viewport:        viewport,
		Size:            image.Pt(300, 100),
		Padding:         20,
		HeaderAllowance: 60,
	}
}

// Clamp confines p to b. When the viewport is too small for the overlay the
// lower bound wins.
func Clamp(p geom.Point, b Bounds) geom.Point {
	minX := b.Padding
	maxX := float64(b.Viewport.X-b.Size.X) - b.Padding
	minY := b.Padding + b.HeaderAllowance
	maxY := float64(b.Viewport.Y-b.Size.Y) - b.Padding
	return geom.Pt(clamp(p.X, minX, maxX), clamp(p.Y, minY, maxY))
}

func clamp(v, lo, hi float64) float64 {
	v = math.Min(v, hi)
	return math.Max(v, lo)
}

// Controller tracks a single draggable region.
type Controller struct {
	mu       sync.Mutex
	d        *events.Dispatcher
	bounds   Bounds
	pos      geom.Point
	grab     geom.Point
	state    State
	pending  *geom.Point
	sub      *events.Subscription
	onChange func(geom.Point)
}

// New returns an idle controller at pos. onChange may be nil.
func New(d *events.Dispatcher, pos geom.Point, b Bounds, onChange func(geom.Point)) *Controller {
	return &Controller{
		d:        d,
		bounds:   b,
		pos:      Clamp(pos, b),
		onChange: onChange,
	}
}

// Position returns the overlay's top-left corner.
func (c *Controller) Position() geom.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// State returns the gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rect is the overlay's on-screen rectangle.
func (c *Controller) Rect() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	min := c.pos.Image()
	return image.Rectangle{Min: min, Max: min.Add(c.bounds.Size)}
}

// Contains reports whether pointer is over the region.
func (c *Controller) Contains(pointer geom.Point) bool {
	return pointer.Image().In(c.Rect())
}

// Start begins a drag from pointer. Move and end events are then observed
// globally until the gesture finishes.
func (c *Controller) Start(pointer geom.Point) bool {
	c.mu.Lock()
	if c.state == Dragging {
		c.mu.Unlock()
		return false
	}
	c.state = Dragging
	c.grab = pointer.Sub(c.pos)
	c.mu.Unlock()

	if c.d != nil {
		sub := c.d.Subscribe(func(ev events.Event) bool {
			switch ev.Kind {
			case events.PointerMove:
				c.Move(ev.Pos)
			case events.PointerUp:
				c.End()
			}
			return true
		}, events.PointerMove, events.PointerUp)
		c.mu.Lock()
		c.sub = sub
		c.mu.Unlock()
	}
	return true
}

// Move repositions the overlay under pointer. It does nothing when idle.
func (c *Controller) Move(pointer geom.Point) {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return
	}
	c.pos = Clamp(pointer.Sub(c.grab), c.bounds)
	pos, fn := c.pos, c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(pos)
	}
}

// End finishes the gesture and applies any position set while dragging.
func (c *Controller) End() {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return
	}
	c.state = Idle
	sub := c.sub
	c.sub = nil
	var changed bool
	if c.pending != nil {
		c.pos = Clamp(*c.pending, c.bounds)
		c.pending = nil
		changed = true
	}
	pos, fn := c.pos, c.onChange
	c.mu.Unlock()
	sub.Close()
	if changed && fn != nil {
		fn(pos)
	}
}

// SetPosition moves the overlay on behalf of the application. While the
// user is dragging the request is held until the gesture ends.
func (c *Controller) SetPosition(p geom.Point) {
	c.mu.Lock()
	if c.state == Dragging {
		c.pending = &p
		c.mu.Unlock()
		return
	}
	c.pos = Clamp(p, c.bounds)
	pos, fn := c.pos, c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(pos)
	}
}

// SetViewport updates the viewport size and re-clamps the position.
func (c *Controller) SetViewport(size image.Point) {
	c.mu.Lock()
	c.bounds.Viewport = size
	old := c.pos
	c.pos = Clamp(c.pos, c.bounds)
	pos, fn := c.pos, c.onChange
	c.mu.Unlock()
	if pos != old && fn != nil {
		fn(pos)
	}
}

// Close drops the global subscription if a drag is in progress.
func (c *Controller) Close() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.state = Idle
	c.pending = nil
	c.mu.Unlock()
	sub.Close()
}
