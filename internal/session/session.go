// Package session holds the board's application state and the user actions
// that change it: drawing, colour selection, reset and analysis.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"sync"
	"time"

	"github.com/example/tenzor/internal/analysis"
	"github.com/example/tenzor/internal/canvas"
	"github.com/example/tenzor/internal/drag"
	"github.com/example/tenzor/internal/geom"
	"github.com/example/tenzor/internal/palette"
	"github.com/example/tenzor/internal/placement"
)

// ErrSuperseded is returned when a reset or a newer analysis started while
// a request was in flight. Its reply is dropped.
var ErrSuperseded = errors.New("analysis superseded")

// DefaultDelay paces the appearance of results.
const DefaultDelay = time.Second

// DefaultOverlayPosition is used when the board has no content to centre on.
func DefaultOverlayPosition() geom.Point { return geom.Pt(10, 200) }

// ResultSpacing separates stacked result overlays vertically.
const ResultSpacing = 110

// View is a consistent copy of the state for rendering.
type View struct {
	Loading    bool
	Results    []analysis.Result
	Overlays   []geom.Point
	Status     geom.Point
	Bindings   analysis.Bindings
	ColorIndex int
	Color      color.RGBA
}

// State owns the board. All methods are safe for concurrent use; Analyze
// blocks and is normally run on its own goroutine.
type State struct {
	mu sync.Mutex

	surface  *canvas.Surface
	palette  *palette.Palette
	client   analysis.Analyzer
	bindings analysis.Bindings
	results  []analysis.Result
	overlays []geom.Point
	status   geom.Point
	loading  bool
	colorIdx int
	seq      uint64

	delay         time.Duration
	clearOnResult bool
	after         func(time.Duration) <-chan time.Time

	onChange  func()
	onResult  func([]analysis.Result)
	onFailure func(error)
}

// Option configures a State.
type Option func(*State)

// WithDelay sets the pause between a reply and its results appearing.
func WithDelay(d time.Duration) Option { return func(s *State) { s.delay = d } }

// WithClearOnResult controls whether publishing results wipes the board.
func WithClearOnResult(v bool) Option { return func(s *State) { s.clearOnResult = v } }

// WithPalette replaces the built-in palette.
func WithPalette(p *palette.Palette) Option { return func(s *State) { s.palette = p } }

// WithColorIndex selects the initial swatch.
func WithColorIndex(idx int) Option { return func(s *State) { s.colorIdx = idx } }

// WithOnChange registers a callback run after every state change.
func WithOnChange(fn func()) Option { return func(s *State) { s.onChange = fn } }

// WithOnResult registers a callback run when results are published.
func WithOnResult(fn func([]analysis.Result)) Option { return func(s *State) { s.onResult = fn } }

// WithOnFailure registers a callback run when an analysis fails.
func WithOnFailure(fn func(error)) Option { return func(s *State) { s.onFailure = fn } }

// withTimer replaces time.After in tests.
func withTimer(fn func(time.Duration) <-chan time.Time) Option {
	return func(s *State) { s.after = fn }
}

// New creates a session drawing on surface and analysing with client.
func New(surface *canvas.Surface, client analysis.Analyzer, opts ...Option) *State {
	s := &State{
		surface:       surface,
		client:        client,
		palette:       palette.New(),
		bindings:      analysis.Bindings{},
		colorIdx:      palette.DefaultIndex,
		delay:         DefaultDelay,
		clearOnResult: true,
		after:         time.After,
	}
	for _, o := range opts {
		o(s)
	}
	s.colorIdx = s.palette.Clamp(s.colorIdx)
	s.surface.SetColor(s.palette.At(s.colorIdx).Color)
	s.status = s.clamp(DefaultOverlayPosition())
	return s
}

// clamp keeps an overlay position inside the board. Callers hold s.mu.
func (s *State) clamp(p geom.Point) geom.Point {
	w, h := s.surface.Size()
	return drag.Clamp(p, drag.DefaultBounds(image.Pt(w, h)))
}

func (s *State) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Palette returns the swatches offered for selection.
func (s *State) Palette() *palette.Palette { return s.palette }

// SelectColor makes swatch idx the colour of subsequent strokes.
func (s *State) SelectColor(idx int) {
	s.mu.Lock()
	s.colorIdx = s.palette.Clamp(idx)
	s.surface.SetColor(s.palette.At(s.colorIdx).Color)
	s.mu.Unlock()
	s.changed()
}

// ColorIndex returns the selected swatch.
func (s *State) ColorIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colorIdx
}

// Resize resizes the board, clearing it. Overlays are pulled back inside
// the new bounds.
func (s *State) Resize(width, height int, ratio float64) error {
	s.mu.Lock()
	err := s.surface.Resize(width, height, ratio)
	for i, p := range s.overlays {
		s.overlays[i] = s.clamp(p)
	}
	s.status = s.clamp(s.status)
	s.mu.Unlock()
	s.changed()
	return err
}

// BeginStroke starts a stroke at p in board coordinates.
func (s *State) BeginStroke(p geom.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.BeginStroke(p)
}

// ExtendStroke paints up to p.
func (s *State) ExtendStroke(p geom.Point) error {
	s.mu.Lock()
	drawing := s.surface.Drawing()
	err := s.surface.ExtendStroke(p)
	s.mu.Unlock()
	if drawing {
		s.changed()
	}
	return err
}

// EndStroke finishes the active stroke, if any.
func (s *State) EndStroke() {
	s.mu.Lock()
	s.surface.EndStroke()
	s.mu.Unlock()
}

// Drawing reports whether a stroke is in progress.
func (s *State) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Drawing()
}

// Board returns a copy of the bitmap and the device pixel ratio.
func (s *State) Board() (*image.RGBA, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Image(), s.surface.Ratio()
}

// Reset clears the board, results, bindings and loading flag in one step.
// A pending analysis will be discarded when it completes.
func (s *State) Reset() {
	s.mu.Lock()
	s.seq++
	s.surface.EndStroke()
	s.surface.Clear()
	s.results = nil
	s.overlays = nil
	s.bindings = analysis.Bindings{}
	s.loading = false
	s.status = s.clamp(DefaultOverlayPosition())
	s.mu.Unlock()
	s.changed()
}

// Analyze sends the board to the analysis service and publishes the reply
// after the configured delay. It returns ErrSuperseded if Reset or another
// Analyze ran in the meantime.
func (s *State) Analyze(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.results = nil
	s.overlays = nil
	img := s.surface.Image()
	ratio := s.surface.Ratio()
	vars := s.bindings.Clone()
	s.mu.Unlock()
	s.changed()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return s.fail(seq, fmt.Errorf("encode board: %w", err))
	}
	entries, err := s.client.Analyze(ctx, canvas.DataURI(buf.Bytes()), vars)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		log.Printf("analyze: dropping reply for superseded request %d", seq)
		return ErrSuperseded
	}
	if err != nil {
		s.mu.Unlock()
		return s.fail(seq, err)
	}
	s.bindings.Apply(entries)
	s.mu.Unlock()

	origin := DefaultOverlayPosition()
	if c, ok := placement.Center(img); ok {
		origin = c.Scale(1 / ratio)
	}

	if s.delay > 0 {
		select {
		case <-s.after(s.delay):
		case <-ctx.Done():
			return s.fail(seq, ctx.Err())
		}
	}

	results := make([]analysis.Result, len(entries))
	overlays := make([]geom.Point, len(entries))
	for i, e := range entries {
		results[i] = e.Display()
		overlays[i] = origin.Add(geom.Pt(0, float64(i*ResultSpacing)))
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return ErrSuperseded
	}
	for i, p := range overlays {
		overlays[i] = s.clamp(p)
	}
	s.results = results
	s.overlays = overlays
	s.loading = false
	if s.clearOnResult && len(results) > 0 {
		s.surface.Clear()
	}
	s.mu.Unlock()
	s.changed()
	if s.onResult != nil {
		s.onResult(append([]analysis.Result(nil), results...))
	}
	return nil
}

func (s *State) fail(seq uint64, err error) error {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.loading = false
	s.mu.Unlock()
	log.Printf("analyze: %v", err)
	s.changed()
	if s.onFailure != nil {
		s.onFailure(err)
	}
	return fmt.Errorf("analyze: %w", err)
}

// MoveOverlay records the position of result i after a drag.
func (s *State) MoveOverlay(i int, p geom.Point) {
	s.mu.Lock()
	if i >= 0 && i < len(s.overlays) {
		s.overlays[i] = s.clamp(p)
	}
	s.mu.Unlock()
	s.changed()
}

// MoveStatus records the position of the loading overlay.
func (s *State) MoveStatus(p geom.Point) {
	s.mu.Lock()
	s.status = s.clamp(p)
	s.mu.Unlock()
	s.changed()
}

// Loading reports whether an analysis is pending.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Snapshot returns a copy of the state for rendering.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Loading:    s.loading,
		Results:    append([]analysis.Result(nil), s.results...),
		Overlays:   append([]geom.Point(nil), s.overlays...),
		Status:     s.status,
		Bindings:   s.bindings.Clone(),
		ColorIndex: s.colorIdx,
		Color:      s.palette.At(s.colorIdx).Color,
	}
}
