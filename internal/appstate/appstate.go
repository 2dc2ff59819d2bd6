// Package appstate runs the board window: it draws the toolbar, the strokes
// and the result cards, and turns window events into session calls.
package appstate

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/tenzor/internal/events"
	"github.com/example/tenzor/internal/notify"
	"github.com/example/tenzor/internal/session"
	"github.com/example/tenzor/internal/theme"
)

const (
	defaultWidth  = 1024
	defaultHeight = 720
	messageTime   = 2 * time.Second
)

// AppState holds the window configuration and the session it drives.
type AppState struct {
	Session  *session.State
	Theme    *theme.Theme
	Ratio    float64
	Title    string
	SaveDir  string
	Notifier *notify.Notifier
	Size     image.Point

	updateCh chan struct{}

	msgMu        sync.Mutex
	message      string
	messageUntil time.Time

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithPixelRatio sets the device pixel ratio of the board.
func WithPixelRatio(r float64) Option { return func(a *AppState) { a.Ratio = r } }

// WithTitle sets the window title used for exports.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithSaveDir sets where PNG and PDF exports are written.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.SaveDir = dir } }

// WithNotifier enables desktop notifications for exports.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithSize sets the initial window size in logical pixels.
func WithSize(w, h int) Option { return func(a *AppState) { a.Size = image.Pt(w, h) } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState for sess.
func New(sess *session.State, opts ...Option) *AppState {
	a := &AppState{
		Session:  sess,
		Theme:    theme.Default(),
		Ratio:    1,
		Title:    "Tenzor",
		SaveDir:  ".",
		Size:     image.Pt(defaultWidth, defaultHeight),
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.Ratio <= 0 {
		a.Ratio = 1
	}
	return a
}

// Changed requests a repaint. It is safe to call on a nil AppState and from
// any goroutine.
func (a *AppState) Changed() {
	if a == nil || a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

// Flash shows msg briefly at the bottom of the window.
func (a *AppState) Flash(msg string) {
	log.Print(msg)
	a.msgMu.Lock()
	a.message = msg
	a.messageUntil = time.Now().Add(messageTime)
	a.msgMu.Unlock()
	a.Changed()
}

func (a *AppState) currentMessage() (string, time.Time) {
	a.msgMu.Lock()
	defer a.msgMu.Unlock()
	return a.message, a.messageUntil
}

func (a *AppState) dismissMessage() bool {
	a.msgMu.Lock()
	defer a.msgMu.Unlock()
	if a.message == "" || !time.Now().Before(a.messageUntil) {
		return false
	}
	a.messageUntil = time.Time{}
	return true
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the window on s until it is closed.
func (a *AppState) Main(s screen.Screen) {
	width := int(float64(a.Size.X) * a.Ratio)
	height := int(float64(a.Size.Y) * a.Ratio)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	act := newActions(a, ctx)
	b := newBoard(a.Session, a.Theme, a.Ratio, act.reset, act.calculate)
	defer b.close()
	b.resize(width, height)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			fctx, fcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = fcancel
			paintMu.Unlock()
			drawFrame(fctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if fctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			fcancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				b.disp.Dispatch(events.Event{Kind: events.PointerLeave})
			}
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			b.resize(width, height)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			v := a.Session.Snapshot()
			b.sync(v)
			img, _ := a.Session.Board()
			btns, states := b.states(v)
			msg, until := a.currentMessage()
			st := paintState{
				width:        width,
				height:       height,
				ratio:        a.Ratio,
				theme:        a.Theme,
				board:        img,
				buttons:      btns,
				states:       states,
				cards:        b.cards(v),
				message:      msg,
				messageUntil: until,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if e.Direction == mouse.DirPress && e.Button == mouse.ButtonLeft && a.dismissMessage() {
				w.Send(paint.Event{})
			}
			if b.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case touch.Event:
			if b.handleTouch(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			err := act.handleKey(e)
			if errors.Is(err, errQuit) {
				stopPaint()
				return
			}
			w.Send(paint.Event{})
		}
	}
}
