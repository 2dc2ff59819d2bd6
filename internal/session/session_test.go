package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/example/tenzor/internal/analysis"
	"github.com/example/tenzor/internal/canvas"
	"github.com/example/tenzor/internal/geom"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	vars    []map[string]string
	replies [][]analysis.Entry
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, img string, vars map[string]string) ([]analysis.Entry, error) {
	f.mu.Lock()
	n := len(f.vars)
	f.vars = append(f.vars, vars)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.replies) {
		return f.replies[n], nil
	}
	return nil, nil
}

func newState(t *testing.T, client analysis.Analyzer, opts ...Option) *State {
	t.Helper()
	surface, err := canvas.New(800, 600, 1)
	if err != nil {
		t.Fatalf("canvas: %v", err)
	}
	t.Cleanup(func() { surface.Close() })
	opts = append([]Option{WithDelay(0)}, opts...)
	return New(surface, client, opts...)
}

func scribble(t *testing.T, s *State, from, to geom.Point) {
	t.Helper()
	s.BeginStroke(from)
	if err := s.ExtendStroke(to); err != nil {
		t.Fatalf("extend: %v", err)
	}
	s.EndStroke()
}

func empty(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

func TestAnalyzePublishesResults(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{{{Expr: "2+2", Result: "4"}}}}
	var published []analysis.Result
	s := newState(t, f, WithOnResult(func(r []analysis.Result) { published = r }))
	scribble(t, s, geom.Pt(240, 240), geom.Pt(280, 260))

	if err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	v := s.Snapshot()
	if v.Loading {
		t.Fatalf("still loading")
	}
	if len(v.Results) != 1 || v.Results[0].Markup() != `\(\LARGE{2+2 = 4}\)` {
		t.Fatalf("results %+v", v.Results)
	}
	if len(published) != 1 {
		t.Fatalf("result hook not called")
	}
	c := v.Overlays[0]
	if c.X < 255 || c.X > 265 || c.Y < 245 || c.Y > 255 {
		t.Fatalf("overlay not centred on stroke: %v", c)
	}
	if img, _ := s.Board(); !empty(img) {
		t.Fatalf("board not cleared after results")
	}
}

func TestAssignFeedsNextRequest(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{
		{{Expr: "x", Result: "5", Assign: true}},
		{{Expr: "x*2", Result: "10"}},
	}}
	s := newState(t, f)
	if err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("second: %v", err)
	}
	if len(f.vars[0]) != 0 {
		t.Fatalf("first request carried vars %v", f.vars[0])
	}
	if f.vars[1]["x"] != "5" {
		t.Fatalf("second request vars %v", f.vars[1])
	}
	if s.Snapshot().Bindings["x"] != "5" {
		t.Fatalf("binding not kept")
	}
}

func TestResetDuringAnalysis(t *testing.T) {
	f := &fakeAnalyzer{
		replies: [][]analysis.Entry{{{Expr: "y", Result: "1", Assign: true}}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newState(t, f)
	scribble(t, s, geom.Pt(10, 10), geom.Pt(90, 90))

	done := make(chan error, 1)
	go func() { done <- s.Analyze(context.Background()) }()
	<-f.started
	if !s.Loading() {
		t.Fatalf("expected loading while request is in flight")
	}
	s.Reset()
	check := func(when string) {
		v := s.Snapshot()
		img, _ := s.Board()
		if v.Loading || len(v.Results) != 0 || len(v.Bindings) != 0 || !empty(img) {
			t.Fatalf("%s: state not reset: %+v", when, v)
		}
	}
	check("after reset")
	close(f.release)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	check("after stale reply")
}

func TestNewerAnalyzeSupersedesOlder(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var calls int
	var mu sync.Mutex
	client := analyzerFunc(func(ctx context.Context, img string, vars map[string]string) ([]analysis.Entry, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		started <- struct{}{}
		if n == 1 {
			<-release
			return []analysis.Entry{{Expr: "old", Result: "1"}}, nil
		}
		return []analysis.Entry{{Expr: "new", Result: "2"}}, nil
	})
	s := newState(t, client)
	first := make(chan error, 1)
	go func() { first <- s.Analyze(context.Background()) }()
	<-started
	if err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	<-started
	close(release)
	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	v := s.Snapshot()
	if len(v.Results) != 1 || v.Results[0].Expression != "new" {
		t.Fatalf("stale reply applied: %+v", v.Results)
	}
}

type analyzerFunc func(context.Context, string, map[string]string) ([]analysis.Entry, error)

func (f analyzerFunc) Analyze(ctx context.Context, img string, vars map[string]string) ([]analysis.Entry, error) {
	return f(ctx, img, vars)
}

func TestFailureClearsLoading(t *testing.T) {
	f := &fakeAnalyzer{err: errors.New("connection refused")}
	var failed error
	s := newState(t, f, WithOnFailure(func(err error) { failed = err }))
	err := s.Analyze(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	v := s.Snapshot()
	if v.Loading || len(v.Results) != 0 {
		t.Fatalf("unexpected state %+v", v)
	}
	if failed == nil {
		t.Fatalf("failure hook not called")
	}
}

func TestBlankBoardPlacement(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{
		{{Expr: "a", Result: "1"}, {Expr: "b", Result: "2"}},
		{{Expr: "a", Result: "1"}},
	}}
	s := newState(t, f)
	for i := 0; i < 2; i++ {
		if err := s.Analyze(context.Background()); err != nil {
			t.Fatalf("analyze: %v", err)
		}
		v := s.Snapshot()
		if v.Overlays[0] != geom.Pt(20, 200) {
			t.Fatalf("blank board overlay at %v", v.Overlays[0])
		}
		if i == 0 && v.Overlays[1] != geom.Pt(20, 200+ResultSpacing) {
			t.Fatalf("second overlay at %v", v.Overlays[1])
		}
	}
}

func TestDelayHoldsResults(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{{{Expr: "1", Result: "1"}}}}
	tick := make(chan time.Time)
	s := newState(t, f, WithDelay(time.Second), withTimer(func(time.Duration) <-chan time.Time { return tick }))
	done := make(chan error, 1)
	go func() { done <- s.Analyze(context.Background()) }()
	tick <- time.Now()
	if err := <-done; err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(s.Snapshot().Results) != 1 {
		t.Fatalf("results not published after delay")
	}
}

func TestCancelledDuringDelay(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{{{Expr: "1", Result: "1"}}}}
	s := newState(t, f, WithDelay(time.Hour), withTimer(func(time.Duration) <-chan time.Time { return nil }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Analyze(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Loading() {
		t.Fatalf("loading left set")
	}
}

func TestSelectColor(t *testing.T) {
	s := newState(t, &fakeAnalyzer{})
	s.SelectColor(1)
	s.BeginStroke(geom.Pt(10, 75))
	s.ExtendStroke(geom.Pt(190, 75))
	s.EndStroke()
	img, _ := s.Board()
	c := img.RGBAAt(100, 75)
	if c.R < 0xd0 || c.G > 0x50 {
		t.Fatalf("expected red stroke, got %v", c)
	}
	s.SelectColor(99)
	if s.ColorIndex() != s.Palette().Len()-1 {
		t.Fatalf("colour index not clamped: %d", s.ColorIndex())
	}
	after, _ := s.Board()
	if got := after.RGBAAt(100, 75); got != c {
		t.Fatalf("colour change altered committed stroke")
	}
}

func TestMoveOverlay(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{{{Expr: "1", Result: "1"}}}}
	s := newState(t, f)
	if err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	s.MoveOverlay(0, geom.Pt(300, 300))
	s.MoveOverlay(5, geom.Pt(1, 1))
	if got := s.Snapshot().Overlays; len(got) != 1 || got[0] != geom.Pt(300, 300) {
		t.Fatalf("overlays %v", got)
	}
}

func TestOverlayPositionsStayOnBoard(t *testing.T) {
	f := &fakeAnalyzer{replies: [][]analysis.Entry{{{Expr: "1", Result: "1"}, {Expr: "2", Result: "2"}}}}
	s := newState(t, f)
	scribble(t, s, geom.Pt(700, 560), geom.Pt(780, 590))
	if err := s.Analyze(context.Background()); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for i, p := range s.Snapshot().Overlays {
		if p.X < 20 || p.X > 480 || p.Y < 80 || p.Y > 480 {
			t.Fatalf("overlay %d placed off the board at %v", i, p)
		}
	}

	s.MoveOverlay(0, geom.Pt(-50, 5000))
	s.MoveStatus(geom.Pt(5000, -50))
	v := s.Snapshot()
	if v.Overlays[0] != geom.Pt(20, 480) {
		t.Fatalf("moved overlay at %v", v.Overlays[0])
	}
	if v.Status != geom.Pt(480, 80) {
		t.Fatalf("status at %v", v.Status)
	}

	s.MoveOverlay(1, geom.Pt(450, 450))
	if err := s.Resize(400, 300, 1); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if got := s.Snapshot().Overlays[1]; got != geom.Pt(80, 180) {
		t.Fatalf("overlay after resize at %v", got)
	}
	if got := DefaultOverlayPosition(); got != geom.Pt(10, 200) {
		t.Fatalf("default position %v", got)
	}
}
