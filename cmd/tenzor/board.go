package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/example/tenzor/internal/analysis"
	"github.com/example/tenzor/internal/appstate"
	"github.com/example/tenzor/internal/canvas"
	"github.com/example/tenzor/internal/display"
	"github.com/example/tenzor/internal/palette"
	"github.com/example/tenzor/internal/session"
)

type boardCmd struct {
	*root
	fs      *flag.FlagSet
	color   string
	width   float64
	ratio   float64
	delay   time.Duration
	keep    bool
	saveDir string
	winW    int
	winH    int
}

func parseBoardCmd(args []string, r *root) (*boardCmd, error) {
	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	cfg := r.config
	b := &boardCmd{root: r, fs: fs}
	fs.StringVar(&b.color, "color", cfg.Color, "initial stroke colour: swatch name, SVG colour name or #rrggbb")
	fs.Float64Var(&b.width, "width", cfg.StrokeWidth, "stroke width in logical pixels")
	fs.Float64Var(&b.ratio, "ratio", cfg.PixelRatio, "device pixel ratio; 0 detects it from the display")
	fs.DurationVar(&b.delay, "delay", cfg.ResultDelay, "pause before results are shown")
	fs.BoolVar(&b.keep, "keep", !cfg.ClearOnResult, "keep the strokes on the board when results arrive")
	fs.StringVar(&b.saveDir, "save-dir", orDefault(cfg.SaveDir, "."), "directory for PNG and PDF exports")
	fs.IntVar(&b.winW, "window-width", 1024, "initial window width in logical pixels")
	fs.IntVar(&b.winH, "window-height", 720, "initial window height in logical pixels")
	fs.SetOutput(io.Discard)
	if err := parseFlags(fs, b, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: b}
	}
	if b.width <= 0 {
		return nil, fmt.Errorf("-width must be positive")
	}
	return b, nil
}

func (b *boardCmd) Program() string        { return b.root.subcommand("board") }
func (b *boardCmd) FlagSet() *flag.FlagSet { return b.fs }
func (b *boardCmd) Template() string       { return "board.txt" }

func (b *boardCmd) Run() error {
	baseURL, err := b.config.RequireBaseURL()
	if err != nil {
		return err
	}
	ratio := display.PixelRatio(b.ratio)
	log.Printf("board: analysis service %s, pixel ratio %g", baseURL, ratio)

	pal := palette.New()
	colorIdx := palette.DefaultIndex
	if b.color != "" {
		idx, ok := pal.Lookup(b.color)
		if !ok {
			return fmt.Errorf("unknown colour %q", b.color)
		}
		colorIdx = idx
	}

	style := canvas.DefaultStyle()
	style.Width = b.width
	surface, err := canvas.New(b.winW, b.winH, ratio, canvas.WithStyle(style))
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	defer surface.Close()

	var app *appstate.AppState
	sess := session.New(surface, analysis.NewClient(baseURL),
		session.WithPalette(pal),
		session.WithColorIndex(colorIdx),
		session.WithDelay(b.delay),
		session.WithClearOnResult(!b.keep),
		session.WithOnChange(func() { app.Changed() }),
		session.WithOnResult(func(results []analysis.Result) {
			lines := make([]string, len(results))
			for i, r := range results {
				lines[i] = r.Text()
			}
			b.notifier.Result(lines, nil)
		}),
		session.WithOnFailure(b.notifier.Failure),
	)
	app = appstate.New(sess,
		appstate.WithTheme(b.activeTheme),
		appstate.WithPixelRatio(ratio),
		appstate.WithSaveDir(b.saveDir),
		appstate.WithNotifier(b.notifier),
		appstate.WithSize(b.winW, b.winH),
	)
	app.Run()
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
