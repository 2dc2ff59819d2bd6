package appstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/tenzor/internal/clipboard"
	"github.com/example/tenzor/internal/export"
	"github.com/example/tenzor/internal/session"
)

var errQuit = errors.New("quit")

// Package-level hooks so tests can observe side effects.
var (
	writeText   = clipboard.WriteText
	writeResult = clipboard.WriteResult
	savePNG     = export.PNG
	savePDF     = export.PDF
	now         = time.Now
)

type actions struct {
	app     *AppState
	ctx     context.Context
	byName  map[string]func()
	byKey   map[KeyShortcut]string
	analyze func()
}

func newActions(a *AppState, ctx context.Context) *actions {
	act := &actions{
		app:    a,
		ctx:    ctx,
		byName: map[string]func(){},
		byKey:  map[KeyShortcut]string{},
	}
	act.register("calculate", shortcutList{{Code: key.CodeReturnEnter}}, act.calculate)
	act.register("reset", shortcutList{{Rune: 'r', Modifiers: key.ModControl}}, act.reset)
	act.register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, act.copyResults)
	act.register("copyimage", shortcutList{{Rune: 'c', Modifiers: key.ModControl | key.ModShift}}, act.copyImage)
	act.register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, act.save)
	act.register("export", shortcutList{{Rune: 'e', Modifiers: key.ModControl}}, act.exportPDF)
	return act
}

func (act *actions) register(name string, keys KeyboardShortcuts, fn func()) {
	act.byName[name] = fn
	if keys != nil {
		for _, sc := range keys.KeyboardShortcuts() {
			act.byKey[sc] = name
		}
	}
}

// lookup resolves a key press to an action name.
func (act *actions) lookup(e key.Event) (string, bool) {
	mods := e.Modifiers & (key.ModControl | key.ModShift)
	ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}
	if e.Rune <= 0 {
		ks = KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	if name, ok := act.byKey[ks]; ok {
		return name, true
	}
	name, ok := act.byKey[KeyShortcut{Code: e.Code, Modifiers: mods}]
	return name, ok
}

// handleKey runs the action bound to e. It returns errQuit when the window
// should close.
func (act *actions) handleKey(e key.Event) error {
	if name, ok := act.lookup(e); ok {
		act.byName[name]()
		return nil
	}
	if e.Modifiers&key.ModControl != 0 {
		return nil
	}
	switch {
	case e.Code == key.CodeEscape, e.Rune == 'q', e.Rune == 'Q':
		return errQuit
	case e.Rune >= '1' && e.Rune <= '9':
		idx := int(e.Rune - '1')
		if idx < act.app.Session.Palette().Len() {
			act.app.Session.SelectColor(idx)
		}
	}
	return nil
}

func (act *actions) calculate() {
	if act.analyze != nil {
		act.analyze()
		return
	}
	go func() {
		err := act.app.Session.Analyze(act.ctx)
		switch {
		case err == nil, errors.Is(err, session.ErrSuperseded), errors.Is(err, context.Canceled):
		default:
			act.app.Flash(err.Error())
		}
	}()
}

func (act *actions) reset() {
	act.app.Session.Reset()
}

func (act *actions) resultText() string {
	v := act.app.Session.Snapshot()
	lines := make([]string, len(v.Results))
	for i, r := range v.Results {
		lines[i] = r.Text()
	}
	return strings.Join(lines, "\n")
}

func (act *actions) copyResults() {
	text := act.resultText()
	if text == "" {
		act.app.Flash("no results to copy")
		return
	}
	if err := writeText(text); err != nil {
		act.app.Flash(fmt.Sprintf("copy: %v", err))
		return
	}
	act.app.Flash("results copied to clipboard")
}

func (act *actions) copyImage() {
	board, _ := act.app.Session.Board()
	if err := writeResult(act.resultText(), flatten(board, act.app.Theme.Background)); err != nil {
		act.app.Flash(fmt.Sprintf("copy: %v", err))
		return
	}
	act.app.Flash("board copied to clipboard")
}

func (act *actions) save() {
	board, _ := act.app.Session.Board()
	path := export.Name(act.app.SaveDir, "png", now())
	if err := savePNG(path, flatten(board, act.app.Theme.Background)); err != nil {
		act.app.Flash(fmt.Sprintf("save: %v", err))
		return
	}
	act.app.Flash(fmt.Sprintf("saved %s", path))
	act.app.Notifier.Export(path)
}

func (act *actions) exportPDF() {
	board, _ := act.app.Session.Board()
	v := act.app.Session.Snapshot()
	path := export.Name(act.app.SaveDir, "pdf", now())
	doc := export.Document{
		Title:      act.app.Title,
		Board:      board,
		Background: act.app.Theme.Background,
		Results:    v.Results,
		Bindings:   v.Bindings,
		Created:    now(),
	}
	if err := savePDF(path, doc); err != nil {
		act.app.Flash(fmt.Sprintf("export: %v", err))
		return
	}
	act.app.Flash(fmt.Sprintf("exported %s", path))
	act.app.Notifier.Export(path)
}
