package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/tenzor/internal/analysis"
	"github.com/example/tenzor/internal/config"
	"github.com/example/tenzor/internal/stub"
)

func testRoot(t *testing.T, cfg *config.Config) (*root, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.New()
	}
	r := newRoot(cfg)
	var out bytes.Buffer
	r.stdout = &out
	r.notifier = nil
	return r, &out
}

func writeBoard(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for x := 10; x < 50; x++ {
		img.SetRGBA(x, 20, color.RGBA{255, 255, 255, 255})
	}
	path := filepath.Join(t.TempDir(), "board.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestRootWithoutCommandShowsUsage(t *testing.T) {
	r, _ := testRoot(t, nil)
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if help := uerr.Error(); !strings.Contains(help, "board") || !strings.Contains(help, "TENZOR_BACKEND_URL") {
		t.Fatalf("unexpected help text:\n%s", help)
	}
}

func TestSubcommandHelpRenders(t *testing.T) {
	r, _ := testRoot(t, nil)
	for _, name := range []string{"board", "analyze", "stub", "colors", "displays", "config"} {
		err := r.Run([]string{name, "-h"})
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Fatalf("%s: expected usage error, got %v", name, err)
		}
		if help := uerr.Error(); !strings.Contains(help, "tenzor "+name) {
			t.Fatalf("%s: help does not name the command:\n%s", name, help)
		}
	}
}

func TestBoardRequiresBaseURL(t *testing.T) {
	r, _ := testRoot(t, nil)
	cmd, err := parseBoardCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, config.ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
}

func TestBoardRejectsBadWidth(t *testing.T) {
	r, _ := testRoot(t, nil)
	if _, err := parseBoardCmd([]string{"-width", "0"}, r); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAnalyzeAgainstStub(t *testing.T) {
	rec := &stub.Recorder{Next: stub.Fixed{
		{Expr: "y", Result: "7", Assign: true},
		{Expr: "x + y", Result: "12"},
	}}
	srv := httptest.NewServer(stub.NewRouter(rec))
	defer srv.Close()

	cfg := config.New()
	cfg.BaseURL = srv.URL
	r, out := testRoot(t, cfg)
	path := writeBoard(t)

	if err := r.Run([]string{"analyze", "-file", path, "-var", "x=5"}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := out.String(); got != "y = 7 (assigned)\nx + y = 12\n" {
		t.Fatalf("unexpected output %q", got)
	}
	reqs := rec.Requests()
	if len(reqs) != 1 || reqs[0].Vars["x"] != "5" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if !strings.HasPrefix(reqs[0].Image, "data:image/png;base64,") {
		t.Fatalf("image is not a data URI")
	}
}

func TestAnalyzeJSON(t *testing.T) {
	srv := httptest.NewServer(stub.NewRouter(stub.Fixed{{Expr: "a", Result: "3", Assign: true}}))
	defer srv.Close()

	r, out := testRoot(t, nil)
	path := writeBoard(t)
	if err := r.Run([]string{"-url", srv.URL, "analyze", "-json", path}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got struct {
		Data     []analysis.Entry  `json:"data"`
		Bindings map[string]string `json:"bindings"`
		Center   []float64         `json:"center"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(got.Data) != 1 || got.Bindings["a"] != "3" {
		t.Fatalf("unexpected output %+v", got)
	}
	if len(got.Center) != 2 || got.Center[1] != 20 {
		t.Fatalf("unexpected centre %v", got.Center)
	}
}

func TestAnalyzeFlags(t *testing.T) {
	r, _ := testRoot(t, nil)
	if _, err := parseAnalyzeCmd(nil, r); err == nil {
		t.Fatalf("expected error without a file")
	}
	if _, err := parseAnalyzeCmd([]string{"-file", "x.png", "-var", "novalue"}, r); err == nil {
		t.Fatalf("expected error for a malformed -var")
	}
	cmd, err := parseAnalyzeCmd([]string{"-var", "b=2", "-var", "a = 1", "x.png"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.file != "x.png" || cmd.vars.String() != "a=1,b=2" {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestStubReplyFile(t *testing.T) {
	r, _ := testRoot(t, nil)
	path := filepath.Join(t.TempDir(), "reply.json")
	if err := os.WriteFile(path, []byte(`[{"expr": "1+1", "result": "2"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cmd, err := parseStubCmd([]string{"-quiet", "-reply", path}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	srv := httptest.NewServer(cmd.handler)
	defer srv.Close()
	entries, err := analysis.NewClient(srv.URL).Analyze(t.Context(), "data:image/png;base64,"+pngBase64(t), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(entries) != 1 || entries[0].Result != "2" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if _, err := parseStubCmd([]string{"-reply", filepath.Join(t.TempDir(), "missing.json")}, r); err == nil {
		t.Fatalf("expected error for a missing reply file")
	}
}

func TestColorsListsSwatches(t *testing.T) {
	r, out := testRoot(t, nil)
	if err := r.Run([]string{"colors"}); err != nil {
		t.Fatalf("colors: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "* 1: white") || !strings.Contains(text, "#ee3333") {
		t.Fatalf("unexpected output:\n%s", text)
	}
}

func TestConfigPrintAndSave(t *testing.T) {
	cfg := config.New()
	cfg.BaseURL = "http://localhost:8900"
	r, out := testRoot(t, cfg)
	if err := r.Run([]string{"config", "print"}); err != nil {
		t.Fatalf("config print: %v", err)
	}
	if !strings.Contains(out.String(), "base_url = http://localhost:8900") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	orig := configPathOverride
	t.Cleanup(func() { configPathOverride = orig })
	configPathOverride = filepath.Join(t.TempDir(), "nested", "config.rc")
	if err := r.Run([]string{"config", "save"}); err != nil {
		t.Fatalf("config save: %v", err)
	}
	data, err := os.ReadFile(configPathOverride)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "base_url = http://localhost:8900") {
		t.Fatalf("saved config missing base_url:\n%s", data)
	}
	if err := r.Run([]string{"config", "bogus"}); err == nil {
		t.Fatalf("expected error for unknown subcommand")
	}
}

func TestRootConfigFlagMissingFile(t *testing.T) {
	orig := configPathOverride
	t.Cleanup(func() { configPathOverride = orig })
	r, out := testRoot(t, nil)
	missing := filepath.Join(t.TempDir(), "typo.rc")
	err := r.Run([]string{"-config", missing, "config", "print"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("config printed despite missing file:\n%s", out.String())
	}
}

func TestVersion(t *testing.T) {
	r, out := testRoot(t, nil)
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "tenzor version dev") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
