package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	input := `
base_url = http://localhost:8900
theme = my_custom_theme
save_dir = /tmp/boards
stroke_width = 6
pixel_ratio = 2
result_delay = 250ms
clear_on_result = false

[notify]
result = true
failure = false
export = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.BaseURL != "http://localhost:8900" {
		t.Errorf("Expected base_url with port, got '%s'", cfg.BaseURL)
	}
	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/boards" {
		t.Errorf("Expected save_dir '/tmp/boards', got '%s'", cfg.SaveDir)
	}
	if cfg.StrokeWidth != 6 || cfg.PixelRatio != 2 {
		t.Errorf("Unexpected stroke/ratio %v %v", cfg.StrokeWidth, cfg.PixelRatio)
	}
	if cfg.ResultDelay != 250*time.Millisecond {
		t.Errorf("Unexpected delay %v", cfg.ResultDelay)
	}
	if cfg.ClearOnResult {
		t.Error("Expected clear_on_result to be false")
	}
	if !cfg.Notify.Result || cfg.Notify.Failure || !cfg.Notify.Export {
		t.Errorf("Unexpected notify settings %+v", cfg.Notify)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"stroke_width = thin",
		"pixel_ratio = -1",
		"result_delay = soon",
		"[notify]\nresult = maybe",
		"[theme.x]\nBackground = blue",
	} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `base_url = https://calc.example.com/api
theme = dark
color = #ff922b
save_dir = /home/user/boards
result_delay = 1.5s

[notify]
result = true
failure = true
export = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
OverlayBackground = #10203040
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.BaseURL != cfg2.BaseURL || cfg.Theme != cfg2.Theme || cfg.Color != cfg2.Color {
		t.Errorf("Root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.SaveDir != cfg2.SaveDir || cfg.ResultDelay != cfg2.ResultDelay {
		t.Errorf("SaveDir/delay mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestApplyEnvPrecedence(t *testing.T) {
	cfg, err := Parse(strings.NewReader("base_url = http://from-file\ntheme = light\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{EnvBackendURL: "http://from-env", EnvPixelRatio: "1.5"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.BaseURL != "http://from-env" || cfg.Theme != "light" || cfg.PixelRatio != 1.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	env[EnvPixelRatio] = "zero"
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err == nil {
		t.Fatalf("expected invalid ratio error")
	}
}

func TestRequireBaseURL(t *testing.T) {
	if _, err := New().RequireBaseURL(); err != ErrNoBaseURL {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
}

func TestLoaderOverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenzor.rc")
	if err := os.WriteFile(path, []byte("base_url = http://override\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvConfig, "")
	cfg, err := NewLoader("test", path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://override" {
		t.Fatalf("base url %q", cfg.BaseURL)
	}

	saved := filepath.Join(t.TempDir(), "saved.rc")
	if err := cfg.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv(EnvConfig, saved)
	cfg2, err := NewLoader("test", "").Load()
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if cfg2.BaseURL != "http://override" {
		t.Fatalf("saved base url %q", cfg2.BaseURL)
	}
}

func TestLoaderMissingExplicitPath(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "other.rc")
	if err := os.WriteFile(other, []byte("base_url = http://from-env-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvConfig, other)

	missing := filepath.Join(dir, "typo.rc")
	cfg, err := NewLoader("test", missing).Load()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v (cfg %+v)", err, cfg)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("error %q does not name %s", err, missing)
	}

	t.Setenv(EnvConfig, filepath.Join(dir, "gone.rc"))
	if _, err := NewLoader("test", "").Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error for $%s, got %v", EnvConfig, err)
	}
	path, err := NewLoader("test", "").GetConfigPath()
	if err == nil || path != filepath.Join(dir, "gone.rc") {
		t.Fatalf("GetConfigPath = %q, %v", path, err)
	}
}
