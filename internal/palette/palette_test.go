package palette

import (
	"image/color"
	"testing"
)

func TestBuiltinOrder(t *testing.T) {
	p := New()
	if p.Len() != 11 {
		t.Fatalf("expected 11 swatches, got %d", p.Len())
	}
	if got := p.At(DefaultIndex).Hex(); got != "#ffffff" {
		t.Fatalf("default swatch %s", got)
	}
	if got := p.At(1).Hex(); got != "#ee3333" {
		t.Fatalf("second swatch %s", got)
	}
	if got := p.At(100).Name; got != "lightpink" {
		t.Fatalf("clamped swatch %q", got)
	}
	if got := p.At(-3).Name; got != "white" {
		t.Fatalf("negative index gave %q", got)
	}
}

func TestLookup(t *testing.T) {
	p := New()
	if idx, ok := p.Lookup("Cyan"); !ok || idx != 5 {
		t.Fatalf("cyan lookup = %d %v", idx, ok)
	}
	if idx, ok := p.Lookup("#339af0"); !ok || idx != 6 {
		t.Fatalf("hex lookup = %d %v", idx, ok)
	}
	idx, ok := p.Lookup("teal")
	if !ok || idx != 11 {
		t.Fatalf("svg name lookup = %d %v", idx, ok)
	}
	if p.At(idx).Color != (color.RGBA{0, 128, 128, 255}) {
		t.Fatalf("teal colour %v", p.At(idx).Color)
	}
	if _, ok := p.Lookup("not-a-colour"); ok {
		t.Fatalf("expected unknown name to fail")
	}
}

func TestEnsureDeduplicates(t *testing.T) {
	p := New()
	c := color.RGBA{1, 2, 3, 255}
	a := p.Ensure(c, "custom")
	b := p.Ensure(c, "")
	if a != b {
		t.Fatalf("duplicate entries %d and %d", a, b)
	}
	if New().Len() != 11 {
		t.Fatalf("palettes share state")
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("#f80")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != (color.RGBA{0xff, 0x88, 0x00, 0xff}) {
		t.Fatalf("got %v", c)
	}
	if _, err := Parse("#12345"); err == nil {
		t.Fatalf("expected error for short hex")
	}
}
