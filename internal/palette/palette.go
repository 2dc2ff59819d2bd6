// Package palette provides the ordered stroke colours offered on the toolbar.
package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

// Swatch is a named drawing colour.
type Swatch struct {
	Name  string
	Color color.RGBA
}

// Hex returns the colour as #rrggbb.
func (s Swatch) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
}

// DefaultIndex is the swatch selected when a board opens.
const DefaultIndex = 0

var builtin = []Swatch{
	{"white", rgb(0xffffff)},
	{"red", rgb(0xee3333)},
	{"pink", rgb(0xe64980)},
	{"purple", rgb(0xbe4bdb)},
	{"green", rgb(0xa9f548)},
	{"cyan", rgb(0x3bc9db)},
	{"blue", rgb(0x339af0)},
	{"indigo", rgb(0x4c6ef5)},
	{"orange", rgb(0xff922b)},
	{"yellow", rgb(0xffd43b)},
	{"lightpink", rgb(0xf783ac)},
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Palette is an ordered, growable set of swatches. It is safe for
// concurrent use.
type Palette struct {
	mu       sync.RWMutex
	swatches []Swatch
}

// New returns a palette holding the built-in swatches.
func New() *Palette {
	p := &Palette{swatches: make([]Swatch, len(builtin))}
	copy(p.swatches, builtin)
	return p
}

// Len reports the number of swatches.
func (p *Palette) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.swatches)
}

// Swatches returns a copy of the swatches in display order.
func (p *Palette) Swatches() []Swatch {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Swatch, len(p.swatches))
	copy(out, p.swatches)
	return out
}

// Clamp limits idx to a valid swatch index.
func (p *Palette) Clamp(idx int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clamp(idx, len(p.swatches))
}

func clamp(idx, n int) int {
	if idx < 0 || n == 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// At returns the swatch at idx after clamping.
func (p *Palette) At(idx int) Swatch {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.swatches) == 0 {
		return Swatch{Name: "black", Color: color.RGBA{A: 255}}
	}
	return p.swatches[clamp(idx, len(p.swatches))]
}

// Lookup finds a swatch by name or #rrggbb value. SVG colour names that are
// not on the palette are added to it.
func (p *Palette) Lookup(v string) (int, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return 0, false
	}
	if strings.HasPrefix(v, "#") {
		c, err := Parse(v)
		if err != nil {
			return 0, false
		}
		return p.Ensure(c, ""), true
	}
	p.mu.RLock()
	for i, s := range p.swatches {
		if s.Name == v {
			p.mu.RUnlock()
			return i, true
		}
	}
	p.mu.RUnlock()
	if c, ok := colornames.Map[v]; ok {
		return p.Ensure(c, v), true
	}
	return 0, false
}

// Ensure makes sure c is present and returns its index.
func (p *Palette) Ensure(c color.RGBA, name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.swatches {
		if s.Color == c {
			if name != "" && s.Name == "" {
				p.swatches[i].Name = name
			}
			return i
		}
	}
	p.swatches = append(p.swatches, Swatch{Name: name, Color: c})
	return len(p.swatches) - 1
}

// Parse reads #rgb or #rrggbb.
func Parse(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return rgb(uint32(v)), nil
}
