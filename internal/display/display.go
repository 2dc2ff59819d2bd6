// Package display reports connected monitors and the device pixel ratio
// used to size the drawing surface's backing store.
package display

import (
	"errors"
	"image"
	"math"
)

var errNoMonitors = errors.New("no monitors detected")

// Monitor describes a connected output.
type Monitor struct {
	Index    int
	Name     string
	Rect     image.Rectangle
	Primary  bool
	WidthMM  int
	HeightMM int
}

// DPI returns the horizontal density of m, or 0 when the physical size is
// unknown.
func (m Monitor) DPI() float64 {
	if m.WidthMM <= 0 || m.Rect.Dx() <= 0 {
		return 0
	}
	return float64(m.Rect.Dx()) / (float64(m.WidthMM) / 25.4)
}

// Ratio returns the device pixel ratio for m.
func (m Monitor) Ratio() float64 { return RatioForDPI(m.DPI()) }

// RatioForDPI converts a density into a pixel ratio relative to 96 DPI,
// rounded to the nearest quarter and never below 1.
func RatioForDPI(dpi float64) float64 {
	if dpi <= 0 || math.IsNaN(dpi) || math.IsInf(dpi, 0) {
		return 1
	}
	r := math.Round(dpi/96*4) / 4
	if r < 1 {
		return 1
	}
	return r
}

// Primary picks the primary monitor, falling back to the first one.
func Primary(ms []Monitor) (Monitor, bool) {
	if len(ms) == 0 {
		return Monitor{}, false
	}
	for _, m := range ms {
		if m.Primary {
			return m, true
		}
	}
	return ms[0], true
}

var listMonitors = platformMonitors

// Monitors lists the connected outputs.
func Monitors() ([]Monitor, error) { return listMonitors() }

// PixelRatio returns override when positive, otherwise the ratio of the
// primary monitor. Detection failures yield 1.
func PixelRatio(override float64) float64 {
	if override > 0 {
		return override
	}
	ms, err := listMonitors()
	if err != nil {
		return 1
	}
	m, ok := Primary(ms)
	if !ok {
		return 1
	}
	return m.Ratio()
}
