package theme

import (
	"image/color"
)

// Theme defines the colours of the board window.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Board background behind the strokes
	Foreground color.RGBA // Main text colour

	// Toolbar
	ToolbarBackground color.RGBA
	SwatchBorder      color.RGBA
	SwatchSelected    color.RGBA

	// Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
	ResetAccent           color.RGBA
	CalculateAccent       color.RGBA

	// Result and status overlays
	OverlayBackground color.RGBA
	OverlayBorder     color.RGBA
	OverlayTitle      color.RGBA
	OverlayText       color.RGBA
	OverlayLoading    color.RGBA
}

// Default returns the built-in dark theme used when nothing else loads.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{15, 23, 42, 255},
		Foreground:            color.RGBA{241, 245, 249, 255},
		ToolbarBackground:     color.RGBA{30, 41, 59, 255},
		SwatchBorder:          color.RGBA{71, 85, 105, 255},
		SwatchSelected:        color.RGBA{255, 255, 255, 255},
		ButtonBackground:      color.RGBA{0, 0, 0, 255},
		ButtonBackgroundHover: color.RGBA{39, 39, 42, 255},
		ButtonBackgroundPress: color.RGBA{63, 63, 70, 255},
		ButtonText:            color.RGBA{255, 255, 255, 255},
		ButtonBorder:          color.RGBA{82, 82, 91, 255},
		ResetAccent:           color.RGBA{239, 68, 68, 255},
		CalculateAccent:       color.RGBA{34, 197, 94, 255},
		OverlayBackground:     color.RGBA{30, 41, 59, 235},
		OverlayBorder:         color.RGBA{168, 85, 247, 255},
		OverlayTitle:          color.RGBA{196, 181, 253, 255},
		OverlayText:           color.RGBA{255, 255, 255, 255},
		OverlayLoading:        color.RGBA{250, 204, 21, 255},
	}
}
