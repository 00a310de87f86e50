package render

import "image/color"

// Logical canvas size of the handheld LCD; sinks scale to their device.
const (
	CanvasWidth  = 240
	CanvasHeight = 135
)

var (
	Black  = color.RGBA{A: 0xFF}
	White  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Cyan   = color.RGBA{G: 0xFF, B: 0xFF, A: 0xFF}
	Green  = color.RGBA{G: 0xFF, A: 0xFF}
	Yellow = color.RGBA{R: 0xFF, G: 0xFF, A: 0xFF}
	Red    = color.RGBA{R: 0xFF, A: 0xFF}
	Gray   = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}

	// Highlight is used for the selected row or tab.
	Highlight = color.RGBA{R: 0x00, G: 0x60, B: 0xC0, A: 0xFF}

	Foreground = White
	Background = Black
)
