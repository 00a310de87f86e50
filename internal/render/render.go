package render

import (
	"image"
	"image/color"
)

// Sink receives finished frames. Present must not retain frame.
type Sink interface {
	Present(frame *image.RGBA) error
	Close() error
}

// Drawer is what apps draw with. It is only valid inside Canvas.Draw.
type Drawer interface {
	Size() (width int, height int)

	Clear(c color.Color)
	FillRect(rect image.Rectangle, c color.Color)
	StrokeRect(rect image.Rectangle, c color.Color)
	FillCircle(cx, cy, radius int, c color.Color)

	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y int, style TextStyle) TextMetrics

	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextSize picks one of the two faces the canvas loads.
type TextSize int

const (
	TextSmall TextSize = iota
	TextLarge
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color      color.Color
	Background color.Color // nil leaves the canvas untouched
	Size       TextSize
	Align      TextAlign
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
)
