package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/cardkit/internal/assets"
	"github.com/rook-computer/cardkit/internal/logging"
)

const (
	smallFontPt = 9
	largeFontPt = 15
)

// Canvas is the offscreen frame every app draws into. Drawing and flushing
// may happen from different goroutines.
type Canvas struct {
	mu     sync.Mutex
	img    *image.RGBA
	faces  map[TextSize]font.Face
	dirty  bool
	frames uint64
	sinks  []Sink
	logger logging.Logger

	// Brightness returns 0..100; nil means full brightness.
	Brightness func() int
}

func NewCanvas(logger logging.Logger, sinks ...Sink) *Canvas {
	c := &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight)),
		sinks:  sinks,
		logger: logging.OrNoop(logger),
	}
	c.faces = loadFaces(c.logger)
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
	return c
}

func loadFaces(logger logging.Logger) map[TextSize]font.Face {
	faces := map[TextSize]font.Face{TextSmall: basicfont.Face7x13, TextLarge: basicfont.Face7x13}
	tt, err := truetype.Parse(assets.FontTTF)
	if err != nil {
		logger.Errorf("render", "truetype parse failed, using basicfont: %v", err)
		return faces
	}
	for size, pt := range map[TextSize]float64{TextSmall: smallFontPt, TextLarge: largeFontPt} {
		faces[size] = truetype.NewFace(tt, &truetype.Options{Size: pt, DPI: 72, Hinting: font.HintingFull})
	}
	return faces
}

// AddSink attaches another output.
func (c *Canvas) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
	c.dirty = true
}

// Draw runs fn with exclusive access to the canvas and marks it dirty.
func (c *Canvas) Draw(fn func(d Drawer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&canvasDrawer{c: c})
	c.dirty = true
}

// Flush presents the frame to every sink when something was drawn since the
// last flush.
func (c *Canvas) Flush() error {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	c.dirty = false
	c.frames++
	frame := c.snapshotLocked()
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()

	if c.Brightness != nil {
		dim(frame, c.Brightness())
	}
	var errs []error
	for _, s := range sinks {
		if err := s.Present(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Frames counts presented frames.
func (c *Canvas) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Snapshot returns a copy of the current frame.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Canvas) snapshotLocked() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// WritePNG encodes the current frame.
func (c *Canvas) WritePNG(w io.Writer) error {
	return png.Encode(w, c.Snapshot())
}

func (c *Canvas) Close() error {
	c.mu.Lock()
	sinks := c.sinks
	c.sinks = nil
	c.mu.Unlock()
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func dim(img *image.RGBA, pct int) {
	if pct >= 100 {
		return
	}
	if pct < 0 {
		pct = 0
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(int(img.Pix[i]) * pct / 100)
		img.Pix[i+1] = uint8(int(img.Pix[i+1]) * pct / 100)
		img.Pix[i+2] = uint8(int(img.Pix[i+2]) * pct / 100)
	}
}

type canvasDrawer struct {
	c *Canvas
}

func (d *canvasDrawer) Size() (int, int) { return CanvasWidth, CanvasHeight }

func (d *canvasDrawer) Clear(col color.Color) {
	draw.Draw(d.c.img, d.c.img.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

func (d *canvasDrawer) FillRect(rect image.Rectangle, col color.Color) {
	draw.Draw(d.c.img, rect.Intersect(d.c.img.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

func (d *canvasDrawer) StrokeRect(rect image.Rectangle, col color.Color) {
	if rect.Empty() {
		return
	}
	d.FillRect(image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1), col)
	d.FillRect(image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y), col)
	d.FillRect(image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y), col)
	d.FillRect(image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y), col)
}

func (d *canvasDrawer) FillCircle(cx, cy, radius int, col color.Color) {
	rr := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= rr {
				d.c.img.Set(cx+x, cy+y, col)
			}
		}
	}
}

func (d *canvasDrawer) face(size TextSize) font.Face {
	if face, ok := d.c.faces[size]; ok {
		return face
	}
	return basicfont.Face7x13
}

func (d *canvasDrawer) MeasureText(text string, style TextStyle) TextMetrics {
	face := d.face(style.Size)
	m := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	return TextMetrics{
		Width:      width,
		Height:     ascent + descent,
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: m.Height.Ceil(),
	}
}

func (d *canvasDrawer) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	metrics := d.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= metrics.Width / 2
	case TextAlignRight:
		x -= metrics.Width
	}
	if style.Background != nil {
		d.FillRect(image.Rect(x, y, x+metrics.Width, y+metrics.Height), style.Background)
	}
	fg := style.Color
	if fg == nil {
		fg = Foreground
	}
	drawer := &font.Drawer{Dst: d.c.img, Src: &image.Uniform{C: fg}, Face: d.face(style.Size)}
	drawer.Dot = fixed.P(x, y+metrics.Ascent)
	drawer.DrawString(text)
	return metrics
}

func (d *canvasDrawer) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() || img.Bounds().Empty() {
		return
	}
	src := img.Bounds()
	dst := rect
	switch mode {
	case ScaleModeFit, ScaleModeFill:
		sx := float64(rect.Dx()) / float64(src.Dx())
		sy := float64(rect.Dy()) / float64(src.Dy())
		scale := sx
		if (mode == ScaleModeFit && sy < sx) || (mode == ScaleModeFill && sy > sx) {
			scale = sy
		}
		w := int(float64(src.Dx()) * scale)
		h := int(float64(src.Dy()) * scale)
		origin := image.Pt(rect.Min.X+(rect.Dx()-w)/2, rect.Min.Y+(rect.Dy()-h)/2)
		dst = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
	}
	sub, ok := d.c.img.SubImage(rect).(*image.RGBA)
	if !ok {
		return
	}
	xdraw.NearestNeighbor.Scale(sub, dst, img, src, xdraw.Over, nil)
}
