package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// TerminalSink draws frames with upper half blocks, two pixel rows per text
// row, after downscaling by Scale.
type TerminalSink struct {
	Out   io.Writer
	Scale int

	last string
}

func NewTerminalSink(out io.Writer, scale int) *TerminalSink {
	if scale < 1 {
		scale = 1
	}
	return &TerminalSink{Out: out, Scale: scale}
}

func (s *TerminalSink) Present(frame *image.RGBA) error {
	text := s.Render(frame)
	if text == s.last {
		return nil
	}
	s.last = text
	_, err := fmt.Fprint(s.Out, "\x1b[H"+text)
	return err
}

// Render returns the frame as styled terminal text.
func (s *TerminalSink) Render(frame *image.RGBA) string {
	scale := s.Scale
	if scale < 1 {
		scale = 1
	}
	b := frame.Bounds()
	w, h := b.Dx()/scale, b.Dy()/scale
	if h%2 == 1 {
		h++
	}
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(small, image.Rect(0, 0, w, b.Dy()/scale), frame, b, xdraw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := hexColor(small.RGBAAt(x, y))
			bottom := hexColor(small.RGBAAt(x, y+1))
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}

func (s *TerminalSink) Close() error { return nil }

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
