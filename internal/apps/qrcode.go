package apps

import (
	"context"
	"fmt"
	"image"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/render/layout"
)

type qrSample struct {
	Label   string
	Payload string
}

var qrSamples = []qrSample{
	{"M5Stack", "https://m5stack.com"},
	{"GitHub", "https://github.com"},
	{"Hello!", "Hello Cardputer!"},
	{"WiFi Example", "WIFI:T:WPA;S:MyNetwork;P:password123;;"},
	{"Email", "mailto:hello@example.com"},
	{"Phone", "tel:+15551234567"},
}

// QRCode cycles through sample payloads.
type QRCode struct {
	framework.Base

	canvas *render.Canvas
	idx    int
}

func NewQRCode(deps Deps) *QRCode {
	q := &QRCode{canvas: deps.Canvas}
	q.Title = "QR Code Demo"
	return q
}

// Sample returns the label and payload on screen.
func (q *QRCode) Sample() (string, string) {
	s := qrSamples[q.idx]
	return s.Label, s.Payload
}

func (q *QRCode) HandleKey(ctx context.Context, ev *framework.KeyEvent, fw *framework.Framework) error {
	switch ev.Key {
	case '.', '>', keycode.Right:
		q.idx = (q.idx + 1) % len(qrSamples)
	case ',', '<', keycode.Left:
		q.idx = (q.idx - 1 + len(qrSamples)) % len(qrSamples)
	default:
		return nil
	}
	ev.Handled = true
	q.OnView()
	return nil
}

func (q *QRCode) OnView() {
	sample := qrSamples[q.idx]
	img, err := render.GenerateQRCodeImage(sample.Payload, 0)
	if err != nil {
		q.Logger().Errorf("qrcode", "encode %q: %v", sample.Label, err)
	}
	draw(q.canvas, func(d render.Drawer) {
		w, h := d.Size()
		d.Clear(render.Black)
		left, right := layout.SplitVertical(image.Rect(0, 0, w, h-14), h-14)
		if img != nil {
			qr := layout.Inset(layout.FitSquare(left), 4)
			d.FillRect(qr, render.White)
			d.DrawImageInRect(img, layout.Inset(qr, 4), render.ScaleModeFit)
		}
		d.DrawText(sample.Label, right.Min.X+4, right.Min.Y+8, render.TextStyle{Color: render.Yellow, Size: render.TextLarge})
		d.DrawText(fmt.Sprintf("%d/%d", q.idx+1, len(qrSamples)), right.Min.X+4, right.Min.Y+32, bodyStyle)
		for i, line := range wrapLines(sample.Payload, 16) {
			if i == 5 {
				break
			}
			d.DrawText(line, right.Min.X+4, right.Min.Y+50+i*12, render.TextStyle{Color: render.Gray})
		}
		d.DrawText(",/.=cycle  ESC=back", 0, hintY, hintStyle)
	})
}
