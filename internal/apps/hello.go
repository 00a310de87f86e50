package apps

import (
	"context"
	"fmt"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/render"
)

// Hello is the minimal app: it greets and echoes the last key.
type Hello struct {
	framework.Base

	canvas  *render.Canvas
	lastKey keycode.Code
	presses int
}

func NewHello(deps Deps) *Hello {
	h := &Hello{canvas: deps.Canvas}
	h.Title = "Hello World"
	return h
}

func (h *Hello) OnLaunch() {
	h.lastKey = keycode.Unknown
	h.presses = 0
}

func (h *Hello) OnView() {
	draw(h.canvas, func(d render.Drawer) {
		w, hgt := d.Size()
		d.Clear(render.Black)
		d.DrawText("Hello, World!", w/2, hgt/2-20, render.TextStyle{Color: render.Yellow, Size: render.TextLarge, Align: render.TextAlignCenter})
		if h.presses > 0 {
			line := fmt.Sprintf("You pressed %s (%d)", keycode.Label(h.lastKey), h.presses)
			d.DrawText(line, w/2, hgt/2+10, render.TextStyle{Color: render.White, Align: render.TextAlignCenter})
		}
		d.DrawText("ESC=back", 0, hintY, hintStyle)
	})
}

func (h *Hello) HandleKey(ctx context.Context, ev *framework.KeyEvent, fw *framework.Framework) error {
	if ev.Key == keycode.Esc {
		return nil
	}
	h.lastKey = ev.Key
	h.presses++
	ev.Handled = true
	h.OnView()
	return nil
}
