package apps

import (
	"context"
	"fmt"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/render"
)

// Keys inspects key codes. Every key except ESC is consumed; Enter flips
// between the inspector and a reference page.
type Keys struct {
	framework.Base

	canvas *render.Canvas
	page   int
	last   keycode.Code
	count  int
}

func NewKeys(deps Deps) *Keys {
	k := &Keys{canvas: deps.Canvas}
	k.Title = "Keyboard Demo"
	return k
}

func (k *Keys) OnLaunch() {
	k.page = 0
	k.last = keycode.Unknown
	k.count = 0
}

func (k *Keys) HandleKey(ctx context.Context, ev *framework.KeyEvent, fw *framework.Framework) error {
	switch {
	case ev.Key == keycode.Esc:
		return nil
	case ev.Key == keycode.Enter:
		k.page = 1 - k.page
	case k.page == 0:
		k.last = ev.Key
		k.count++
	}
	ev.Handled = true
	k.OnView()
	return nil
}

func (k *Keys) OnView() {
	draw(k.canvas, func(d render.Drawer) {
		d.Clear(render.Black)
		if k.page == 1 {
			d.DrawText("Key codes", 0, 0, titleStyle)
			rows := []string{
				"ESC 0x1B   ENTER 0x0D",
				"BKSP 0x08  DEL 0x7F",
				"TAB 0x09 (0x2B unshifted)",
				"Arrows 0x80-0x83",
				"Printable 0x20-0x7E",
			}
			for i, row := range rows {
				d.DrawText(row, 4, 24+i*14, bodyStyle)
			}
			d.DrawText("Enter=inspector  ESC=back", 0, hintY, hintStyle)
			return
		}
		d.DrawText("Key inspector", 0, 0, titleStyle)
		if k.count == 0 {
			d.DrawText("Press any key", 4, 40, bodyStyle)
		} else {
			d.DrawText(keycode.Label(k.last), 4, 30, render.TextStyle{Color: render.Yellow, Size: render.TextLarge})
			d.DrawText(fmt.Sprintf("code %d (0x%02X)", int(k.last), int(k.last)), 4, 60, bodyStyle)
			d.DrawText(fmt.Sprintf("keys seen: %d", k.count), 4, 76, bodyStyle)
		}
		d.DrawText("Enter=codes  ESC=back", 0, hintY, hintStyle)
	})
}

// Last returns the most recent key and how many keys were seen.
func (k *Keys) Last() (keycode.Code, int) { return k.last, k.count }
