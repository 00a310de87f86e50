package apps

import (
	"context"
	"errors"
	"strings"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/prefs"
	"github.com/rook-computer/cardkit/internal/render"
)

const (
	notepadCols  = 38
	notepadRows  = 9
	notepadLimit = 4096
)

// Notepad is a single buffer editor. Text survives restarts through prefs.
type Notepad struct {
	framework.Base

	canvas *render.Canvas
	store  *prefs.Namespace
	text   []rune
}

func NewNotepad(deps Deps) *Notepad {
	n := &Notepad{canvas: deps.Canvas, store: deps.Prefs.Namespace("notepad")}
	n.Title = "Notepad"
	return n
}

func (n *Notepad) OnLaunch() {
	n.text = []rune(n.store.String("text", ""))
}

func (n *Notepad) OnExit() {
	if err := n.store.SetString("text", string(n.text)); err != nil && !errors.Is(err, prefs.ErrClosed) {
		n.Logger().Errorf("notepad", "save: %v", err)
	}
}

// Text returns the buffer contents.
func (n *Notepad) Text() string { return string(n.text) }

func (n *Notepad) HandleKey(ctx context.Context, ev *framework.KeyEvent, fw *framework.Framework) error {
	switch {
	case ev.Key == keycode.Esc:
		return nil
	case keycode.IsEnter(ev.Key):
		n.insert('\n')
	case ev.Key == keycode.Backspace || ev.Key == keycode.Del:
		if len(n.text) > 0 {
			n.text = n.text[:len(n.text)-1]
		}
	case keycode.IsPrintable(ev.Key):
		n.insert(rune(ev.Key))
	default:
		return nil
	}
	ev.Handled = true
	n.OnView()
	return nil
}

func (n *Notepad) insert(r rune) {
	if len(n.text) >= notepadLimit {
		return
	}
	n.text = append(n.text, r)
}

func (n *Notepad) OnView() {
	lines := wrapLines(string(n.text), notepadCols)
	if len(lines) > notepadRows {
		lines = lines[len(lines)-notepadRows:]
	}
	draw(n.canvas, func(d render.Drawer) {
		d.Clear(render.Black)
		d.DrawText("Notepad", 0, 0, render.TextStyle{Color: render.Cyan})
		for i, line := range lines {
			if i == len(lines)-1 {
				line += "_"
			}
			d.DrawText(line, 2, 14+i*12, bodyStyle)
		}
		d.DrawText("ESC=save+back  BKSP=delete", 0, hintY, hintStyle)
	})
}

// wrapLines splits on newlines, then hard wraps at cols runes.
func wrapLines(text string, cols int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(para)
		for len(runes) > cols {
			out = append(out, string(runes[:cols]))
			runes = runes[cols:]
		}
		out = append(out, string(runes))
	}
	return out
}
