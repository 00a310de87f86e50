// Package apps holds the demo apps and their catalog registration.
package apps

import (
	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/prefs"
	"github.com/rook-computer/cardkit/internal/registry"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/state"
)

// Deps are the shared services apps draw on. Any field may be nil.
type Deps struct {
	Canvas *render.Canvas
	Prefs  *prefs.Store
	State  *state.Store
}

// Register binds every demo app to its path in the app tree.
func Register(c *registry.Catalog[framework.App], deps Deps) {
	c.Register("hello", func() framework.App { return NewHello(deps) })
	c.Register("notepad", func() framework.App { return NewNotepad(deps) })
	c.Register("settings", func() framework.App { return NewSettings(deps) })
	c.Register("demos/keys", func() framework.App { return NewKeys(deps) })
	c.Register("demos/qrcode", func() framework.App { return NewQRCode(deps) })
	c.Register("demos/anim", func() framework.App { return NewAnim(deps) })
}

func draw(c *render.Canvas, fn func(d render.Drawer)) {
	if c == nil {
		return
	}
	c.Draw(fn)
}

var (
	titleStyle = render.TextStyle{Color: render.White, Size: render.TextLarge}
	bodyStyle  = render.TextStyle{Color: render.White}
	hintStyle  = render.TextStyle{Color: render.Gray}
)

const hintY = 124
