// Package launcher implements the home screen: a hierarchical menu over the
// scanned app tree plus any directly installed apps.
package launcher

import (
	"context"
	"image"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/logging/events"
	"github.com/rook-computer/cardkit/internal/registry"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/render/layout"
)

const (
	Title        = "Cardputer"
	VisibleItems = 4

	menuStartY = 22
	itemHeight = 22
	hintY      = 124
	hint       = "Enter=Select  ;/.=Nav  r=Reload"
)

const (
	keyUp     keycode.Code = ';'
	keyDown   keycode.Code = '.'
	keyReload keycode.Code = 'r'
)

// menuContext is one level of the menu stack.
type menuContext struct {
	node     *registry.Node
	selected int
	scroll   int
}

type entry struct {
	name string
	node *registry.Node
	app  framework.App
}

func (e entry) submenu() bool { return e.node != nil && !e.node.IsLeaf() }

type Launcher struct {
	framework.Base

	canvas *render.Canvas
	stack  []menuContext
	status string
}

func New(canvas *render.Canvas) *Launcher {
	l := &Launcher{canvas: canvas}
	l.Title = "Launcher"
	return l
}

// OnLaunch scans the app tree on first use and resets the menu to the root.
func (l *Launcher) OnLaunch() {
	if fw := l.Framework(); fw != nil {
		if err := fw.ScanApps(false); err != nil {
			l.Logger().Errorf("launcher", "scan apps: %v", err)
		}
	}
	l.reset()
}

func (l *Launcher) OnView() { l.draw() }

func (l *Launcher) HandleKey(ctx context.Context, ev *framework.KeyEvent, fw *framework.Framework) error {
	if len(l.stack) == 0 {
		l.reset()
	}
	switch ev.Key {
	case keycode.Esc:
		if len(l.stack) > 1 {
			ev.Handled = true
			l.back()
		}
		return nil
	case keyReload:
		ev.Handled = true
		l.Reload()
		return nil
	}

	items := l.entries()
	if len(items) == 0 {
		return nil
	}
	switch {
	case keycode.IsEnter(ev.Key):
		ev.Handled = true
		return l.activate(ctx, fw, items[l.top().selected])
	case ev.Key == keyUp || ev.Key == keycode.Up:
		ev.Handled = true
		l.move(-1, len(items))
	case ev.Key == keyDown || ev.Key == keycode.Down:
		ev.Handled = true
		l.move(1, len(items))
	}
	return nil
}

// Reload drops cached apps, rescans and returns to the root menu.
func (l *Launcher) Reload() {
	if fw := l.Framework(); fw != nil {
		fw.ClearAppCache()
		if err := fw.ScanApps(true); err != nil {
			l.Logger().Errorf("launcher", "rescan apps: %v", err)
		}
	}
	l.reset()
	l.status = "Reloaded"
	l.draw()
}

// Depth is the number of menu levels, 1 at the root.
func (l *Launcher) Depth() int { return len(l.stack) }

// Cursor returns the selection and scroll offset of the visible level.
func (l *Launcher) Cursor() (selected, scroll int) {
	if len(l.stack) == 0 {
		return 0, 0
	}
	top := l.top()
	return top.selected, top.scroll
}

// Entries returns the names shown at the visible level.
func (l *Launcher) Entries() []string {
	items := l.entries()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.name
	}
	return names
}

func (l *Launcher) reset() {
	l.stack = []menuContext{{node: l.root()}}
	l.status = ""
}

func (l *Launcher) root() *registry.Node {
	if fw := l.Framework(); fw != nil {
		return fw.AppRegistry()
	}
	return nil
}

func (l *Launcher) top() *menuContext { return &l.stack[len(l.stack)-1] }

func (l *Launcher) entries() []entry {
	if len(l.stack) == 0 {
		return nil
	}
	var items []entry
	if node := l.top().node; node != nil {
		for _, child := range node.Children {
			items = append(items, entry{name: child.Name, node: child})
		}
	}
	if len(l.stack) > 1 {
		return items
	}
	fw := l.Framework()
	if fw == nil {
		return items
	}
	for _, app := range fw.Apps() {
		if app == framework.App(l) || fw.Loaded(app) {
			continue
		}
		items = append(items, entry{name: app.Name(), app: app})
	}
	return items
}

func (l *Launcher) move(delta, n int) {
	top := l.top()
	top.selected = ((top.selected+delta)%n + n) % n
	ensureVisible(top)
	l.status = ""
	events.Menu.Cursor(l.path(), top.selected, top.scroll)
	l.draw()
}

// ensureVisible scrolls by the minimum amount that keeps the selection on
// screen.
func ensureVisible(c *menuContext) {
	if c.selected < c.scroll {
		c.scroll = c.selected
	} else if c.selected >= c.scroll+VisibleItems {
		c.scroll = c.selected - VisibleItems + 1
	}
}

func (l *Launcher) back() {
	l.stack = l.stack[:len(l.stack)-1]
	l.status = ""
	events.Menu.Back(len(l.stack), l.top().selected)
	l.draw()
}

func (l *Launcher) activate(ctx context.Context, fw *framework.Framework, item entry) error {
	switch {
	case item.submenu():
		l.stack = append(l.stack, menuContext{node: item.node})
		l.status = ""
		events.Menu.Enter(item.node.Path, len(l.stack))
		l.draw()
		return nil
	case item.app != nil:
		return fw.LaunchApp(ctx, item.app)
	}
	app := fw.GetOrLoadApp(item.node.Path)
	if app == nil {
		l.status = "Failed to load " + item.name
		l.draw()
		return nil
	}
	return fw.LaunchApp(ctx, app)
}

func (l *Launcher) path() string {
	if node := l.top().node; node != nil {
		return node.Path
	}
	return ""
}

func (l *Launcher) draw() {
	if l.canvas == nil || len(l.stack) == 0 {
		return
	}
	items := l.entries()
	top := l.top()
	if top.selected >= len(items) {
		top.selected = len(items) - 1
	}
	if top.selected < 0 {
		top.selected = 0
	}
	ensureVisible(top)

	title := Title
	if len(l.stack) > 1 && top.node != nil {
		title = top.node.Name
	}
	mode := framework.RunModeRemote
	if fw := l.Framework(); fw != nil {
		mode = fw.RunMode()
	}
	footer := hint
	if l.status != "" {
		footer = l.status
	}

	l.canvas.Draw(func(d render.Drawer) {
		width, _ := d.Size()
		d.Clear(render.Black)
		d.DrawText(title, 0, 0, render.TextStyle{Color: render.White, Size: render.TextLarge})
		modeColor := render.Green
		if mode == framework.RunModeRemote {
			modeColor = render.Cyan
		}
		d.DrawText(string(mode), width-4, 5, render.TextStyle{Color: modeColor, Align: render.TextAlignRight})

		if len(items) == 0 {
			d.DrawText("No apps installed", 10, 50, render.TextStyle{Color: render.White, Size: render.TextLarge})
			return
		}

		menu := image.Rect(0, menuStartY, width, menuStartY+VisibleItems*itemHeight)
		for i, row := range layout.Rows(menu, VisibleItems, itemHeight) {
			idx := top.scroll + i
			if idx >= len(items) {
				break
			}
			prefix := "  "
			if idx == top.selected {
				prefix = "> "
				d.FillRect(row, render.Highlight)
			}
			name := items[idx].name
			if items[idx].submenu() {
				name += "/"
			}
			d.DrawText(prefix+name, 10, row.Min.Y+3, render.TextStyle{Color: render.White, Size: render.TextLarge})
		}

		if top.scroll > 0 {
			d.DrawText("^", 225, menuStartY, render.TextStyle{Color: render.White})
		}
		if top.scroll+VisibleItems < len(items) {
			d.DrawText("v", 225, menuStartY+(VisibleItems-1)*itemHeight+10, render.TextStyle{Color: render.White})
		}
		d.DrawText(footer, 0, hintY, render.TextStyle{Color: render.Gray})
	})
}
