package apps

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/prefs"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/render/layout"
	"github.com/rook-computer/cardkit/internal/state"
)

const (
	tabBarHeight = 14
	contentY     = tabBarHeight + 4

	brightnessStep    = 10
	brightnessKey     = "brightness"
	settingsNamespace = "settings"
)

var bootTime = time.Now()

// settingsTab is one page of the settings app. HandleKey reports whether
// the key was consumed.
type settingsTab interface {
	Name() string
	Enter()
	Draw(d render.Drawer, area image.Rectangle)
	HandleKey(key keycode.Code) bool
}

// Settings is a tabbed settings screen.
type Settings struct {
	framework.Base

	canvas  *render.Canvas
	tabs    []settingsTab
	current int
}

func NewSettings(deps Deps) *Settings {
	s := &Settings{canvas: deps.Canvas}
	s.Title = "Settings"
	s.tabs = []settingsTab{
		newDisplayTab(deps.State, deps.Prefs.Namespace(settingsNamespace)),
		&aboutTab{state: deps.State},
	}
	return s
}

// SavedBrightness returns the brightness last saved from the Display tab.
func SavedBrightness(p *prefs.Store) int {
	return p.Namespace(settingsNamespace).Int(brightnessKey, state.DefaultBrightness)
}

func (s *Settings) OnLaunch() {
	s.current = 0
	s.tabs[s.current].Enter()
}

// Tab returns the name of the visible tab.
func (s *Settings) Tab() string { return s.tabs[s.current].Name() }

func (s *Settings) switchTab(delta int) {
	n := len(s.tabs)
	s.current = ((s.current+delta)%n + n) % n
	s.tabs[s.current].Enter()
}

func (s *Settings) HandleKey(ctx context.Context, ev *framework.KeyEvent, fw *framework.Framework) error {
	switch ev.Key {
	case keycode.Esc:
		return nil
	case keycode.HIDTab, keycode.Tab, '.', keycode.Down:
		s.switchTab(1)
	case ';', keycode.Up:
		s.switchTab(-1)
	default:
		s.tabs[s.current].HandleKey(ev.Key)
	}
	ev.Handled = true
	s.OnView()
	return nil
}

func (s *Settings) OnView() {
	draw(s.canvas, func(d render.Drawer) {
		w, h := d.Size()
		d.Clear(render.Black)
		bar, rest := layout.SplitHorizontal(image.Rect(0, 0, w, h), tabBarHeight)
		for i, col := range layout.Columns(bar, len(s.tabs)) {
			style := render.TextStyle{Color: render.Gray, Align: render.TextAlignCenter}
			if i == s.current {
				d.FillRect(col, render.White)
				style.Color = render.Black
			}
			d.DrawText(s.tabs[i].Name(), col.Min.X+col.Dx()/2, col.Min.Y+1, style)
		}
		d.FillRect(image.Rect(0, tabBarHeight, w, tabBarHeight+1), render.Gray)
		content, _ := layout.SplitHorizontal(image.Rect(rest.Min.X, contentY, rest.Max.X, rest.Max.Y), hintY-contentY)
		s.tabs[s.current].Draw(d, content)
		d.DrawText(";/.=tab  ESC=back", 0, hintY, hintStyle)
	})
}

type displayTab struct {
	state *state.Store
	store *prefs.Namespace
	level int
	saved int
}

func newDisplayTab(st *state.Store, store *prefs.Namespace) *displayTab {
	return &displayTab{state: st, store: store}
}

func (t *displayTab) Name() string { return "Display" }

func (t *displayTab) Enter() {
	t.saved = t.store.Int(brightnessKey, state.DefaultBrightness)
	t.level = t.saved
	if t.state != nil {
		t.level = t.state.Brightness()
	}
}

func (t *displayTab) set(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	t.level = level
	if t.state != nil {
		t.state.SetBrightness(level)
	}
}

func (t *displayTab) HandleKey(key keycode.Code) bool {
	if t.level == 0 && key != '0' {
		restore := t.saved
		if restore == 0 {
			restore = 50
		}
		t.set(restore)
		return true
	}
	switch key {
	case ',', keycode.Left:
		t.set(t.level - brightnessStep)
	case '/', keycode.Right:
		t.set(t.level + brightnessStep)
	case '1', '2', '3', '4':
		t.set(int(key-'0') * 25)
	case '0':
		t.set(0)
	case 's', 'S':
		if err := t.store.SetInt(brightnessKey, t.level); err == nil {
			t.saved = t.level
		}
	default:
		return false
	}
	return true
}

func (t *displayTab) Draw(d render.Drawer, area image.Rectangle) {
	x, y := area.Min.X+6, area.Min.Y
	d.DrawText("Brightness", x, y, bodyStyle)
	d.DrawText(fmt.Sprintf("%d%%", t.level), area.Max.X-6, y, render.TextStyle{Color: render.Yellow, Align: render.TextAlignRight})

	bar := image.Rect(x, y+16, area.Max.X-6, y+30)
	d.StrokeRect(bar, render.White)
	inner := layout.Inset(bar, 1)
	fill := inner.Dx() * t.level / 100
	d.FillRect(image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+fill, inner.Max.Y), render.Cyan)

	d.DrawText("[1]25% [2]50% [3]75% [4]100%", x, y+38, bodyStyle)
	d.DrawText("[,/] Adjust  [S] Save  [0] Off", x, y+52, bodyStyle)
	if t.level != t.saved {
		d.DrawText("* Unsaved changes", x, y+70, render.TextStyle{Color: render.Yellow})
	} else {
		d.DrawText("  Saved", x, y+70, render.TextStyle{Color: render.Green})
	}
}

type aboutTab struct {
	state *state.Store
}

func (t *aboutTab) Name() string                 { return "About" }
func (t *aboutTab) Enter()                       {}
func (t *aboutTab) HandleKey(keycode.Code) bool { return false }

func (t *aboutTab) Draw(d render.Drawer, area image.Rectangle) {
	mode := "unknown"
	if t.state != nil {
		mode = t.state.Snapshot().RunMode
	}
	uptime := time.Since(bootTime).Truncate(time.Second)
	rows := [][2]string{
		{"Device:", "Cardputer"},
		{"Runtime:", runtime.Version()},
		{"Platform:", runtime.GOOS + "/" + runtime.GOARCH},
		{"Run mode:", mode},
		{"Uptime:", uptime.String()},
	}
	for i, row := range rows {
		y := area.Min.Y + i*14
		d.DrawText(row[0], area.Min.X+6, y, render.TextStyle{Color: render.Gray})
		d.DrawText(row[1], area.Min.X+80, y, bodyStyle)
	}
}
