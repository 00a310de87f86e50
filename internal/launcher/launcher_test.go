package launcher

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/registry"
	"github.com/rook-computer/cardkit/internal/render"
)

type stubApp struct {
	framework.Base
	exits int
}

func (s *stubApp) OnExit() { s.exits++ }

func newStub(name string) *stubApp {
	s := &stubApp{}
	s.Title = name
	return s
}

type fixture struct {
	fw       *framework.Framework
	launcher *Launcher
	pong     *stubApp
	hello    *stubApp
}

func newFixture(t *testing.T, files fstest.MapFS) *fixture {
	t.Helper()
	f := &fixture{pong: newStub("Pong"), hello: newStub("Hello")}
	catalog := registry.NewCatalog[framework.App]()
	catalog.Register("games/pong", func() framework.App { return f.pong })

	f.fw = framework.New(framework.Options{Catalog: catalog, AppsFS: files, AppsRoot: "apps"})
	f.launcher = New(render.NewCanvas(nil))
	for _, app := range []framework.App{f.launcher, f.hello} {
		if err := f.fw.Install(app); err != nil {
			t.Fatalf("install: %v", err)
		}
	}
	f.fw.InstallLauncher(f.launcher)
	if err := f.fw.LaunchApp(context.Background(), f.launcher); err != nil {
		t.Fatalf("launch launcher: %v", err)
	}
	t.Cleanup(func() {
		if cur, err := f.fw.Current(); err == nil {
			framework.Stop(cur)
		}
	})
	return f
}

func (f *fixture) press(t *testing.T, keys ...keycode.Code) *framework.KeyEvent {
	t.Helper()
	ev := &framework.KeyEvent{}
	for _, key := range keys {
		ev.Key, ev.Handled = key, false
		if err := f.fw.HandleInput(context.Background(), ev); err != nil {
			t.Fatalf("key %s: %v", keycode.Label(key), err)
		}
	}
	return ev
}

func (f *fixture) current(t *testing.T) framework.App {
	t.Helper()
	cur, err := f.fw.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	return cur
}

func gamesFS() fstest.MapFS {
	return fstest.MapFS{
		"apps/manifest.json":       {Data: []byte(`{"notes":"Notes"}`)},
		"apps/games/manifest.json": {Data: []byte(`{"pong":"Pong"}`)},
	}
}

func TestRootListsTreeThenInstalledApps(t *testing.T) {
	f := newFixture(t, gamesFS())
	if diff := cmp.Diff([]string{"Games", "Notes", "Hello"}, f.launcher.Entries()); diff != "" {
		t.Fatalf("root entries (-want +got):\n%s", diff)
	}
}

func TestNavigationWraps(t *testing.T) {
	f := newFixture(t, gamesFS())
	f.press(t, '.')
	if sel, _ := f.launcher.Cursor(); sel != 1 {
		t.Fatalf("selection = %d, want 1", sel)
	}
	f.press(t, ';', ';')
	if sel, _ := f.launcher.Cursor(); sel != 2 {
		t.Fatalf("up from first should wrap to last, got %d", sel)
	}
	f.press(t, keycode.Down)
	if sel, _ := f.launcher.Cursor(); sel != 0 {
		t.Fatalf("down from last should wrap to first, got %d", sel)
	}
}

func TestScrollMovesByMinimum(t *testing.T) {
	f := newFixture(t, fstest.MapFS{
		"apps/manifest.json": {Data: []byte(`{"a":"A","b":"B","c":"C","d":"D","e":"E"}`)},
	})
	// A B C D E + Hello
	f.press(t, '.', '.', '.', '.')
	if sel, scroll := f.launcher.Cursor(); sel != 4 || scroll != 1 {
		t.Fatalf("cursor = (%d,%d), want (4,1)", sel, scroll)
	}
	f.press(t, ';')
	if sel, scroll := f.launcher.Cursor(); sel != 3 || scroll != 1 {
		t.Fatalf("cursor = (%d,%d), want (3,1)", sel, scroll)
	}
	f.press(t, '.', '.', '.')
	if sel, scroll := f.launcher.Cursor(); sel != 0 || scroll != 0 {
		t.Fatalf("wrap to first = (%d,%d), want (0,0)", sel, scroll)
	}
	f.press(t, ';')
	if sel, scroll := f.launcher.Cursor(); sel != 5 || scroll != 2 {
		t.Fatalf("wrap to last = (%d,%d), want (5,2)", sel, scroll)
	}
}

func TestSubmenuBackNavigation(t *testing.T) {
	f := newFixture(t, gamesFS())

	ev := f.press(t, keycode.Enter)
	if !ev.Handled || f.launcher.Depth() != 2 {
		t.Fatalf("enter submenu: handled=%t depth=%d", ev.Handled, f.launcher.Depth())
	}
	if sel, scroll := f.launcher.Cursor(); sel != 0 || scroll != 0 {
		t.Fatalf("submenu cursor = (%d,%d)", sel, scroll)
	}
	if diff := cmp.Diff([]string{"Pong"}, f.launcher.Entries()); diff != "" {
		t.Fatalf("submenu entries (-want +got):\n%s", diff)
	}

	f.press(t, keycode.Enter)
	if cur := f.current(t); cur != framework.App(f.pong) {
		t.Fatalf("expected Pong to launch, current %s", cur.Name())
	}

	f.press(t, keycode.Esc)
	if cur := f.current(t); cur != framework.App(f.launcher) {
		t.Fatalf("ESC did not return to launcher, current %s", cur.Name())
	}
	if f.pong.exits != 1 {
		t.Fatalf("pong exits = %d, want 1", f.pong.exits)
	}
	if f.launcher.Depth() != 1 {
		t.Fatalf("launcher kept submenu after relaunch, depth %d", f.launcher.Depth())
	}

	f.press(t, keycode.Enter)
	if sel, _ := f.launcher.Cursor(); sel != 0 || f.launcher.Depth() != 2 {
		t.Fatalf("re-entering submenu not fresh: sel=%d depth=%d", sel, f.launcher.Depth())
	}
	if again := f.fw.GetOrLoadApp("games/pong"); again != framework.App(f.pong) {
		t.Fatalf("expected cached Pong instance")
	}
}

func TestBackRestoresParentCursor(t *testing.T) {
	f := newFixture(t, fstest.MapFS{
		"apps/manifest.json":       {Data: []byte(`{"a":"A","b":"B","c":"C","d":"D"}`)},
		"apps/zone/manifest.json":  {Data: []byte(`{"x":"X"}`)},
		"apps/games/manifest.json": {Data: []byte(`{"pong":"Pong"}`)},
	})
	// Games Zone A B C D Hello
	f.press(t, ';', ';', ';', ';', ';', ';')
	if sel, scroll := f.launcher.Cursor(); sel != 1 || scroll != 1 {
		t.Fatalf("cursor = (%d,%d), want (1,1)", sel, scroll)
	}
	f.press(t, keycode.Enter)
	if f.launcher.Depth() != 2 {
		t.Fatalf("expected submenu")
	}
	ev := f.press(t, keycode.Esc)
	if !ev.Handled {
		t.Fatalf("ESC in submenu must be handled")
	}
	if sel, scroll := f.launcher.Cursor(); sel != 1 || scroll != 1 {
		t.Fatalf("restored cursor = (%d,%d), want (1,1)", sel, scroll)
	}
	if cur := f.current(t); cur != framework.App(f.launcher) {
		t.Fatalf("ESC in submenu left the launcher")
	}
}

func TestEscAtRootIsNoop(t *testing.T) {
	f := newFixture(t, gamesFS())
	f.press(t, '.')
	ev := f.press(t, keycode.Esc)
	if ev.Handled {
		t.Fatalf("ESC at root must not be handled")
	}
	if sel, _ := f.launcher.Cursor(); sel != 1 || f.launcher.Depth() != 1 {
		t.Fatalf("ESC at root changed menu state")
	}
	if len(f.fw.Apps()) != 2 {
		t.Fatalf("ESC at root changed app list")
	}
}

func TestLeafLoadFailureStaysInLauncher(t *testing.T) {
	f := newFixture(t, gamesFS())
	f.press(t, '.', keycode.Enter)
	if cur := f.current(t); cur != framework.App(f.launcher) {
		t.Fatalf("unregistered leaf launched %s", cur.Name())
	}
	if f.launcher.status != "Failed to load Notes" {
		t.Fatalf("status = %q", f.launcher.status)
	}
}

func TestDirectAppLaunch(t *testing.T) {
	f := newFixture(t, gamesFS())
	f.press(t, ';', keycode.Enter)
	if cur := f.current(t); cur != framework.App(f.hello) {
		t.Fatalf("expected Hello, current %s", cur.Name())
	}
}

func TestReloadResetsMenuAndCache(t *testing.T) {
	f := newFixture(t, gamesFS())
	f.press(t, keycode.Enter, keycode.Enter, keycode.Esc)
	if !f.fw.Loaded(f.pong) {
		t.Fatalf("pong should be lazily loaded")
	}
	f.press(t, keycode.Enter)
	ev := f.press(t, 'r')
	if !ev.Handled || f.launcher.Depth() != 1 {
		t.Fatalf("reload: handled=%t depth=%d", ev.Handled, f.launcher.Depth())
	}
	if f.fw.Loaded(f.pong) {
		t.Fatalf("reload kept the cached app")
	}
	if f.fw.AppRegistry() == nil {
		t.Fatalf("reload left no registry")
	}
}
