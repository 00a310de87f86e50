package framework

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/registry"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

type taskGauge struct {
	live atomic.Int32
	max  atomic.Int32
}

func (g *taskGauge) enter() {
	n := g.live.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (g *taskGauge) leave() { g.live.Add(-1) }

type probeApp struct {
	Base
	rec        *recorder
	gauge      *taskGauge
	installErr error
}

func newProbe(name string, rec *recorder, gauge *taskGauge) *probeApp {
	p := &probeApp{rec: rec, gauge: gauge}
	p.Title = name
	return p
}

func (p *probeApp) OnInstall() error {
	p.rec.add(p.Name() + ".install")
	return p.installErr
}
func (p *probeApp) OnLaunch() { p.rec.add(p.Name() + ".launch") }
func (p *probeApp) OnView()   { p.rec.add(p.Name() + ".view") }
func (p *probeApp) OnReady(ctx context.Context) {
	p.Base.OnReady(ctx)
	p.rec.add(p.Name() + ".ready")
}
func (p *probeApp) OnHide() {
	p.Base.OnHide()
	p.rec.add(p.Name() + ".hide")
}
func (p *probeApp) OnExit()      { p.rec.add(p.Name() + ".exit") }
func (p *probeApp) OnUninstall() { p.rec.add(p.Name() + ".uninstall") }

func (p *probeApp) OnRun(ctx context.Context) error {
	if p.gauge != nil {
		p.gauge.enter()
		defer p.gauge.leave()
	}
	<-ctx.Done()
	return nil
}

type keyApp struct {
	*probeApp
	fn func(ctx context.Context, ev *KeyEvent, fw *Framework) error
}

func (k *keyApp) HandleKey(ctx context.Context, ev *KeyEvent, fw *Framework) error {
	return k.fn(ctx, ev, fw)
}

type scriptKeyboard struct {
	keys    []keycode.Code
	pressed bool
	current keycode.Code
	done    func()
}

func (k *scriptKeyboard) Tick() error {
	if len(k.keys) == 0 {
		k.pressed = false
		if k.done != nil {
			k.done()
			k.done = nil
		}
		return nil
	}
	k.current, k.keys = k.keys[0], k.keys[1:]
	k.pressed = true
	return nil
}

func (k *scriptKeyboard) IsPressed() bool   { return k.pressed }
func (k *scriptKeyboard) Key() keycode.Code { return k.current }

func testFramework(opts Options) *Framework {
	opts.TickInterval = time.Millisecond
	return New(opts)
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	app := newProbe("a", rec, nil)
	if err := Install(app); err != nil {
		t.Fatalf("install: %v", err)
	}
	Start(context.Background(), app, nil)
	Stop(app)
	want := []string{"a.install", "a.launch", "a.view", "a.ready", "a.hide", "a.exit"}
	if diff := cmp.Diff(want, rec.take()); diff != "" {
		t.Fatalf("lifecycle mismatch (-want +got):\n%s", diff)
	}
	if app.TaskRunning() {
		t.Fatalf("task still held after stop")
	}
}

func TestStartKeepsFrameworkWhenNil(t *testing.T) {
	fw := testFramework(Options{})
	app := newProbe("a", &recorder{}, nil)
	Start(context.Background(), app, fw)
	Stop(app)
	Start(context.Background(), app, nil)
	defer Stop(app)
	if app.Framework() != fw {
		t.Fatalf("framework reference lost on start without framework")
	}
}

func TestOnHideWithoutTask(t *testing.T) {
	var b Base
	b.OnHide()
	b.OnHide()
	if b.TaskRunning() {
		t.Fatalf("expected no task")
	}
	if b.Name() != "Unnamed App" {
		t.Fatalf("unexpected default name %q", b.Name())
	}
}

func TestPauseResume(t *testing.T) {
	rec := &recorder{}
	app := newProbe("a", rec, nil)
	ctx := context.Background()
	Start(ctx, app, nil)
	if !app.TaskRunning() {
		t.Fatalf("expected task after start")
	}
	Pause(app)
	if app.TaskRunning() {
		t.Fatalf("expected no task after pause")
	}
	Resume(ctx, app)
	if !app.TaskRunning() {
		t.Fatalf("expected task after resume")
	}
	Stop(app)
	want := []string{"a.launch", "a.view", "a.ready", "a.hide", "a.ready", "a.hide", "a.exit"}
	if diff := cmp.Diff(want, rec.take()); diff != "" {
		t.Fatalf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestSpawnTaskLogsFailureAndClears(t *testing.T) {
	var b Base
	done := make(chan struct{})
	b.SpawnTask(context.Background(), func(context.Context) error {
		defer close(done)
		return errors.New("boom")
	})
	<-done
	b.CancelTask()
	if b.TaskRunning() {
		t.Fatalf("expected handle cleared")
	}
}

func TestSelector(t *testing.T) {
	items := []string{"a", "b", "c"}
	s := NewSelector(&items)

	if got, _ := s.Current(); got != "a" {
		t.Fatalf("current = %q", got)
	}
	if got, _ := s.Prev(); got != "c" {
		t.Fatalf("prev from first = %q", got)
	}
	if got, _ := s.Next(); got != "a" {
		t.Fatalf("next from last = %q", got)
	}
	if got, _ := s.Index(-1); got != "c" {
		t.Fatalf("index(-1) = %q", got)
	}
	if got, _ := s.Index(7); got != "b" || s.CurrentIndex() != 1 {
		t.Fatalf("index(7) = %q at %d", got, s.CurrentIndex())
	}
	if err := s.Select("z"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("select missing: %v", err)
	}
	items = append(items, "d")
	if err := s.Select("d"); err != nil {
		t.Fatalf("select appended item: %v", err)
	}
	if got, _ := s.Next(); got != "a" {
		t.Fatalf("wrap after growth = %q", got)
	}

	dup := []string{"x", "y", "x"}
	ds := NewSelector(&dup)
	if _, err := ds.Index(2); err != nil {
		t.Fatalf("index(2): %v", err)
	}
	if err := ds.Select("x"); err != nil || ds.CurrentIndex() != 0 {
		t.Fatalf("select duplicate landed at %d: %v", ds.CurrentIndex(), err)
	}

	var empty []string
	es := NewSelector(&empty)
	if _, err := es.Current(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty current: %v", err)
	}
	if _, err := es.Next(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty next: %v", err)
	}
}

func TestInstallFailureLeavesListUntouched(t *testing.T) {
	fw := testFramework(Options{})
	app := newProbe("bad", &recorder{}, nil)
	app.installErr = errors.New("no sd card")
	err := fw.Install(app)
	if !errors.Is(err, app.installErr) {
		t.Fatalf("expected wrapped install error, got %v", err)
	}
	if len(fw.Apps()) != 0 {
		t.Fatalf("failed install appended app")
	}
}

func TestLaunchRequiresInstall(t *testing.T) {
	fw := testFramework(Options{})
	if err := fw.LaunchApp(context.Background(), newProbe("x", &recorder{}, nil)); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestEscFallback(t *testing.T) {
	rec := &recorder{}
	ctx := context.Background()
	fw := testFramework(Options{})
	launcher := newProbe("launcher", rec, nil)
	consume := false
	app := &keyApp{probeApp: newProbe("a", rec, nil), fn: func(_ context.Context, ev *KeyEvent, _ *Framework) error {
		ev.Handled = consume
		return nil
	}}
	for _, a := range []App{launcher, app} {
		if err := fw.Install(a); err != nil {
			t.Fatalf("install: %v", err)
		}
	}
	fw.InstallLauncher(launcher)

	if err := fw.LaunchApp(ctx, app); err != nil {
		t.Fatalf("launch: %v", err)
	}

	consume = true
	if err := fw.HandleInput(ctx, &KeyEvent{Key: keycode.Esc}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if cur, _ := fw.Current(); cur != App(app) {
		t.Fatalf("handled ESC left the app")
	}

	consume = false
	if err := fw.HandleInput(ctx, &KeyEvent{Key: 'x'}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if cur, _ := fw.Current(); cur != App(app) {
		t.Fatalf("unhandled non-ESC key left the app")
	}

	if err := fw.HandleInput(ctx, &KeyEvent{Key: keycode.Esc}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if cur, _ := fw.Current(); cur != App(launcher) {
		t.Fatalf("unhandled ESC did not return to launcher, current %s", cur.Name())
	}

	rec.take()
	if err := fw.HandleInput(ctx, &KeyEvent{Key: keycode.Esc}); err != nil {
		t.Fatalf("handle at launcher: %v", err)
	}
	if got := rec.take(); len(got) != 0 {
		t.Fatalf("ESC at launcher triggered lifecycle: %v", got)
	}
	fw.stopActive()
}

func TestRunRoundTrip(t *testing.T) {
	rec := &recorder{}
	gauge := &taskGauge{}
	fw := testFramework(Options{})
	app := newProbe("a", rec, gauge)
	launcher := &keyApp{probeApp: newProbe("l", rec, gauge), fn: func(ctx context.Context, ev *KeyEvent, fw *Framework) error {
		if keycode.IsEnter(ev.Key) {
			ev.Handled = true
			return fw.LaunchApp(ctx, app)
		}
		return nil
	}}
	for _, a := range []App{launcher, app} {
		if err := fw.Install(a); err != nil {
			t.Fatalf("install: %v", err)
		}
	}
	fw.InstallLauncher(launcher)
	rec.take()

	kb := &scriptKeyboard{keys: []keycode.Code{keycode.Enter, keycode.Esc}, done: fw.Stop}
	fw.opts.NewKeyboard = func() (Keyboard, error) { return kb, nil }
	if err := fw.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"l.launch", "l.view", "l.ready",
		"l.hide", "l.exit", "a.launch", "a.view", "a.ready",
		"a.hide", "a.exit", "l.launch", "l.view", "l.ready",
		"l.hide", "l.exit",
	}
	if diff := cmp.Diff(want, rec.take()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if peak := gauge.max.Load(); peak > 1 {
		t.Fatalf("%d background tasks were live at once", peak)
	}
	if live := gauge.live.Load(); live != 0 {
		t.Fatalf("%d tasks still live after run", live)
	}
}

func TestStandaloneEscStopsLoop(t *testing.T) {
	rec := &recorder{}
	fw := testFramework(Options{})
	app := newProbe("solo", rec, nil)
	if err := fw.Install(app); err != nil {
		t.Fatalf("install: %v", err)
	}
	kb := &scriptKeyboard{keys: []keycode.Code{keycode.Esc}}
	fw.opts.NewKeyboard = func() (Keyboard, error) { return kb, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fw.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"solo.install", "solo.launch", "solo.view", "solo.ready", "solo.hide", "solo.exit"}
	if diff := cmp.Diff(want, rec.take()); diff != "" {
		t.Fatalf("standalone mismatch (-want +got):\n%s", diff)
	}
	if fw.Running() {
		t.Fatalf("running flag still set")
	}
}

func TestRunWithoutApps(t *testing.T) {
	fw := testFramework(Options{})
	if err := fw.Run(context.Background()); !errors.Is(err, ErrNoApps) {
		t.Fatalf("expected ErrNoApps, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	fw := testFramework(Options{})
	app := newProbe("a", &recorder{}, nil)
	if err := fw.Install(app); err != nil {
		t.Fatalf("install: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fw.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if app.TaskRunning() {
		t.Fatalf("app left running after cancel")
	}
}

func TestHandlerFaultIsolation(t *testing.T) {
	ctx := context.Background()
	build := func(failFast bool) (*Framework, App, App) {
		fw := testFramework(Options{FailFast: failFast})
		launcher := newProbe("l", &recorder{}, nil)
		bad := &keyApp{probeApp: newProbe("bad", &recorder{}, nil), fn: func(context.Context, *KeyEvent, *Framework) error {
			panic("handler exploded")
		}}
		_ = fw.Install(launcher)
		_ = fw.Install(bad)
		fw.InstallLauncher(launcher)
		if err := fw.LaunchApp(ctx, bad); err != nil {
			t.Fatalf("launch: %v", err)
		}
		return fw, launcher, bad
	}

	fw, launcher, bad := build(false)
	if err := fw.HandleInput(ctx, &KeyEvent{Key: 'a'}); err != nil {
		t.Fatalf("isolated handler returned %v", err)
	}
	if cur, _ := fw.Current(); cur != bad {
		t.Fatalf("panic changed current app")
	}
	if err := fw.HandleInput(ctx, &KeyEvent{Key: keycode.Esc}); err != nil {
		t.Fatalf("isolated ESC returned %v", err)
	}
	if cur, _ := fw.Current(); cur != launcher {
		t.Fatalf("ESC fallback skipped after panic")
	}
	fw.stopActive()

	fw, _, _ = build(true)
	err := fw.HandleInput(ctx, &KeyEvent{Key: 'a'})
	var hp *HandlerPanic
	if !errors.As(err, &hp) || hp.App != "bad" {
		t.Fatalf("expected HandlerPanic, got %v", err)
	}
	fw.stopActive()
}

func TestLazyLoadCaching(t *testing.T) {
	rec := &recorder{}
	builds := 0
	catalog := registry.NewCatalog[App]()
	catalog.Register("hello", func() App {
		builds++
		return newProbe("hello", rec, nil)
	})
	catalog.Register("games/pong", func() App { return nil })

	fw := testFramework(Options{
		Catalog:  catalog,
		AppsRoot: "apps",
		AppsFS: fstest.MapFS{
			"apps/manifest.json":       {Data: []byte(`{"hello":"Hello"}`)},
			"apps/games/manifest.json": {Data: []byte(`{"pong":"Pong"}`)},
		},
	})
	launcher := newProbe("l", rec, nil)
	_ = fw.Install(launcher)
	fw.InstallLauncher(launcher)

	if fw.AppRegistry() != nil {
		t.Fatalf("registry present before scan")
	}
	if err := fw.ScanApps(false); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n := len(fw.AppRegistry().Leaves()); n != 2 {
		t.Fatalf("expected 2 leaves, got %d", n)
	}

	first := fw.GetOrLoadApp("hello")
	second := fw.GetOrLoadApp("hello")
	if first == nil || first != second {
		t.Fatalf("expected the same cached instance")
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}
	if n := len(fw.Apps()); n != 2 {
		t.Fatalf("expected loaded app appended once, have %d apps", n)
	}
	if fw.GetOrLoadApp("missing") != nil {
		t.Fatalf("unknown module should load as nil")
	}
	if fw.GetOrLoadApp("games/pong") != nil {
		t.Fatalf("nil factory should load as nil")
	}

	rec.take()
	fw.ClearAppCache()
	if diff := cmp.Diff([]string{"hello.uninstall"}, rec.take()); diff != "" {
		t.Fatalf("clear mismatch (-want +got):\n%s", diff)
	}
	if apps := fw.Apps(); len(apps) != 1 || apps[0] != App(launcher) {
		t.Fatalf("expected only the launcher after clear, got %d apps", len(apps))
	}
	third := fw.GetOrLoadApp("hello")
	if third == nil || third == first || builds != 2 {
		t.Fatalf("expected a fresh instance after clear (builds=%d)", builds)
	}
}

func TestCallRunsOnLoop(t *testing.T) {
	fw := testFramework(Options{})
	app := newProbe("a", &recorder{}, nil)
	_ = fw.Install(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- fw.Run(ctx) }()

	called := false
	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	if err := fw.Call(callCtx, func(context.Context) error {
		called = true
		fw.Stop()
		return nil
	}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if !called {
		t.Fatalf("posted function did not run")
	}
	if err := <-runErr; err != nil {
		t.Fatalf("run: %v", err)
	}
}
