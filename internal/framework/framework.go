package framework

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/logging"
	"github.com/rook-computer/cardkit/internal/logging/events"
	"github.com/rook-computer/cardkit/internal/registry"
)

const (
	DefaultTickInterval = 10 * time.Millisecond
	postQueueSize       = 32
)

var (
	ErrNoApps       = errors.New("no apps installed")
	ErrQueueFull    = errors.New("framework post queue is full")
	ErrNotAvailable = errors.New("app not available")
)

// RunMode tells where the app tree came from.
type RunMode string

const (
	RunModeRemote RunMode = "remote"
	RunModeFlash  RunMode = "flash"
)

// Options configures a Framework. Zero values pick sensible defaults.
type Options struct {
	Logger          logging.Logger
	TickInterval    time.Duration
	TaskJoinTimeout time.Duration
	FailFast        bool

	// NewKeyboard is called once when Run starts.
	NewKeyboard func() (Keyboard, error)
	// Update runs at the top of every loop iteration (display flush,
	// platform polling).
	Update func()
	// OnSwitch is called after an app has been started.
	OnSwitch func(App)

	AppsFS   fs.FS
	AppsRoot string
	Catalog  *registry.Catalog[App]
	RunMode  RunMode
}

// Framework owns the app list, the current app and the event loop. All
// lifecycle calls happen on the goroutine running Run; other goroutines use
// Post or Call.
type Framework struct {
	opts   Options
	logger logging.Logger

	mu       sync.Mutex
	apps     []App
	selector *Selector[App]
	launcher App
	active   App
	handlers map[App]KeyHandler

	running atomic.Bool
	event   KeyEvent
	posted  chan func(context.Context)

	catalog *registry.Catalog[App]
	cache   *registry.Cache[App]
	tree    *registry.Node
	scanned bool
	loaded  map[App]string
}

func New(opts Options) *Framework {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.TaskJoinTimeout <= 0 {
		opts.TaskJoinTimeout = defaultTaskJoinTimeout
	}
	if opts.Catalog == nil {
		opts.Catalog = registry.NewCatalog[App]()
	}
	if opts.RunMode == "" {
		opts.RunMode = RunModeRemote
	}
	fw := &Framework{
		opts:     opts,
		logger:   logging.OrNoop(opts.Logger),
		handlers: map[App]KeyHandler{},
		posted:   make(chan func(context.Context), postQueueSize),
		catalog:  opts.Catalog,
		cache:    registry.NewCache[App](),
		loaded:   map[App]string{},
	}
	fw.selector = NewSelector(&fw.apps)
	return fw
}

func (fw *Framework) Logger() logging.Logger { return fw.logger }
func (fw *Framework) RunMode() RunMode       { return fw.opts.RunMode }
func (fw *Framework) Running() bool          { return fw.running.Load() }

// Install runs the app's install hook and appends it. A failing hook leaves
// the list untouched.
func (fw *Framework) Install(app App) error {
	if err := Install(app); err != nil {
		return fmt.Errorf("install %s: %w", app.Name(), err)
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.indexOf(app) >= 0 {
		fw.logger.Infof("framework", "warning: %s installed twice", app.Name())
	}
	fw.apps = append(fw.apps, app)
	fw.resolveHandler(app)
	return nil
}

// InstallLauncher designates app as the escape target. It does not install
// it.
func (fw *Framework) InstallLauncher(app App) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.launcher = app
	fw.resolveHandler(app)
}

func (fw *Framework) Launcher() App {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.launcher
}

// Apps returns a copy of the installed apps.
func (fw *Framework) Apps() []App {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	out := make([]App, len(fw.apps))
	copy(out, fw.apps)
	return out
}

// Current returns the app under the selector cursor.
func (fw *Framework) Current() (App, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.selector.Current()
}

// LaunchApp stops the current app, selects app and starts it.
func (fw *Framework) LaunchApp(ctx context.Context, app App) error {
	if app == nil {
		return ErrNotAvailable
	}
	fw.mu.Lock()
	if fw.indexOf(app) < 0 {
		fw.mu.Unlock()
		return fmt.Errorf("launch %s: %w", app.Name(), ErrNotMember)
	}
	from := ""
	if current, err := fw.selector.Current(); err == nil {
		from = current.Name()
	}
	fw.mu.Unlock()

	fw.logger.Infof("framework", "launch %s", app.Name())
	events.App.Launch(from, app.Name())
	fw.stopActive()
	fw.mu.Lock()
	err := fw.selector.Select(app)
	fw.mu.Unlock()
	if err != nil {
		return fmt.Errorf("launch %s: %w", app.Name(), err)
	}
	fw.start(ctx, app)
	return nil
}

// ReturnToLauncher switches back to the launcher. Without a launcher the
// current app is stopped and the loop ends.
func (fw *Framework) ReturnToLauncher(ctx context.Context) error {
	fw.mu.Lock()
	launcher := fw.launcher
	current, err := fw.selector.Current()
	fw.mu.Unlock()
	if err != nil {
		return err
	}
	if launcher == nil {
		fw.logger.Infof("framework", "standalone exit from %s", current.Name())
		events.App.Return(current.Name(), true)
		fw.stopActive()
		fw.running.Store(false)
		return nil
	}
	if current == launcher {
		return nil
	}
	events.App.Return(current.Name(), false)
	fw.stopActive()
	fw.mu.Lock()
	err = fw.selector.Select(launcher)
	fw.mu.Unlock()
	if err != nil {
		return fmt.Errorf("return to launcher: %w", err)
	}
	fw.start(ctx, launcher)
	return nil
}

// Run starts the launcher (or the first app when none is designated) and
// polls the keyboard until the loop is stopped or ctx is done.
func (fw *Framework) Run(ctx context.Context) error {
	kb, err := fw.openKeyboard()
	if err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}

	fw.mu.Lock()
	first := fw.launcher
	if first == nil && len(fw.apps) > 0 {
		first = fw.apps[0]
	}
	if first == nil {
		fw.mu.Unlock()
		return ErrNoApps
	}
	if err := fw.selector.Select(first); err != nil {
		fw.mu.Unlock()
		return fmt.Errorf("start %s: %w", first.Name(), err)
	}
	fw.mu.Unlock()

	fw.running.Store(true)
	defer fw.running.Store(false)
	defer fw.stopActive()

	events.App.Start(map[string]interface{}{"first": first.Name(), "mode": string(fw.opts.RunMode)})
	fw.start(ctx, first)

	ticker := time.NewTicker(fw.opts.TickInterval)
	defer ticker.Stop()
	for fw.running.Load() {
		fw.drainPosted(ctx)
		if !fw.running.Load() {
			break
		}
		if fw.opts.Update != nil {
			fw.opts.Update()
		}
		if err := kb.Tick(); err != nil {
			fw.logger.Errorf("keyboard", "tick: %v", err)
		}
		if kb.IsPressed() {
			fw.event.Key = kb.Key()
			fw.event.Handled = false
			if err := fw.HandleInput(ctx, &fw.event); err != nil && fw.opts.FailFast {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Stop ends the loop after the current iteration.
func (fw *Framework) Stop() { fw.running.Store(false) }

// HandleInput dispatches ev to the current app's handler, then returns to
// the launcher when an ESC was left unhandled.
func (fw *Framework) HandleInput(ctx context.Context, ev *KeyEvent) error {
	fw.mu.Lock()
	current, err := fw.selector.Current()
	handler := fw.handlers[current]
	fw.mu.Unlock()
	if err != nil {
		return err
	}

	var handlerErr error
	if handler != nil {
		handlerErr = fw.dispatch(ctx, handler, current, ev)
		if handlerErr != nil {
			fw.logger.Errorf("dispatch", "%s: %v", current.Name(), handlerErr)
			events.Key.HandlerError(current.Name(), int(ev.Key), handlerErr)
			if fw.opts.FailFast {
				return handlerErr
			}
		}
	}
	events.Key.Dispatch(current.Name(), int(ev.Key), ev.Handled)

	if !ev.Handled && ev.Key == keycode.Esc {
		return fw.ReturnToLauncher(ctx)
	}
	return nil
}

func (fw *Framework) dispatch(ctx context.Context, h KeyHandler, app App, ev *KeyEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerPanic{App: app.Name(), Value: r, Stack: debug.Stack()}
		}
	}()
	return h.HandleKey(ctx, ev, fw)
}

// Post queues fn to run on the loop goroutine before the next keyboard
// poll.
func (fw *Framework) Post(fn func(context.Context)) error {
	select {
	case fw.posted <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Call posts fn and waits for its result.
func (fw *Framework) Call(ctx context.Context, fn func(context.Context) error) error {
	result := make(chan error, 1)
	if err := fw.Post(func(loopCtx context.Context) { result <- fn(loopCtx) }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (fw *Framework) drainPosted(ctx context.Context) {
	for {
		select {
		case fn := <-fw.posted:
			fn(ctx)
		default:
			return
		}
	}
}

func (fw *Framework) start(ctx context.Context, app App) {
	fw.mu.Lock()
	fw.active = app
	fw.mu.Unlock()
	Start(ctx, app, fw)
	if fw.opts.OnSwitch != nil {
		fw.opts.OnSwitch(app)
	}
}

func (fw *Framework) stopActive() {
	fw.mu.Lock()
	active := fw.active
	fw.active = nil
	fw.mu.Unlock()
	if active != nil {
		Stop(active)
	}
}

func (fw *Framework) openKeyboard() (Keyboard, error) {
	if fw.opts.NewKeyboard == nil {
		return idleKeyboard{}, nil
	}
	return fw.opts.NewKeyboard()
}

func (fw *Framework) resolveHandler(app App) {
	if h, ok := app.(KeyHandler); ok {
		fw.handlers[app] = h
	}
}

func (fw *Framework) indexOf(app App) int {
	for i, candidate := range fw.apps {
		if candidate == app {
			return i
		}
	}
	return -1
}
