package framework

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rook-computer/cardkit/internal/logging"
	"github.com/rook-computer/cardkit/internal/logging/events"
)

const (
	defaultAppName         = "Unnamed App"
	defaultTaskJoinTimeout = time.Second
)

// App is the lifecycle contract every app implements. Embed Base to get the
// default hooks; override only what the app needs.
//
// Hooks run on the framework loop goroutine, except OnRun which runs on the
// app's background task goroutine. Apps that share state between OnRun and
// their key handler must guard it themselves.
type App interface {
	Name() string

	OnInstall() error
	OnLaunch()
	OnView()
	OnReady(ctx context.Context)
	OnRun(ctx context.Context) error
	OnHide()
	OnExit()
	OnUninstall()

	base() *Base
}

// KeyHandler is implemented by apps that want key events while current.
// Set ev.Handled to consume the key; leaving ESC unhandled returns to the
// launcher.
type KeyHandler interface {
	HandleKey(ctx context.Context, ev *KeyEvent, fw *Framework) error
}

// Base provides default hooks and owns the app's background task.
type Base struct {
	// Title is shown by the launcher.
	Title string

	mu          sync.Mutex
	self        App
	fw          *Framework
	logger      logging.Logger
	joinTimeout time.Duration
	task        *task
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (b *Base) base() *Base { return b }

// Name returns Title, or a placeholder when the app never set one.
func (b *Base) Name() string {
	if b.Title == "" {
		return defaultAppName
	}
	return b.Title
}

// Framework returns the framework that last started the app, if any.
func (b *Base) Framework() *Framework {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fw
}

// Logger returns the framework logger, or a no-op logger before start.
func (b *Base) Logger() logging.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return logging.OrNoop(b.logger)
}

func (b *Base) OnInstall() error { return nil }
func (b *Base) OnLaunch()        {}
func (b *Base) OnView()          {}
func (b *Base) OnExit()          {}
func (b *Base) OnUninstall()     {}

// OnReady spawns the background task running the app's OnRun.
func (b *Base) OnReady(ctx context.Context) {
	b.mu.Lock()
	run := b.OnRun
	if b.self != nil {
		run = b.self.OnRun
	}
	b.mu.Unlock()
	b.SpawnTask(ctx, run)
}

// OnRun idles until the task is cancelled.
func (b *Base) OnRun(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// OnHide cancels the background task. Safe without a running task.
func (b *Base) OnHide() { b.CancelTask() }

// TaskRunning reports whether a background task handle is held.
func (b *Base) TaskRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.task != nil
}

// SpawnTask starts run on its own goroutine, replacing any previous task.
func (b *Base) SpawnTask(ctx context.Context, run func(context.Context) error) {
	b.CancelTask()
	if ctx == nil {
		ctx = context.Background()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	t := &task{cancel: cancel, done: make(chan struct{})}

	b.mu.Lock()
	b.task = t
	logger := logging.OrNoop(b.logger)
	b.mu.Unlock()

	name := b.Name()
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("task panic: %v", r)
				logger.Errorf("task", "%s: %v", name, err)
				events.App.TaskError(name, err)
			}
		}()
		if err := run(taskCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("task", "%s: %v", name, err)
			events.App.TaskError(name, err)
		}
	}()
}

// CancelTask cancels the background task, clears the handle and waits for
// the goroutine to return, up to the join timeout.
func (b *Base) CancelTask() {
	b.mu.Lock()
	t := b.task
	b.task = nil
	timeout := b.joinTimeout
	logger := logging.OrNoop(b.logger)
	b.mu.Unlock()
	if t == nil {
		return
	}
	t.cancel()
	if timeout <= 0 {
		timeout = defaultTaskJoinTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
	case <-timer.C:
		logger.Errorf("task", "%s: task did not stop within %s", b.Name(), timeout)
	}
}

func (b *Base) bind(self App, fw *Framework) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.self = self
	if fw != nil {
		b.fw = fw
		b.logger = fw.logger
		b.joinTimeout = fw.opts.TaskJoinTimeout
	}
}

// Install runs the install hook. Calling it twice runs the hook twice.
func Install(app App) error {
	app.base().bind(app, nil)
	return app.OnInstall()
}

// Start stores fw (when non-nil) and runs OnLaunch, OnView and OnReady in
// that order.
func Start(ctx context.Context, app App, fw *Framework) {
	app.base().bind(app, fw)
	app.OnLaunch()
	app.OnView()
	app.OnReady(ctx)
}

// Stop runs OnHide then OnExit.
func Stop(app App) {
	app.OnHide()
	app.OnExit()
}

// Pause stops the background task without touching view or resources.
func Pause(app App) { app.OnHide() }

// Resume restarts the background task of a paused app.
func Resume(ctx context.Context, app App) {
	app.base().bind(app, nil)
	app.OnReady(ctx)
}

// Uninstall runs the uninstall hook.
func Uninstall(app App) { app.OnUninstall() }
