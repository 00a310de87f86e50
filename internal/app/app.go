// Package app wires the framework, renderer, input, storage and dev API
// into one runnable device. Both binaries build a Host and differ only in
// their sinks and defaults.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/cardkit/internal/apps"
	"github.com/rook-computer/cardkit/internal/assets"
	"github.com/rook-computer/cardkit/internal/config"
	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/input"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/launcher"
	"github.com/rook-computer/cardkit/internal/logging"
	"github.com/rook-computer/cardkit/internal/prefs"
	"github.com/rook-computer/cardkit/internal/registry"
	"github.com/rook-computer/cardkit/internal/render"
	"github.com/rook-computer/cardkit/internal/state"
	"github.com/rook-computer/cardkit/internal/system"
	"github.com/rook-computer/cardkit/internal/web"
)

type Host struct {
	Config   config.Config
	Logger   logging.Logger
	Store    *state.Store
	Prefs    *prefs.Store
	Canvas   *render.Canvas
	Queue    *input.Queue
	Driver   input.Driver
	Console  *system.Console
	FW       *framework.Framework
	Launcher *launcher.Launcher
	Web      *web.HTTPServer

	// Stdin is read by the terminal driver; nil means os.Stdin.
	Stdin  *os.File
	// Routes adds binary specific endpoints next to the dev API.
	Routes func(mux *http.ServeMux)

	exitOnce atomic.Bool
	exitCh   chan error
	stopOnce sync.Once
}

// New builds every subsystem but starts none of them. The canvas presents
// to sinks.
func New(cfg config.Config, logger logging.Logger, sinks ...render.Sink) (*Host, error) {
	logger = logging.OrNoop(logger)
	h := &Host{
		Config: cfg,
		Logger: logger,
		Store:  state.NewStore(),
		Queue:  input.NewQueue(input.DefaultQueueSize),
		exitCh: make(chan error, 1),
	}

	if cfg.Apps.PrefsPath != "" {
		p, err := prefs.Open(cfg.Apps.PrefsPath)
		if err != nil {
			logger.Errorf("prefs", "open %s: %v (settings will not persist)", cfg.Apps.PrefsPath, err)
		} else {
			h.Prefs = p
		}
	}
	h.Store.SetBrightness(apps.SavedBrightness(h.Prefs))

	h.Canvas = render.NewCanvas(logger, sinks...)
	h.Canvas.Brightness = h.Store.Brightness

	appsFS, appsRoot, mode := appSource(cfg.Apps.Dir)
	h.Store.SetRunMode(string(mode))
	logger.Infof("app", "apps from %s (%s mode)", describeSource(cfg.Apps.Dir), mode)

	catalog := registry.NewCatalog[framework.App]()
	apps.Register(catalog, apps.Deps{Canvas: h.Canvas, Prefs: h.Prefs, State: h.Store})

	kb := input.NewQueueKeyboard(h.Queue)
	kb.OnKey = func(key keycode.Code) {
		h.Store.RecordKey(int(key))
		h.Store.SetDropped(h.Queue.Dropped())
	}

	h.FW = framework.New(framework.Options{
		Logger:       logger,
		TickInterval: cfg.Runtime.Tick,
		FailFast:     cfg.Runtime.FailFast,
		NewKeyboard:  func() (framework.Keyboard, error) { return kb, nil },
		Update:       h.flush,
		OnSwitch:     func(a framework.App) { h.Store.SetCurrent(a.Name()) },
		AppsFS:       appsFS,
		AppsRoot:     appsRoot,
		Catalog:      catalog,
		RunMode:      mode,
	})

	if cfg.Apps.Standalone != "" {
		if h.FW.GetOrLoadApp(cfg.Apps.Standalone) == nil {
			_ = h.Close()
			return nil, fmt.Errorf("standalone app %q: %w", cfg.Apps.Standalone, framework.ErrNotAvailable)
		}
		logger.Infof("app", "standalone %s", cfg.Apps.Standalone)
	} else {
		h.Launcher = launcher.New(h.Canvas)
		if err := h.FW.Install(h.Launcher); err != nil {
			_ = h.Close()
			return nil, err
		}
		h.FW.InstallLauncher(h.Launcher)
	}

	return h, nil
}

// appSource picks the on-disk apps directory when one is configured and
// the embedded manifests otherwise.
func appSource(dir string) (fs.FS, string, framework.RunMode) {
	if dir != "" {
		return os.DirFS(dir), ".", framework.RunModeRemote
	}
	return assets.Apps, assets.AppsRoot, framework.RunModeFlash
}

func describeSource(dir string) string {
	if dir == "" {
		return "embedded manifests"
	}
	return dir
}

// Exit requests the loop to stop. Only the first call counts.
func (h *Host) Exit(err error) {
	if !h.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case h.exitCh <- err:
	default:
	}
}

// Start runs the device until ctx is done, Exit is called or a standalone
// app returns. A nil error means a clean exit.
func (h *Host) Start(ctx context.Context) error {
	if h.Console != nil {
		_ = h.Console.EnterGraphics()
		defer func() { _ = h.Console.Restore() }()
	}

	if h.Driver == nil {
		h.Driver = h.driverFor(h.Config.Device.Input)
	}
	if err := h.Driver.Start(ctx, h.Queue); err != nil {
		h.Logger.Errorf("input", "driver start: %v", err)
	}
	defer func() { _ = h.Driver.Stop() }()

	if h.Web == nil && h.Config.Server.ListenAddr != "" {
		h.Web = web.NewHTTPServer(h.Config.Server.ListenAddr, h.Handler(), h.Logger)
	}
	if h.Web != nil {
		if err := h.Web.Start(ctx); err != nil {
			h.Logger.Errorf("web", "start: %v", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	exited := make(chan error, 1)
	go func() {
		select {
		case err := <-h.exitCh:
			exited <- err
			cancel()
		case <-runCtx.Done():
		}
	}()

	h.Store.SetPhase(state.RUNNING)
	err := h.FW.Run(runCtx)
	h.Store.SetPhase(state.STOPPED)

	select {
	case exitErr := <-exited:
		return exitErr
	default:
	}
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return ctx.Err()
	}
	return err
}

// Close releases the display, dev API and preferences. It is safe to call
// more than once.
func (h *Host) Close() error {
	var errs []error
	h.stopOnce.Do(func() {
		if h.Web != nil {
			errs = append(errs, h.Web.Stop())
		}
		if h.Canvas != nil {
			errs = append(errs, h.Canvas.Close())
		}
		errs = append(errs, h.Prefs.Close())
	})
	return errors.Join(errs...)
}

// Handler serves the dev API backed by this host.
func (h *Host) Handler() http.Handler {
	deps := web.APIV1Deps{
		Apps:   web.FrameworkTree{FW: h.FW},
		Keys:   h.Queue,
		State:  h.Store,
		Screen: h.Canvas,
	}
	if h.Routes != nil {
		return web.NewDefaultMux(deps, h.Config.Server.DevMode, h.Routes)
	}
	return web.NewDefaultMux(deps, h.Config.Server.DevMode)
}

func (h *Host) flush() {
	if err := h.Canvas.Flush(); err != nil {
		h.Logger.Errorf("render", "flush: %v", err)
	}
}

func (h *Host) driverFor(source string) input.Driver {
	switch source {
	case config.InputEvdev:
		d := input.NewEvdevDriver(h.Config.Device.KeyboardGlob, h.Logger)
		d.OnExit = func() { h.Exit(nil) }
		return d
	case config.InputTerminal:
		in := h.Stdin
		if in == nil {
			in = os.Stdin
		}
		d := input.NewTerminalDriver(in, h.Logger)
		d.OnInterrupt = func() { h.Exit(nil) }
		return d
	default:
		return input.NoopDriver{}
	}
}
