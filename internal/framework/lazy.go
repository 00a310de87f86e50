package framework

import (
	"github.com/rook-computer/cardkit/internal/logging/events"
	"github.com/rook-computer/cardkit/internal/registry"
)

// ScanApps builds the menu tree from manifests. It is a no-op after the
// first scan unless force is set, which also invalidates cached instances.
func (fw *Framework) ScanApps(force bool) error {
	fw.mu.Lock()
	if fw.scanned && !force {
		fw.mu.Unlock()
		return nil
	}
	fw.mu.Unlock()

	fw.logger.Infof("scan", "scanning %s (force=%t)", fw.opts.AppsRoot, force)
	if force {
		fw.cache.Bump()
	}
	tree, err := registry.Scanner{FS: fw.opts.AppsFS, Root: fw.opts.AppsRoot, Logger: fw.logger}.Scan()
	if err != nil {
		fw.logger.Errorf("scan", "%v", err)
	}

	fw.mu.Lock()
	fw.tree = tree
	fw.scanned = true
	fw.mu.Unlock()
	events.Registry.Scan(fw.opts.AppsRoot, fw.cache.Generation(), len(tree.Leaves()))
	return err
}

// AppRegistry returns the scanned tree, or nil before the first scan.
func (fw *Framework) AppRegistry() *registry.Node {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.tree
}

// GetOrLoadApp returns the cached instance for path or builds, installs and
// caches a new one. It returns nil when loading fails.
func (fw *Framework) GetOrLoadApp(path string) App {
	if app, ok := fw.cache.Get(path); ok {
		fw.logger.Infof("load", "using cached %s", path)
		events.Registry.Load(path, true)
		return app
	}
	return fw.loadApp(path)
}

func (fw *Framework) loadApp(path string) App {
	fw.logger.Infof("load", "loading %s", path)
	app, err := fw.catalog.New(path)
	if err != nil {
		fw.logger.Errorf("load", "failed to load %s: %v", path, err)
		return nil
	}
	if app == nil {
		fw.logger.Errorf("load", "failed to load %s: factory returned nil", path)
		return nil
	}
	if err := Install(app); err != nil {
		fw.logger.Errorf("load", "failed to install %s: %v", path, err)
		return nil
	}
	fw.cache.Put(path, app)

	fw.mu.Lock()
	if fw.indexOf(app) < 0 {
		fw.apps = append(fw.apps, app)
	}
	fw.loaded[app] = path
	fw.resolveHandler(app)
	fw.mu.Unlock()

	events.Registry.Load(path, false)
	return app
}

// Loaded reports whether app was created by GetOrLoadApp rather than
// installed directly.
func (fw *Framework) Loaded(app App) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, ok := fw.loaded[app]
	return ok
}

// ClearAppCache invalidates cached instances and forces the next ScanApps
// to rescan. Lazily loaded apps leave the app list and are uninstalled,
// except the one currently running.
func (fw *Framework) ClearAppCache() {
	generation := fw.cache.Bump()

	fw.mu.Lock()
	current, _ := fw.selector.Current()
	kept := fw.apps[:0:0]
	var removed []App
	for _, app := range fw.apps {
		if _, lazy := fw.loaded[app]; lazy && app != current && app != fw.launcher {
			removed = append(removed, app)
			delete(fw.loaded, app)
			delete(fw.handlers, app)
			continue
		}
		kept = append(kept, app)
	}
	fw.apps = kept
	if current != nil {
		_ = fw.selector.Select(current)
	}
	fw.scanned = false
	fw.mu.Unlock()

	for _, app := range removed {
		Uninstall(app)
	}
	fw.logger.Infof("load", "cleared app cache (generation %d, removed %d)", generation, len(removed))
	events.Registry.Clear(generation)
}
