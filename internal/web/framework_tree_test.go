package web

import (
	"context"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/registry"
)

type stubApp struct {
	framework.Base
}

type stubLauncher struct {
	framework.Base
	reloads atomic.Int32
}

func (l *stubLauncher) Reload() {
	l.reloads.Add(1)
	fw := l.Framework()
	fw.ClearAppCache()
	_ = fw.ScanApps(true)
}

func TestFrameworkTreeRunsOnLoop(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.json": {Data: []byte(`{"hello":"Hello World"}`)},
	}
	catalog := registry.NewCatalog[framework.App]()
	catalog.Register("hello", func() framework.App { return &stubApp{Base: framework.Base{Title: "Hello World"}} })

	fw := framework.New(framework.Options{AppsFS: fsys, AppsRoot: ".", Catalog: catalog, TickInterval: time.Millisecond})
	launcher := &stubLauncher{Base: framework.Base{Title: "Launcher"}}
	if err := fw.Install(launcher); err != nil {
		t.Fatalf("Install: %v", err)
	}
	fw.InstallLauncher(launcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	tree := FrameworkTree{FW: fw}
	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()

	root, err := tree.Apps(callCtx)
	if err != nil {
		t.Fatalf("Apps: %v", err)
	}
	if leaves := root.Leaves(); len(leaves) != 1 || leaves[0].Path != "hello" {
		t.Fatalf("leaves = %+v", leaves)
	}

	if _, err := tree.Reload(callCtx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := launcher.reloads.Load(); got != 1 {
		t.Fatalf("launcher reloads = %d, want 1", got)
	}
}
