package web

import (
	"context"
	"io"

	"github.com/rook-computer/cardkit/internal/framework"
	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/registry"
	"github.com/rook-computer/cardkit/internal/state"
)

// AppTree exposes the scanned app registry.
type AppTree interface {
	Apps(ctx context.Context) (*registry.Node, error)
	Reload(ctx context.Context) (*registry.Node, error)
}

// KeySink accepts injected keys. input.Queue satisfies it.
type KeySink interface {
	Push(key keycode.Code) bool
}

type StateSource interface {
	Snapshot() state.State
}

// Screen encodes the last presented frame. render.Canvas satisfies it.
type Screen interface {
	WritePNG(w io.Writer) error
}

type APIV1Deps struct {
	Apps   AppTree
	Keys   KeySink
	State  StateSource
	Screen Screen
}

// FrameworkTree runs registry work on the framework loop goroutine.
type FrameworkTree struct {
	FW *framework.Framework
}

func (t FrameworkTree) Apps(ctx context.Context) (*registry.Node, error) {
	if tree := t.FW.AppRegistry(); tree != nil {
		return tree, nil
	}
	var tree *registry.Node
	err := t.FW.Call(ctx, func(context.Context) error {
		err := t.FW.ScanApps(false)
		tree = t.FW.AppRegistry()
		return err
	})
	return tree, err
}

// Reload drops cached app instances and rescans. When the launcher is on
// screen it reloads itself so its menu stack does not point at stale
// nodes.
func (t FrameworkTree) Reload(ctx context.Context) (*registry.Node, error) {
	var tree *registry.Node
	err := t.FW.Call(ctx, func(context.Context) error {
		var err error
		current, _ := t.FW.Current()
		if r, ok := current.(interface{ Reload() }); ok && current == t.FW.Launcher() {
			r.Reload()
		} else {
			t.FW.ClearAppCache()
			err = t.FW.ScanApps(true)
		}
		tree = t.FW.AppRegistry()
		return err
	})
	return tree, err
}
