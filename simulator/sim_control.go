package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rook-computer/cardkit/internal/app"
	"github.com/rook-computer/cardkit/internal/framework"
)

// SimControl exposes simulator-only endpoints for driving the device from
// scripts: jump straight into an app, go home, or quit.
type SimControl struct {
	host *app.Host
}

func NewSimControl(host *app.Host) *SimControl {
	return &SimControl{host: host}
}

type launchRequest struct {
	Path string `json:"path"`
}

func (c *SimControl) Register(mux *http.ServeMux) {
	mux.HandleFunc("/sim/launch", c.handleLaunch)
	mux.HandleFunc("/sim/home", c.handleHome)
	mux.HandleFunc("/sim/exit", c.handleExit)
}

func (c *SimControl) handleLaunch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req launchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		writeSimError(w, http.StatusBadRequest, err.Error())
		return
	}
	path := strings.Trim(strings.TrimSpace(req.Path), "/")
	if path == "" {
		writeSimError(w, http.StatusBadRequest, "path is required")
		return
	}

	fw := c.host.FW
	err := fw.Call(r.Context(), func(ctx context.Context) error {
		return fw.LaunchApp(ctx, fw.GetOrLoadApp(path))
	})
	switch {
	case errors.Is(err, framework.ErrNotAvailable):
		writeSimError(w, http.StatusNotFound, "app not available: "+path)
	case err != nil:
		writeSimError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "current": c.host.Store.Snapshot().Current})
	}
}

func (c *SimControl) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	fw := c.host.FW
	if err := fw.Call(r.Context(), fw.ReturnToLauncher); err != nil {
		writeSimError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "current": c.host.Store.Snapshot().Current})
}

func (c *SimControl) handleExit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeSimJSON(w, http.StatusAccepted, map[string]any{"ok": true})
	c.host.Exit(nil)
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"ok": false, "error": message})
}
