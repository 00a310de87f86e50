package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rook-computer/cardkit/internal/keycode"
	"github.com/rook-computer/cardkit/internal/registry"
)

const maxKeysBody = 64 << 10

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type appEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Module string `json:"module"`
}

type appsResponse struct {
	Apps []appEntry `json:"apps"`
}

// keysRequest injects keys in order: codes first, then names, then the
// characters of text.
type keysRequest struct {
	Codes []int    `json:"codes"`
	Names []string `json:"names"`
	Text  string   `json:"text"`
}

type keysResponse struct {
	Queued  int `json:"queued"`
	Dropped int `json:"dropped"`
}

type stateResponse struct {
	Phase      string `json:"phase"`
	RunMode    string `json:"runMode"`
	Current    string `json:"current"`
	Brightness int    `json:"brightness"`
	LastKey    int    `json:"lastKey"`
	LastLabel  string `json:"lastLabel"`
	KeyCount   uint64 `json:"keyCount"`
	Dropped    uint64 `json:"dropped"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/apps", func(w http.ResponseWriter, r *http.Request) { handleApps(w, r, deps) })
	mux.HandleFunc("/reload", func(w http.ResponseWriter, r *http.Request) { handleReload(w, r, deps) })
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) { handleKeys(w, r, deps) })
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) { handleState(w, r, deps) })
	mux.HandleFunc("/screen.png", func(w http.ResponseWriter, r *http.Request) { handleScreen(w, r, deps) })
	return mux
}

func handleApps(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Apps == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "app registry not configured")
		return
	}
	tree, err := deps.Apps.Apps(r.Context())
	if err != nil && tree == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "scan_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, appsResponse{Apps: toEntries(registry.Search(tree, r.URL.Query().Get("q")))})
}

func handleReload(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Apps == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "app registry not configured")
		return
	}
	tree, err := deps.Apps.Reload(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusServiceUnavailable, "reload_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, appsResponse{Apps: toEntries(tree.Leaves())})
}

func handleKeys(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Keys == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "key injection not configured")
		return
	}
	var req keysRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxKeysBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	keys, err := req.resolve()
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_key", err.Error())
		return
	}
	if len(keys) == 0 {
		writeAPIError(w, http.StatusBadRequest, "no_keys", "no keys given")
		return
	}

	var resp keysResponse
	for _, key := range keys {
		if deps.Keys.Push(key) {
			resp.Queued++
		} else {
			resp.Dropped++
		}
	}
	status := http.StatusAccepted
	if resp.Queued == 0 {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (req keysRequest) resolve() ([]keycode.Code, error) {
	keys := make([]keycode.Code, 0, len(req.Codes)+len(req.Names)+len(req.Text))
	for _, c := range req.Codes {
		if c <= 0 || c > 0xFF {
			return nil, errors.New("key codes must be in 1..255")
		}
		keys = append(keys, keycode.Code(c))
	}
	for _, name := range req.Names {
		code, ok := keycode.Parse(name)
		if !ok {
			return nil, errors.New("unknown key name " + strings.TrimSpace(name))
		}
		keys = append(keys, code)
	}
	for i := 0; i < len(req.Text); {
		ch, size := utf8.DecodeRuneInString(req.Text[i:])
		i += size
		switch {
		case ch == '\n':
			keys = append(keys, keycode.Enter)
		case ch < utf8.RuneSelf && keycode.IsPrintable(keycode.Code(ch)):
			keys = append(keys, keycode.Code(ch))
		default:
			return nil, errors.New("text must be printable ASCII")
		}
	}
	return keys, nil
}

func handleState(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.State == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "state not configured")
		return
	}
	snap := deps.State.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Phase:      snap.Phase.String(),
		RunMode:    snap.RunMode,
		Current:    snap.Current,
		Brightness: snap.Brightness,
		LastKey:    snap.Keys.Last,
		LastLabel:  keycode.Label(keycode.Code(snap.Keys.Last)),
		KeyCount:   snap.Keys.Count,
		Dropped:    snap.Keys.Dropped,
	})
}

func handleScreen(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Screen == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "screen not configured")
		return
	}
	var buf bytes.Buffer
	if err := deps.Screen.WritePNG(&buf); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func toEntries(nodes []*registry.Node) []appEntry {
	out := make([]appEntry, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, appEntry{Name: n.Name, Path: n.Path, Module: n.Module})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
