package web

import "net/http"

// RegisterAPIV1 registers the dev control routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, deps APIV1Deps) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(deps)))
}

// NewDefaultMux builds the handler used by both binaries, wrapped in
// permissive CORS when devMode is set. extra registers more routes on the
// same mux.
func NewDefaultMux(deps APIV1Deps, devMode bool, extra ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, deps)
	for _, register := range extra {
		register(mux)
	}
	if devMode {
		return WithDevCORS(mux)
	}
	return mux
}
