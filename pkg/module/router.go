package module

import (
	"net/http"
	"strings"
)

// Router dispatches requests to mounted modules by path prefix,
// falling back to a native ServeMux for unmatched paths.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates a Router with an empty module map and native fallback mux.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers a module to handle requests matching its prefix.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

// ServeHTTP dispatches to the matching module or falls back to the native mux.
// A single trailing slash is trimmed before matching.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.ServeHTTP(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
