// Package module mounts self-contained HTTP sub-applications under single-level prefixes.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/proctor/pkg/middleware"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner router
// with its own middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module with the given single-level prefix (e.g. "/api").
// Panics if the prefix is empty, missing a leading slash, or multi-level.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use adds middleware to the module's stack. The stack is fixed on the
// first request; later calls have no effect.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// ServeHTTP strips the module prefix from the request path and dispatches
// through the middleware stack to the inner router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	m.handler.ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL = new(url.URL)
	*r.URL = *req.URL
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
