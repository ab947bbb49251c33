// Package routes declares HTTP routes as nested groups and registers them on a ServeMux.
package routes

import (
	"net/http"

	"github.com/JaimeStill/proctor/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler.
// OpenAPI optionally documents the operation.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns returns the full ServeMux pattern of every route in the group tree.
func (g Group) Patterns() []string {
	var out []string
	g.Walk(func(path string, r Route) {
		out = append(out, r.Method+" "+path)
	})
	return out
}

// Walk calls fn for every route in the group tree with its full path.
func (g Group) Walk(fn func(path string, r Route)) {
	g.walk("", fn)
}

func (g Group) walk(parent string, fn func(path string, r Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix+r.Pattern, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}

// Register adds all routes from the given groups to the mux and returns
// the number of routes registered.
func Register(mux *http.ServeMux, groups ...Group) int {
	n := 0
	for _, group := range groups {
		group.Walk(func(path string, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
			n++
		})
	}
	return n
}
