// Package routes organizes HTTP endpoints into prefixed groups and builds
// a net/http multiplexer from them.
package routes

import (
	"net/http"
	"strings"
)

// Route binds an HTTP method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Build registers all groups onto a new ServeMux rooted at the given base
// prefix (e.g. "/api").
func Build(base string, groups ...Group) *http.ServeMux {
	mux := http.NewServeMux()
	for _, g := range groups {
		register(mux, base, g)
	}
	return mux
}

func register(mux *http.ServeMux, base string, g Group) {
	prefix := joinPath(base, g.Prefix)

	for _, r := range g.Routes {
		pattern := joinPath(prefix, r.Pattern)
		mux.HandleFunc(r.Method+" "+pattern, r.Handler)
	}

	for _, child := range g.Children {
		register(mux, prefix, child)
	}
}

func joinPath(base, suffix string) string {
	base = strings.TrimSuffix(base, "/")
	if suffix == "" {
		return base
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return base + suffix
}
