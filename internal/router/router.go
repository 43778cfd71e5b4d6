// Package router dispatches requests by exact path.
package router

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Router maps exact request paths to handlers. Trailing slashes are
// ignored, so "/tasks/" and "/tasks" reach the same handler.
type Router struct {
	mu     sync.RWMutex
	routes map[string]http.Handler

	// NotFound serves paths with no route. Defaults to a plain 404 page
	// naming the path.
	NotFound http.Handler
}

// New returns an empty Router.
func New() *Router {
	return &Router{
		routes:   make(map[string]http.Handler),
		NotFound: http.HandlerFunc(notFound),
	}
}

// Add registers h for path, replacing any previous handler.
func (r *Router) Add(path string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[Clean(path)] = h
}

// Routes returns the registered paths in sorted order.
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ServeHTTP dispatches req to the handler registered for its path.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := Clean(req.URL.Path)

	r.mu.RLock()
	h, ok := r.routes[path]
	r.mu.RUnlock()

	if !ok {
		r.NotFound.ServeHTTP(w, req)
		return
	}
	h.ServeHTTP(w, req)
}

// Clean trims trailing slashes from path; an empty result becomes "/".
func Clean(path string) string {
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}

func notFound(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "<pre>page not found: %s</pre>\n", html.EscapeString(Clean(req.URL.Path)))
}
