package web

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/roach88/todos/internal/router"
	"github.com/roach88/todos/internal/view"
)

// Routes registers the page and asset routes of h on r.
func Routes(r *router.Router, h *Home) error {
	r.Add("/", http.HandlerFunc(h.Index))
	r.Add("/tasks", http.HandlerFunc(h.Create))
	r.Add("/tasks/toggle", http.HandlerFunc(h.Toggle))
	r.Add("/tasks/delete", http.HandlerFunc(h.Delete))
	r.NotFound = http.HandlerFunc(h.NotFound)

	// The router matches exact paths, so each asset gets its own route.
	assets := view.Assets()
	files := http.FileServerFS(assets)
	return fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		r.Add("/"+path, files)
		return nil
	})
}

// NewHandler builds the complete HTTP handler: routes behind request
// logging.
func NewHandler(h *Home, logger *slog.Logger) (http.Handler, error) {
	r := router.New()
	if err := Routes(r, h); err != nil {
		return nil, err
	}
	return router.RequestLog(logger, r), nil
}
