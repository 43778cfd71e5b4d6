// Package view renders the HTML pages of the to-do list.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/roach88/todos/internal/todo"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Globals are values every page can reference.
type Globals struct {
	// URLPath prefixes every link and asset URL.
	URLPath string

	// Theme is set as the data-theme attribute of the page.
	Theme string
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl    *template.Template
	globals Globals
}

type itemData struct {
	URLPath string
	Task    todo.Task
}

type homeData struct {
	Globals
	Items []itemData
}

type notFoundData struct {
	Globals
	Path string
}

// New parses the embedded templates.
func New(g Globals) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, globals: g}, nil
}

// Globals returns the page globals the renderer was built with.
func (r *Renderer) Globals() Globals { return r.globals }

// Home renders the list page with tasks in the given order.
func (r *Renderer) Home(w io.Writer, tasks []todo.Task) error {
	data := homeData{Globals: r.globals, Items: make([]itemData, 0, len(tasks))}
	for _, t := range tasks {
		data.Items = append(data.Items, itemData{URLPath: r.globals.URLPath, Task: t})
	}
	return r.execute(w, "home", data)
}

// Item renders a single todo-item element.
func (r *Renderer) Item(w io.Writer, t todo.Task) error {
	return r.execute(w, "todo-item", itemData{URLPath: r.globals.URLPath, Task: t})
}

// NotFound renders the page shown for unknown paths.
func (r *Renderer) NotFound(w io.Writer, path string) error {
	return r.execute(w, "notfound", notFoundData{Globals: r.globals, Path: path})
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// Assets returns the static files (stylesheet and icons) rooted so that
// "css/style.css" is the stylesheet.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded directory always exists
	}
	return sub
}
