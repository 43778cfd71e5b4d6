// Package web serves the to-do list over HTTP.
package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/roach88/todos/internal/todo"
	"github.com/roach88/todos/internal/view"
)

// Home handles the list page and the task form posts.
type Home struct {
	list   *todo.List
	view   *view.Renderer
	logger *slog.Logger
}

// NewHome returns the controller for the list page.
func NewHome(list *todo.List, renderer *view.Renderer, logger *slog.Logger) *Home {
	if logger == nil {
		logger = slog.Default()
	}
	return &Home{list: list, view: renderer, logger: logger}
}

// Index renders every task.
func (h *Home) Index(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	tasks, err := h.list.All(r.Context())
	if err != nil {
		h.fail(w, r, "load tasks failed", err)
		return
	}

	var buf bytes.Buffer
	if err := h.view.Home(&buf, tasks); err != nil {
		h.fail(w, r, "render home failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// Create adds the task posted by the new-task form.
func (h *Home) Create(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form: "+err.Error(), http.StatusBadRequest)
		return
	}

	t := todo.Task{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		DueDate:     r.PostForm.Get("dueDate"),
		IsCompleted: r.PostForm.Get("isCompleted") != "",
	}
	if _, err := h.list.Add(r.Context(), t); err != nil {
		h.taskError(w, r, "add task failed", err)
		return
	}
	h.backToList(w, r)
}

// Toggle flips the completion state of the posted task id.
func (h *Home) Toggle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id, ok := formID(w, r)
	if !ok {
		return
	}
	if _, err := h.list.Toggle(r.Context(), id); err != nil {
		h.taskError(w, r, "toggle task failed", err)
		return
	}
	h.backToList(w, r)
}

// Delete removes the posted task id.
func (h *Home) Delete(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	id, ok := formID(w, r)
	if !ok {
		return
	}
	if err := h.list.Remove(r.Context(), id); err != nil {
		h.taskError(w, r, "remove task failed", err)
		return
	}
	h.backToList(w, r)
}

// NotFound renders the not-found page.
func (h *Home) NotFound(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.view.NotFound(&buf, r.URL.Path); err != nil {
		h.fail(w, r, "render not found failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write(buf.Bytes())
}

func (h *Home) backToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.view.Globals().URLPath+"/", http.StatusSeeOther)
}

// taskError maps list errors to status codes.
func (h *Home) taskError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var ve *todo.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, todo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.fail(w, r, msg, err)
	}
}

func (h *Home) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// allow writes 405 and returns false unless r uses one of methods.
func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// formID reads a positive task id from the "id" form value, writing 400
// when it is missing or malformed.
func formID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form: "+err.Error(), http.StatusBadRequest)
		return 0, false
	}
	raw := r.PostForm.Get("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid task id "+strconv.Quote(raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
