package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todos/internal/testutil"
)

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, name)
	})
}

func TestRouter_Dispatch(t *testing.T) {
	r := New()
	r.Add("/", named("home"))
	r.Add("/tasks/", named("tasks"))

	tests := []struct {
		path string
		want string
	}{
		{"/", "home"},
		{"", "home"},
		{"/tasks", "tasks"},
		{"/tasks/", "tasks"},
		{"/tasks//", "tasks"},
		{"/tasks?x=1", "tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://todos.test"+tt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := New()
	r.Add("/", named("home"))

	req := httptest.NewRequest(http.MethodGet, "/missing/%3Cb%3E/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "page not found: /missing/&lt;b&gt;")
}

func TestRouter_CustomNotFound(t *testing.T) {
	r := New()
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRouter_Routes(t *testing.T) {
	r := New()
	r.Add("/tasks/toggle", named("t"))
	r.Add("/", named("h"))
	r.Add("/tasks", named("c"))
	r.Add("/tasks/", named("replaced"))

	assert.Equal(t, []string{"/", "/tasks", "/tasks/toggle"}, r.Routes())
}

func TestClean(t *testing.T) {
	assert.Equal(t, "/", Clean(""))
	assert.Equal(t, "/", Clean("///"))
	assert.Equal(t, "/a/b", Clean("/a/b/"))
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := RequestLog(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)

	id, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	out := buf.String()
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/tasks")
	assert.Contains(t, out, "status=201")
	assert.Contains(t, out, "id="+id.String())
}

func TestRequestLog_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)), named("body"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "body", rec.Body.String())
	assert.Contains(t, buf.String(), "status=200")
}

func TestRequestLogWith_FixedIDs(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogWith(slog.New(slog.NewTextHandler(&buf, nil)), testutil.NewSequenceIDs("req"), named("ok"))

	for _, want := range []string{"req-1", "req-2"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, want, rec.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), "id="+want)
	}
}
