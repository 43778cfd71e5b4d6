package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// IDGenerator produces request ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request ids, so log lines
// sort by arrival.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RequestLog assigns every request a UUIDv7 id, echoed in the
// X-Request-Id response header, and logs one line per request.
func RequestLog(logger *slog.Logger, next http.Handler) http.Handler {
	return RequestLogWith(logger, UUIDv7Generator{}, next)
}

// RequestLogWith is RequestLog with ids drawn from gen.
func RequestLogWith(logger *slog.Logger, gen IDGenerator, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := gen.Generate()
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, req)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info("request",
			"id", id,
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
	})
}
