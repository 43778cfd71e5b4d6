package localdb

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/roach88/todos/internal/record"
)

const testDBName = "TaskDB"

// createTestDB creates a handle in dir that is closed when the test ends.
func createTestDB(t *testing.T, dir string, version int, opts ...Option) *DB {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	d := New(dir, testDBName, version, opts...)
	t.Cleanup(func() { d.Close() })
	return d
}

// syncBuffer is a bytes.Buffer safe for the loop and test goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// bufferLogger returns a logger writing text records to a buffer.
func bufferLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// taskRecord builds a to-do shaped record without an identifier.
func taskRecord(title string) record.Record {
	return record.Record{
		"task": map[string]any{
			"title":       title,
			"description": "",
			"dueDate":     "",
			"isCompleted": false,
		},
	}
}
