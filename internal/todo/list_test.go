package todo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/todos/internal/localdb"
	"github.com/roach88/todos/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestList opens a task list on a fresh database.
func createTestList(t *testing.T) (*List, *localdb.DB) {
	t.Helper()
	db := localdb.New(t.TempDir(), DatabaseName, Version, localdb.WithLogger(discardLogger()))
	t.Cleanup(func() { db.Close() })

	l, err := OpenList(context.Background(), db, discardLogger())
	require.NoError(t, err)
	return l, db
}

func TestList_AddAndAll(t *testing.T) {
	ctx := context.Background()
	l, _ := createTestList(t)

	tasks, err := l.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	a, err := l.Add(ctx, Task{Title: " A ", ID: 99})
	require.NoError(t, err)
	assert.Equal(t, Task{ID: 1, Title: "A"}, a)

	b, err := l.Add(ctx, Task{Title: "B", DueDate: "14/09/2025"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID)

	tasks, err = l.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Task{a, b}, tasks)
}

func TestList_AddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	l, _ := createTestList(t)

	_, err := l.Add(ctx, Task{Title: "  "})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	// A rejected task consumes no identifier.
	task, err := l.Add(ctx, Task{Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
}

func TestList_AllSkipsNonTaskRecords(t *testing.T) {
	ctx := context.Background()
	l, db := createTestList(t)

	_, err := db.Push(ctx, Collection, record.Record{"note": "not a task"})
	require.NoError(t, err)
	_, err = l.Add(ctx, Task{Title: "A"})
	require.NoError(t, err)

	tasks, err := l.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(2), tasks[0].ID)
}

func TestList_Get(t *testing.T) {
	ctx := context.Background()
	l, _ := createTestList(t)

	added, err := l.Add(ctx, Task{Title: "A", Description: "d"})
	require.NoError(t, err)

	got, err := l.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)

	_, err = l.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_TogglePersists(t *testing.T) {
	ctx := context.Background()
	l, _ := createTestList(t)

	added, err := l.Add(ctx, Task{Title: "A"})
	require.NoError(t, err)

	toggled, err := l.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)

	got, err := l.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	toggled, err = l.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsCompleted)

	_, err = l.Toggle(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_Update(t *testing.T) {
	ctx := context.Background()
	l, _ := createTestList(t)

	added, err := l.Add(ctx, Task{Title: "A"})
	require.NoError(t, err)

	added.Title = "A2"
	added.DueDate = "01/01/2026"
	updated, err := l.Update(ctx, added)
	require.NoError(t, err)

	got, err := l.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = l.Update(ctx, Task{ID: 9, Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Update(ctx, Task{Title: "x"})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestList_Remove(t *testing.T) {
	ctx := context.Background()
	l, _ := createTestList(t)

	added, err := l.Add(ctx, Task{Title: "A"})
	require.NoError(t, err)

	require.NoError(t, l.Remove(ctx, added.ID))
	require.NoError(t, l.Remove(ctx, added.ID), "removing a missing task succeeds")

	tasks, err := l.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// failingStore fails every operation after Open.
type failingStore struct{ err error }

func (s failingStore) Open(context.Context, string, string) error { return nil }
func (s failingStore) Push(context.Context, string, record.Record) (int64, error) {
	return 0, s.err
}
func (s failingStore) Get(context.Context, string, any) (record.Record, error) { return nil, s.err }
func (s failingStore) GetAll(context.Context, string) ([]record.Record, error) { return nil, s.err }
func (s failingStore) Put(context.Context, string, record.Record) error        { return s.err }
func (s failingStore) Delete(context.Context, string, any) error               { return s.err }

func TestList_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := &localdb.Error{Kind: localdb.KindWrite, Op: "push", Code: localdb.CodeQuotaExceeded, Err: errors.New("disk full")}
	l, err := OpenList(ctx, failingStore{err: storeErr}, discardLogger())
	require.NoError(t, err)

	_, err = l.Add(ctx, Task{Title: "A"})
	assert.ErrorIs(t, err, localdb.ErrWrite)
	assert.Equal(t, localdb.CodeQuotaExceeded, localdb.CodeOf(err))

	_, err = l.All(ctx)
	assert.ErrorIs(t, err, storeErr)

	_, err = l.Toggle(ctx, 1)
	assert.ErrorIs(t, err, storeErr)

	assert.ErrorIs(t, l.Remove(ctx, 1), storeErr)
}

func TestOpenList_OpenFailure(t *testing.T) {
	db := localdb.New(t.TempDir(), DatabaseName, 0, localdb.WithLogger(discardLogger()))
	t.Cleanup(func() { db.Close() })

	_, err := OpenList(context.Background(), db, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, localdb.ErrOpen)
}
