package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/todos/internal/record"
)

// ErrNotFound is returned when no task has the requested identifier.
var ErrNotFound = errors.New("task not found")

// Store is the subset of the local store the list needs.
// *localdb.DB satisfies it.
type Store interface {
	Open(ctx context.Context, collection, keyPath string) error
	Push(ctx context.Context, collection string, rec record.Record) (int64, error)
	Get(ctx context.Context, collection string, key any) (record.Record, error)
	GetAll(ctx context.Context, collection string) ([]record.Record, error)
	Put(ctx context.Context, collection string, rec record.Record) error
	Delete(ctx context.Context, collection string, key any) error
}

// List is the task list kept in the "tasks" collection.
type List struct {
	store  Store
	logger *slog.Logger
}

// OpenList opens the tasks collection on store and returns a List over it.
func OpenList(ctx context.Context, store Store, logger *slog.Logger) (*List, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := store.Open(ctx, Collection, KeyPath); err != nil {
		return nil, fmt.Errorf("open task list: %w", err)
	}
	return &List{store: store, logger: logger}, nil
}

// All returns every task in identifier order. Stored records that are not
// tasks are skipped.
func (l *List) All(ctx context.Context) ([]Task, error) {
	recs, err := l.store.GetAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]Task, 0, len(recs))
	for _, rec := range recs {
		t, ok := FromRecord(rec, KeyPath)
		if !ok {
			l.logger.Debug("skipping record without task", "key", rec[KeyPath])
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Get returns the task with identifier id.
func (l *List) Get(ctx context.Context, id int64) (Task, error) {
	rec, err := l.store.Get(ctx, Collection, id)
	if err != nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	if rec == nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	t, ok := FromRecord(rec, KeyPath)
	if !ok {
		return Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return t, nil
}

// Add normalizes and validates t, stores it under a new identifier and
// returns it with the identifier set. Any ID on t is ignored.
func (l *List) Add(ctx context.Context, t Task) (Task, error) {
	t = Normalize(t)
	t.ID = 0
	if err := Validate(t); err != nil {
		return Task{}, err
	}

	id, err := l.store.Push(ctx, Collection, t.Record())
	if err != nil {
		return Task{}, fmt.Errorf("add task: %w", err)
	}
	t.ID = id
	l.logger.Info("task added", "id", id, "title", t.Title)
	return t, nil
}

// Update replaces the stored task with the same identifier.
func (l *List) Update(ctx context.Context, t Task) (Task, error) {
	if t.ID <= 0 {
		return Task{}, &ValidationError{Field: "id", Message: "identifier is required"}
	}
	if _, err := l.Get(ctx, t.ID); err != nil {
		return Task{}, err
	}

	t = Normalize(t)
	if err := Validate(t); err != nil {
		return Task{}, err
	}
	if err := l.store.Put(ctx, Collection, t.Record()); err != nil {
		return Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	l.logger.Info("task updated", "id", t.ID)
	return t, nil
}

// Toggle flips the completion state of task id and persists it.
func (l *List) Toggle(ctx context.Context, id int64) (Task, error) {
	t, err := l.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.IsCompleted = !t.IsCompleted
	if err := l.store.Put(ctx, Collection, t.Record()); err != nil {
		return Task{}, fmt.Errorf("toggle task %d: %w", id, err)
	}
	l.logger.Info("task toggled", "id", id, "completed", t.IsCompleted)
	return t, nil
}

// Remove deletes task id. Removing a missing task succeeds.
func (l *List) Remove(ctx context.Context, id int64) error {
	if err := l.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("remove task %d: %w", id, err)
	}
	l.logger.Info("task removed", "id", id)
	return nil
}
