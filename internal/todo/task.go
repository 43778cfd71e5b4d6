// Package todo is the task list built on top of the local store.
//
// A Task is stored as a record whose fields live under the "task" key and
// whose identifier lives at the collection key path "id":
//
//	{"id": 1, "task": {"title": "...", "description": "", "dueDate": "", "isCompleted": false}}
package todo

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/todos/internal/record"
)

// Storage layout constants.
const (
	DatabaseName = "TaskDB"
	Version      = 1
	Collection   = "tasks"
	KeyPath      = "id"
)

// Task is one entry of the to-do list.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	IsCompleted bool   `json:"isCompleted"`
}

// Fields returns the task fields as stored under the "task" key.
func (t Task) Fields() map[string]any {
	return map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     t.DueDate,
		"isCompleted": t.IsCompleted,
	}
}

// Record returns the stored form of t. The identifier is included only
// when it has been assigned.
func (t Task) Record() record.Record {
	rec := record.Record{"task": t.Fields()}
	if t.ID > 0 {
		rec[KeyPath] = t.ID
	}
	return rec
}

// FromRecord decodes a stored record. Records without a "task" object are
// not tasks and return ok=false.
func FromRecord(rec record.Record, keyPath string) (Task, bool) {
	raw, ok := rec["task"]
	if !ok {
		return Task{}, false
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		if r, isRec := raw.(record.Record); isRec {
			fields = r
		} else {
			return Task{}, false
		}
	}

	var t Task
	if v, ok := rec.Lookup(keyPath); ok {
		if key, err := record.NormalizeKey(v); err == nil {
			t.ID, _ = record.NumericKey(key)
		}
	}
	t.Title, _ = fields["title"].(string)
	t.Description, _ = fields["description"].(string)
	t.DueDate, _ = fields["dueDate"].(string)
	t.IsCompleted, _ = fields["isCompleted"].(bool)
	return t, true
}

// Normalize returns t with text fields NFC-normalized and trimmed.
func Normalize(t Task) Task {
	t.Title = normalizeText(t.Title)
	t.Description = normalizeText(t.Description)
	t.DueDate = normalizeText(t.DueDate)
	return t
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
