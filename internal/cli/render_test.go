package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/todos/internal/todo"
)

func TestRenderTask(t *testing.T) {
	out := renderTask(todo.Task{ID: 3, Title: "Imparare", DueDate: "13/09/2025", Description: "note", IsCompleted: true})

	assert.Contains(t, out, "3 [x] ")
	assert.Contains(t, out, "Imparare")
	assert.Contains(t, out, "due 13/09/2025")
	assert.Contains(t, out, "note")
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestRenderTask_Open(t *testing.T) {
	out := renderTask(todo.Task{ID: 1, Title: "A"})
	assert.Contains(t, out, "[ ] ")
	assert.NotContains(t, out, "due")
	assert.NotContains(t, out, "\n")
}

func TestRenderTasks(t *testing.T) {
	assert.Equal(t, "No tasks.", renderTasks(nil))

	out := renderTasks([]todo.Task{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	assert.Len(t, strings.Split(out, "\n"), 2)
}
