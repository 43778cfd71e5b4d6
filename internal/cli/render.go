package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/todos/internal/todo"
)

var (
	idStyle    = lipgloss.NewStyle().Width(4).Align(lipgloss.Right).Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	dueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	descStyle  = lipgloss.NewStyle().PaddingLeft(9).Faint(true)
)

// renderTask renders one task as the terminal form of a todo-item:
//
//	   1 [x] Title  due 13/09/2025
//	         description
func renderTask(t todo.Task) string {
	check := "[ ]"
	title := titleStyle.Render(t.Title)
	if t.IsCompleted {
		check = "[x]"
		title = doneStyle.Render(t.Title)
	}

	line := idStyle.Render(strconv.FormatInt(t.ID, 10)) + " " + check + " " + title
	if t.DueDate != "" {
		line += "  " + dueStyle.Render("due "+t.DueDate)
	}
	if t.Description == "" {
		return line
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, descStyle.Render(t.Description))
}

// renderTasks renders tasks one per block, or a placeholder when empty.
func renderTasks(tasks []todo.Task) string {
	if len(tasks) == 0 {
		return "No tasks."
	}
	blocks := make([]string, len(tasks))
	for i, t := range tasks {
		blocks[i] = renderTask(t)
	}
	return strings.Join(blocks, "\n")
}
