package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todos/internal/todo"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Description string
	DueDate     string
	Done        bool
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a task to the list under the next free identifier.

Example:
  todos add "Imparare IndexedDB" --due 13/09/2025
  todos add "Write report" --description "quarterly numbers" --done`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&opts.DueDate, "due", "", "due date (dd/mm/yyyy)")
	cmd.Flags().BoolVar(&opts.Done, "done", false, "mark the task completed")

	return cmd
}

func runAdd(opts *AddOptions, title string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.list.Add(commandContext(cmd), todo.Task{
		Title:       title,
		Description: opts.Description,
		DueDate:     opts.DueDate,
		IsCompleted: opts.Done,
	})
	if err != nil {
		return s.taskFailure("failed to add task", err)
	}
	return s.out.Success(t, fmt.Sprintf("✓ Added task %d\n%s", t.ID, renderTask(t)))
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Aliases:       []string{"ls"},
		Short:         "List all tasks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd, slog.LevelWarn)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.list.All(commandContext(cmd))
			if err != nil {
				return s.taskFailure("failed to list tasks", err)
			}
			return s.out.Success(tasks, renderTasks(tasks))
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(rootOpts, cmd, args[0], "failed to show task",
				func(s *session, id int64) (todo.Task, error) {
					return s.list.Get(commandContext(cmd), id)
				},
				renderTask,
			)
		},
	}
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "toggle <id>",
		Short:         "Flip a task between open and completed",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(rootOpts, cmd, args[0], "failed to toggle task",
				func(s *session, id int64) (todo.Task, error) {
					return s.list.Toggle(commandContext(cmd), id)
				},
				renderTask,
			)
		},
	}
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>",
		Aliases:       []string{"delete"},
		Short:         "Remove a task",
		Long:          "Remove a task. Removing an id that does not exist succeeds.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(rootOpts, cmd, args[0], "failed to remove task",
				func(s *session, id int64) (todo.Task, error) {
					return todo.Task{ID: id}, s.list.Remove(commandContext(cmd), id)
				},
				func(t todo.Task) string { return fmt.Sprintf("✓ Removed task %d", t.ID) },
			)
		},
	}
}

// withTask runs fn on the task id in arg and reports the result.
func withTask(
	opts *RootOptions,
	cmd *cobra.Command,
	arg, failure string,
	fn func(s *session, id int64) (todo.Task, error),
	text func(todo.Task) string,
) error {
	id, err := parseID(newFormatter(opts, cmd), arg)
	if err != nil {
		return err
	}

	s, err := openSession(opts, cmd, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := fn(s, id)
	if err != nil {
		return s.taskFailure(failure, err)
	}
	return s.out.Success(t, text(t))
}
