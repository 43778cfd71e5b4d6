package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/todos/internal/config"
	"github.com/roach88/todos/internal/localdb"
	"github.com/roach88/todos/internal/todo"
)

// session is an open task list plus what a command needs to report on it.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	db     *localdb.DB
	list   *todo.List
	out    *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}

// newLogger builds a text logger on w: Debug when verbose, level otherwise.
func newLogger(opts *RootOptions, w io.Writer, level slog.Level) *slog.Logger {
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openSession loads config and opens the task list. Failures are reported
// through the formatter and returned as ExitErrors.
func openSession(opts *RootOptions, cmd *cobra.Command, level slog.Level) (*session, error) {
	out := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd.ErrOrStderr(), level)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", nil, err)
	}

	db := localdb.New(cfg.DataDir, cfg.Database.Name, cfg.Database.Version, localdb.WithLogger(logger))
	list, err := todo.OpenList(commandContext(cmd), db, logger)
	if err != nil {
		db.Close()
		return nil, out.Fail(ExitCommandError, ErrCodeStore, "failed to open database", storeDetails(err), err)
	}

	logger.Debug("task list ready", "path", db.Path(), "version", db.Version())
	return &session{cfg: cfg, logger: logger, db: db, list: list, out: out}, nil
}

// Close closes the database, logging any error.
func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// taskFailure reports a task list error with the matching code.
func (s *session) taskFailure(message string, err error) error {
	var ve *todo.ValidationError
	switch {
	case errors.As(err, &ve):
		return s.out.Fail(ExitFailure, ErrCodeInvalidTask, message, ve, err)
	case errors.Is(err, todo.ErrNotFound):
		return s.out.Fail(ExitFailure, ErrCodeNotFound, message, nil, err)
	default:
		return s.out.Fail(ExitCommandError, ErrCodeStore, message, storeDetails(err), err)
	}
}

// storeDetails exposes the local store error kind and code, if any.
func storeDetails(err error) any {
	var le *localdb.Error
	if !errors.As(err, &le) {
		return nil
	}
	return map[string]string{"kind": string(le.Kind), "code": le.Code}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseID parses a task id argument.
func parseID(out *OutputFormatter, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = fmt.Errorf("must be positive")
		}
		return 0, out.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid task id %q", arg), nil, err)
	}
	return id, nil
}
