package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/todos/internal/view"
	"github.com/roach88/todos/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the to-do list page",
		Long: `Serve the to-do list as a web page until interrupted.

Example:
  todos serve --addr :8080
  todos serve --config todos.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer s.Close()

	renderer, err := view.New(view.Globals{URLPath: s.cfg.URLPath, Theme: s.cfg.Theme})
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeGeneric, "failed to load templates", nil, err)
	}
	handler, err := web.NewHandler(web.NewHome(s.list, renderer, s.logger), s.logger)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeGeneric, "failed to register routes", nil, err)
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeServe, "failed to listen", nil, err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", s.cfg.Database.Name, ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := web.Serve(ctx, ln, handler, s.logger); err != nil {
		return s.out.Fail(ExitFailure, ErrCodeServe, "server error", nil, err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
