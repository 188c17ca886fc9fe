package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flightbox/flightbox/internal/database"
	"github.com/spf13/cobra"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the database directory for foreign files",
		Long: `Watch the database directory and report files created there that the
database did not write itself. Runs until interrupted.

Example:
  flightbox watch --db ./flightbox-db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	db, err := database.Open(settings, slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}

	// Use the command's context if set (for testing), otherwise wire up
	// signal handling.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if err := db.Watch(ctx, func(name string) {
		fmt.Fprintf(out, "foreign file: %s\n", name)
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch database directory", err)
	}
	fmt.Fprintf(out, "watching %s\n", db.Dir())
	<-ctx.Done()
	return nil
}
