package cli

import (
	"fmt"
	"log/slog"

	"github.com/flightbox/flightbox/internal/database"
	"github.com/spf13/cobra"
)

// GCOptions holds flags for the gc command.
type GCOptions struct {
	*RootOptions
}

// NewGCCommand creates the gc command.
func NewGCCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GCOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove orphaned files from the database directory",
		Long: `Remove orphaned files from the database directory: leftover temporary
files from interrupted commits and artifacts whose identifier the database
no longer tracks.

Example:
  flightbox gc --db ./flightbox-db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGC(opts, cmd)
		},
	}

	return cmd
}

func runGC(opts *GCOptions, cmd *cobra.Command) error {
	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	db, err := database.Open(settings, slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	removed, err := db.Sweep()
	if err != nil {
		return WrapExitError(ExitCommandError, "sweep failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned file(s)\n", removed)
	return nil
}
