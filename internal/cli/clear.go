package cli

import (
	"fmt"
	"log/slog"

	"github.com/flightbox/flightbox/internal/database"
	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Force bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every file in the database directory",
		Long: `Delete every file in the database directory. The directory itself is
kept. Refuses to run without --force.

Example:
  flightbox clear --db ./flightbox-db --force`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm the deletion")

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	if !opts.Force {
		return NewExitError(ExitCommandError, "refusing to clear the database without --force")
	}
	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	db, err := database.Open(settings, slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	stats, err := db.Stats()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to scan database", err)
	}
	if err := db.Clear(); err != nil {
		return WrapExitError(ExitCommandError, "clear failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d file(s) from %s\n", stats.FileCount, db.Dir())
	return nil
}
