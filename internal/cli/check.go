package cli

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/flightbox/flightbox/internal/database"
	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the database is within its configured limits",
		Long: `Verify the database is within its configured limits.

Exits 0 when the directory holds at most the configured number of records
and at most the configured number of bytes, 1 when either limit is
exceeded.

Example:
  flightbox check --db ./flightbox-db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
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
	if !stats.Consistent {
		return NewExitError(ExitFailure, fmt.Sprintf("database exceeds limits: %d records, %s",
			stats.RecordCount, humanize.IBytes(uint64(stats.TotalBytes))))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d records, %s\n",
		stats.RecordCount, humanize.IBytes(uint64(stats.TotalBytes)))
	return nil
}
