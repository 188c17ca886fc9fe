package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/flightbox/flightbox/internal/database"
	"github.com/spf13/cobra"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
}

// statsPayload is the JSON shape of the stats output.
type statsPayload struct {
	Path        string `json:"path"`
	RecordCount int    `json:"record_count"`
	FileCount   int    `json:"file_count"`
	TotalBytes  int64  `json:"total_bytes"`
	TotalHuman  string `json:"total_human"`
	Consistent  bool   `json:"consistent"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the database directory",
		Long: `Summarize the database directory: record count, file count, total size
and whether the directory is within its configured limits.

Example:
  flightbox stats --db ./flightbox-db
  flightbox stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
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

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statsPayload{
			Path:        db.Dir(),
			RecordCount: stats.RecordCount,
			FileCount:   stats.FileCount,
			TotalBytes:  stats.TotalBytes,
			TotalHuman:  humanize.IBytes(uint64(stats.TotalBytes)),
			Consistent:  stats.Consistent,
		})
	}
	fmt.Fprintf(out, "Path:       %s\n", db.Dir())
	fmt.Fprintf(out, "Records:    %d\n", stats.RecordCount)
	fmt.Fprintf(out, "Files:      %d\n", stats.FileCount)
	fmt.Fprintf(out, "Size:       %s\n", humanize.IBytes(uint64(stats.TotalBytes)))
	fmt.Fprintf(out, "Consistent: %v\n", stats.Consistent)
	return nil
}
