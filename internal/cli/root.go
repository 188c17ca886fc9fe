// Package cli implements the flightbox command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/flightbox/flightbox/internal/storage"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // settings file path
	DB      string // database directory, overrides the settings file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flightbox CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flightbox",
		Short: "flightbox - durable on-device buffer for diagnostic reports",
		Long: `flightbox keeps diagnostic reports (errors, crashes, attachments) in a
flat directory of JSON files with atomic commits, so an application can
persist telemetry locally and ship it later.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "flightbox.yaml", "settings file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database directory (overrides the settings file)")

	// Add subcommands
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewGCCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// setupLogging installs the process-wide logger: colorized for terminals,
// plain otherwise.
func setupLogging(verbose bool) {
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	if verbose {
		ll.Set(slog.LevelDebug)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)
}

// loadSettings resolves the effective settings. Without --db the settings
// file is authoritative and is created with defaults on first use. With
// --db the flag wins: the file is only read if it already exists, and the
// database path from the flag replaces whatever it says.
func loadSettings(opts *RootOptions) (storage.Settings, error) {
	if opts.DB == "" {
		return storage.LoadSettings(opts.Config)
	}
	settings := storage.DefaultSettings()
	if fi, err := os.Stat(opts.Config); err == nil && !fi.IsDir() {
		s, err := storage.LoadSettings(opts.Config)
		if err != nil {
			return storage.Settings{}, err
		}
		settings = s
	}
	settings.DatabasePath = opts.DB
	if err := settings.Validate(); err != nil {
		return storage.Settings{}, err
	}
	return settings, nil
}
