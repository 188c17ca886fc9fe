package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/flightbox/flightbox/internal/database"
	"github.com/flightbox/flightbox/internal/jsonenc"
	"github.com/flightbox/flightbox/internal/report"
	"github.com/flightbox/flightbox/internal/storage"
	"github.com/spf13/cobra"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Kind        string
	Message     string
	Attrs       []string // key=value pairs, serialized in flag order
	Cooperative bool
	ChunkSize   int
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Build a report and commit it to the database",
		Long: `Build a report from the given message and attributes and commit it to
the database, evicting old records if a limit would be exceeded.

With --cooperative the record is serialized through the incremental
encoder instead of in one shot, stepping until completion and reporting
how long the encoder was actually running.

Example:
  flightbox submit --db ./flightbox-db --message "disk full" --attr device=sensor-7
  flightbox submit --message "oom" --kind crash --cooperative --chunk-size 4096`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "error", "report kind (error|crash|log)")
	cmd.Flags().StringVar(&opts.Message, "message", "", "report message (required)")
	cmd.Flags().StringArrayVar(&opts.Attrs, "attr", nil, "report attribute as key=value, repeatable")
	cmd.Flags().BoolVar(&opts.Cooperative, "cooperative", false, "serialize through the incremental encoder")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", jsonenc.DefaultChunkSize, "incremental encoder chunk size in bytes")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	kinds := []string{string(report.KindError), string(report.KindCrash), string(report.KindLog)}
	if !slices.Contains(kinds, opts.Kind) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be one of %v", opts.Kind, kinds))
	}

	settings, err := loadSettings(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	db, err := database.Open(settings, slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}

	r := report.New(report.Kind(opts.Kind), opts.Message)
	for _, kv := range opts.Attrs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid attribute %q: want key=value", kv))
		}
		r.SetAttribute(key, value)
	}

	out := cmd.OutOrStdout()
	var rec storage.Record
	if opts.Cooperative {
		timer := &activeTimer{}
		timer.Resume()
		enc, err := r.CooperativeRecord(func(got storage.Record) { rec = got },
			jsonenc.WithChunkSize(opts.ChunkSize), jsonenc.WithStopwatch(timer))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start encoder", err)
		}
		steps := 1
		for enc.Step() {
			steps++
		}
		timer.Pause()
		fmt.Fprintf(out, "encoded %s in %d step(s), %s active\n",
			humanize.IBytes(uint64(len(rec.RecordJSON))), steps, timer.Active().Round(time.Microsecond))
	} else {
		rec = r.Record()
	}

	if !db.Add(rec) {
		return NewExitError(ExitFailure, "record was not persisted")
	}
	fmt.Fprintf(out, "committed %s\n", rec.ID)
	return nil
}

// activeTimer accumulates wall time between Resume and Pause calls. The
// encoder pauses it on suspension, so it only counts time spent encoding.
type activeTimer struct {
	active  time.Duration
	started time.Time
	running bool
}

func (t *activeTimer) Resume() {
	if !t.running {
		t.started = time.Now()
		t.running = true
	}
}

func (t *activeTimer) Pause() {
	if t.running {
		t.active += time.Since(t.started)
		t.running = false
	}
}

// Active returns the accumulated running time.
func (t *activeTimer) Active() time.Duration {
	if t.running {
		return t.active + time.Since(t.started)
	}
	return t.active
}
