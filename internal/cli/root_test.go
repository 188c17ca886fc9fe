package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flightbox/flightbox/internal/database"
	"github.com/flightbox/flightbox/internal/report"
	"github.com/flightbox/flightbox/internal/storage"
)

// execute runs the root command with args and returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// seedDatabase creates a database directory holding n committed reports.
func seedDatabase(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	settings := storage.Settings{DatabasePath: dir, MaxRecordCount: 64, MaxDatabaseSize: 1 << 20}
	db, err := database.Open(settings, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for i := range n {
		r := report.New(report.KindError, fmt.Sprintf("boom %d", i))
		if !db.Add(r.Record()) {
			t.Fatalf("Add() = false for report %d", i)
		}
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("NewRootCommand() = nil")
	}
	if cmd.Use != "flightbox" {
		t.Errorf("Use = %q, want %q", cmd.Use, "flightbox")
	}
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"stats", "check", "gc", "clear", "submit", "watch", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", name, err)
			}
			if sub.Name() != name {
				t.Errorf("Name() = %q, want %q", sub.Name(), name)
			}
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	if verbose == nil {
		t.Fatal("missing --verbose flag")
	}
	if verbose.Shorthand != "v" {
		t.Errorf("verbose shorthand = %q, want %q", verbose.Shorthand, "v")
	}

	format := cmd.PersistentFlags().Lookup("format")
	if format == nil {
		t.Fatal("missing --format flag")
	}
	if format.DefValue != "text" {
		t.Errorf("format default = %q, want %q", format.DefValue, "text")
	}

	if cmd.PersistentFlags().Lookup("db") == nil {
		t.Error("missing --db flag")
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "stats", "--db", dir, "--format", "yaml")
	if err == nil {
		t.Fatal("Execute() error = nil, want invalid format error")
	}
	if !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("Execute() error = %v, want invalid format error", err)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("DBFlagAlone", func(t *testing.T) {
		dir := t.TempDir()
		opts := &RootOptions{Config: filepath.Join(dir, "missing.yaml"), DB: filepath.Join(dir, "db")}
		settings, err := loadSettings(opts)
		if err != nil {
			t.Fatalf("loadSettings() error = %v", err)
		}
		if settings.DatabasePath != opts.DB {
			t.Errorf("DatabasePath = %q, want %q", settings.DatabasePath, opts.DB)
		}
		def := storage.DefaultSettings()
		if settings.MaxRecordCount != def.MaxRecordCount {
			t.Errorf("MaxRecordCount = %d, want default %d", settings.MaxRecordCount, def.MaxRecordCount)
		}
	})
	t.Run("DBFlagOverridesConfig", func(t *testing.T) {
		dir := t.TempDir()
		cfg := filepath.Join(dir, "flightbox.yaml")
		settings := storage.Settings{DatabasePath: filepath.Join(dir, "from-file"), MaxRecordCount: 3, MaxDatabaseSize: 4096}
		if err := settings.Save(cfg); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		opts := &RootOptions{Config: cfg, DB: filepath.Join(dir, "from-flag")}
		got, err := loadSettings(opts)
		if err != nil {
			t.Fatalf("loadSettings() error = %v", err)
		}
		if got.DatabasePath != opts.DB {
			t.Errorf("DatabasePath = %q, want flag value %q", got.DatabasePath, opts.DB)
		}
		if got.MaxRecordCount != 3 {
			t.Errorf("MaxRecordCount = %d, want 3 from the file", got.MaxRecordCount)
		}
	})
	t.Run("ConfigCreatedWithDefaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg := filepath.Join(dir, "flightbox.yaml")
		opts := &RootOptions{Config: cfg}
		got, err := loadSettings(opts)
		if err != nil {
			t.Fatalf("loadSettings() error = %v", err)
		}
		def := storage.DefaultSettings()
		if got.MaxRecordCount != def.MaxRecordCount || got.MaxDatabaseSize != def.MaxDatabaseSize {
			t.Errorf("loadSettings() = %+v, want defaults %+v", got, def)
		}
		if _, err := storage.LoadSettings(cfg); err != nil {
			t.Errorf("settings file was not created: %v", err)
		}
	})
}
