package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWatch(t *testing.T) {
	s := testStore(t, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	foreign := make(chan string, 16)
	if err := s.Watch(ctx, func(name string) { foreign <- name }); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// The store's own artifacts must not be reported.
	mustCommit(t, s, Record{ID: uuid.New(), RecordJSON: "{}", AttachmentJSON: "{}"})

	if err := os.WriteFile(filepath.Join(s.Dir(), "intruder.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-foreign:
		if name != "intruder.txt" {
			t.Fatalf("reported %q, want %q", name, "intruder.txt")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("foreign file never reported")
	}

	// Nothing else should have been reported.
	select {
	case name := <-foreign:
		t.Errorf("unexpected report %q", name)
	default:
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	s := NewStore(Settings{DatabasePath: filepath.Join(t.TempDir(), "absent")}, slog.New(slog.DiscardHandler))
	if err := s.Watch(context.Background(), func(string) {}); err == nil {
		t.Fatal("Watch() error = nil for missing directory, want error")
	}
}

func TestOwnArtifact(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"Record", RecordFileName(id), true},
		{"Attachment", AttachmentFileName(id), true},
		{"TempRecord", TempFileName(RecordFileName(id)), true},
		{"TempAttachment", TempFileName(AttachmentFileName(id)), true},
		{"Screenshot", id.String() + "-screenshot.jpg", false},
		{"Foreign", "intruder.txt", false},
		{"BadID", "not-a-uuid-record.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ownArtifact(tt.in); got != tt.want {
				t.Errorf("ownArtifact(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
