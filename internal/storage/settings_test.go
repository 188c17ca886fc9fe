package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"Defaults", func(s *Settings) {}, ""},
		{"EmptyPath", func(s *Settings) { s.DatabasePath = "" }, "database_path"},
		{"NegativeCount", func(s *Settings) { s.MaxRecordCount = -1 }, "max_record_count"},
		{"NegativeSize", func(s *Settings) { s.MaxDatabaseSize = -1 }, "max_database_size"},
		{"ZeroLimits", func(s *Settings) { s.MaxRecordCount = 0; s.MaxDatabaseSize = 0 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("CreatesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flightbox.yaml")
		got, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if want := DefaultSettings(); got != want {
			t.Errorf("LoadSettings() = %+v, want %+v", got, want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("settings file not created: %v", err)
		}
	})
	t.Run("RoundTrip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flightbox.yaml")
		want := Settings{DatabasePath: "/tmp/fbx", MaxRecordCount: 3, MaxDatabaseSize: 1000}
		if err := want.Save(path); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if got != want {
			t.Errorf("LoadSettings() = %+v, want %+v", got, want)
		}
	})
	t.Run("PartialFileKeepsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flightbox.yaml")
		if err := os.WriteFile(path, []byte("database_path: custom\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := LoadSettings(path)
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if got.DatabasePath != "custom" {
			t.Errorf("DatabasePath = %q, want %q", got.DatabasePath, "custom")
		}
		if want := DefaultSettings().MaxRecordCount; got.MaxRecordCount != want {
			t.Errorf("MaxRecordCount = %d, want default %d", got.MaxRecordCount, want)
		}
	})
	t.Run("BadYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flightbox.yaml")
		if err := os.WriteFile(path, []byte("::not yaml::"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSettings(path); err == nil {
			t.Fatal("LoadSettings() error = nil, want parse error")
		}
	})
	t.Run("InvalidValues", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flightbox.yaml")
		if err := os.WriteFile(path, []byte("database_path: x\nmax_record_count: -5\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSettings(path); err == nil {
			t.Fatal("LoadSettings() error = nil, want validation error")
		}
	})
	t.Run("SaveInvalid", func(t *testing.T) {
		s := Settings{}
		if err := s.Save(filepath.Join(t.TempDir(), "x.yaml")); err == nil {
			t.Fatal("Save() error = nil, want validation error")
		}
	})
}
