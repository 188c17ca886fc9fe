// Manages database settings stored in a YAML file.

package storage

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings configures a [Store].
// Loaded from a YAML file, created with defaults if missing.
type Settings struct {
	// DatabasePath is the directory holding record and attachment files.
	// The layout is flat: no subdirectories are ever created under it.
	DatabasePath string `yaml:"database_path"`

	// MaxRecordCount is the number of committed records the database may
	// hold before it is over limit. 0 means unlimited.
	MaxRecordCount int `yaml:"max_record_count"`

	// MaxDatabaseSize is the cumulative byte size of every file in the
	// database directory before it is over limit. 0 means unlimited.
	MaxDatabaseSize int64 `yaml:"max_database_size"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		DatabasePath:    "flightbox-db",
		MaxRecordCount:  16,
		MaxDatabaseSize: 32 * 1024 * 1024, // 32 MiB
	}
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if s.MaxRecordCount < 0 {
		return errors.New("max_record_count must be non-negative")
	}
	if s.MaxDatabaseSize < 0 {
		return errors.New("max_database_size must be non-negative")
	}
	return nil
}

// LoadSettings loads settings from path.
// Creates the file with defaults if it doesn't exist.
func LoadSettings(path string) (Settings, error) {
	cfg := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
		// File doesn't exist, create it with defaults.
		if err := cfg.Save(path); err != nil {
			return Settings{}, err
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path as YAML.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
