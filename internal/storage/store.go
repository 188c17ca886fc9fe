package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Store gives file-level access to the database directory.
//
// All operations are synchronous, blocking file I/O with no cancellation:
// once started they run to completion or fail locally.
type Store struct {
	settings Settings
	log      *slog.Logger
}

// NewStore returns a store over the directory named by the settings. A nil
// logger falls back to [slog.Default].
func NewStore(settings Settings, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{settings: settings, log: log}
}

// Settings returns the settings the store was opened with.
func (s *Store) Settings() Settings {
	return s.settings
}

// Dir returns the database directory path.
func (s *Store) Dir() string {
	return s.settings.DatabasePath
}

// EnsureDir creates the database directory if it doesn't exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.settings.DatabasePath, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// Files returns every file directly in the database directory, in no
// contractual order. The layout is flat; a subdirectory someone else
// created is skipped, never touched.
func (s *Store) Files() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read database directory: %w", err)
	}
	files := make([]os.DirEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e)
		}
	}
	return files, nil
}

// Records returns committed record files ordered oldest first. The commit
// rename preserves the file timestamp from the original write, so the
// modification time tracks creation. Ties break on name to keep the order
// deterministic.
func (s *Store) Records() ([]RecordFile, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	recs := make([]RecordFile, 0, len(files))
	for _, e := range files {
		id, ok := ParseRecordFileName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Raced with a deletion, the file is simply gone.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		recs = append(recs, RecordFile{
			ID:      id,
			Name:    e.Name(),
			Path:    filepath.Join(s.settings.DatabasePath, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(recs, func(a, b RecordFile) int {
		if c := a.ModTime.Compare(b.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return recs, nil
}

// RemoveOrphaned deletes every file that belongs to no identifier in known:
// foreign extensions, names without an identifier separator, and artifacts
// whose prefix before the last separator is unknown. temp_ leftovers from a
// crashed commit fail the prefix check and are collected here too. Deletion
// failures are logged as warnings and do not abort the pass. Returns the
// number of files removed.
func (s *Store) RemoveOrphaned(known []uuid.UUID) (int, error) {
	files, err := s.Files()
	if err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(known))
	for _, id := range known {
		keep[id.String()] = struct{}{}
	}
	removed := 0
	for _, e := range files {
		name := e.Name()
		if !orphaned(name, keep) {
			continue
		}
		if err := os.Remove(filepath.Join(s.settings.DatabasePath, name)); err != nil {
			s.log.Warn("failed to remove orphaned file", "name", name, "err", err)
			continue
		}
		s.log.Debug("removed orphaned file", "name", name)
		removed++
	}
	return removed, nil
}

// orphaned reports whether name belongs to none of the identifiers in keep.
func orphaned(name string, keep map[string]struct{}) bool {
	if _, ok := allowedExts[strings.ToLower(filepath.Ext(name))]; !ok {
		return true
	}
	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return true
	}
	_, ok := keep[name[:i]]
	return !ok
}

// ValidateConsistency scans the directory once and reports whether the
// database is within its configured limits: cumulative byte size of all
// files against MaxDatabaseSize, count of committed records against
// MaxRecordCount. Being exactly at a limit is still consistent; a zero
// limit disables that check.
func (s *Store) ValidateConsistency() (bool, error) {
	files, err := s.Files()
	if err != nil {
		return false, err
	}
	var total int64
	count := 0
	for _, e := range files {
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return false, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		total += info.Size()
		if _, ok := ParseRecordFileName(e.Name()); ok {
			count++
		}
	}
	if s.settings.MaxDatabaseSize > 0 && total > s.settings.MaxDatabaseSize {
		return false, nil
	}
	if s.settings.MaxRecordCount > 0 && count > s.settings.MaxRecordCount {
		return false, nil
	}
	return true, nil
}

// Clear deletes every file in the database directory. Not transactional: a
// crash mid-clear leaves whatever had not been deleted yet. Returns all
// deletion errors joined.
func (s *Store) Clear() error {
	files, err := s.Files()
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range files {
		if err := os.Remove(filepath.Join(s.settings.DatabasePath, e.Name())); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Commit persists rec: attachment first, then the record file that marks
// the pair committed. Each payload is written to a temp_ file and renamed
// into place; rename is the atomicity boundary. A crash between the two
// renames leaves an attachment without a record, an accepted gap closed by
// the next orphan pass.
//
// Commit never returns an error. Failures are logged with the record
// dropped, and reported by the false return.
func (s *Store) Commit(rec Record) bool {
	if err := s.writeArtifact(AttachmentFileName(rec.ID), []byte(rec.AttachmentJSON)); err != nil {
		s.log.Error("failed to commit attachment", "id", rec.ID, "err", err)
		return false
	}
	if err := s.writeArtifact(RecordFileName(rec.ID), []byte(rec.RecordJSON)); err != nil {
		s.log.Error("failed to commit record", "id", rec.ID, "err", err)
		return false
	}
	s.log.Debug("committed record", "id", rec.ID)
	return true
}

// writeArtifact writes data under a temp_ name in the database directory,
// then renames it to name.
func (s *Store) writeArtifact(name string, data []byte) error {
	tmp := filepath.Join(s.settings.DatabasePath, TempFileName(name))
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.settings.DatabasePath, name)); err != nil {
		return errors.Join(fmt.Errorf("failed to rename artifact: %w", err), os.Remove(tmp))
	}
	return nil
}
