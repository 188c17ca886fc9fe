// Package database layers record lifecycle management over the file store:
// FIFO eviction against the configured limits, the known-identifier set
// driving orphan sweeps, and rate-limited consistency checks.
//
// A Database serializes its own methods with a mutex, but nothing guards the
// directory against other processes; the host owns the single logical
// writer.
package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flightbox/flightbox/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// validateInterval caps how often Add re-checks consistency. Within one
// interval at most one scan runs, keeping Add cheap on hot paths.
const validateInterval = time.Minute

// Database is a durable buffer of diagnostic records.
type Database struct {
	settings storage.Settings
	store    *storage.Store
	log      *slog.Logger

	mu       sync.Mutex
	ids      map[uuid.UUID]struct{}
	validate *rate.Limiter
}

// Stats summarizes the database directory.
type Stats struct {
	RecordCount int
	FileCount   int
	TotalBytes  int64
	Consistent  bool
}

// Open prepares the database directory and recovers the known-identifier
// set from the record files already on disk. A nil logger falls back to
// [slog.Default].
func Open(settings storage.Settings, log *slog.Logger) (*Database, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	store := storage.NewStore(settings, log)
	if err := store.EnsureDir(); err != nil {
		return nil, err
	}
	recs, err := store.Records()
	if err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]struct{}, len(recs))
	for _, r := range recs {
		ids[r.ID] = struct{}{}
	}
	return &Database{
		settings: settings,
		store:    store,
		log:      log,
		ids:      ids,
		validate: rate.NewLimiter(rate.Every(validateInterval), 1),
	}, nil
}

// Add persists rec, evicting oldest records first when the configured
// limits would otherwise be exceeded. It reports whether the record was
// persisted; a dropped record was already logged by the store.
func (d *Database) Add(rec storage.Record) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	incoming := int64(len(rec.RecordJSON)) + int64(len(rec.AttachmentJSON))
	d.evictLocked(incoming)
	ok := d.store.Commit(rec)
	if ok {
		d.ids[rec.ID] = struct{}{}
	}
	if d.validate.Allow() {
		if consistent, err := d.store.ValidateConsistency(); err == nil && !consistent {
			d.log.Warn("database over configured limits",
				"path", d.settings.DatabasePath,
				"max_record_count", d.settings.MaxRecordCount,
				"max_database_size", d.settings.MaxDatabaseSize)
		}
	}
	return ok
}

// evictLocked removes oldest records until one more record of the given
// payload size fits the count and size limits. Zero limits never evict.
func (d *Database) evictLocked(incoming int64) {
	recs, err := d.store.Records()
	if err != nil {
		d.log.Warn("failed to list records for eviction", "err", err)
		return
	}
	total, err := d.totalSizeLocked()
	if err != nil {
		d.log.Warn("failed to size database for eviction", "err", err)
		return
	}
	for i, rec := range recs {
		overCount := d.settings.MaxRecordCount > 0 && len(recs)-i >= d.settings.MaxRecordCount
		overSize := d.settings.MaxDatabaseSize > 0 && total+incoming > d.settings.MaxDatabaseSize
		if !overCount && !overSize {
			break
		}
		total -= d.dropLocked(rec.ID)
		d.log.Debug("evicted record", "id", rec.ID, "created", rec.ModTime)
	}
}

// dropLocked deletes both files of the record and forgets its identifier.
// Returns the number of bytes freed.
func (d *Database) dropLocked(id uuid.UUID) int64 {
	var freed int64
	for _, name := range []string{storage.RecordFileName(id), storage.AttachmentFileName(id)} {
		path := filepath.Join(d.settings.DatabasePath, name)
		if info, err := os.Stat(path); err == nil {
			freed += info.Size()
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.log.Warn("failed to remove record file", "name", name, "err", err)
		}
	}
	delete(d.ids, id)
	return freed
}

// totalSizeLocked sums the size of every file in the directory.
func (d *Database) totalSizeLocked() (int64, error) {
	files, err := d.store.Files()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range files {
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Remove deletes the record's pair of files, typically after a successful
// upload. Missing files are not an error.
func (d *Database) Remove(id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for _, name := range []string{storage.RecordFileName(id), storage.AttachmentFileName(id)} {
		if err := os.Remove(filepath.Join(d.settings.DatabasePath, name)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", name, err))
		}
	}
	delete(d.ids, id)
	return errors.Join(errs...)
}

// Sweep removes every file that belongs to no known record. Returns the
// number of files removed.
func (d *Database) Sweep() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	known := make([]uuid.UUID, 0, len(d.ids))
	for id := range d.ids {
		known = append(known, id)
	}
	return d.store.RemoveOrphaned(known)
}

// Stats scans the directory and summarizes it.
func (d *Database) Stats() (Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	files, err := d.store.Files()
	if err != nil {
		return Stats{}, err
	}
	recs, err := d.store.Records()
	if err != nil {
		return Stats{}, err
	}
	consistent, err := d.store.ValidateConsistency()
	if err != nil {
		return Stats{}, err
	}
	total, err := d.totalSizeLocked()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		RecordCount: len(recs),
		FileCount:   len(files),
		TotalBytes:  total,
		Consistent:  consistent,
	}, nil
}

// Clear deletes every file and resets the known-identifier set.
func (d *Database) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.store.Clear()
	d.ids = make(map[uuid.UUID]struct{})
	return err
}

// Known reports whether id belongs to a live record.
func (d *Database) Known(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ids[id]
	return ok
}

// Len returns the number of known records.
func (d *Database) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

// Watch reports foreign files created in the database directory until ctx
// is canceled.
func (d *Database) Watch(ctx context.Context, report func(name string)) error {
	return d.store.Watch(ctx, report)
}

// Dir returns the database directory path.
func (d *Database) Dir() string {
	return d.settings.DatabasePath
}
