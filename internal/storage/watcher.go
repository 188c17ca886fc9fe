// Watches the database directory for files written by other processes.

package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watch reports files created in the database directory by anything other
// than this process. Artifacts the store itself writes, temp_ files
// included, are ignored. Each foreign file is passed to report once, on the
// watcher goroutine. Watch returns after the watcher is installed; it stops
// when ctx is canceled.
func (s *Store) Watch(ctx context.Context, report func(name string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.settings.DatabasePath); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Base(event.Name)
				if ownArtifact(name) {
					continue
				}
				s.log.Warn("foreign file in database directory", "name", name)
				report(name)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("error watching database directory", "err", err)
			}
		}
	}()
	return nil
}

// ownArtifact reports whether name is something the store writes itself:
// a committed artifact under a known identifier shape or a temp_ file
// mid-commit.
func ownArtifact(name string) bool {
	base := strings.TrimPrefix(name, tempPrefix)
	i := strings.LastIndexByte(base, '-')
	if i != 36 {
		return false
	}
	if _, err := uuid.Parse(base[:i]); err != nil {
		return false
	}
	switch base[i+1:] {
	case recordSuffix + artifactExt, attachmentSuffix + artifactExt:
		return true
	}
	return false
}
