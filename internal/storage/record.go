package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	recordSuffix     = "record"
	attachmentSuffix = "attachment"
	artifactExt      = ".json"

	// tempPrefix is prepended to an artifact name while it is being
	// written, before the atomic rename. The prefix makes the identifier
	// check of the orphan pass fail, so crash leftovers are collected
	// there.
	tempPrefix = "temp_"
)

// allowedExts are the extensions the orphan pass considers part of the
// database. Richer producers attach minidumps, screenshots and log files
// next to the JSON artifacts; anything else is foreign and removed on
// sight.
var allowedExts = map[string]struct{}{
	".dmp":  {},
	".json": {},
	".jpg":  {},
	".log":  {},
}

// Record is one diagnostic record ready to persist: a stable identifier
// plus its two payloads already rendered to JSON text.
type Record struct {
	ID             uuid.UUID
	RecordJSON     string
	AttachmentJSON string
}

// RecordFile describes one committed record file on disk.
type RecordFile struct {
	ID      uuid.UUID
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// RecordFileName returns the artifact name {uuid}-record.json.
func RecordFileName(id uuid.UUID) string {
	return id.String() + "-" + recordSuffix + artifactExt
}

// AttachmentFileName returns the artifact name {uuid}-attachment.json.
func AttachmentFileName(id uuid.UUID) string {
	return id.String() + "-" + attachmentSuffix + artifactExt
}

// TempFileName returns the name an artifact is written under before its
// rename to name.
func TempFileName(name string) string {
	return tempPrefix + name
}

// ParseRecordFileName extracts the identifier from a {uuid}-record.json
// name. Only the canonical hyphenated UUID form matches.
func ParseRecordFileName(name string) (uuid.UUID, bool) {
	rest, ok := strings.CutSuffix(name, "-"+recordSuffix+artifactExt)
	if !ok || len(rest) != 36 {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
