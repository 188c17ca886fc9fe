// Package storage persists diagnostic records as flat files in a single
// directory.
//
// # Layout
//
// Each record occupies two sibling artifacts named after its UUID:
// {uuid}-attachment.json, written first, then {uuid}-record.json. The record
// file is the commit marker; an attachment without one is garbage for the
// next orphan pass. Every write lands in a temp_ prefixed file in the same
// directory and is renamed into place, so a crash never leaves a partially
// written artifact under a final name. Stray temp_ files fail the orphan
// pass's identifier check and are collected there.
//
// # Ordering
//
// [Store.Records] orders record files by their modification time, which the
// commit rename preserves from the original write. Oldest first is the
// eviction order for callers enforcing a record cap.
//
// # Error posture
//
// [Store.Commit] never propagates an error: failures are logged and the
// record is dropped. Losing one record is acceptable; destabilizing the
// host process is not. Orphan removal logs per-file failures and keeps
// going.
//
// # Concurrency
//
// The store does not lock. The host owns a single logical writer; callers
// must not invoke [Store.Commit], [Store.Clear] or [Store.RemoveOrphaned]
// concurrently.
package storage
