// Package store defines the storage interfaces for ciallo's visit history.
// Implementations live in subpackages: logstore (append-only text log),
// snapshot (read-only copy of the engine's live History database) and
// memstore (in-process, for ephemeral sessions and tests).
package store

import (
	"context"
)

// HistoryStore manages visit history persistence.
//
// Methods report failures as *Error values carrying a Kind. A store may
// return a partial or placeholder result together with a non-nil error;
// callers that must never fail (see the history package) log the error and
// use the result as-is.
type HistoryStore interface {
	// Append records one visit. Stores that are read-only return an
	// error of kind ReadOnly.
	Append(ctx context.Context, entry HistoryEntry) error

	// List returns at most limit entries ordered most-recent-first.
	// A limit <= 0 returns every entry.
	List(ctx context.Context, limit int) ([]HistoryEntry, error)

	// Clear removes all entries the store owns.
	Clear(ctx context.Context) error

	// Close releases any resources (DB connections, file handles, etc.).
	Close() error
}
