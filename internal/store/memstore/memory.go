// Package memstore provides an in-memory implementation of store.HistoryStore.
// It backs ephemeral sessions and unit tests and does not persist data.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/barikyo/ciallo/internal/store"
)

// MemoryStore is an in-memory implementation of store.HistoryStore.
// Entries are kept in insertion order and guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []store.HistoryEntry
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a copy of entry. A zero timestamp is replaced by time.Now.
func (m *MemoryStore) Append(ctx context.Context, entry store.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return &store.Error{Kind: store.KindWrite, Op: "append", Err: err}
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &store.Error{Kind: store.KindWrite, Op: "append", Err: errClosed}
	}
	m.entries = append(m.entries, entry)
	return nil
}

// List returns entries newest first. Insertion order is chronological order.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.Error{Kind: store.KindRead, Op: "list", Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]store.HistoryEntry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result, nil
}

// Clear removes all entries.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close marks the store closed; later appends fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var errClosed = errors.New("store closed")
