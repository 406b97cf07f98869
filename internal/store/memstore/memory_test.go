package memstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/barikyo/ciallo/internal/store"
	"github.com/google/go-cmp/cmp"
)

func entryAt(i int) store.HistoryEntry {
	return store.HistoryEntry{
		Timestamp: time.Date(2026, 3, 1, 10, i, 0, 0, time.Local),
		Title:     fmt.Sprintf("Page %d", i),
		URL:       fmt.Sprintf("https://example.com/%d", i),
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	for i := 0; i < 5; i++ {
		if err := ms.Append(ctx, entryAt(i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []store.HistoryEntry
	}{
		{"limit smaller than size", 2, []store.HistoryEntry{entryAt(4), entryAt(3)}},
		{"limit larger than size", 10, []store.HistoryEntry{entryAt(4), entryAt(3), entryAt(2), entryAt(1), entryAt(0)}},
		{"zero limit returns all", 0, []store.HistoryEntry{entryAt(4), entryAt(3), entryAt(2), entryAt(1), entryAt(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ms.List(ctx, tt.limit)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryStore_ZeroTimestampFilled(t *testing.T) {
	ms := NewMemoryStore()
	before := time.Now()

	if err := ms.Append(context.Background(), store.HistoryEntry{Title: "x", URL: "https://x.y"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, _ := ms.List(context.Background(), 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v was not filled with the current time", got[0].Timestamp)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	ms.Append(ctx, entryAt(1))
	ms.Append(ctx, entryAt(2))

	if err := ms.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if ms.Len() != 0 {
		t.Errorf("expected empty store after Clear, got %d entries", ms.Len())
	}
}

func TestMemoryStore_AppendAfterClose(t *testing.T) {
	ms := NewMemoryStore()
	ms.Close()

	err := ms.Append(context.Background(), entryAt(1))
	if store.KindOf(err) != store.KindWrite {
		t.Errorf("Append after Close: kind = %v, want %v", store.KindOf(err), store.KindWrite)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ms := NewMemoryStore()
	if err := ms.Append(ctx, entryAt(1)); err == nil {
		t.Error("expected error appending with canceled context")
	}
	if _, err := ms.List(ctx, 1); err == nil {
		t.Error("expected error listing with canceled context")
	}
}
