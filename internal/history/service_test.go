package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/barikyo/ciallo/internal/store"
	"github.com/barikyo/ciallo/internal/store/memstore"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func visit(i int) store.HistoryEntry {
	return store.HistoryEntry{
		Timestamp: time.Date(2026, 10, 14, 9, i, 0, 0, time.UTC),
		Title:     fmt.Sprintf("Page %d", i),
		URL:       fmt.Sprintf("https://example.com/%d", i),
	}
}

// failingStore fails every operation with the configured error and can
// return a canned result from List.
type failingStore struct {
	err    error
	result []store.HistoryEntry
}

func (f *failingStore) Append(ctx context.Context, e store.HistoryEntry) error { return f.err }
func (f *failingStore) List(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	return f.result, f.err
}
func (f *failingStore) Clear(ctx context.Context) error { return f.err }
func (f *failingStore) Close() error                    { return nil }

// blockingStore holds List until released.
type blockingStore struct {
	memstore.MemoryStore
	entered chan struct{}
	release chan struct{}
	done    chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (b *blockingStore) List(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	close(b.entered)
	<-b.release
	close(b.done)
	return nil, nil
}

func TestService_RecordPreservesSubmissionOrder(t *testing.T) {
	ms := memstore.NewMemoryStore()
	svc := NewService(ms, ms)

	for i := 0; i < 20; i++ {
		svc.Record(visit(i))
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := ms.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("expected 20 recorded visits, got %d", len(got))
	}
	for i, e := range got {
		want := visit(19 - i)
		if e.URL != want.URL {
			t.Errorf("entry %d = %s, want %s", i, e.URL, want.URL)
		}
	}
}

func TestService_RecordIgnoresUntitledAndPlaceholderEntries(t *testing.T) {
	ms := memstore.NewMemoryStore()
	svc := NewService(ms, ms)

	svc.Record(store.HistoryEntry{Title: "   ", URL: "https://example.com/"})
	svc.Record(store.HistoryEntry{Title: "No url"})
	svc.Record(store.PlaceholderEntry("No history yet"))
	svc.Record(store.HistoryEntry{Title: "Real\nvisit", URL: "https://example.com/real"})
	svc.Close()

	got, _ := ms.List(context.Background(), 0)
	if len(got) != 1 {
		t.Fatalf("expected exactly one recorded visit, got %v", got)
	}
	if got[0].Title != "Real visit" {
		t.Errorf("title = %q, want sanitized %q", got[0].Title, "Real visit")
	}
	if got[0].Timestamp.IsZero() {
		t.Error("zero timestamp should be filled in")
	}
}

func TestService_RecordAfterCloseIsDropped(t *testing.T) {
	ms := memstore.NewMemoryStore()
	svc := NewService(ms, ms)
	svc.Close()

	svc.Record(visit(1))

	if ms.Len() != 0 {
		t.Errorf("expected no entries after close, got %d", ms.Len())
	}
}

func TestService_WriteFailureIsLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	writer := &failingStore{err: &store.Error{Kind: store.KindWrite, Op: "write", Err: errors.New("disk full")}}
	svc := NewService(writer, memstore.NewMemoryStore(), WithLogger(zap.New(core)))

	svc.Record(visit(1))
	svc.Close()

	entries := logs.FilterMessage("history: failed to record visit").All()
	if len(entries) != 1 {
		t.Fatalf("expected one logged write failure, got %d", len(entries))
	}
	if kind := entries[0].ContextMap()["kind"]; kind != store.KindWrite.String() {
		t.Errorf("logged kind = %v, want %q", kind, store.KindWrite.String())
	}
}

func TestService_ListRecentReturnsPlaceholderOnFailure(t *testing.T) {
	placeholder := store.PlaceholderEntry("Could not read history: boom")
	reader := &failingStore{
		err:    &store.Error{Kind: store.KindSnapshot, Op: "query", Err: errors.New("boom")},
		result: []store.HistoryEntry{placeholder},
	}
	svc := NewService(memstore.NewMemoryStore(), reader)
	defer svc.Close()

	got := svc.ListRecent(context.Background(), 50)
	if diff := cmp.Diff([]store.HistoryEntry{placeholder}, got); diff != "" {
		t.Errorf("ListRecent() mismatch (-want +got):\n%s", diff)
	}
}

func TestService_ListRecentNeverReturnsNil(t *testing.T) {
	reader := &failingStore{err: &store.Error{Kind: store.KindSourceBusy, Err: store.ErrSourceBusy}}
	svc := NewService(memstore.NewMemoryStore(), reader)
	defer svc.Close()

	got := svc.ListRecent(context.Background(), 50)
	if got == nil {
		t.Fatal("ListRecent() returned nil")
	}
	if len(got) != 0 {
		t.Errorf("expected zero entries for a busy source, got %v", got)
	}
}

func TestService_ListRecentCapsAtLimit(t *testing.T) {
	reader := &failingStore{result: []store.HistoryEntry{visit(3), visit(2), visit(1)}}
	svc := NewService(memstore.NewMemoryStore(), reader)
	defer svc.Close()

	if got := svc.ListRecent(context.Background(), 2); len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
}

func TestService_ListRecentNonPositiveLimitIsEmpty(t *testing.T) {
	reader := &failingStore{result: []store.HistoryEntry{visit(3), visit(2), visit(1)}}
	svc := NewService(memstore.NewMemoryStore(), reader)
	defer svc.Close()

	for _, limit := range []int{0, -1} {
		got := svc.ListRecent(context.Background(), limit)
		if got == nil {
			t.Fatalf("ListRecent(%d) returned nil", limit)
		}
		if len(got) != 0 {
			t.Errorf("ListRecent(%d) = %v, want no entries", limit, got)
		}
	}
}

func TestService_CloseWaitsForInFlightListing(t *testing.T) {
	reader := newBlockingStore()
	svc := NewService(memstore.NewMemoryStore(), reader)

	go svc.ListRecent(context.Background(), 10)
	<-reader.entered

	closed := make(chan struct{})
	go func() {
		svc.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a listing was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(reader.release)
	<-reader.done
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the listing finished")
	}
}

func TestService_ClearUsesWriter(t *testing.T) {
	ms := memstore.NewMemoryStore()
	svc := NewService(ms, ms)
	svc.Record(visit(1))
	svc.Close()

	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if ms.Len() != 0 {
		t.Errorf("expected writer store to be empty, got %d", ms.Len())
	}
}
