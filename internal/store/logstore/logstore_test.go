package logstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/barikyo/ciallo/internal/store"
	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// setupTestLog creates a LogStore in a temporary directory with a fixed clock.
func setupTestLog(t *testing.T) *LogStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile", "history.log")
	return New(path, WithLocation(time.UTC), WithClock(func() time.Time { return fixedNow }))
}

func visit(minute int) store.HistoryEntry {
	return store.HistoryEntry{
		Timestamp: time.Date(2026, 10, 14, 9, minute, 0, 0, time.UTC),
		Title:     fmt.Sprintf("Page %d", minute),
		URL:       fmt.Sprintf("https://example.com/%d", minute),
	}
}

func TestLogStore_FileCreatedLazily(t *testing.T) {
	ls := setupTestLog(t)

	entries, err := ls.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() on missing file error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
	if _, err := os.Stat(ls.Path()); !os.IsNotExist(err) {
		t.Fatalf("file should not exist before the first append, stat err = %v", err)
	}

	if err := ls.Append(context.Background(), visit(1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := os.Stat(ls.Path()); err != nil {
		t.Errorf("file should exist after append: %v", err)
	}
}

func TestLogStore_RoundTrip(t *testing.T) {
	ls := setupTestLog(t)
	ctx := context.Background()

	e := visit(30)
	if err := ls.Append(ctx, e); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := ls.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]store.HistoryEntry{e}, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLogStore_RoundTripSeparatorInURL(t *testing.T) {
	tests := []struct {
		name     string
		entry    store.HistoryEntry
		wantLine string
	}{
		{
			name:     "query",
			entry:    store.HistoryEntry{Title: "Docs", URL: "https://ex.com/s?q=a|b"},
			wantLine: "10-14 09:00|Docs|https://ex.com/s?q=a%7Cb\n",
		},
		{
			name:     "path and title",
			entry:    store.HistoryEntry{Title: "A | B", URL: "https://ex.com/x|y/z|"},
			wantLine: "10-14 09:00|A | B|https://ex.com/x%7Cy/z%7C\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := setupTestLog(t)
			ctx := context.Background()
			e := tt.entry
			e.Timestamp = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

			if err := ls.Append(ctx, e); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			data, err := os.ReadFile(ls.Path())
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if string(data) != tt.wantLine {
				t.Errorf("file content = %q, want %q", string(data), tt.wantLine)
			}

			got, err := ls.List(ctx, 1)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if diff := cmp.Diff([]store.HistoryEntry{e}, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogStore_FileFormat(t *testing.T) {
	ls := setupTestLog(t)
	e := store.HistoryEntry{
		Timestamp: time.Date(2026, 3, 7, 8, 5, 0, 0, time.UTC),
		Title:     "Example\nDomain",
		URL:       "https://example.com/",
	}

	if err := ls.Append(context.Background(), e); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(ls.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "03-07 08:05|Example Domain|https://example.com/\n"
	if string(data) != want {
		t.Errorf("file content = %q, want %q", string(data), want)
	}
}

func TestLogStore_ListNewestFirstWithLimit(t *testing.T) {
	ls := setupTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := ls.Append(ctx, visit(i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	got, err := ls.List(ctx, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []store.HistoryEntry{visit(4), visit(3), visit(2)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestLogStore_MalformedLinesSkipped(t *testing.T) {
	ls := setupTestLog(t)
	if err := os.MkdirAll(filepath.Dir(ls.Path()), 0755); err != nil {
		t.Fatal(err)
	}

	content := strings.Join([]string{
		"10-14 09:01|First|https://example.com/1",
		"garbage without separators",
		"not-a-date|Title|https://example.com/x",
		"10-14 09:02|No url|",
		"",
		"10-14 09:03|Pipe | in title|https://example.com/3",
		"10-14 09:04|Windows line|https://example.com/4\r",
	}, "\n") + "\n"
	if err := os.WriteFile(ls.Path(), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ls.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var urls, titles []string
	for _, e := range got {
		urls = append(urls, e.URL)
		titles = append(titles, e.Title)
	}
	wantURLs := []string{"https://example.com/4", "https://example.com/3", "https://example.com/1"}
	if diff := cmp.Diff(wantURLs, urls); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}
	if titles[1] != "Pipe | in title" {
		t.Errorf("title with separator = %q", titles[1])
	}
}

func TestLogStore_ListIsIdempotent(t *testing.T) {
	ls := setupTestLog(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ls.Append(ctx, visit(i))
	}

	first, err := ls.List(ctx, 50)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	second, err := ls.List(ctx, 50)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("consecutive lists differ (-first +second):\n%s", diff)
	}
}

func TestLogStore_ConcurrentAppendsKeepLinesIntact(t *testing.T) {
	ls := setupTestLog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				e := store.HistoryEntry{
					Timestamp: fixedNow.Add(-time.Hour),
					Title:     fmt.Sprintf("w%d-%d", w, i),
					URL:       fmt.Sprintf("https://example.com/w%d/%d", w, i),
				}
				if err := ls.Append(ctx, e); err != nil {
					t.Errorf("Append() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	got, err := ls.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(got))
	}

	// Per-writer order must be preserved (newest first in the listing).
	last := map[string]int{}
	for i := len(got) - 1; i >= 0; i-- {
		var w, n int
		if _, err := fmt.Sscanf(got[i].Title, "w%d-%d", &w, &n); err != nil {
			t.Fatalf("unexpected title %q", got[i].Title)
		}
		key := fmt.Sprint(w)
		if prev, ok := last[key]; ok && n <= prev {
			t.Errorf("writer %d out of order: %d after %d", w, n, prev)
		}
		last[key] = n
	}
}

func TestLogStore_Clear(t *testing.T) {
	ls := setupTestLog(t)
	ctx := context.Background()
	ls.Append(ctx, visit(1))

	if err := ls.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, _ := ls.List(ctx, 0)
	if len(got) != 0 {
		t.Errorf("expected no entries after Clear, got %d", len(got))
	}

	// Clearing a missing file is not an error.
	if err := ls.Clear(ctx); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestLogStore_AppendRejectsEntryWithoutURL(t *testing.T) {
	ls := setupTestLog(t)
	err := ls.Append(context.Background(), store.HistoryEntry{Title: "x"})
	if store.KindOf(err) != store.KindWrite {
		t.Errorf("kind = %v, want %v", store.KindOf(err), store.KindWrite)
	}
}

func TestLogStore_AppendToUnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("file, not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	ls := New(filepath.Join(blocker, "history.log"))
	err := ls.Append(context.Background(), visit(1))
	if store.KindOf(err) != store.KindWrite {
		t.Errorf("kind = %v, want %v (err = %v)", store.KindOf(err), store.KindWrite, err)
	}
}

func TestParseLine_YearInference(t *testing.T) {
	tests := []struct {
		name string
		line string
		want time.Time
	}{
		{"earlier this year", "03-01 10:00|t|https://x.y", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"later date means last year", "12-25 10:00|t|https://x.y", time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line, time.UTC, fixedNow)
			if !ok {
				t.Fatalf("ParseLine(%q) failed", tt.line)
			}
			if !got.Timestamp.Equal(tt.want) {
				t.Errorf("timestamp = %v, want %v", got.Timestamp, tt.want)
			}
		})
	}
}
