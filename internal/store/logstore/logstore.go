// Package logstore implements store.HistoryStore as an append-only UTF-8 text
// file with one visit per line:
//
//	MM-DD HH:MM|title|url
//
// The file is created on first append. Writers from several processes may
// interleave lines; only per-writer append order is guaranteed.
package logstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/barikyo/ciallo/internal/store"
)

// TimeLayout is the timestamp layout of the first field of each line.
const TimeLayout = "01-02 15:04"

const fieldSep = "|"

// escapedSep stands in for the separator inside URLs. Both spellings address
// the same resource.
const escapedSep = "%7C"

// LogStore is a text-file backed implementation of store.HistoryStore.
type LogStore struct {
	path string
	loc  *time.Location
	now  func() time.Time

	mu sync.Mutex // serializes appends from this process
}

// Option customises a LogStore.
type Option func(*LogStore)

// WithLocation sets the time zone used to format and parse timestamps.
// Default: time.Local.
func WithLocation(loc *time.Location) Option { return func(s *LogStore) { s.loc = loc } }

// WithClock overrides the clock used to infer the year of parsed lines.
func WithClock(now func() time.Time) Option { return func(s *LogStore) { s.now = now } }

// New creates a LogStore backed by the file at path. The file and its
// parent directories are not touched until the first Append.
func New(path string, opts ...Option) *LogStore {
	s := &LogStore{
		path: path,
		loc:  time.Local,
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file path.
func (s *LogStore) Path() string {
	return s.path
}

// Append writes one line for entry to the end of the log.
func (s *LogStore) Append(ctx context.Context, entry store.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return s.writeErr("append", err)
	}

	line, ok := FormatLine(entry, s.loc)
	if !ok {
		return s.writeErr("append", fmt.Errorf("entry has no url"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return s.writeErr("mkdir", err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return s.writeErr("open", err)
	}

	// A single Write keeps the line intact relative to other appenders.
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return s.writeErr("write", err)
	}
	if err := f.Close(); err != nil {
		return s.writeErr("close", err)
	}
	return nil
}

// List reads the whole log and returns at most limit entries, newest first.
// Malformed lines are skipped. A missing file yields an empty result.
func (s *LogStore) List(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []store.HistoryEntry{}, nil
		}
		return nil, &store.Error{Kind: store.KindRead, Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	now := s.now()
	var entries []store.HistoryEntry

	r := bufio.NewReader(f)
	for {
		if err := ctx.Err(); err != nil {
			return reverse(entries, limit), &store.Error{Kind: store.KindRead, Op: "read", Path: s.path, Err: err}
		}

		line, readErr := r.ReadString('\n')
		if line != "" {
			if entry, ok := ParseLine(line, s.loc, now); ok {
				entries = append(entries, entry)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return reverse(entries, limit), &store.Error{Kind: store.KindRead, Op: "read", Path: s.path, Err: readErr}
		}
	}

	return reverse(entries, limit), nil
}

// Clear deletes the log file. The next Append recreates it.
func (s *LogStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s.writeErr("remove", err)
	}
	return nil
}

// Close is a no-op; the file is opened per operation.
func (s *LogStore) Close() error {
	return nil
}

func (s *LogStore) writeErr(op string, err error) error {
	return &store.Error{Kind: store.KindWrite, Op: op, Path: s.path, Err: err}
}

// reverse returns the newest-first view of chronological entries, capped at limit.
func reverse(entries []store.HistoryEntry, limit int) []store.HistoryEntry {
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]store.HistoryEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, entries[i])
	}
	return result
}

// FormatLine renders entry as one log line including the trailing newline.
// It reports false for entries that cannot be represented (no URL).
func FormatLine(entry store.HistoryEntry, loc *time.Location) (string, bool) {
	url := strings.TrimSpace(entry.URL)
	if url == "" || strings.ContainsAny(url, "\r\n") {
		return "", false
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	url = strings.ReplaceAll(url, fieldSep, escapedSep)
	title := store.SanitizeTitle(entry.Title)
	return ts.In(loc).Format(TimeLayout) + fieldSep + title + fieldSep + url + "\n", true
}

// ParseLine parses one log line. The timestamp is the text before the first
// separator and the URL the text after the last one, so titles may contain
// the separator. Separators escaped in the URL by FormatLine are restored. The year is inferred relative to now: the current year,
// or the previous one when that would place the visit in the future.
func ParseLine(line string, loc *time.Location, now time.Time) (store.HistoryEntry, bool) {
	line = strings.TrimRight(line, "\r\n")

	first := strings.Index(line, fieldSep)
	last := strings.LastIndex(line, fieldSep)
	if first < 0 || last <= first {
		return store.HistoryEntry{}, false
	}

	url := strings.TrimSpace(line[last+1:])
	if url == "" {
		return store.HistoryEntry{}, false
	}

	parsed, err := time.ParseInLocation(TimeLayout, line[:first], loc)
	if err != nil {
		return store.HistoryEntry{}, false
	}

	now = now.In(loc)
	ts := time.Date(now.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
	if ts.After(now) {
		ts = ts.AddDate(-1, 0, 0)
	}

	return store.HistoryEntry{
		Timestamp: ts,
		Title:     line[first+1 : last],
		URL:       unescapeSep(url),
	}, true
}

func unescapeSep(url string) string {
	if !strings.Contains(url, "%7") {
		return url
	}
	return strings.NewReplacer(escapedSep, fieldSep, "%7c", fieldSep).Replace(url)
}
