// Package snapshot reads visit history out of the engine's live SQLite
// History database without contending with the engine for it.
//
// Every List call copies the live file to a uniquely named temporary path,
// opens the copy read-only, queries it, and removes the copy before
// returning. The live file is never opened by SQLite.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/barikyo/ciallo/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TempPrefix starts the name of every temporary copy made by this package.
const TempPrefix = "ciallo-history-"

// sidecars are the files SQLite may create next to a database.
var sidecars = []string{"", "-journal", "-wal", "-shm"}

// webkitEpochOffset is the number of microseconds between 1601-01-01 and
// 1970-01-01, the epoch used by last_visit_time.
const webkitEpochOffset = 11644473600000000

// urlRow mirrors the columns consumed from the engine's urls table.
type urlRow struct {
	Title         sql.NullString
	URL           string
	LastVisitTime int64
}

// Store is a read-only store.HistoryStore over a snapshot of a live file.
type Store struct {
	source  string
	tempDir string
	log     *zap.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithTempDir sets the directory that receives temporary copies.
// Default: os.TempDir().
func WithTempDir(dir string) Option { return func(s *Store) { s.tempDir = dir } }

// WithLogger sets the logger used for cleanup failures.
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// New creates a snapshot store reading the live database at source.
func New(source string, opts ...Option) *Store {
	s := &Store{
		source:  source,
		tempDir: os.TempDir(),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if abs, err := filepath.Abs(s.tempDir); err == nil {
		s.tempDir = abs
	}
	return s
}

// Source returns the path of the live database.
func (s *Store) Source() string {
	return s.source
}

// Append always fails: the engine owns the live file.
func (s *Store) Append(ctx context.Context, entry store.HistoryEntry) error {
	return &store.Error{Kind: store.KindReadOnly, Op: "append", Path: s.source, Err: store.ErrReadOnly}
}

// Clear always fails: history in the live file is cleared through the engine.
func (s *Store) Clear(ctx context.Context) error {
	return &store.Error{Kind: store.KindReadOnly, Op: "clear", Path: s.source, Err: store.ErrReadOnly}
}

// Close is a no-op; nothing is held between List calls.
func (s *Store) Close() error {
	return nil
}

// List returns at most limit visits, most recent first, read from a private
// copy of the live database.
//
// Failures never surface as an empty slice with an error alone:
//   - a missing source yields one "no history yet" placeholder and no error;
//   - a source locked exclusively by its owner yields zero entries and a
//     KindSourceBusy error;
//   - any other copy or query failure yields one explanatory placeholder
//     and a KindSnapshot error.
//
// The temporary copy is removed on every path.
func (s *Store) List(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	if _, err := os.Stat(s.source); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []store.HistoryEntry{store.PlaceholderEntry(store.EmptyPlaceholder)}, nil
		}
		return s.failure("stat", err)
	}

	tmp := filepath.Join(s.tempDir, TempPrefix+uuid.NewString()+".db")
	defer s.cleanup(tmp)

	if err := copyFile(ctx, s.source, tmp); err != nil {
		if errors.Is(err, store.ErrSourceBusy) {
			return []store.HistoryEntry{}, &store.Error{Kind: store.KindSourceBusy, Op: "copy", Path: s.source, Err: err}
		}
		if ctx.Err() != nil {
			return nil, &store.Error{Kind: store.KindSnapshot, Op: "copy", Path: s.source, Err: ctx.Err()}
		}
		return s.failure("copy", err)
	}

	entries, err := query(ctx, tmp, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &store.Error{Kind: store.KindSnapshot, Op: "query", Path: tmp, Err: ctx.Err()}
		}
		return s.failure("query", err)
	}
	return entries, nil
}

func (s *Store) failure(op string, err error) ([]store.HistoryEntry, error) {
	placeholder := store.PlaceholderEntry(fmt.Sprintf("Could not read history: %v", err))
	return []store.HistoryEntry{placeholder}, &store.Error{Kind: store.KindSnapshot, Op: op, Path: s.source, Err: err}
}

// cleanup removes the copy and any sidecars once. A failure is logged and
// left to the platform's temp reclamation.
func (s *Store) cleanup(tmp string) {
	for _, suffix := range sidecars {
		name := tmp + suffix
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("snapshot: failed to remove temporary copy",
				zap.String("path", name),
				zap.Error(&store.Error{Kind: store.KindCleanup, Op: "remove", Path: name, Err: err}))
		}
	}
}

// query opens the copy read-only and reads the most recent http(s) visits.
// The handle is closed before query returns so the copy can be removed.
func query(ctx context.Context, path string, limit int) ([]store.HistoryEntry, error) {
	db, err := gorm.Open(sqlite.Open(readOnlyDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot handle: %w", err)
	}
	defer sqlDB.Close()

	visits := func() *gorm.DB {
		return db.WithContext(ctx).
			Table("urls").
			Select("title", "url", "last_visit_time").
			Where("url LIKE ? OR url LIKE ?", "http://%", "https://%").
			Order("last_visit_time DESC")
	}

	if limit <= 0 {
		var rows []urlRow
		if err := visits().Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to query visits: %w", err)
		}
		return appendVisits(make([]store.HistoryEntry, 0, len(rows)), rows), nil
	}

	// Synthetic rows are only recognisable after parsing, so page until
	// limit real visits are found or the table is exhausted.
	batch := max(limit, minQueryBatch)
	entries := make([]store.HistoryEntry, 0, limit)
	for offset := 0; len(entries) < limit; offset += batch {
		var rows []urlRow
		if err := visits().Limit(batch).Offset(offset).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to query visits: %w", err)
		}
		entries = appendVisits(entries, rows)
		if len(rows) < batch {
			break
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// minQueryBatch is the smallest page of rows read per query.
const minQueryBatch = 64

func appendVisits(entries []store.HistoryEntry, rows []urlRow) []store.HistoryEntry {
	for _, row := range rows {
		if synthetic(row.URL) {
			continue
		}

		title := store.SanitizeTitle(row.Title.String)
		if title == "" {
			title = store.UntitledPlaceholder
		}

		entries = append(entries, store.HistoryEntry{
			Timestamp: webkitTime(row.LastVisitTime),
			Title:     title,
			URL:       row.URL,
		})
	}
	return entries
}

// synthetic reports whether a stored URL is an internal entry rather than a
// page the user visited.
func synthetic(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme != "http" && scheme != "https") || u.Host == ""
}

func webkitTime(us int64) time.Time {
	if us <= 0 {
		return time.Time{}
	}
	return time.UnixMicro(us - webkitEpochOffset)
}

// WebKitTime converts t into the last_visit_time representation.
func WebKitTime(t time.Time) int64 {
	return t.UnixMicro() + webkitEpochOffset
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readOnlyDSN builds an SQLite URI that opens path without write access.
func readOnlyDSN(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file:" + uriEscaper.Replace(p) + "?mode=ro"
}
