// Package history is the never-failing boundary over history stores.
//
// Record hands entries to a single background writer so disk I/O never
// blocks navigation, preserving submission order. ListRecent always returns
// a usable slice; store errors are logged here and go no further.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/barikyo/ciallo/internal/store"
	"go.uber.org/zap"
)

const (
	defaultBufferSize   = 64
	defaultWriteTimeout = 5 * time.Second
)

// Service records visits to a writer store and lists them from a reader
// store. Writer and reader may be the same store.
type Service struct {
	writer store.HistoryStore
	reader store.HistoryStore
	log    *zap.Logger

	writeTimeout time.Duration
	writeCh      chan store.HistoryEntry
	stopCh       chan struct{}
	worker       sync.WaitGroup
	listings     sync.WaitGroup

	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger for swallowed failures.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// WithBufferSize sets how many pending records may queue before new ones
// are dropped.
func WithBufferSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.writeCh = make(chan store.HistoryEntry, n)
		}
	}
}

// WithWriteTimeout bounds each background append.
func WithWriteTimeout(d time.Duration) Option { return func(s *Service) { s.writeTimeout = d } }

// NewService starts the background writer.
func NewService(writer, reader store.HistoryStore, opts ...Option) *Service {
	s := &Service{
		writer:       writer,
		reader:       reader,
		log:          zap.NewNop(),
		writeTimeout: defaultWriteTimeout,
		writeCh:      make(chan store.HistoryEntry, defaultBufferSize),
		stopCh:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}

	s.worker.Add(1)
	go s.writeWorker()

	return s
}

// Record queues a visit for persistence. It never blocks and never fails:
// entries without a title or URL are ignored, and a full queue drops the
// entry with a warning.
func (s *Service) Record(entry store.HistoryEntry) {
	entry.Title = store.NormalizeTitle(entry.Title)
	if entry.Title == "" || entry.URL == "" || entry.Placeholder {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.log.Warn("history: service closed, dropping visit", zap.String("url", entry.URL))
		return
	}

	select {
	case s.writeCh <- entry:
	default:
		s.log.Warn("history: write buffer full, dropping visit", zap.String("url", entry.URL))
	}
}

// ListRecent returns at most limit visits, most recent first. It never
// returns an error; the slice may hold a single placeholder entry describing
// a failure. A limit <= 0 returns an empty slice without reading the store.
func (s *Service) ListRecent(ctx context.Context, limit int) []store.HistoryEntry {
	if limit <= 0 {
		return []store.HistoryEntry{}
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return []store.HistoryEntry{}
	}
	s.listings.Add(1)
	s.mu.RUnlock()
	defer s.listings.Done()

	entries, err := s.reader.List(ctx, limit)
	if err != nil {
		s.logListError(err)
	}
	if entries == nil {
		entries = []store.HistoryEntry{}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Clear removes every visit from the writer store.
func (s *Service) Clear(ctx context.Context) error {
	return s.writer.Clear(ctx)
}

// Close stops accepting records, drains pending writes, waits for in-flight
// listings to finish their cleanup, then closes the stores.
func (s *Service) Close() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.stopCh)
	})

	s.worker.Wait()
	s.listings.Wait()

	err := s.writer.Close()
	if s.reader != s.writer {
		if rerr := s.reader.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// writeWorker appends queued entries in submission order.
func (s *Service) writeWorker() {
	defer s.worker.Done()

	for {
		select {
		case entry := <-s.writeCh:
			s.write(entry)
		case <-s.stopCh:
			// Drain remaining writes before exiting
			for {
				select {
				case entry := <-s.writeCh:
					s.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) write(entry store.HistoryEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.writer.Append(ctx, entry); err != nil {
		s.log.Warn("history: failed to record visit",
			zap.String("url", entry.URL),
			zap.Stringer("kind", store.KindOf(err)),
			zap.Error(err))
	}
}

func (s *Service) logListError(err error) {
	kind := store.KindOf(err)
	switch kind {
	case store.KindSourceBusy:
		s.log.Info("history: source locked by its owner, returning no entries", zap.Error(err))
	default:
		s.log.Warn("history: failed to list visits", zap.Stringer("kind", kind), zap.Error(err))
	}
}
