package store

import (
	"errors"
	"fmt"
	"time"
)

// Placeholder titles used when a store has to substitute text for data it
// could not read.
const (
	UntitledPlaceholder = "(untitled)"
	EmptyPlaceholder    = "No history yet"
)

// HistoryEntry represents one visited page.
type HistoryEntry struct {
	// Timestamp is when the visit completed.
	Timestamp time.Time

	// Title is the document title reported by the engine.
	Title string

	// URL is the fully qualified final URL of the visit.
	URL string

	// Placeholder marks explanatory rows that are not real visits.
	// Placeholder entries carry no navigable URL.
	Placeholder bool
}

// Navigable reports whether selecting the entry should trigger a navigation.
func (e HistoryEntry) Navigable() bool {
	return !e.Placeholder && e.URL != ""
}

// String renders the entry the way history lists display it.
func (e HistoryEntry) String() string {
	if e.Placeholder {
		return e.Title
	}
	return e.Title + " | " + e.URL
}

// PlaceholderEntry builds an explanatory, non-navigable entry.
func PlaceholderEntry(text string) HistoryEntry {
	return HistoryEntry{Title: text, Placeholder: true}
}

// Kind classifies history failures.
type Kind int

const (
	// KindWrite is a local I/O failure while recording a visit.
	KindWrite Kind = iota + 1
	// KindRead is a failure reading a store the process owns.
	KindRead
	// KindSnapshot is a copy or query failure against a snapshot.
	KindSnapshot
	// KindSourceBusy means the live file could not be opened because its
	// owner holds it exclusively.
	KindSourceBusy
	// KindNotFound means the backing file does not exist (yet).
	KindNotFound
	// KindReadOnly means the store does not accept writes.
	KindReadOnly
	// KindCleanup is a failure removing a temporary copy.
	KindCleanup
)

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "history write failure"
	case KindRead:
		return "history read failure"
	case KindSnapshot:
		return "history snapshot failure"
	case KindSourceBusy:
		return "history source busy"
	case KindNotFound:
		return "history source not found"
	case KindReadOnly:
		return "history store is read-only"
	case KindCleanup:
		return "snapshot cleanup failure"
	default:
		return fmt.Sprintf("history error(%d)", int(k))
	}
}

// Sentinel errors for the kinds callers commonly test against.
var (
	ErrReadOnly   = errors.New("store is read-only")
	ErrSourceBusy = errors.New("history source is locked by its owner")
)

// Error is the error type returned by history stores.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
