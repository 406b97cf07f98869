// Package engine defines the rendering engine the browser drives. The engine
// fetches and renders; this module only tells it where to go and listens for
// what happened.
package engine

import (
	"context"
	"errors"
)

// ErrMalformedTarget is wrapped by Navigate when the engine rejects a URL
// before any request is made.
var ErrMalformedTarget = errors.New("malformed navigation target")

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine closed")

// Completion reports how a navigation attempt ended.
type Completion struct {
	TransportSucceeded bool
	HTTPStatus         int
	TransportErrorCode string
}

// Document is a locally authored page shown in place of remote content.
type Document struct {
	Title string
	HTML  string
}

// DataKinds selects what ClearBrowsingData removes.
type DataKinds uint8

const (
	DataHistory DataKinds = 1 << iota
	DataCookies
	DataCache

	DataAll = DataHistory | DataCookies | DataCache
)

// Has reports whether every kind in want is selected.
func (k DataKinds) Has(want DataKinds) bool {
	return k&want == want
}

func (k DataKinds) String() string {
	if k == DataAll {
		return "all"
	}
	var parts []string
	if k.Has(DataHistory) {
		parts = append(parts, "history")
	}
	if k.Has(DataCookies) {
		parts = append(parts, "cookies")
	}
	if k.Has(DataCache) {
		parts = append(parts, "cache")
	}
	if len(parts) == 0 {
		return "none"
	}
	s := parts[0]
	for _, p := range parts[1:] {
		s += "+" + p
	}
	return s
}

// Event is one of SourceChanged, TitleChanged or NavigationCompleted.
type Event interface {
	isEvent()
}

// SourceChanged fires when the main frame commits to a new URL.
type SourceChanged struct {
	URL string
}

// TitleChanged fires when the document title changes.
type TitleChanged struct {
	Title string
}

// NavigationCompleted fires once per main-frame navigation attempt.
type NavigationCompleted struct {
	Completion Completion
}

func (SourceChanged) isEvent()       {}
func (TitleChanged) isEvent()        {}
func (NavigationCompleted) isEvent() {}

// Engine is the rendering engine collaborator. Events are delivered in order
// on a single channel that is closed by Close.
type Engine interface {
	Navigate(ctx context.Context, url string) error
	ShowDocument(ctx context.Context, doc Document) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Reload(ctx context.Context) error
	ClearBrowsingData(ctx context.Context, kinds DataKinds) error
	Events() <-chan Event
	Close() error
}
