// Package navigator coordinates one browsing session: it resolves what the
// user typed, drives the engine, classifies how each navigation ended and
// decides what to record or display.
//
// All session state is owned by the goroutine running Run. UI commands and
// engine events are handled one at a time in arrival order.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barikyo/ciallo/internal/engine"
	"github.com/barikyo/ciallo/internal/outcome"
	"github.com/barikyo/ciallo/internal/resolve"
	"github.com/barikyo/ciallo/internal/store"
	"go.uber.org/zap"
)

// BrowserName is appended to page titles in the window title.
const BrowserName = "Ciallo"

// View says what kind of document is displayed.
type View int

const (
	ViewHome View = iota
	ViewPage
	ViewFallback
)

func (v View) String() string {
	switch v {
	case ViewPage:
		return "page"
	case ViewFallback:
		return "fallback"
	default:
		return "home"
	}
}

// Recorder persists visits. history.Service implements it.
type Recorder interface {
	Record(entry store.HistoryEntry)
	Clear(ctx context.Context) error
}

type discard struct{}

func (discard) Record(store.HistoryEntry)       {}
func (discard) Clear(ctx context.Context) error { return nil }

// State is a copy of the session as the UI should render it.
type State struct {
	View    View
	Address string
	Title   string
	Phase   outcome.Phase
	Outcome outcome.Outcome
	Status  string
}

// Option customises a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(n *Navigator) { n.log = l } }

// WithSearchURL sets the search template used for search targets.
func WithSearchURL(template string) Option { return func(n *Navigator) { n.searchURL = template } }

// WithClock overrides the time source for recorded visits.
func WithClock(now func() time.Time) Option { return func(n *Navigator) { n.now = now } }

// Navigator is the navigation coordinator.
type Navigator struct {
	engine    engine.Engine
	history   Recorder
	log       *zap.Logger
	searchURL string
	now       func() time.Time

	cmds    chan func(context.Context)
	updates chan State
	done    chan struct{}

	// session state, owned by Run
	view          View
	lastAttempted string
	source        string
	pageTitle     string
	address       string
	windowTitle   string
	phase         outcome.Phase
	last          outcome.Outcome
	status        string
	historyNav    bool

	// local documents committed to session history, by data: URL
	localDocs  map[string]localDoc
	localOrder []string
}

// maxLocalDocs bounds how many local documents are remembered for
// back/forward.
const maxLocalDocs = 32

// localDoc is what a session-history entry holding a local document showed.
type localDoc struct {
	view        View
	requested   string
	outcome     outcome.Outcome
	windowTitle string
}

// New creates a Navigator over eng that records successful visits to rec.
func New(eng engine.Engine, rec Recorder, opts ...Option) *Navigator {
	if rec == nil {
		rec = discard{}
	}
	n := &Navigator{
		engine:    eng,
		history:   rec,
		log:       zap.NewNop(),
		searchURL: resolve.DefaultSearchURL,
		now:       time.Now,
		cmds:      make(chan func(context.Context), 16),
		updates:   make(chan State, 1),
		done:      make(chan struct{}),
		address:   resolve.HomeLabel,
		localDocs: make(map[string]localDoc),
	}
	for _, o := range opts {
		o(n)
	}
	n.windowTitle = WindowTitle("")
	return n
}

// Updates delivers the latest state after every handled command or event.
// Intermediate states may be skipped. The channel is closed when Run returns.
func (n *Navigator) Updates() <-chan State {
	return n.updates
}

// Run shows the home page, then handles commands and engine events until
// ctx is canceled or the engine's event channel closes.
func (n *Navigator) Run(ctx context.Context) error {
	defer close(n.updates)
	defer close(n.done)

	n.goHome(ctx)
	n.publish()

	events := n.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-n.cmds:
			cmd(ctx)
		case ev, ok := <-events:
			if !ok {
				n.log.Info("navigator: engine closed")
				return nil
			}
			n.handleEvent(ctx, ev)
		}
		n.publish()
	}
}

// Submit navigates to whatever raw resolves to.
func (n *Navigator) Submit(raw string) { n.enqueue(func(ctx context.Context) { n.submit(ctx, raw) }) }

// Open navigates to url as is, without resolving it. Used for history
// entries.
func (n *Navigator) Open(url string) { n.enqueue(func(ctx context.Context) { n.open(ctx, url) }) }

// Refresh reloads the page, or retries the last attempted URL when a
// fallback document is displayed.
func (n *Navigator) Refresh() { n.enqueue(n.refresh) }

// Home shows the home page.
func (n *Navigator) Home() { n.enqueue(n.goHome) }

// Back goes one entry back in the engine's session history.
func (n *Navigator) Back() { n.enqueue(n.back) }

// Forward goes one entry forward in the engine's session history.
func (n *Navigator) Forward() { n.enqueue(n.forward) }

// ClearData removes the selected browsing data.
func (n *Navigator) ClearData(kinds engine.DataKinds) {
	n.enqueue(func(ctx context.Context) { n.clearData(ctx, kinds) })
}

func (n *Navigator) enqueue(cmd func(context.Context)) {
	select {
	case n.cmds <- cmd:
	case <-n.done:
	}
}

func (n *Navigator) publish() {
	s := n.snapshot()
	select {
	case <-n.updates:
	default:
	}
	n.updates <- s
}

func (n *Navigator) snapshot() State {
	return State{
		View:    n.view,
		Address: n.address,
		Title:   n.windowTitle,
		Phase:   n.phase,
		Outcome: n.last,
		Status:  n.status,
	}
}

func (n *Navigator) submit(ctx context.Context, raw string) {
	target := resolve.Resolve(raw)
	if target.Kind == resolve.Home {
		n.goHome(ctx)
		return
	}

	err := n.navigate(ctx, target.URL(n.searchURL))
	if err == nil {
		return
	}
	if !errors.Is(err, engine.ErrMalformedTarget) || target.Kind != resolve.DirectURL {
		n.abandon(raw, err)
		return
	}

	n.log.Info("navigator: engine rejected address, searching instead", zap.String("input", raw), zap.Error(err))
	if err := n.navigate(ctx, resolve.Search(raw).URL(n.searchURL)); err != nil {
		n.abandon(raw, err)
	}
}

func (n *Navigator) open(ctx context.Context, url string) {
	if err := n.navigate(ctx, url); err != nil {
		n.abandon(url, err)
	}
}

// navigate starts an attempt at url. Session state changes only once the
// engine accepts url, so a rejected attempt leaves the current document,
// address and last attempted URL as they were.
func (n *Navigator) navigate(ctx context.Context, url string) error {
	if err := n.engine.Navigate(ctx, url); err != nil {
		return err
	}

	n.lastAttempted = url
	n.view = ViewPage
	n.phase = outcome.PhaseNavigating
	n.address = url
	n.source = ""
	n.pageTitle = ""
	n.status = ""
	n.historyNav = false
	return nil
}

func (n *Navigator) abandon(input string, err error) {
	n.log.Warn("navigator: navigation abandoned", zap.String("input", input), zap.Error(err))
	n.phase = outcome.PhaseIdle
	n.status = fmt.Sprintf("Could not open %s", input)
}

func (n *Navigator) refresh(ctx context.Context) {
	switch {
	case n.view == ViewFallback && n.lastAttempted != "":
		if err := n.navigate(ctx, n.lastAttempted); err != nil {
			n.abandon(n.lastAttempted, err)
		}
	case n.view == ViewHome:
		n.goHome(ctx)
	default:
		n.phase = outcome.PhaseNavigating
		n.status = ""
		if err := n.engine.Reload(ctx); err != nil {
			n.abandon(n.address, err)
		}
	}
}

func (n *Navigator) goHome(ctx context.Context) {
	n.view = ViewHome
	n.phase = outcome.PhaseIdle
	n.address = resolve.HomeLabel
	n.pageTitle = ""
	n.historyNav = false

	doc := outcome.Home(n.searchURL)
	n.windowTitle = WindowTitle(doc.Title)
	if err := n.engine.ShowDocument(ctx, doc); err != nil {
		n.log.Warn("navigator: failed to show home page", zap.Error(err))
		n.status = "Could not show the home page"
	}
}

func (n *Navigator) back(ctx context.Context) {
	n.historyNav = true
	n.status = ""
	if err := n.engine.Back(ctx); err != nil {
		n.historyNav = false
		n.log.Debug("navigator: back failed", zap.Error(err))
	}
}

func (n *Navigator) forward(ctx context.Context) {
	n.historyNav = true
	n.status = ""
	if err := n.engine.Forward(ctx); err != nil {
		n.historyNav = false
		n.log.Debug("navigator: forward failed", zap.Error(err))
	}
}

func (n *Navigator) clearData(ctx context.Context, kinds engine.DataKinds) {
	if kinds == 0 {
		return
	}

	var errs []error
	if err := n.engine.ClearBrowsingData(ctx, kinds); err != nil {
		errs = append(errs, err)
	}
	if kinds.Has(engine.DataHistory) {
		if err := n.history.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		n.log.Warn("navigator: failed to clear browsing data", zap.Stringer("kinds", kinds), zap.Error(err))
		n.status = "Clearing failed: " + err.Error()
		return
	}

	n.status = fmt.Sprintf("Cleared %s", kinds)
	if kinds.Has(engine.DataHistory) {
		n.localDocs = make(map[string]localDoc)
		n.localOrder = nil
		n.goHome(ctx)
	}
}

func (n *Navigator) handleEvent(ctx context.Context, ev engine.Event) {
	switch ev := ev.(type) {
	case engine.SourceChanged:
		n.sourceChanged(ev.URL)
	case engine.TitleChanged:
		n.pageTitle = ev.Title
		if n.view == ViewPage {
			n.windowTitle = WindowTitle(ev.Title)
		}
	case engine.NavigationCompleted:
		n.completed(ctx, ev.Completion)
	}
}

func (n *Navigator) sourceChanged(url string) {
	local := strings.HasPrefix(strings.ToLower(url), "data:")

	if n.historyNav {
		n.historyNav = false
		if local {
			n.restoreLocal(url)
			return
		}
		n.view = ViewPage
		n.source = url
		n.address = url
		return
	}

	switch n.view {
	case ViewPage:
		if !local {
			n.source = url
			n.address = url
		}
	case ViewHome:
		if local {
			n.rememberLocal(url, localDoc{view: ViewHome, windowTitle: n.windowTitle})
			return
		}
		// A page reached from the home page's own search box.
		n.view = ViewPage
		n.source = url
		n.address = url
		n.lastAttempted = url
		n.phase = outcome.PhaseNavigating
	case ViewFallback:
		if local {
			n.rememberLocal(url, localDoc{
				view:        ViewFallback,
				requested:   n.address,
				outcome:     n.last,
				windowTitle: n.windowTitle,
			})
		}
		// Otherwise the engine's own error page commit; the fallback
		// document stays.
	}
}

func (n *Navigator) rememberLocal(url string, doc localDoc) {
	if _, ok := n.localDocs[url]; !ok {
		if len(n.localOrder) == maxLocalDocs {
			delete(n.localDocs, n.localOrder[0])
			n.localOrder = n.localOrder[1:]
		}
		n.localOrder = append(n.localOrder, url)
	}
	n.localDocs[url] = doc
}

// restoreLocal applies the state of a local document reached through
// back/forward. Unknown local documents are treated as home.
func (n *Navigator) restoreLocal(url string) {
	doc, ok := n.localDocs[url]
	if !ok || doc.view != ViewFallback {
		n.view = ViewHome
		n.address = resolve.HomeLabel
		n.windowTitle = WindowTitle(outcome.HomeTitle)
		return
	}
	n.view = ViewFallback
	n.address = doc.requested
	n.lastAttempted = doc.requested
	n.last = doc.outcome
	n.windowTitle = doc.windowTitle
}

func (n *Navigator) completed(ctx context.Context, c engine.Completion) {
	o := outcome.Classify(c)
	n.last = o
	n.phase = outcome.PhaseCompleted
	n.publish()
	defer func() { n.phase = outcome.PhaseIdle }()

	if o.OK() {
		title := store.NormalizeTitle(n.pageTitle)
		if n.view != ViewPage || title == "" {
			return
		}
		url := n.source
		if url == "" {
			url = n.lastAttempted
		}
		n.history.Record(store.HistoryEntry{Timestamp: n.now(), Title: title, URL: url})
		return
	}

	requested := n.lastAttempted
	if requested == "" {
		requested = n.source
	}
	n.log.Info("navigator: navigation failed",
		zap.String("url", requested),
		zap.Stringer("outcome", o),
		zap.Stringer("kind", o.Kind()))

	doc := outcome.Fallback(o, requested)
	n.view = ViewFallback
	n.address = requested
	n.windowTitle = WindowTitle(doc.Title)
	if err := n.engine.ShowDocument(ctx, doc); err != nil {
		n.log.Warn("navigator: failed to show fallback document", zap.Error(err))
		n.status = o.String()
	}
}

// WindowTitle formats a page title for the window.
func WindowTitle(pageTitle string) string {
	t := strings.TrimSpace(pageTitle)
	if t == "" || strings.EqualFold(t, "about:blank") {
		return BrowserName
	}
	return t + " - " + BrowserName
}
