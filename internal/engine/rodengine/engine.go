// Package rodengine drives a Chrome instance over the DevTools protocol with
// go-rod and exposes it as an engine.Engine.
package rodengine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/barikyo/ciallo/internal/engine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config configures the Chrome instance.
type Config struct {
	// Bin is the Chrome executable. Empty lets the launcher find or fetch one.
	Bin string
	// Headless hides the browser window.
	Headless bool
	// UserDataDir is the persistent Chrome profile. Its Default/History file
	// is the snapshot history source.
	UserDataDir string
	// ControlURL connects to an already running Chrome instead of launching.
	ControlURL string

	Logger *zap.Logger
}

// Engine is an engine.Engine backed by a single Chrome tab.
type Engine struct {
	log      *zap.Logger
	lnch     *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	tracker  *navTracker
	events   chan engine.Event
	done     chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	stopOnce sync.Once
}

var _ engine.Engine = (*Engine)(nil)

// Launch starts Chrome, opens one blank tab and begins translating its
// events.
func Launch(ctx context.Context, cfg Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		log:    log,
		events: make(chan engine.Event, 32),
		done:   make(chan struct{}),
	}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		if cfg.UserDataDir != "" {
			l = l.UserDataDir(cfg.UserDataDir)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("rodengine: launch: %w", err)
		}
		controlURL = u
		e.lnch = l
		log.Info("rodengine: launched chrome", zap.String("url", u), zap.Bool("headless", cfg.Headless))
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		e.kill()
		return nil, fmt.Errorf("rodengine: connect: %w", err)
	}
	e.browser = b

	p, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		e.shutdown()
		return nil, fmt.Errorf("rodengine: open tab: %w", err)
	}
	e.page = p
	e.tracker = newNavTracker(proto.PageFrameID(p.TargetID))

	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(b); err != nil {
		log.Warn("rodengine: target discovery unavailable, new windows will open separately", zap.Error(err))
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.watch(watchCtx)

	return e, nil
}

// watch subscribes to page and browser events until ctx is canceled.
func (e *Engine) watch(ctx context.Context) {
	pageWait := e.page.Context(ctx).EachEvent(
		func(ev *proto.PageFrameNavigated) {
			e.emit(e.tracker.onFrameNavigated(ev)...)
		},
		func(ev *proto.NetworkRequestWillBeSent) {
			e.tracker.onRequest(ev)
		},
		func(ev *proto.NetworkResponseReceived) {
			e.tracker.onResponse(ev)
		},
		func(ev *proto.NetworkLoadingFailed) {
			e.emit(e.tracker.onLoadingFailed(ev)...)
		},
		func(ev *proto.PageLoadEventFired) {
			if !e.tracker.loading() {
				return
			}
			e.emit(e.tracker.onLoad(e.title())...)
		},
		func(ev *proto.PageWindowOpen) {
			// New windows open in this tab.
			if ev.URL == "" {
				return
			}
			go func() {
				if err := e.Navigate(ctx, ev.URL); err != nil {
					e.log.Warn("rodengine: failed to follow new window", zap.String("url", ev.URL), zap.Error(err))
				}
			}()
		},
	)

	browserWait := e.browser.Context(ctx).EachEvent(func(ev *proto.TargetTargetCreated) {
		if ev.TargetInfo == nil || ev.TargetInfo.OpenerID != e.page.TargetID {
			return
		}
		go e.closeTarget(ev.TargetInfo.TargetID)
	})

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		pageWait()
	}()
	go func() {
		defer e.wg.Done()
		browserWait()
	}()
}

func (e *Engine) title() string {
	info, err := e.page.Info()
	if err != nil {
		e.log.Debug("rodengine: failed to read title", zap.Error(err))
		return ""
	}
	return info.Title
}

func (e *Engine) closeTarget(id proto.TargetTargetID) {
	p, err := e.browser.PageFromTarget(id)
	if err != nil {
		e.log.Debug("rodengine: failed to attach to new window", zap.Error(err))
		return
	}
	if err := p.Close(); err != nil {
		e.log.Debug("rodengine: failed to close new window", zap.Error(err))
	}
}

// emit delivers events in order unless the engine is closing.
func (e *Engine) emit(events ...engine.Event) {
	if len(events) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	for _, ev := range events {
		select {
		case e.events <- ev:
		case <-e.done:
			return
		}
	}
}

// Navigate implements engine.Engine. A URL Chrome refuses outright is
// reported as engine.ErrMalformedTarget; a network failure completes the
// attempt through the event channel instead.
func (e *Engine) Navigate(ctx context.Context, url string) error {
	if e.isClosed() {
		return engine.ErrClosed
	}

	e.tracker.begin()
	err := e.page.Context(ctx).Navigate(url)
	if err == nil {
		return nil
	}

	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		e.emit(e.tracker.navigateFailed(navErr.Reason)...)
		return nil
	}

	e.tracker.reset()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		return fmt.Errorf("navigate %q: %w: %s", url, engine.ErrMalformedTarget, cdpErr.Message)
	}
	return fmt.Errorf("navigate %q: %w", url, err)
}

// ShowDocument implements engine.Engine by loading doc as a data: URL.
func (e *Engine) ShowDocument(ctx context.Context, doc engine.Document) error {
	if e.isClosed() {
		return engine.ErrClosed
	}
	e.tracker.reset()
	if err := e.page.Context(ctx).Navigate(dataURL(doc)); err != nil {
		return fmt.Errorf("show document %q: %w", doc.Title, err)
	}
	return nil
}

// Back implements engine.Engine.
func (e *Engine) Back(ctx context.Context) error {
	if e.isClosed() {
		return engine.ErrClosed
	}
	return e.page.Context(ctx).NavigateBack()
}

// Forward implements engine.Engine.
func (e *Engine) Forward(ctx context.Context) error {
	if e.isClosed() {
		return engine.ErrClosed
	}
	return e.page.Context(ctx).NavigateForward()
}

// Reload implements engine.Engine.
func (e *Engine) Reload(ctx context.Context) error {
	if e.isClosed() {
		return engine.ErrClosed
	}
	e.tracker.begin()
	if err := e.page.Context(ctx).Reload(); err != nil {
		e.tracker.reset()
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// ClearBrowsingData implements engine.Engine. History clears the tab's
// back/forward list; the persistent History file is left to Chrome.
func (e *Engine) ClearBrowsingData(ctx context.Context, kinds engine.DataKinds) error {
	if e.isClosed() {
		return engine.ErrClosed
	}
	p := e.page.Context(ctx)

	if kinds.Has(engine.DataHistory) {
		if err := (proto.PageResetNavigationHistory{}).Call(p); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
	}
	if kinds.Has(engine.DataCookies) {
		if err := (proto.NetworkClearBrowserCookies{}).Call(p); err != nil {
			return fmt.Errorf("clear cookies: %w", err)
		}
	}
	if kinds.Has(engine.DataCache) {
		if err := (proto.NetworkClearBrowserCache{}).Call(p); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}

	e.log.Info("rodengine: cleared browsing data", zap.Stringer("kinds", kinds))
	return nil
}

// Events implements engine.Engine.
func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// Close stops event delivery, closes the event channel and shuts Chrome down.
func (e *Engine) Close() error {
	var err error
	e.stopOnce.Do(func() {
		close(e.done)
		if e.cancel != nil {
			e.cancel()
		}
		e.wg.Wait()

		e.mu.Lock()
		e.closed = true
		close(e.events)
		e.mu.Unlock()

		err = e.shutdown()
	})
	return err
}

func (e *Engine) isClosed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

func (e *Engine) shutdown() error {
	var err error
	if e.browser != nil {
		if err = e.browser.Close(); err != nil {
			e.log.Warn("rodengine: graceful close failed, killing chrome", zap.Error(err))
		}
	}
	if err != nil || e.browser == nil {
		e.kill()
	}
	return err
}

func (e *Engine) kill() {
	if e.lnch != nil {
		e.lnch.Kill()
	}
}

func dataURL(doc engine.Document) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(doc.HTML))
}
