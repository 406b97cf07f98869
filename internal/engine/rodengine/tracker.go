package rodengine

import (
	"strings"
	"sync"

	"github.com/barikyo/ciallo/internal/engine"
	"github.com/go-rod/rod/lib/proto"
)

// navTracker folds the CDP events of one page into engine events. Only the
// main frame's document requests count as navigation attempts; data: loads
// are locally authored documents and never complete an attempt.
type navTracker struct {
	mu        sync.Mutex
	frameID   proto.PageFrameID
	requestID proto.NetworkRequestID
	status    int
	pending   bool
}

func newNavTracker(frameID proto.PageFrameID) *navTracker {
	return &navTracker{frameID: frameID}
}

// begin opens an attempt before the request is known, so a failure reported
// by Page.navigate itself still completes it.
func (t *navTracker) begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = true
	t.requestID = ""
	t.status = 0
}

// reset abandons any open attempt.
func (t *navTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
	t.requestID = ""
	t.status = 0
}

func (t *navTracker) onFrameNavigated(ev *proto.PageFrameNavigated) []engine.Event {
	if ev.Frame == nil || ev.Frame.ParentID != "" {
		return nil
	}
	return []engine.Event{engine.SourceChanged{URL: ev.Frame.URL}}
}

func (t *navTracker) onRequest(ev *proto.NetworkRequestWillBeSent) {
	if ev.Type != proto.NetworkResourceTypeDocument || ev.FrameID != t.frameID {
		return
	}
	if ev.Request != nil && isLocal(ev.Request.URL) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending && t.requestID == ev.RequestID {
		// redirect hop of the same request
		return
	}
	t.pending = true
	t.requestID = ev.RequestID
	t.status = 0
}

func (t *navTracker) onResponse(ev *proto.NetworkResponseReceived) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending || ev.RequestID != t.requestID || ev.Response == nil {
		return
	}
	t.status = ev.Response.Status
}

func (t *navTracker) onLoadingFailed(ev *proto.NetworkLoadingFailed) []engine.Event {
	if ev.Canceled {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending || ev.RequestID != t.requestID {
		return nil
	}
	return t.completeLocked(t.failureLocked(ev.ErrorText))
}

// navigateFailed completes the open attempt with a failure reported by
// Page.navigate.
func (t *navTracker) navigateFailed(reason string) []engine.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending {
		return nil
	}
	return t.completeLocked(t.failureLocked(reason))
}

// failureLocked describes a failed attempt. Chrome fails error responses
// with an empty body (net::ERR_HTTP_RESPONSE_CODE_FAILURE) after the
// response arrived; those keep their HTTP status.
func (t *navTracker) failureLocked(reason string) engine.Completion {
	if t.status >= 400 {
		return engine.Completion{TransportSucceeded: true, HTTPStatus: t.status}
	}
	return engine.Completion{TransportErrorCode: reason}
}

// onLoad completes the open attempt successfully. title is the document
// title at load time and is delivered ahead of the completion.
func (t *navTracker) onLoad(title string) []engine.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.pending {
		return nil
	}
	events := []engine.Event{engine.TitleChanged{Title: title}}
	return append(events, t.completeLocked(engine.Completion{TransportSucceeded: true, HTTPStatus: t.status})...)
}

// loading reports whether an attempt is open.
func (t *navTracker) loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *navTracker) completeLocked(c engine.Completion) []engine.Event {
	t.pending = false
	t.requestID = ""
	t.status = 0
	return []engine.Event{engine.NavigationCompleted{Completion: c}}
}

func isLocal(u string) bool {
	return strings.HasPrefix(strings.ToLower(u), "data:")
}
