// Package outcome classifies finished navigations and authors the local
// pages shown in place of failed ones.
package outcome

import (
	"fmt"
	"net/http"

	"github.com/barikyo/ciallo/internal/engine"
)

// Kind is the user-facing error taxonomy for navigation and history.
type Kind int

const (
	KindNone Kind = iota
	KindMalformedTarget
	KindTransportFailure
	KindHTTPClientError
	KindHTTPServerOrOtherError
	KindHistoryWriteFailure
	KindHistorySnapshotFailure
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMalformedTarget:
		return "malformed target"
	case KindTransportFailure:
		return "transport failure"
	case KindHTTPClientError:
		return "http client error"
	case KindHTTPServerOrOtherError:
		return "http server or other error"
	case KindHistoryWriteFailure:
		return "history write failure"
	case KindHistorySnapshotFailure:
		return "history snapshot failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Category groups HTTP failures by the page the user is shown.
type Category int

const (
	CategoryNone Category = iota
	CategoryNotFound
	CategoryForbidden
	CategoryServerOrOther
)

func (c Category) String() string {
	switch c {
	case CategoryNotFound:
		return "not found"
	case CategoryForbidden:
		return "forbidden"
	case CategoryServerOrOther:
		return "server or other"
	default:
		return "none"
	}
}

// Result is the shape of an Outcome.
type Result int

const (
	Success Result = iota
	NetworkError
	HTTPError
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case NetworkError:
		return "network error"
	case HTTPError:
		return "http error"
	default:
		return "unknown"
	}
}

// Outcome is a classified completion. Code is set for NetworkError; Status
// and Category are set for HTTPError.
type Outcome struct {
	Result   Result
	Code     string
	Status   int
	Category Category
}

// OK reports whether the navigation succeeded.
func (o Outcome) OK() bool {
	return o.Result == Success
}

// Kind maps the outcome into the error taxonomy.
func (o Outcome) Kind() Kind {
	switch o.Result {
	case NetworkError:
		return KindTransportFailure
	case HTTPError:
		if o.Category == CategoryServerOrOther {
			return KindHTTPServerOrOtherError
		}
		return KindHTTPClientError
	default:
		return KindNone
	}
}

func (o Outcome) String() string {
	switch o.Result {
	case NetworkError:
		return fmt.Sprintf("network error (%s)", o.Code)
	case HTTPError:
		return fmt.Sprintf("http %d (%s)", o.Status, o.Category)
	default:
		return "success"
	}
}

// Classify turns a completion event into an Outcome. Transport failure wins
// over any status the engine may also report.
func Classify(c engine.Completion) Outcome {
	if !c.TransportSucceeded {
		return Outcome{Result: NetworkError, Code: c.TransportErrorCode}
	}
	if c.HTTPStatus >= 400 {
		return Outcome{Result: HTTPError, Status: c.HTTPStatus, Category: categorize(c.HTTPStatus)}
	}
	return Outcome{Result: Success}
}

func categorize(status int) Category {
	switch status {
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusForbidden:
		return CategoryForbidden
	default:
		return CategoryServerOrOther
	}
}

// Phase is where a navigation attempt currently stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseNavigating
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNavigating:
		return "navigating"
	case PhaseCompleted:
		return "completed"
	default:
		return "idle"
	}
}
