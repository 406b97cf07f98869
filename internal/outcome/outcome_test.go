package outcome

import (
	"strings"
	"testing"

	"github.com/barikyo/ciallo/internal/engine"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		completion engine.Completion
		want       Outcome
		wantKind   Kind
	}{
		{
			name:       "ok",
			completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 200},
			want:       Outcome{Result: Success},
			wantKind:   KindNone,
		},
		{
			name:       "redirect is success",
			completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 304},
			want:       Outcome{Result: Success},
			wantKind:   KindNone,
		},
		{
			name:       "not found",
			completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 404},
			want:       Outcome{Result: HTTPError, Status: 404, Category: CategoryNotFound},
			wantKind:   KindHTTPClientError,
		},
		{
			name:       "forbidden",
			completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 403},
			want:       Outcome{Result: HTTPError, Status: 403, Category: CategoryForbidden},
			wantKind:   KindHTTPClientError,
		},
		{
			name:       "server error keeps status",
			completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 503},
			want:       Outcome{Result: HTTPError, Status: 503, Category: CategoryServerOrOther},
			wantKind:   KindHTTPServerOrOtherError,
		},
		{
			name:       "other client error",
			completion: engine.Completion{TransportSucceeded: true, HTTPStatus: 410},
			want:       Outcome{Result: HTTPError, Status: 410, Category: CategoryServerOrOther},
			wantKind:   KindHTTPServerOrOtherError,
		},
		{
			name:       "transport failure",
			completion: engine.Completion{TransportErrorCode: "net::ERR_NAME_NOT_RESOLVED"},
			want:       Outcome{Result: NetworkError, Code: "net::ERR_NAME_NOT_RESOLVED"},
			wantKind:   KindTransportFailure,
		},
		{
			name:       "transport failure wins over status",
			completion: engine.Completion{HTTPStatus: 500, TransportErrorCode: "net::ERR_CONNECTION_RESET"},
			want:       Outcome{Result: NetworkError, Code: "net::ERR_CONNECTION_RESET"},
			wantKind:   KindTransportFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.completion)
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", got.Kind(), tt.wantKind)
			}
			if got.OK() != (tt.want.Result == Success) {
				t.Errorf("OK() = %t", got.OK())
			}
		})
	}
}

func TestFallback_PerCategory(t *testing.T) {
	tests := []struct {
		name      string
		outcome   Outcome
		wantTitle string
		wantText  string
	}{
		{"network", Outcome{Result: NetworkError, Code: "net::ERR_TIMED_OUT"}, "Can't reach this page", "net::ERR_TIMED_OUT"},
		{"not found", Outcome{Result: HTTPError, Status: 404, Category: CategoryNotFound}, "Page not found", "404"},
		{"forbidden", Outcome{Result: HTTPError, Status: 403, Category: CategoryForbidden}, "Access denied", "403"},
		{"server", Outcome{Result: HTTPError, Status: 502, Category: CategoryServerOrOther}, "Something went wrong", "status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Fallback(tt.outcome, "https://example.com/missing")
			if doc.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", doc.Title, tt.wantTitle)
			}
			if !strings.Contains(doc.HTML, tt.wantText) {
				t.Errorf("document missing %q:\n%s", tt.wantText, doc.HTML)
			}
			if !strings.Contains(doc.HTML, "https://example.com/missing") {
				t.Error("document should name the requested URL")
			}
		})
	}
}

func TestFallback_AccentDiffersByCategory(t *testing.T) {
	seen := map[string]string{}
	for _, o := range []Outcome{
		{Result: NetworkError},
		{Result: HTTPError, Status: 404, Category: CategoryNotFound},
		{Result: HTTPError, Status: 403, Category: CategoryForbidden},
		{Result: HTTPError, Status: 500, Category: CategoryServerOrOther},
	} {
		accent := describe(o, "").Accent
		if prev, ok := seen[accent]; ok {
			t.Errorf("%v and %v share accent %s", prev, o, accent)
		}
		seen[accent] = o.String()
	}
}

func TestFallback_SanitizesUntrustedText(t *testing.T) {
	o := Outcome{Result: NetworkError, Code: `<img src=x onerror="alert(1)">net::ERR`}
	doc := Fallback(o, `https://evil.example/<script>alert(2)</script>`)

	for _, bad := range []string{"<script", "<img", "onerror", "alert(2)"} {
		if strings.Contains(doc.HTML, bad) {
			t.Errorf("fallback document contains %q:\n%s", bad, doc.HTML)
		}
	}
	if !strings.Contains(doc.HTML, "net::ERR") {
		t.Error("sanitized error code should keep its text")
	}
}

func TestHome(t *testing.T) {
	doc := Home("")
	if doc.Title != HomeTitle {
		t.Errorf("Title = %q, want %q", doc.Title, HomeTitle)
	}
	if !strings.Contains(doc.HTML, "www.bing.com") {
		t.Error("home page should default to the built-in search engine")
	}

	custom := Home("https://duckduckgo.com/?q=%s")
	if !strings.Contains(custom.HTML, "duckduckgo.com") {
		t.Error("home page should use the configured search engine")
	}
}
