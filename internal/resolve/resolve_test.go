package resolve

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Target
	}{
		{"empty", "", Target{Kind: Home}},
		{"whitespace only", "   \t", Target{Kind: Home}},
		{"about blank", "about:blank", Target{Kind: Home}},
		{"about blank mixed case", "About:Blank", Target{Kind: Home}},
		{"about home", "about:home", Target{Kind: Home}},
		{"home label", HomeLabel, Target{Kind: Home}},
		{"bare domain", "example.com", Target{Kind: DirectURL, Value: "https://example.com"}},
		{"padded domain", "  example.com  ", Target{Kind: DirectURL, Value: "https://example.com"}},
		{"ip address", "192.168.1.1", Target{Kind: DirectURL, Value: "https://192.168.1.1"}},
		{"explicit https", "https://go.dev/doc", Target{Kind: DirectURL, Value: "https://go.dev/doc"}},
		{"ftp kept", "ftp://x", Target{Kind: DirectURL, Value: "ftp://x"}},
		{"localhost with scheme", "http://localhost:8080", Target{Kind: DirectURL, Value: "http://localhost:8080"}},
		{"words", "hello world", Target{Kind: SearchQuery, Value: "hello world"}},
		{"single word", "golang", Target{Kind: SearchQuery, Value: "golang"}},
		{"dotted phrase", "what is go.dev", Target{Kind: SearchQuery, Value: "what is go.dev"}},
		{"view source stripped", "view-source:example.com", Target{Kind: DirectURL, Value: "https://example.com"}},
		{"view source case", "VIEW-SOURCE:https://a.b", Target{Kind: DirectURL, Value: "https://a.b"}},
		{"view source alone", "view-source:", Target{Kind: Home}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.input)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_DirectURLAlwaysHasScheme(t *testing.T) {
	inputs := []string{"a.b", "x.y/z?q=1", "view-source:a.b", "1.2.3.4:80", "sub.example.co.uk/path"}
	for _, in := range inputs {
		got := Resolve(in)
		if got.Kind != DirectURL {
			t.Fatalf("Resolve(%q) kind = %v, want url", in, got.Kind)
		}
		if !schemePattern.MatchString(got.Value) {
			t.Errorf("Resolve(%q) = %q has no scheme", in, got.Value)
		}
		if strings.HasPrefix(strings.ToLower(got.Value), viewSourcePrefix) {
			t.Errorf("Resolve(%q) = %q kept view-source prefix", in, got.Value)
		}
	}
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		template string
		text     string
		want     string
	}{
		{"", "hello world", "https://www.bing.com/search?q=hello+world"},
		{"https://duckduckgo.com/?q=%s&ia=web", "a&b", "https://duckduckgo.com/?q=a%26b&ia=web"},
		{"https://example.com/search?q=", "go", "https://example.com/search?q=go"},
	}

	for _, tt := range tests {
		if got := SearchURL(tt.template, tt.text); got != tt.want {
			t.Errorf("SearchURL(%q, %q) = %q, want %q", tt.template, tt.text, got, tt.want)
		}
	}
}

func TestTarget_URL(t *testing.T) {
	if got := Resolve("example.com").URL(""); got != "https://example.com" {
		t.Errorf("direct URL = %q", got)
	}
	if got := Resolve("hello world").URL(""); got != "https://www.bing.com/search?q=hello+world" {
		t.Errorf("search URL = %q", got)
	}
	if got := Resolve("").URL(""); got != "" {
		t.Errorf("home URL = %q, want empty", got)
	}
	if got := Search("  bad url.  ").URL(""); got != "https://www.bing.com/search?q=bad+url." {
		t.Errorf("forced search URL = %q", got)
	}
}
