// Package resolve turns raw address-bar text into a navigation target.
package resolve

import (
	"net/url"
	"regexp"
	"strings"
)

// HomeLabel is shown in the address bar while the home page is displayed.
// Submitting it unchanged returns home.
const HomeLabel = "🏠 Home"

// DefaultSearchURL is the search engine used when none is configured. The
// single %s is replaced by the escaped query.
const DefaultSearchURL = "https://www.bing.com/search?q=%s"

const viewSourcePrefix = "view-source:"

var schemePattern = regexp.MustCompile(`^[A-Za-z0-9+.-]+://`)

// TargetKind is the classification of submitted text.
type TargetKind int

const (
	// Home is the locally authored start page.
	Home TargetKind = iota
	// DirectURL is navigated as is. Its value always carries a scheme.
	DirectURL
	// SearchQuery is expanded through the configured search engine.
	SearchQuery
)

func (k TargetKind) String() string {
	switch k {
	case Home:
		return "home"
	case DirectURL:
		return "url"
	case SearchQuery:
		return "search"
	default:
		return "unknown"
	}
}

// Target is the result of resolving user input.
type Target struct {
	Kind  TargetKind
	Value string
}

// Resolve classifies raw input. It never fails and has no side effects.
func Resolve(raw string) Target {
	text := strings.TrimSpace(raw)
	if isHome(text) {
		return Target{Kind: Home}
	}

	if len(text) >= len(viewSourcePrefix) && strings.EqualFold(text[:len(viewSourcePrefix)], viewSourcePrefix) {
		text = strings.TrimSpace(text[len(viewSourcePrefix):])
		if text == "" {
			return Target{Kind: Home}
		}
	}

	if strings.Contains(text, " ") || (!strings.Contains(text, ".") && !strings.Contains(text, "://")) {
		return Target{Kind: SearchQuery, Value: text}
	}

	if !schemePattern.MatchString(text) {
		text = "https://" + text
	}
	return Target{Kind: DirectURL, Value: text}
}

// Search builds a search target for text regardless of its shape. Used when
// a direct URL was rejected by the engine.
func Search(raw string) Target {
	return Target{Kind: SearchQuery, Value: strings.TrimSpace(raw)}
}

func isHome(text string) bool {
	return text == "" ||
		text == HomeLabel ||
		strings.EqualFold(text, "about:blank") ||
		strings.EqualFold(text, "about:home")
}

// SearchURL expands text through template. A template without %s gets the
// query appended. An empty template uses DefaultSearchURL.
func SearchURL(template, text string) string {
	if template == "" {
		template = DefaultSearchURL
	}
	q := url.QueryEscape(text)
	if strings.Contains(template, "%s") {
		return strings.Replace(template, "%s", q, 1)
	}
	return template + q
}

// URL returns the address to navigate to for t, or "" for Home.
func (t Target) URL(searchTemplate string) string {
	switch t.Kind {
	case DirectURL:
		return t.Value
	case SearchQuery:
		return SearchURL(searchTemplate, t.Value)
	default:
		return ""
	}
}
