package outcome

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/barikyo/ciallo/internal/engine"
	"github.com/barikyo/ciallo/internal/resolve"
	"github.com/microcosm-cc/bluemonday"
)

// HomeTitle is the document title of the home page.
const HomeTitle = "New Tab"

var strict = bluemonday.StrictPolicy()

// page is the data behind a locally authored fallback document.
type page struct {
	Title       string
	Heading     string
	Description template.HTML
	Accent      string
	Guidance    string
	Detail      template.HTML
}

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Segoe UI', sans-serif; max-width: 640px; margin: 15vh auto; padding: 0 24px; background: #f9f9f9; color: #333; }
h1 { color: {{.Accent}}; font-weight: 600; }
.detail { font-family: monospace; color: #777; word-break: break-all; }
.guidance { margin-top: 24px; padding: 12px 16px; border-left: 4px solid {{.Accent}}; background: #fff; }
@media (prefers-color-scheme: dark) { body { background: #1e1e1e; color: #e0e0e0; } .guidance { background: #2d2d2d; } }
</style>
</head>
<body>
<h1>{{.Heading}}</h1>
<p>{{.Description}}</p>
<p class="detail">{{.Detail}}</p>
<div class="guidance">{{.Guidance}}</div>
</body>
</html>
`))

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: 'Segoe UI', sans-serif; display: flex; flex-direction: column; align-items: center; justify-content: center; height: 100vh; margin: 0; background-color: #f9f9f9; color: #333; }
.logo { font-size: 60px; margin-bottom: 20px; cursor: default; }
.search-input { width: 500px; max-width: 90vw; padding: 15px 20px; font-size: 18px; border-radius: 30px; border: 1px solid #ddd; outline: none; box-shadow: 0 4px 10px rgba(0,0,0,0.1); box-sizing: border-box; }
.hint-text { margin-top: 15px; font-size: 13px; color: #999; }
@media (prefers-color-scheme: dark) { body { background-color: #1e1e1e; color: #e0e0e0; } .search-input { background-color: #2d2d2d; border-color: #444; color: white; } .hint-text { color: #666; } }
</style>
</head>
<body>
<div class="logo">Ciallo ～(∠・ω&lt; )⌒★</div>
<form id="search">
<input type="text" id="q" class="search-input" placeholder="Search the web..." autocomplete="off" autofocus>
</form>
<div class="hint-text">Type addresses in the address bar above ↑</div>
<script>
const searchURL = {{.SearchURL}};
document.getElementById('search').addEventListener('submit', function (e) {
  e.preventDefault();
  const q = document.getElementById('q').value.trim();
  if (!q) return;
  const enc = encodeURIComponent(q);
  window.location.href = searchURL.indexOf('%s') >= 0 ? searchURL.replace('%s', enc) : searchURL + enc;
});
</script>
</body>
</html>
`))

// Fallback authors the page shown when the navigation to requestedURL ended
// with o. Untrusted text is stripped of markup before it is embedded.
func Fallback(o Outcome, requestedURL string) engine.Document {
	p := describe(o, requestedURL)

	var buf bytes.Buffer
	if err := fallbackTemplate.Execute(&buf, p); err != nil {
		// Templates are static; this only fails on a programming error.
		return engine.Document{Title: p.Title, HTML: strict.Sanitize(p.Heading)}
	}
	return engine.Document{Title: p.Title, HTML: buf.String()}
}

func describe(o Outcome, requestedURL string) page {
	target := template.HTML(strict.Sanitize(requestedURL))

	switch o.Result {
	case NetworkError:
		code := o.Code
		if code == "" {
			code = "unknown error"
		}
		return page{
			Title:       "Can't reach this page",
			Heading:     "Can't reach this page",
			Description: template.HTML("The connection failed before the site answered: " + strict.Sanitize(code)),
			Accent:      "#2563eb",
			Guidance:    "Check your network connection or the address, then press refresh to try again.",
			Detail:      target,
		}
	case HTTPError:
		switch o.Category {
		case CategoryNotFound:
			return page{
				Title:       "Page not found",
				Heading:     "404 · Page not found",
				Description: "The site is up, but it has nothing at this address.",
				Accent:      "#d97706",
				Guidance:    "Check the address for typos, or search for the page instead.",
				Detail:      target,
			}
		case CategoryForbidden:
			return page{
				Title:       "Access denied",
				Heading:     "403 · Access denied",
				Description: "The site refused to show this page.",
				Accent:      "#dc2626",
				Guidance:    "You may need to sign in, or the page is not available to you.",
				Detail:      target,
			}
		default:
			return page{
				Title:       "Something went wrong",
				Heading:     fmt.Sprintf("%d · Something went wrong", o.Status),
				Description: template.HTML(fmt.Sprintf("The site answered with status %d.", o.Status)),
				Accent:      "#7c3aed",
				Guidance:    "The problem is on the site's side. Press refresh to try again later.",
				Detail:      target,
			}
		}
	default:
		return page{
			Title:       "Page loaded",
			Heading:     "Page loaded",
			Description: "There is nothing wrong with this page.",
			Accent:      "#16a34a",
			Detail:      target,
		}
	}
}

// Home authors the start page. Its search box submits through
// searchTemplate, falling back to resolve.DefaultSearchURL.
func Home(searchTemplate string) engine.Document {
	if searchTemplate == "" {
		searchTemplate = resolve.DefaultSearchURL
	}

	var buf bytes.Buffer
	data := struct {
		Title     string
		SearchURL string
	}{HomeTitle, searchTemplate}
	if err := homeTemplate.Execute(&buf, data); err != nil {
		return engine.Document{Title: HomeTitle}
	}
	return engine.Document{Title: HomeTitle, HTML: buf.String()}
}
