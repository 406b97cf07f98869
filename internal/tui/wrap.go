package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// WrapText wraps text to maxWidth terminal cells, breaking on spaces when
// possible. Long words such as URLs are broken mid-word. Widths are measured
// in cells so CJK titles and emoji line up.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	width := 0

	flush := func() {
		result = append(result, current.String())
		current.Reset()
		width = 0
	}

	for _, word := range strings.FieldsFunc(line, unicode.IsSpace) {
		w := runewidth.StringWidth(word)

		if w > maxWidth {
			if width > 0 {
				flush()
			}
			for _, chunk := range breakWord(word, maxWidth) {
				result = append(result, chunk)
			}
			continue
		}

		need := w
		if width > 0 {
			need++
		}
		if width+need > maxWidth {
			flush()
		} else if width > 0 {
			current.WriteByte(' ')
			width++
		}
		current.WriteString(word)
		width += w
	}

	if width > 0 {
		flush()
	}
	return result
}

// breakWord splits word into chunks no wider than maxWidth cells.
func breakWord(word string, maxWidth int) []string {
	var chunks []string
	var current strings.Builder
	width := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if width+rw > maxWidth && width > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			width = 0
		}
		current.WriteRune(r)
		width += rw
	}
	if width > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// Truncate shortens a single line to maxWidth cells, ending with "..." when
// anything was cut. Newlines are flattened to spaces first.
func Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if maxWidth <= 3 {
		return runewidth.Truncate(text, maxWidth, "")
	}
	return runewidth.Truncate(text, maxWidth, "...")
}

// TruncateHead keeps the end of text, the part being typed, and marks the cut
// with a leading "...".
func TruncateHead(text string, maxWidth int) string {
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return Truncate(text, maxWidth)
	}
	r := []rune(text)
	for len(r) > 0 && runewidth.StringWidth(string(r))+3 > maxWidth {
		r = r[1:]
	}
	return "..." + string(r)
}
