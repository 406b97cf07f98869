package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	modalMinWidth = 24
	modalMargin   = 2
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

// ShowModalMsg opens the dialog, or replaces what an open dialog shows.
type ShowModalMsg struct {
	Title  string
	Body   string
	Footer string
	// Accent colours the border; empty uses the default warning red.
	Accent lipgloss.Color
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the dialog drawn over the main view
type ModalModel struct {
	Active bool
	Title  string
	Body   string
	Footer string
	Accent lipgloss.Color
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		*m = ModalModel{
			Active: true,
			Title:  msg.Title,
			Body:   msg.Body,
			Footer: msg.Footer,
			Accent: msg.Accent,
		}
		if m.Accent == "" {
			m.Accent = lipgloss.Color("9")
		}
	case HideModalMsg:
		*m = ModalModel{}
	}
}

// ModalView renders the dialog centered over background. The box is as wide
// as its widest line and never wider than the window less a margin.
func ModalView(model ModalModel, background string, width, height int) string {
	if !model.Active {
		return background
	}

	sections := []string{lipgloss.NewStyle().Bold(true).Render(model.Title)}
	if model.Body != "" {
		sections = append(sections, model.Body)
	}
	if model.Footer != "" {
		sections = append(sections, dimStyle.Render(model.Footer))
	}
	content := strings.Join(sections, "\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.Accent).
		Padding(1, 2)

	inner := lipgloss.Width(content)
	limit := width - 2*modalMargin - box.GetHorizontalFrameSize()
	inner = min(max(inner, modalMinWidth), limit)
	if inner > 0 {
		box = box.Width(inner + box.GetHorizontalPadding())
	}

	return overlay(background, box.Render(content), width, height)
}

// overlay places fg centered on bg, keeping the visible background on
// either side of it. Both may contain ANSI styling.
func overlay(bg, fg string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	top := max((height-len(fgLines))/2, 0)
	left := max((width-lipgloss.Width(fg))/2, 0)

	for len(bgLines) < top+len(fgLines) {
		bgLines = append(bgLines, "")
	}

	out := make([]string, len(bgLines))
	for i, line := range bgLines {
		idx := i - top
		if idx < 0 || idx >= len(fgLines) {
			out[i] = line
			continue
		}

		var b strings.Builder
		before := ansi.Truncate(line, left, "")
		b.WriteString(before)
		if pad := left - ansi.StringWidth(before); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(fgLines[idx])
		if end := left + ansi.StringWidth(fgLines[idx]); end < ansi.StringWidth(line) {
			b.WriteString(ansi.TruncateLeft(line, end, ""))
		}
		out[i] = b.String()
	}
	return strings.Join(out, "\n")
}
