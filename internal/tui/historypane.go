package tui

import (
	"strings"

	"github.com/barikyo/ciallo/internal/store"
	"github.com/charmbracelet/lipgloss"
)

// HistoryPaneMsg represents messages that the history pane handles
type HistoryPaneMsg interface {
	isHistoryPaneMsg()
}

// History pane message implementations
type MoveUpMsg struct{}

func (MoveUpMsg) isHistoryPaneMsg() {}

type MoveDownMsg struct{}

func (MoveDownMsg) isHistoryPaneMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isHistoryPaneMsg() {}

type GoToBottomMsg struct{}

func (GoToBottomMsg) isHistoryPaneMsg() {}

type StartLoadingMsg struct{}

func (StartLoadingMsg) isHistoryPaneMsg() {}

type SetEntriesMsg struct {
	Entries []store.HistoryEntry
}

func (SetEntriesMsg) isHistoryPaneMsg() {}

type ResizeHistoryPaneMsg struct {
	Width  int
	Height int
}

func (ResizeHistoryPaneMsg) isHistoryPaneMsg() {}

// HistoryPaneModel holds the recent-visits list
type HistoryPaneModel struct {
	Entries []store.HistoryEntry
	Cursor  int  // selected row
	Offset  int  // first visible row
	Loading bool // a listing is in flight
	Width   int
	Height  int
}

// NewHistoryPaneModel creates an empty history pane
func NewHistoryPaneModel(width, height int) HistoryPaneModel {
	return HistoryPaneModel{Width: width, Height: height}
}

// Update handles history pane messages
func (h *HistoryPaneModel) Update(msg HistoryPaneMsg) {
	switch m := msg.(type) {
	case MoveUpMsg:
		if h.Cursor > 0 {
			h.Cursor--
		}
	case MoveDownMsg:
		if h.Cursor < len(h.Entries)-1 {
			h.Cursor++
		}
	case GoToTopMsg:
		h.Cursor = 0
	case GoToBottomMsg:
		h.Cursor = max(len(h.Entries)-1, 0)
	case StartLoadingMsg:
		h.Loading = true
	case SetEntriesMsg:
		h.Loading = false
		h.Entries = m.Entries
		h.Cursor = 0
		h.Offset = 0
	case ResizeHistoryPaneMsg:
		h.Width = m.Width
		h.Height = m.Height
	}
	h.scrollToCursor()
}

// Selected returns the entry under the cursor.
func (h *HistoryPaneModel) Selected() (store.HistoryEntry, bool) {
	if h.Cursor < 0 || h.Cursor >= len(h.Entries) {
		return store.HistoryEntry{}, false
	}
	return h.Entries[h.Cursor], true
}

// visibleRows is the list height inside the border and heading.
func (h *HistoryPaneModel) visibleRows() int {
	return max(h.Height-4, 1)
}

func (h *HistoryPaneModel) scrollToCursor() {
	rows := h.visibleRows()
	if h.Cursor < h.Offset {
		h.Offset = h.Cursor
	}
	if h.Cursor >= h.Offset+rows {
		h.Offset = h.Cursor - rows + 1
	}
}

// HistoryPaneView renders the history list as a pure function
func HistoryPaneView(model HistoryPaneModel) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 1).
		Width(max(model.Width-2, 1)).
		Height(max(model.Height-2, 1))

	title := "History"
	if model.Loading {
		title += " (loading...)"
	}

	var content strings.Builder
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n")

	rowWidth := max(model.Width-4, 1)
	switch {
	case model.Loading:
	case len(model.Entries) == 0:
		content.WriteString(dimStyle.Render(store.EmptyPlaceholder) + "\n")
	default:
		end := min(model.Offset+model.visibleRows(), len(model.Entries))
		for i := model.Offset; i < end; i++ {
			entry := model.Entries[i]
			line := Truncate(entry.String(), rowWidth)

			switch {
			case i == model.Cursor:
				line = lipgloss.NewStyle().
					Background(lipgloss.Color("62")).
					Foreground(lipgloss.Color("230")).
					Width(rowWidth).
					Render(line)
			case !entry.Navigable():
				line = dimStyle.Render(line)
			}
			content.WriteString(line + "\n")
		}
	}

	return style.Render(content.String())
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
