package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barikyo/ciallo/internal/clipboard"
	"github.com/barikyo/ciallo/internal/engine"
	"github.com/barikyo/ciallo/internal/navigator"
	"github.com/barikyo/ciallo/internal/outcome"
	"github.com/barikyo/ciallo/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultHistoryLimit = 50
	historyLoadTimeout  = 10 * time.Second
	flashDuration       = 2 * time.Second
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	AddressMode
	HistoryMode
	HelpMode
	ClearDataMode
)

// Browser is the navigation surface the shell drives. *navigator.Navigator
// implements it.
type Browser interface {
	Submit(raw string)
	Open(url string)
	Refresh()
	Home()
	Back()
	Forward()
	ClearData(kinds engine.DataKinds)
	Updates() <-chan navigator.State
}

// HistoryLister lists recent visits. *history.Service implements it.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) []store.HistoryEntry
}

type stateMsg struct {
	State navigator.State
}

type browserClosedMsg struct{}

type historyLoadedMsg struct {
	Entries []store.HistoryEntry
}

type flashExpiredMsg struct{}

// Option customises an AppModel.
type Option func(*AppModel)

// WithHistoryLimit caps the number of rows the history overlay lists.
func WithHistoryLimit(n int) Option { return func(a *AppModel) { a.historyLimit = n } }

// WithClipboard enables copying and pasting addresses.
func WithClipboard(cb clipboard.Clipboard) Option { return func(a *AppModel) { a.clipboard = cb } }

// AppModel is the terminal browser shell.
type AppModel struct {
	Width       int
	Height      int
	CurrentMode UIMode

	// State is the latest snapshot published by the browser.
	State navigator.State

	Address   AddressModel
	History   HistoryPaneModel
	ClearData ClearDataModel
	Modal     ModalModel

	FlashMessage string
	FlashExpiry  time.Time

	browser      Browser
	history      HistoryLister
	clipboard    clipboard.Clipboard
	historyLimit int
}

// NewAppModel creates the shell over browser. history may be nil, in which
// case the history overlay is always empty.
func NewAppModel(browser Browser, history HistoryLister, opts ...Option) AppModel {
	a := AppModel{
		Width:        100,
		Height:       24,
		CurrentMode:  NormalMode,
		History:      NewHistoryPaneModel(100, 20),
		browser:      browser,
		history:      history,
		historyLimit: defaultHistoryLimit,
	}
	for _, o := range opts {
		o(&a)
	}
	return a
}

// Init starts listening for browser state.
func (a *AppModel) Init() tea.Cmd {
	return a.waitForState()
}

func (a *AppModel) waitForState() tea.Cmd {
	updates := a.browser.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return browserClosedMsg{}
		}
		return stateMsg{State: s}
	}
}

// Update handles app-level messages and routes keys by mode
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.Width = max(m.Width, 30)
		a.Height = max(m.Height, 10)
		a.History.Update(ResizeHistoryPaneMsg{Width: a.Width, Height: a.bodyHeight()})
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case stateMsg:
		a.State = m.State
		return a, tea.Batch(a.waitForState(), tea.SetWindowTitle(m.State.Title))
	case browserClosedMsg:
		return a, tea.Quit
	case historyLoadedMsg:
		a.History.Update(SetEntriesMsg{Entries: m.Entries})
		return a, nil
	case flashExpiredMsg:
		if !time.Now().Before(a.FlashExpiry) {
			a.FlashMessage = ""
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	}
	return a, nil
}

// handleKeyPress dispatches on the current mode before looking at the key
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.CurrentMode {
	case AddressMode:
		return a.handleAddressModeKeys(msg)
	case HistoryMode:
		return a.handleHistoryModeKeys(msg.String())
	case HelpMode:
		return a.handleHelpModeKeys(msg.String())
	case ClearDataMode:
		return a.handleClearDataModeKeys(msg.String())
	default:
		return a.handleNormalModeKeys(msg.String())
	}
}

func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q", "esc":
		return a, tea.Quit
	case "e", "/", "enter", "ctrl+l":
		a.Address.Update(StartEditMsg{Initial: a.State.Address})
		a.CurrentMode = AddressMode
	case "r", "f5", "ctrl+r":
		a.browser.Refresh()
	case "b", "left", "alt+left":
		a.browser.Back()
	case "f", "right", "alt+right":
		a.browser.Forward()
	case "H", "home", "alt+home":
		a.browser.Home()
	case "h", "ctrl+h":
		return a, a.openHistory()
	case "y":
		if a.State.View == navigator.ViewHome {
			return a, a.setFlashMessage("Nothing to copy on the home page")
		}
		return a, a.copyText(a.State.Address)
	case "x":
		a.ClearData.Update(ResetClearDataMsg{})
		a.CurrentMode = ClearDataMode
		a.showClearDataDialog()
	case "z", "?":
		a.CurrentMode = HelpMode
	}
	return a, nil
}

func (a *AppModel) handleAddressModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.Address.Update(CancelEditMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		a.browser.Submit(a.Address.Take())
		a.CurrentMode = NormalMode
		return a, nil
	case "backspace":
		a.Address.Update(DeleteBackwardMsg{})
		return a, nil
	case "ctrl+u":
		a.Address.Update(UpdateAddressInputMsg{Input: ""})
		return a, nil
	case "ctrl+v":
		return a, a.paste()
	}

	switch msg.Type {
	case tea.KeyRunes:
		a.Address.Update(InsertTextMsg{Text: string(msg.Runes)})
	case tea.KeySpace:
		a.Address.Update(InsertTextMsg{Text: " "})
	}
	return a, nil
}

func (a *AppModel) handleHistoryModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "q", "h":
		a.CurrentMode = NormalMode
	case "up", "k":
		a.History.Update(MoveUpMsg{})
	case "down", "j":
		a.History.Update(MoveDownMsg{})
	case "g", "home":
		a.History.Update(GoToTopMsg{})
	case "G", "end":
		a.History.Update(GoToBottomMsg{})
	case "enter":
		entry, ok := a.History.Selected()
		if !ok || !entry.Navigable() {
			return a, nil
		}
		a.browser.Open(entry.URL)
		a.CurrentMode = NormalMode
	case "y", "c":
		entry, ok := a.History.Selected()
		if !ok || !entry.Navigable() {
			return a, a.setFlashMessage("No address selected")
		}
		return a, a.copyText(entry.URL)
	}
	return a, nil
}

func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "z", "?", "esc", "q":
		a.CurrentMode = NormalMode
	}
	return a, nil
}

func (a *AppModel) handleClearDataModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "n", "q":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	case "up", "k":
		a.ClearData.Update(OptionUpMsg{})
	case "down", "j":
		a.ClearData.Update(OptionDownMsg{})
	case " ", "space", "x":
		a.ClearData.Update(ToggleOptionMsg{})
	case "enter":
		kinds := a.ClearData.Selected
		if kinds == 0 {
			return a, a.setFlashMessage("Select something to clear")
		}
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		a.browser.ClearData(kinds)
		return a, a.setFlashMessage(fmt.Sprintf("Clearing %s...", kinds))
	}
	a.showClearDataDialog()
	return a, nil
}

// openHistory shows the overlay and starts a listing. It does nothing while
// a previous listing is still in flight.
func (a *AppModel) openHistory() tea.Cmd {
	if a.History.Loading {
		return a.setFlashMessage("History is still loading")
	}
	a.CurrentMode = HistoryMode
	a.History.Update(StartLoadingMsg{})

	lister, limit := a.history, a.historyLimit
	return func() tea.Msg {
		if lister == nil {
			return historyLoadedMsg{Entries: []store.HistoryEntry{}}
		}
		ctx, cancel := context.WithTimeout(context.Background(), historyLoadTimeout)
		defer cancel()
		return historyLoadedMsg{Entries: lister.ListRecent(ctx, limit)}
	}
}

func (a *AppModel) showClearDataDialog() {
	a.Modal.Update(ShowModalMsg{
		Title:  "Clear browsing data",
		Body:   ClearDataView(a.ClearData),
		Footer: "[space] toggle   [enter] clear   [esc] cancel",
	})
}

func (a *AppModel) copyText(text string) tea.Cmd {
	if a.clipboard == nil {
		return a.setFlashMessage("Clipboard not available")
	}
	if err := clipboard.CopyText(a.clipboard, text); err != nil {
		return a.setFlashMessage(fmt.Sprintf("Error: %v", err))
	}
	return a.setFlashMessage("Copied " + text)
}

func (a *AppModel) paste() tea.Cmd {
	if a.clipboard == nil || !a.clipboard.IsSupported() {
		return a.setFlashMessage("Clipboard not available")
	}
	text, err := clipboard.ReadText(a.clipboard)
	if err != nil {
		return a.setFlashMessage(fmt.Sprintf("Error: %v", err))
	}
	a.Address.Update(InsertTextMsg{Text: strings.TrimSpace(text)})
	return nil
}

// setFlashMessage shows message in the status line for a short while
func (a *AppModel) setFlashMessage(message string) tea.Cmd {
	a.FlashMessage = message
	a.FlashExpiry = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

// bodyHeight is what remains below the toolbar and above the status line.
func (a *AppModel) bodyHeight() int {
	return max(a.Height-5, 3)
}

// View method for tea.Model compatibility
func (a *AppModel) View() string {
	return AppView(*a)
}

// AppView renders the complete application as a pure function
func AppView(model AppModel) string {
	if model.Width == 0 {
		return "Initializing..."
	}

	toolbar := AddressView(model.Address, model.State, model.Width)
	status := renderStatusLine(model)

	var body string
	switch model.CurrentMode {
	case HelpMode:
		body = renderHelpView(model)
	case HistoryMode:
		body = HistoryPaneView(model.History)
	default:
		body = renderPageView(model)
	}

	view := toolbar + "\n" + body + "\n" + status
	if model.Modal.Active {
		return ModalView(model.Modal, view, model.Width, model.Height)
	}
	return view
}

// renderPageView describes what the browser window is showing.
func renderPageView(model AppModel) string {
	s := model.State
	width := max(model.Width-4, 1)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(Truncate(s.Title, width)) + "\n\n")

	switch s.View {
	case navigator.ViewHome:
		b.WriteString("Type an address or a search with e, or press h for history.\n")
	case navigator.ViewFallback:
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Could not load "+s.Outcome.String()) + "\n")
		b.WriteString("Press r to try again.\n")
	default:
		fmt.Fprintf(&b, "%s\n", s.Phase)
	}

	if s.View != navigator.ViewHome {
		b.WriteString("\n")
		for _, line := range WrapText(s.Address, width) {
			b.WriteString(dimStyle.Render(line) + "\n")
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(max(model.Width-2, 1)).
		Height(max(model.bodyHeight()-2, 1)).
		Render(b.String())
}

// renderStatusLine renders the bottom status line as a pure function
func renderStatusLine(model AppModel) string {
	style := lipgloss.NewStyle().Width(model.Width)

	if model.FlashMessage != "" && time.Now().Before(model.FlashExpiry) {
		return style.Foreground(lipgloss.Color("10")).Render(Truncate(model.FlashMessage, model.Width))
	}

	var line string
	switch {
	case model.CurrentMode == AddressMode:
		line = "Enter to go, Esc to cancel, Ctrl+V to paste"
	case model.CurrentMode == HistoryMode:
		line = "Enter to open, y to copy, Esc to close"
	case model.State.Status != "":
		line = model.State.Status
	case model.State.Phase == outcome.PhaseNavigating:
		line = "Loading..."
	default:
		line = "Press z for help, q to quit"
	}
	return style.Render(Truncate(line, model.Width))
}

func renderHelpView(model AppModel) string {
	helpContent := `ciallo - terminal browser

ADDRESS BAR:
  e, /, Enter   Edit the address (URL or search text)
  Ctrl+V        Paste while editing
  Ctrl+U        Clear the input
  Esc           Cancel editing

NAVIGATION:
  b, ←          Back
  f, →          Forward
  r, F5         Refresh (retries a failed page)
  H, Home       Home page

HISTORY:
  h             Show recent visits
  j/k, ↓/↑      Move selection
  Enter         Open the selected visit
  y             Copy its address

OTHER:
  y             Copy the current address
  x             Clear browsing data
  z, ?          Toggle this help
  q, Ctrl+C     Quit`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(max(model.Width-2, 1)).
		Height(max(model.bodyHeight()-2, 1)).
		Render(helpContent)
}
