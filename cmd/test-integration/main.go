// Command test-integration renders the TUI at fixed sizes for a few states
// and checks that no line overflows the terminal width.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/barikyo/ciallo/internal/engine"
	"github.com/barikyo/ciallo/internal/navigator"
	"github.com/barikyo/ciallo/internal/outcome"
	"github.com/barikyo/ciallo/internal/resolve"
	"github.com/barikyo/ciallo/internal/store"
	"github.com/barikyo/ciallo/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// staticBrowser publishes nothing and ignores every command.
type staticBrowser struct{}

func (staticBrowser) Submit(string)                   {}
func (staticBrowser) Open(string)                     {}
func (staticBrowser) Refresh()                        {}
func (staticBrowser) Home()                           {}
func (staticBrowser) Back()                           {}
func (staticBrowser) Forward()                        {}
func (staticBrowser) ClearData(engine.DataKinds)      {}
func (staticBrowser) Updates() <-chan navigator.State { return nil }

type staticHistory []store.HistoryEntry

func (h staticHistory) ListRecent(ctx context.Context, limit int) []store.HistoryEntry {
	return h
}

func main() {
	fmt.Println("Testing TUI layout")
	fmt.Println("==================")

	visits := staticHistory{
		{Title: "Example Domain", URL: "https://example.com/"},
		{Title: strings.Repeat("A very long page title ", 8), URL: "https://example.com/" + strings.Repeat("deep/", 30)},
		{Title: "你好世界", URL: "https://example.cn/"},
	}

	states := map[string]navigator.State{
		"home": {View: navigator.ViewHome, Address: resolve.HomeLabel, Phase: outcome.PhaseIdle},
		"page": {View: navigator.ViewPage, Address: "https://example.com/" + strings.Repeat("x", 200),
			Title: "Example Domain", Phase: outcome.PhaseCompleted},
		"fallback": {View: navigator.ViewFallback, Address: "https://nowhere.invalid/",
			Outcome: outcome.Classify(engine.Completion{TransportErrorCode: "NameNotResolved"}), Phase: outcome.PhaseCompleted},
	}

	sizes := [][2]int{{30, 10}, {80, 24}, {120, 20}}
	failed := false

	for _, name := range []string{"home", "page", "fallback"} {
		for _, size := range sizes {
			for _, overlay := range []string{"", "h", "x", "z"} {
				model := tui.NewAppModel(staticBrowser{}, visits)
				model.Update(tea.WindowSizeMsg{Width: size[0], Height: size[1]})
				model.State = states[name]
				if overlay != "" {
					_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(overlay)})
					if cmd != nil && overlay == "h" {
						model.Update(cmd())
					}
				}

				label := fmt.Sprintf("%s %dx%d overlay=%q", name, size[0], size[1], overlay)
				if problem := checkLayout(tui.AppView(model), size[0], size[1]); problem != "" {
					fmt.Printf("FAIL %s: %s\n", label, problem)
					failed = true
					continue
				}
				fmt.Printf("ok   %s\n", label)
			}
		}
	}

	model := tui.NewAppModel(staticBrowser{}, visits)
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model.State = states["fallback"]
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(tui.AppView(model))
	fmt.Println(strings.Repeat("=", 80))

	if failed {
		os.Exit(1)
	}
	fmt.Println("\nLayout verification complete!")
}

func checkLayout(view string, width, height int) string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		return fmt.Sprintf("%d lines for a height of %d", len(lines), height)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > width {
			return fmt.Sprintf("line %d is %d cells wide", i, w)
		}
	}
	return ""
}
