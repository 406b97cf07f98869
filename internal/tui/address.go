package tui

import (
	"github.com/barikyo/ciallo/internal/navigator"
	"github.com/barikyo/ciallo/internal/resolve"
	"github.com/charmbracelet/lipgloss"
)

// AddressMsg represents messages that the address bar handles
type AddressMsg interface {
	isAddressMsg()
}

// Address bar message implementations
type StartEditMsg struct {
	Initial string
}

func (StartEditMsg) isAddressMsg() {}

type UpdateAddressInputMsg struct {
	Input string
}

func (UpdateAddressInputMsg) isAddressMsg() {}

type InsertTextMsg struct {
	Text string
}

func (InsertTextMsg) isAddressMsg() {}

type DeleteBackwardMsg struct{}

func (DeleteBackwardMsg) isAddressMsg() {}

type CancelEditMsg struct{}

func (CancelEditMsg) isAddressMsg() {}

// AddressModel holds the address bar being edited
type AddressModel struct {
	Active bool   // true while the user is typing
	Input  string // text typed so far
}

// Update handles address bar messages
func (a *AddressModel) Update(msg AddressMsg) {
	switch m := msg.(type) {
	case StartEditMsg:
		a.Active = true
		a.Input = m.Initial
		if a.Input == resolve.HomeLabel {
			a.Input = ""
		}
	case UpdateAddressInputMsg:
		a.Input = m.Input
	case InsertTextMsg:
		a.Input += m.Text
	case DeleteBackwardMsg:
		if r := []rune(a.Input); len(r) > 0 {
			a.Input = string(r[:len(r)-1])
		}
	case CancelEditMsg:
		a.Active = false
		a.Input = ""
	}
}

// Take ends editing and returns what was typed.
func (a *AddressModel) Take() string {
	input := a.Input
	a.Active = false
	a.Input = ""
	return input
}

// AddressView renders the toolbar: navigation hints and the address.
func AddressView(model AddressModel, state navigator.State, width int) string {
	controls := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("◀ ▶ ⟳ ⌂")

	inner := max(width-lipgloss.Width(controls)-5, 1)
	text := Truncate(state.Address, inner)
	borderColor := "62"
	if model.Active {
		text = TruncateHead(model.Input+"█", inner)
		borderColor = "205"
	}

	field := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Width(inner).
		Render(text)

	return lipgloss.JoinHorizontal(lipgloss.Center, controls+" ", field)
}
