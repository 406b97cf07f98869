package tui

import (
	"strings"

	"github.com/barikyo/ciallo/internal/engine"
)

// ClearDataMsg represents messages that the clear-data dialog handles
type ClearDataMsg interface {
	isClearDataMsg()
}

type ResetClearDataMsg struct{}

func (ResetClearDataMsg) isClearDataMsg() {}

type OptionUpMsg struct{}

func (OptionUpMsg) isClearDataMsg() {}

type OptionDownMsg struct{}

func (OptionDownMsg) isClearDataMsg() {}

type ToggleOptionMsg struct{}

func (ToggleOptionMsg) isClearDataMsg() {}

type clearOption struct {
	label string
	kinds engine.DataKinds
}

var clearOptions = []clearOption{
	{"Browsing history", engine.DataHistory},
	{"Cookies", engine.DataCookies},
	{"Cached files", engine.DataCache},
	{"All of the above", engine.DataAll},
}

// ClearDataModel holds the checkbox state of the clear-data dialog
type ClearDataModel struct {
	Cursor   int
	Selected engine.DataKinds
}

// Update handles clear-data dialog messages
func (c *ClearDataModel) Update(msg ClearDataMsg) {
	switch msg.(type) {
	case ResetClearDataMsg:
		c.Cursor = 0
		c.Selected = 0
	case OptionUpMsg:
		if c.Cursor > 0 {
			c.Cursor--
		}
	case OptionDownMsg:
		if c.Cursor < len(clearOptions)-1 {
			c.Cursor++
		}
	case ToggleOptionMsg:
		opt := clearOptions[c.Cursor]
		if c.checked(opt) {
			c.Selected &^= opt.kinds
		} else {
			c.Selected |= opt.kinds
		}
	}
}

func (c *ClearDataModel) checked(opt clearOption) bool {
	return c.Selected&opt.kinds == opt.kinds
}

// ClearDataView renders the checkbox list shown inside the modal
func ClearDataView(model ClearDataModel) string {
	var b strings.Builder
	for i, opt := range clearOptions {
		cursor := "  "
		if i == model.Cursor {
			cursor = "> "
		}
		box := "[ ]"
		if model.checked(opt) {
			box = "[x]"
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(cursor + box + " " + opt.label)
	}
	return b.String()
}
