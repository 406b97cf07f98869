package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestModalModel_ShowHide(t *testing.T) {
	var m ModalModel

	m.Update(ShowModalMsg{Title: "Clear browsing data", Body: "body", Footer: "[esc] cancel"})
	if !m.Active || m.Title != "Clear browsing data" || m.Body != "body" {
		t.Fatalf("unexpected modal after show: %+v", m)
	}
	if m.Accent == "" {
		t.Error("Expected a default accent colour")
	}

	m.Update(ShowModalMsg{Title: "Other"})
	if m.Body != "" || m.Footer != "" {
		t.Errorf("Expected show to replace previous content, got %+v", m)
	}

	m.Update(HideModalMsg{})
	if m != (ModalModel{}) {
		t.Errorf("Expected hide to reset the modal, got %+v", m)
	}
}

func TestModalView_InactiveReturnsBackground(t *testing.T) {
	bg := "line one\nline two"
	if got := ModalView(ModalModel{}, bg, 40, 10); got != bg {
		t.Errorf("Expected background unchanged, got %q", got)
	}
}

func TestModalView_FitsWindow(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		body          string
	}{
		{"short body", 40, 12, "Delete everything?"},
		{"long body wraps", 40, 12, strings.Repeat("word ", 30)},
		{"narrow window", 30, 12, "Delete everything?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bg := strings.TrimSuffix(strings.Repeat(strings.Repeat("#", tt.width)+"\n", tt.height), "\n")
			var m ModalModel
			m.Update(ShowModalMsg{Title: "Confirm", Body: tt.body, Footer: "[enter] ok"})

			view := ModalView(m, bg, tt.width, tt.height)
			if !strings.Contains(view, "Confirm") {
				t.Fatalf("Expected title in view:\n%s", view)
			}
			for i, line := range strings.Split(view, "\n") {
				if w := lipgloss.Width(line); w > tt.width {
					t.Errorf("line %d is %d cells wide:\n%s", i, w, view)
				}
			}
		})
	}
}

func TestOverlay_KeepsBackgroundAroundBox(t *testing.T) {
	bg := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	got := overlay(bg, "XX", 10, 3)

	want := "aaaaaaaaaa\nbbbbXXbbbb\ncccccccccc"
	if got != want {
		t.Errorf("overlay mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestOverlay_ExtendsShortBackground(t *testing.T) {
	got := overlay("", "X\nY", 3, 4)

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[1] != " X" || lines[2] != " Y" {
		t.Errorf("unexpected lines %q", lines)
	}
}
