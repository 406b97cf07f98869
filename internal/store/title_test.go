package store

import (
	"strings"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example Domain", "Example Domain"},
		{"  padded  ", "padded"},
		{"line1\nline2\r\nline3", "line1 line2 line3"},
		{"tab\there", "tab here"},
		{"bell\x07char", "bell char"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"tiny max", "hello", 2, ".."},
		{"multibyte", "新标签页新标签页", 5, "新标..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateTitle(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("TruncateTitle(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	long := strings.Repeat("a", MaxTitleLength+50)
	got := NormalizeTitle("\n" + long)
	if len([]rune(got)) != MaxTitleLength {
		t.Errorf("NormalizeTitle length = %d, want %d", len([]rune(got)), MaxTitleLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated title to end with ..., got %q", got[len(got)-5:])
	}
}
