// Package clipboard copies addresses out of the browser.
package clipboard

import (
	"fmt"
	"io"
	"strings"
)

// Clipboard is a text clipboard.
type Clipboard interface {
	Read() (io.ReadCloser, error)
	Write(r io.Reader) error
	IsSupported() bool
}

// CopyText writes text to cb.
func CopyText(cb Clipboard, text string) error {
	if !cb.IsSupported() {
		return fmt.Errorf("clipboard not available on this system")
	}
	if err := cb.Write(strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// ReadText returns the clipboard's current text.
func ReadText(cb Clipboard) (string, error) {
	r, err := cb.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return string(data), nil
}
