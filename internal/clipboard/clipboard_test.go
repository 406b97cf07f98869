package clipboard_test

import (
	"errors"
	"io"
	"testing"

	"github.com/barikyo/ciallo/internal/clipboard"
	"github.com/barikyo/ciallo/internal/clipboard/mockboard"
)

func TestCopyTextRoundTrip(t *testing.T) {
	cb := mockboard.New()

	if err := clipboard.CopyText(cb, "https://example.com/"); err != nil {
		t.Fatalf("CopyText failed: %v", err)
	}

	got, err := clipboard.ReadText(cb)
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if got != "https://example.com/" {
		t.Errorf("Read data mismatch: got %q", got)
	}
}

func TestCopyTextEmpty(t *testing.T) {
	cb := mockboard.New()
	cb.SetData([]byte("old"))

	if err := clipboard.CopyText(cb, ""); err != nil {
		t.Fatalf("CopyText empty failed: %v", err)
	}
	if len(cb.GetData()) != 0 {
		t.Errorf("Expected empty clipboard, got %q", cb.GetData())
	}
}

type unsupported struct{}

func (unsupported) Read() (io.ReadCloser, error) { return nil, errors.New("no clipboard") }
func (unsupported) Write(io.Reader) error        { return errors.New("no clipboard") }
func (unsupported) IsSupported() bool            { return false }

func TestCopyTextUnsupported(t *testing.T) {
	if err := clipboard.CopyText(unsupported{}, "x"); err == nil {
		t.Error("Expected error for unsupported clipboard")
	}
	if _, err := clipboard.ReadText(unsupported{}); err == nil {
		t.Error("Expected error reading unsupported clipboard")
	}
}
