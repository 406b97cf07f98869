// Package sysboard implements the system clipboard. It uses
// golang.design/x/clipboard where the platform clipboard can be initialized
// and falls back to pbcopy/pbpaste or xclip/xsel otherwise, for example in
// builds without cgo.
package sysboard

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"golang.design/x/clipboard"
)

// SystemClipboard implements clipboard.Clipboard for the running desktop
type SystemClipboard struct {
	once    sync.Once
	native  bool
	initErr error
}

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{}
}

func (s *SystemClipboard) init() {
	s.once.Do(func() {
		s.initErr = clipboard.Init()
		s.native = s.initErr == nil
	})
}

// IsSupported returns true if clipboard operations are supported on this system
func (s *SystemClipboard) IsSupported() bool {
	s.init()
	if s.native {
		return true
	}

	switch runtime.GOOS {
	case "darwin":
		_, err := exec.LookPath("pbcopy")
		return err == nil
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			return true
		}
		_, err := exec.LookPath("xsel")
		return err == nil
	default:
		return false
	}
}

// Read implements Clipboard.Read for SystemClipboard
func (s *SystemClipboard) Read() (io.ReadCloser, error) {
	s.init()
	if s.native {
		return io.NopCloser(bytes.NewReader(clipboard.Read(clipboard.FmtText))), nil
	}

	var (
		data []byte
		err  error
	)
	switch runtime.GOOS {
	case "darwin":
		data, err = output("pbpaste")
	case "linux":
		if data, err = output("xclip", "-selection", "clipboard", "-o"); err != nil {
			data, err = output("xsel", "--clipboard", "--output")
		}
	default:
		return nil, fmt.Errorf("clipboard operations not supported on %s: %w", runtime.GOOS, s.initErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Write implements Clipboard.Write for SystemClipboard
func (s *SystemClipboard) Write(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.init()
	if s.native {
		clipboard.Write(clipboard.FmtText, data)
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		err = input(data, "pbcopy")
	case "linux":
		// Try xclip first
		if err = input(data, "xclip", "-selection", "clipboard"); err != nil {
			err = input(data, "xsel", "--clipboard", "--input")
		}
	default:
		return fmt.Errorf("clipboard operations not supported on %s: %w", runtime.GOOS, s.initErr)
	}
	if err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// output executes a command and returns its stdout
func output(name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// input executes a command with data as stdin
func input(data []byte, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	return cmd.Run()
}
