// Package profile locates the files that make up a browsing profile.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	ConfigDir       = ".config/ciallo"
	DefaultRootName = "profile"
	EngineDirName   = "engine"
	LegacyEngineDir = "EBWebView" // directory name used by earlier builds
	HistoryLogName  = "history.log"
	LogFileName     = "ciallo.log"
)

// Profile is a directory holding the local history log, the application
// log and the engine's user data directory.
type Profile struct {
	root string
}

// New creates a Profile rooted at ~/.config/ciallo/profile/
func New() (*Profile, error) {
	return NewWithPath("")
}

// NewWithPath creates a Profile with a custom location.
// If path is empty, uses default ~/.config/ciallo/profile/
// If path is absolute, uses it directly as the profile root
// If path is relative, treats it as a subdirectory of ~/.config/ciallo/
func NewWithPath(path string) (*Profile, error) {
	var root string

	if filepath.IsAbs(path) {
		root = path
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		if path == "" {
			path = DefaultRootName
		}
		root = filepath.Join(homeDir, ConfigDir, path)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	p := &Profile{root: root}
	if err := p.migrateLegacyEngineDir(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewWithRoot creates a Profile with a custom root without touching disk (for testing)
func NewWithRoot(root string) *Profile {
	return &Profile{root: root}
}

// Root returns the root directory path
func (p *Profile) Root() string {
	return p.root
}

// HistoryLog is the local append-only history file.
func (p *Profile) HistoryLog() string {
	return filepath.Join(p.root, HistoryLogName)
}

// LogFile receives application logs while the terminal UI owns the screen.
func (p *Profile) LogFile() string {
	return filepath.Join(p.root, LogFileName)
}

// EngineDir is the engine's user data directory.
func (p *Profile) EngineDir() string {
	return filepath.Join(p.root, EngineDirName)
}

// SnapshotSource is the engine's live History database.
func (p *Profile) SnapshotSource() string {
	return filepath.Join(p.EngineDir(), "Default", "History")
}

// migrateLegacyEngineDir renames an engine directory left by earlier builds.
// Nothing is moved when both directories exist.
func (p *Profile) migrateLegacyEngineDir() error {
	legacy := filepath.Join(p.root, LegacyEngineDir)
	if _, err := os.Stat(legacy); os.IsNotExist(err) {
		return nil
	}
	if _, err := os.Stat(p.EngineDir()); err == nil {
		return nil
	}

	if err := os.Rename(legacy, p.EngineDir()); err != nil {
		return fmt.Errorf("failed to migrate legacy engine directory: %w", err)
	}
	return nil
}
