package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/barikyo/ciallo/internal/config"
)

// Args represents the top-level command structure
type Args struct {
	Browse  *BrowseCmd  `arg:"subcommand:browse" help:"Open the browser (default)"`
	Resolve *ResolveCmd `arg:"subcommand:resolve" help:"Show where address bar input would navigate"`
	History *HistoryCmd `arg:"subcommand:history" help:"List recent visits"`
	Clear   *ClearCmd   `arg:"subcommand:clear" help:"Delete the local visit log"`
	Config  *ConfigCmd  `arg:"subcommand:config" help:"Manage configuration"`

	Profile    *string `arg:"--profile" help:"Profile directory (absolute, or relative to ~/.config/ciallo)"`
	ConfigPath *string `arg:"--config" help:"Configuration file (default ~/.config/ciallo/config.yaml)"`
	Verbose    bool    `arg:"-v,--verbose" help:"Debug logging with console output"`
}

// BrowseCmd represents 'ciallo browse [URL]'
type BrowseCmd struct {
	URL      *string `arg:"positional" help:"Address or search text to open first"`
	Headless bool    `arg:"--headless" help:"Run Chrome without a window"`
	Remote   *string `arg:"--remote" help:"Connect to a running Chrome DevTools endpoint instead of launching one"`
}

// ResolveCmd represents 'ciallo resolve TEXT...'
type ResolveCmd struct {
	Text []string `arg:"positional,required" help:"Address bar input; words are joined with spaces"`
}

// HistoryCmd represents 'ciallo history'
type HistoryCmd struct {
	Limit  *int    `arg:"-n,--limit" help:"Maximum number of visits (default history-limit)"`
	Source *string `arg:"--source" help:"Where to read visits from: log, snapshot or memory"`
	JSON   bool    `arg:"--json" help:"Print visits as JSON"`
}

// ClearCmd represents 'ciallo clear'
type ClearCmd struct {
	Force bool `arg:"-f,--force" help:"Do not ask for confirmation"`
}

// ConfigCmd represents 'ciallo config'
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Print one value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Change one value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"Print every value"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"New value"`
}

type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "ciallo - a small browser that remembers where you have been"
}

// Version returns the program version
func (Args) Version() string {
	return "ciallo 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  ciallo                              # Open the home page
  ciallo example.com                  # Open https://example.com
  ciallo "what is a goroutine"        # Search
  ciallo resolve localhost:8080       # Show the resolved target
  ciallo history -n 10                # Ten most recent visits
  ciallo history --source snapshot    # Read the engine's own history
  ciallo config set search-url "https://duckduckgo.com/?q=%s"

Configuration keys: ` + strings.Join(config.Keys(), ", ")
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.History != nil {
		return args.History.Validate()
	}
	if args.Config != nil {
		return args.Config.Validate()
	}
	return nil
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	if h.Limit != nil && *h.Limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	if h.Source != nil {
		switch *h.Source {
		case config.SourceLog, config.SourceSnapshot, config.SourceMemory:
		default:
			return fmt.Errorf("source must be one of %s, %s, %s", config.SourceLog, config.SourceSnapshot, config.SourceMemory)
		}
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	if c.Get == nil && c.Set == nil && c.List == nil {
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}

var subcommands = []string{"browse", "resolve", "history", "clear", "config"}

// valueFlags are global flags that consume the following argument.
var valueFlags = []string{"--profile", "--config"}

// NormalizeArgs inserts the browse subcommand when the first positional
// argument is not a subcommand, so that 'ciallo example.com' works.
func NormalizeArgs(argv []string) []string {
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--":
			return insertBrowse(argv, i)
		case slices.Contains(valueFlags, a):
			i++
			continue
		case strings.HasPrefix(a, "-"):
			continue
		}
		if slices.Contains(subcommands, a) {
			return argv
		}
		return insertBrowse(argv, i)
	}
	return argv
}

func insertBrowse(argv []string, at int) []string {
	out := make([]string, 0, len(argv)+1)
	out = append(out, argv[:at]...)
	out = append(out, "browse")
	return append(out, argv[at:]...)
}
