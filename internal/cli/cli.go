package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/barikyo/ciallo/internal/clipboard"
	"github.com/barikyo/ciallo/internal/clipboard/sysboard"
	"github.com/barikyo/ciallo/internal/config"
	"github.com/barikyo/ciallo/internal/engine"
	"github.com/barikyo/ciallo/internal/engine/rodengine"
	"github.com/barikyo/ciallo/internal/history"
	"github.com/barikyo/ciallo/internal/logging"
	"github.com/barikyo/ciallo/internal/navigator"
	"github.com/barikyo/ciallo/internal/profile"
	"github.com/barikyo/ciallo/internal/resolve"
	"github.com/barikyo/ciallo/internal/store"
	"github.com/barikyo/ciallo/internal/store/logstore"
	"github.com/barikyo/ciallo/internal/store/memstore"
	"github.com/barikyo/ciallo/internal/store/snapshot"
	"github.com/barikyo/ciallo/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// CLI handles the command-line interface
type CLI struct {
	profile       *profile.Profile
	configManager *config.ConfigManager
	config        *config.Config
	verbose       bool

	stdout    io.Writer
	stdin     io.Reader
	clipboard clipboard.Clipboard

	// swapped in tests
	launch     func(ctx context.Context, cfg rodengine.Config) (engine.Engine, error)
	runProgram func(m tea.Model) error
}

// New creates a new CLI instance with default locations
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a CLI honouring --config and --profile.
// Precedence for every setting: flag > environment > config file > default.
func NewWithArgs(args *Args) (*CLI, error) {
	var cm *config.ConfigManager
	if args != nil && args.ConfigPath != nil {
		cm = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else {
		var err error
		cm, err = config.NewConfigManager()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := cm.Effective()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	profileDir := cfg.ProfileDir
	if args != nil && args.Profile != nil {
		profileDir = *args.Profile
	}
	p, err := profile.NewWithPath(profileDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}

	return &CLI{
		profile:       p,
		configManager: cm,
		config:        cfg,
		verbose:       args != nil && args.Verbose,
		stdout:        os.Stdout,
		stdin:         os.Stdin,
		clipboard:     sysboard.New(),
		launch:        launchChrome,
		runProgram:    runProgram,
	}, nil
}

func launchChrome(ctx context.Context, cfg rodengine.Config) (engine.Engine, error) {
	e, err := rodengine.Launch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func runProgram(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Profile returns the profile the CLI operates on
func (c *CLI) Profile() *profile.Profile {
	return c.profile
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Resolve != nil:
		return c.executeResolve(args.Resolve)
	case args.History != nil:
		return c.executeHistory(ctx, args.History)
	case args.Clear != nil:
		return c.executeClear(ctx, args.Clear)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Browse != nil:
		return c.executeBrowse(ctx, args.Browse)
	default:
		return c.executeBrowse(ctx, &BrowseCmd{})
	}
}

// logger builds the command logger. The TUI owns the terminal, so browse
// logs to the profile's log file.
func (c *CLI) logger(toFile bool) (*zap.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = c.config.LogLevel
	if c.verbose {
		cfg.Level = "debug"
		cfg.Development = true
	}
	if toFile {
		cfg.OutputPaths = []string{c.profile.LogFile()}
	}
	return logging.New(cfg)
}

// openStores returns the store visits are written to and the store they are
// listed from. Visits always go to the local log unless nothing is persisted.
func (c *CLI) openStores(source string, log *zap.Logger) (writer, reader store.HistoryStore) {
	switch source {
	case config.SourceMemory:
		m := memstore.NewMemoryStore()
		return m, m
	case config.SourceSnapshot:
		return logstore.New(c.profile.HistoryLog()),
			snapshot.New(c.profile.SnapshotSource(), snapshot.WithLogger(log))
	default:
		l := logstore.New(c.profile.HistoryLog())
		return l, l
	}
}

// executeBrowse launches Chrome and runs the TUI until the user quits or the
// browser goes away
func (c *CLI) executeBrowse(ctx context.Context, cmd *BrowseCmd) error {
	log, err := c.logger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	writer, reader := c.openStores(c.config.HistorySource, log)
	svc := history.NewService(writer, reader, history.WithLogger(log))
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Warn("cli: failed to close history", zap.Error(cerr))
		}
	}()

	engCfg := rodengine.Config{
		Bin:         c.config.ChromeBin,
		Headless:    c.config.Headless || cmd.Headless,
		UserDataDir: c.profile.EngineDir(),
		Logger:      log,
	}
	if cmd.Remote != nil {
		engCfg.ControlURL = *cmd.Remote
	}

	eng, err := c.launch(ctx, engCfg)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer eng.Close()

	nav := navigator.New(eng, svc,
		navigator.WithLogger(log),
		navigator.WithSearchURL(c.config.SearchURL))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	navErr := make(chan error, 1)
	go func() { navErr <- nav.Run(runCtx) }()

	if cmd.URL != nil && strings.TrimSpace(*cmd.URL) != "" {
		nav.Submit(*cmd.URL)
	}

	model := tui.NewAppModel(nav, svc,
		tui.WithHistoryLimit(c.config.HistoryLimit),
		tui.WithClipboard(c.clipboard))
	runErr := c.runProgram(&model)

	cancel()
	if err := <-navErr; err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("cli: navigator stopped with error", zap.Error(err))
	}
	return runErr
}

// executeResolve prints the kind and URL the input resolves to
func (c *CLI) executeResolve(cmd *ResolveCmd) error {
	raw := strings.Join(cmd.Text, " ")
	target := resolve.Resolve(raw)

	if target.Kind == resolve.Home {
		fmt.Fprintf(c.stdout, "%s\n", target.Kind)
		return nil
	}
	fmt.Fprintf(c.stdout, "%s %s\n", target.Kind, target.URL(c.config.SearchURL))
	return nil
}

type historyJSON struct {
	Timestamp   string `json:"timestamp,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// executeHistory lists recent visits from the chosen source
func (c *CLI) executeHistory(ctx context.Context, cmd *HistoryCmd) error {
	log, err := c.logger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	source := c.config.HistorySource
	if cmd.Source != nil {
		source = *cmd.Source
	}
	limit := c.config.HistoryLimit
	if cmd.Limit != nil {
		limit = *cmd.Limit
	}

	writer, reader := c.openStores(source, log)
	svc := history.NewService(writer, reader, history.WithLogger(log))
	defer svc.Close()

	entries := svc.ListRecent(ctx, limit)

	if cmd.JSON {
		out := make([]historyJSON, 0, len(entries))
		for _, e := range entries {
			row := historyJSON{Title: e.Title, URL: e.URL, Placeholder: e.Placeholder}
			if !e.Timestamp.IsZero() {
				row.Timestamp = e.Timestamp.Format(time.RFC3339)
			}
			out = append(out, row)
		}
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.stdout, store.EmptyPlaceholder)
		return nil
	}
	for _, e := range entries {
		if e.Placeholder || e.Timestamp.IsZero() {
			fmt.Fprintln(c.stdout, e.String())
			continue
		}
		fmt.Fprintf(c.stdout, "%s  %s\n", e.Timestamp.Local().Format("01-02 15:04"), e.String())
	}
	return nil
}

// executeClear deletes the local visit log
func (c *CLI) executeClear(ctx context.Context, cmd *ClearCmd) error {
	visits := logstore.New(c.profile.HistoryLog())

	entries, err := visits.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.stdout, "History is already empty.")
		return nil
	}

	if !cmd.Force {
		fmt.Fprintf(c.stdout, "This will delete %d visit(s) from history. Continue? [y/N]: ", len(entries))
		var response string
		fmt.Fscanln(c.stdin, &response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.stdout, "Cancelled.")
			return nil
		}
	}

	if err := visits.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintf(c.stdout, "Cleared %d visit(s) from history.\n", len(entries))
	return nil
}

// executeConfig handles the 'ciallo config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configManager.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.stdout, value)
		return nil

	case cmd.Set != nil:
		if err := c.configManager.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.stdout, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil

	case cmd.List != nil:
		values, err := c.configManager.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(c.stdout, "Current configuration (%s):\n", c.configManager.GetConfigPath())
		for _, k := range keys {
			fmt.Fprintf(c.stdout, "  %s = %s\n", k, values[k])
		}
		return nil

	default:
		return fmt.Errorf("no config subcommand specified")
	}
}
