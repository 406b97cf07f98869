package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/barikyo/ciallo/internal/resolve"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CIALLO_HISTORY_LIMIT.
const EnvPrefix = "CIALLO"

// History sources.
const (
	SourceLog      = "log"      // local append-only history file
	SourceSnapshot = "snapshot" // the engine's own History database
	SourceMemory   = "memory"   // nothing persisted
)

// Config represents the ciallo configuration
type Config struct {
	HistoryLimit  int    `yaml:"history_limit"`
	HistorySource string `yaml:"history_source"`
	SearchURL     string `yaml:"search_url"`
	Headless      bool   `yaml:"headless"`
	ProfileDir    string `yaml:"profile_dir,omitempty"`
	ChromeBin     string `yaml:"chrome_bin,omitempty"`
	LogLevel      string `yaml:"log_level"`
}

// envOverrides holds CIALLO_* variables. Unset variables leave the field nil.
type envOverrides struct {
	HistoryLimit  *int    `envconfig:"HISTORY_LIMIT"`
	HistorySource *string `envconfig:"HISTORY_SOURCE"`
	SearchURL     *string `envconfig:"SEARCH_URL"`
	Headless      *bool   `envconfig:"HEADLESS"`
	ProfileDir    *string `envconfig:"PROFILE_DIR"`
	ChromeBin     *string `envconfig:"CHROME_BIN"`
	LogLevel      *string `envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:  50,
		HistorySource: SourceLog,
		SearchURL:     resolve.DefaultSearchURL,
		Headless:      false,
		LogLevel:      "info",
	}
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "ciallo")
	configPath := filepath.Join(configDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	config := DefaultConfig()

	// If config file doesn't exist, return default config
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Effective loads the file configuration and applies CIALLO_* environment
// overrides on top of it.
func (cm *ConfigManager) Effective() (*Config, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	env.apply(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	return config, nil
}

func (e envOverrides) apply(c *Config) {
	if e.HistoryLimit != nil {
		c.HistoryLimit = *e.HistoryLimit
	}
	if e.HistorySource != nil {
		c.HistorySource = *e.HistorySource
	}
	if e.SearchURL != nil {
		c.SearchURL = *e.SearchURL
	}
	if e.Headless != nil {
		c.Headless = *e.Headless
	}
	if e.ProfileDir != nil {
		c.ProfileDir = *e.ProfileDir
	}
	if e.ChromeBin != nil {
		c.ChromeBin = *e.ChromeBin
	}
	if e.LogLevel != nil {
		c.LogLevel = *e.LogLevel
	}
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	// Validate configuration before saving
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validate checks every field and fills blanks with defaults
func validate(config *Config) error {
	if config.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}

	if config.HistoryLimit > 1000 {
		return fmt.Errorf("history_limit cannot exceed 1000 items")
	}

	switch config.HistorySource {
	case "":
		config.HistorySource = SourceLog
	case SourceLog, SourceSnapshot, SourceMemory:
	default:
		return fmt.Errorf("history_source must be one of %s, %s, %s", SourceLog, SourceSnapshot, SourceMemory)
	}

	if config.SearchURL == "" {
		config.SearchURL = resolve.DefaultSearchURL
	}

	switch config.LogLevel {
	case "":
		config.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error")
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Keys returns every configuration key in display order.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

var accessors = map[string]accessor{
	"history-limit": {
		get: func(c *Config) string { return strconv.Itoa(c.HistoryLimit) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer value for history-limit: %s", v)
			}
			c.HistoryLimit = n
			return nil
		},
	},
	"history-source": {
		get: func(c *Config) string { return c.HistorySource },
		set: func(c *Config, v string) error { c.HistorySource = v; return nil },
	},
	"search-url": {
		get: func(c *Config) string { return c.SearchURL },
		set: func(c *Config, v string) error { c.SearchURL = v; return nil },
	},
	"headless": {
		get: func(c *Config) string { return strconv.FormatBool(c.Headless) },
		set: func(c *Config, v string) error {
			switch v {
			case "true":
				c.Headless = true
			case "false":
				c.Headless = false
			default:
				return fmt.Errorf("invalid boolean value for headless: %s (must be 'true' or 'false')", v)
			}
			return nil
		},
	},
	"profile-dir": {
		get: func(c *Config) string { return orDefault(c.ProfileDir) },
		set: func(c *Config, v string) error { c.ProfileDir = v; return nil },
	},
	"chrome-bin": {
		get: func(c *Config) string { return orDefault(c.ChromeBin) },
		set: func(c *Config, v string) error { c.ChromeBin = v; return nil },
	},
	"log-level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
}

func orDefault(s string) string {
	if s == "" {
		return "[default]"
	}
	return s
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	a, ok := accessors[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	config, err := cm.Load()
	if err != nil {
		return err
	}

	if err := a.set(config, value); err != nil {
		return err
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	a, ok := accessors[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}

	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	return a.get(config), nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(accessors))
	for k, a := range accessors {
		result[k] = a.get(config)
	}

	return result, nil
}
