package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Navigation trigger identifiers accepted in configuration.
const (
	NavBack    = "back"
	NavJump    = "jump"
	NavForward = "forward"
	NavDelete  = "delete"
	NavAll     = "all"
)

// DefaultTimeoutMS is applied when no session timeout is configured.
const DefaultTimeoutMS = 30000

// SessionConfig holds the library-level defaults applied to new pagination
// sessions.
type SessionConfig struct {
	TimeoutMS       int  `yaml:"timeout_ms" envconfig:"PAGINATION_TIMEOUT_MS"`
	StartPage       int  `yaml:"start_page" envconfig:"PAGINATION_START_PAGE"`
	PageIndicator   bool `yaml:"page_indicator" envconfig:"PAGINATION_PAGE_INDICATOR"`
	DeleteOnTimeout bool `yaml:"delete_on_timeout" envconfig:"PAGINATION_DELETE_ON_TIMEOUT"`
	// NavigationKeys overrides the symbolic key of individual navigation
	// triggers, e.g. back: "⬅".
	NavigationKeys map[string]string `yaml:"navigation_keys"`
	// DisabledNavigation lists navigation triggers to start disabled.
	// Accepts back, jump, forward, delete, or all.
	DisabledNavigation []string `yaml:"disabled_navigation" envconfig:"PAGINATION_DISABLED_NAVIGATION"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	Dir    string `yaml:"dir" envconfig:"LOG_DIR"`
	File   string `yaml:"file" envconfig:"LOG_FILE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// Config aggregates the configuration of the library.
type Config struct {
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns a configuration with all defaults applied and no file or
// environment input.
func Default() *Config {
	cfg := &Config{}
	_ = Normalize(cfg)
	return cfg
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Session.TimeoutMS == 0 {
		cfg.Session.TimeoutMS = DefaultTimeoutMS
	}
	if cfg.Session.TimeoutMS < 0 {
		return fmt.Errorf("session.timeout_ms must be > 0")
	}
	if cfg.Session.StartPage == 0 {
		cfg.Session.StartPage = 1
	}
	if cfg.Session.StartPage < 1 {
		return fmt.Errorf("session.start_page must be >= 1")
	}

	if len(cfg.Session.NavigationKeys) > 0 {
		normalizedKeys := make(map[string]string, len(cfg.Session.NavigationKeys))
		for id, key := range cfg.Session.NavigationKeys {
			normalized := strings.ToLower(strings.TrimSpace(id))
			if !validNavigation(normalized, false) {
				return fmt.Errorf("invalid session.navigation_keys id %q; allowed: back, jump, forward, delete", id)
			}
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("session.navigation_keys[%s] must not be empty", id)
			}
			normalizedKeys[normalized] = key
		}
		cfg.Session.NavigationKeys = normalizedKeys
	}
	for i, id := range cfg.Session.DisabledNavigation {
		normalized := strings.ToLower(strings.TrimSpace(id))
		if !validNavigation(normalized, true) {
			return fmt.Errorf("invalid session.disabled_navigation value %q; allowed: back, jump, forward, delete, all", id)
		}
		cfg.Session.DisabledNavigation[i] = normalized
	}

	return nil
}

func validNavigation(id string, allowAll bool) bool {
	switch id {
	case NavBack, NavJump, NavForward, NavDelete:
		return true
	case NavAll:
		return allowAll
	}
	return false
}
