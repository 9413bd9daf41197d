// Package config assembles the runtime configuration from defaults, an
// optional YAML file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultConfigPath = "pkm.yaml"
	DefaultEnvFile    = ".env"
	DefaultLimit      = 10
)

var (
	ErrMissingConnection = errors.New("database configuration is missing")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// DatabaseConfig holds connection parameters.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"-"`
	SQLitePath string `yaml:"sqlite_path"`
}

// SearchConfig controls result limits, highlighting and the setup script.
type SearchConfig struct {
	Limit        int    `yaml:"limit"`
	StartSel     string `yaml:"start_sel"`
	StopSel      string `yaml:"stop_sel"`
	MaxWords     int    `yaml:"max_words"`
	MinWords     int    `yaml:"min_words"`
	MaxFragments int    `yaml:"max_fragments"`
	HighlightAll bool   `yaml:"highlight_all"`
	SetupScript  string `yaml:"setup_script"`
}

// LogConfig selects log verbosity and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Config is the root configuration, built once at startup and passed down.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
}

// Options tells Load where to look. Empty paths fall back to the defaults;
// a missing default file is not an error, a missing explicit one is.
type Options struct {
	ConfigPath string
	EnvFile    string
	LookupEnv  func(string) (string, bool)
}

// Load builds a Config. It does not validate it; call Validate once the
// caller knows which values it needs.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path, explicit := opts.ConfigPath, opts.ConfigPath != ""
	if !explicit {
		path = DefaultConfigPath
	}
	if err := loadYAML(path, cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	envFile, explicitEnv := opts.EnvFile, opts.EnvFile != ""
	if !explicitEnv {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicitEnv || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:     DriverPostgres,
			SQLitePath: "pkm.db",
		},
		Search: SearchConfig{
			Limit:        DefaultLimit,
			StartSel:     "***",
			StopSel:      "***",
			MaxWords:     35,
			MinWords:     15,
			MaxFragments: 1,
			HighlightAll: true,
			SetupScript:  "setup_fts_enhanced.sql",
		},
		Log: LogConfig{Level: "info", Pretty: true},
	}
}

// Validate reports missing connection values and out-of-range options.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		var missing []string
		for _, kv := range []struct{ key, val string }{
			{"DB_NAME", c.Database.Name},
			{"DB_USER", c.Database.User},
			{"DB_PASSWORD", c.Database.Password},
			{"DB_HOST", c.Database.Host},
			{"DB_PORT", c.Database.Port},
		} {
			if kv.val == "" {
				missing = append(missing, kv.key)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: set %s in the environment or .env file",
				ErrMissingConnection, strings.Join(missing, ", "))
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("%w: PKM_SQLITE_PATH is empty", ErrMissingConnection)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	s := c.Search
	if s.Limit <= 0 || s.MaxWords <= 0 || s.MinWords <= 0 || s.MaxFragments < 0 {
		return fmt.Errorf("%w: search limit, max_words and min_words must be positive", ErrInvalidConfig)
	}
	if s.MinWords >= s.MaxWords {
		return fmt.Errorf("%w: min_words must be less than max_words", ErrInvalidConfig)
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("DB_NAME", &cfg.Database.Name)
	set("DB_USER", &cfg.Database.User)
	set("DB_PASSWORD", &cfg.Database.Password)
	set("DB_HOST", &cfg.Database.Host)
	set("DB_PORT", &cfg.Database.Port)
	set("PKM_DB_DRIVER", &cfg.Database.Driver)
	set("PKM_SQLITE_PATH", &cfg.Database.SQLitePath)
	set("PKM_LOG_LEVEL", &cfg.Log.Level)
	set("PKM_SETUP_SCRIPT", &cfg.Search.SetupScript)

	if v, ok := lookup("PKM_SEARCH_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PKM_SEARCH_LIMIT=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Search.Limit = n
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	return nil
}
