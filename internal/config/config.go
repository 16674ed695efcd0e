// Package config loads tintcore settings from a YAML file with TINTCORE_
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tintcore/internal/journal"
	"tintcore/internal/pack"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TINTCORE_"

const defaultDebounce = 250 * time.Millisecond

// Config is the full runtime configuration.
type Config struct {
	Packs   []pack.Source `yaml:"packs"`
	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Watch   WatchConfig   `yaml:"watch"`
	Host    HostConfig    `yaml:"host"`
}

type JournalConfig struct {
	Driver journal.Driver `yaml:"driver"`
	DSN    string         `yaml:"dsn"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// WatchConfig tunes hot reload. Events closer together than Debounce
// collapse into one reload.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// HostConfig points at the manifest describing the host's live targets.
type HostConfig struct {
	Manifest string `yaml:"manifest"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Journal: JournalConfig{Driver: journal.Memory},
		Log:     LogConfig{Level: "info"},
		Watch:   WatchConfig{Debounce: defaultDebounce},
	}
}

// Load reads path (skipped when empty) over Default, then applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolvePaths makes relative filesystem paths relative to the config file.
func (c *Config) resolvePaths(dir string) {
	for i := range c.Packs {
		if (c.Packs[i].Driver == "" || c.Packs[i].Driver == pack.DriverFilesystem) && c.Packs[i].Root != "" && !filepath.IsAbs(c.Packs[i].Root) {
			c.Packs[i].Root = filepath.Join(dir, c.Packs[i].Root)
		}
	}
	if c.Host.Manifest != "" && !filepath.IsAbs(c.Host.Manifest) {
		c.Host.Manifest = filepath.Join(dir, c.Host.Manifest)
	}
}

// applyEnv overlays TINTCORE_* variables:
//
//	TINTCORE_PACKS: comma separated fs pack roots, replacing the file's packs
//	TINTCORE_JOURNAL_DRIVER: memory|sqlite|postgres
//	TINTCORE_JOURNAL_DSN: sqlite path or postgres DSN
//	TINTCORE_METRICS_ADDR: listen address for /metrics
//	TINTCORE_LOG_LEVEL, TINTCORE_LOG_JSON
//	TINTCORE_WATCH_DEBOUNCE: Go duration
//	TINTCORE_HOST_MANIFEST: host manifest path
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	if v, ok := get("PACKS"); ok {
		c.Packs = nil
		for i, root := range strings.Split(v, ",") {
			if root = strings.TrimSpace(root); root == "" {
				continue
			}
			c.Packs = append(c.Packs, pack.Source{Name: fmt.Sprintf("env#%d", i), Driver: pack.DriverFilesystem, Root: root})
		}
	}
	if v, ok := get("JOURNAL_DRIVER"); ok {
		c.Journal.Driver = journal.Driver(strings.ToLower(v))
	}
	if v, ok := get("JOURNAL_DSN"); ok {
		c.Journal.DSN = v
	}
	if v, ok := get("METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sLOG_JSON: %w", EnvPrefix, err)
		}
		c.Log.JSON = b
	}
	if v, ok := get("WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sWATCH_DEBOUNCE: %w", EnvPrefix, err)
		}
		c.Watch.Debounce = d
	}
	if v, ok := get("HOST_MANIFEST"); ok {
		c.Host.Manifest = v
	}
	return nil
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	for i, src := range c.Packs {
		switch src.Driver {
		case "", pack.DriverFilesystem:
			if src.Root == "" {
				errs = append(errs, fmt.Errorf("packs[%d]: fs pack needs a root", i))
			}
		case pack.DriverS3:
			if src.Bucket == "" {
				errs = append(errs, fmt.Errorf("packs[%d]: s3 pack needs a bucket", i))
			}
		case pack.DriverMemory:
		default:
			errs = append(errs, fmt.Errorf("packs[%d]: unknown driver %q", i, src.Driver))
		}
	}
	switch c.Journal.Driver {
	case "", journal.Memory, journal.SQLite, journal.Postgres:
	default:
		errs = append(errs, fmt.Errorf("journal: unknown driver %q", c.Journal.Driver))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log: unknown level %q", c.Log.Level))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch: negative debounce %s", c.Watch.Debounce))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// FilesystemRoots returns the roots of fs packs, in pack order.
func (c Config) FilesystemRoots() []string {
	var roots []string
	for _, src := range c.Packs {
		if src.Driver == "" || src.Driver == pack.DriverFilesystem {
			roots = append(roots, src.Root)
		}
	}
	return roots
}
