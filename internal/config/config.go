// Package config resolves bridgelog settings from .env, <home>/config.yaml and
// BRIDGELOG_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/faizmokh/bridgelog/internal/files"
	"github.com/faizmokh/bridgelog/internal/logbook"
	"github.com/faizmokh/bridgelog/internal/store"
	"github.com/faizmokh/bridgelog/internal/weather"
)

// Defaults.
const (
	DefaultIdentity         = "default"
	DefaultSaveDebounce     = 700 * time.Millisecond
	DefaultRolloverInterval = 30 * time.Second
	DefaultWeatherCooldown  = 10 * time.Minute
)

// Config holds every runtime setting.
type Config struct {
	// Home is the data directory. It comes from BRIDGELOG_HOME, not the file.
	Home string `yaml:"-"`

	Identity    string `yaml:"identity"`
	Store       string `yaml:"store"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	SaveDebounce     time.Duration `yaml:"save_debounce"`
	RolloverInterval time.Duration `yaml:"rollover_interval"`
	WeatherCooldown  time.Duration `yaml:"weather_cooldown"`

	ForecastURL   string `yaml:"forecast_url"`
	MarineURL     string `yaml:"marine_url"`
	LocationLabel string `yaml:"location_label"`
}

// Load resolves the configuration. An empty home falls back to ResolveBasePath.
func Load(home string) (Config, error) {
	_ = godotenv.Load()

	if home == "" {
		var err error
		home, err = files.ResolveBasePath()
		if err != nil {
			return Config{}, fmt.Errorf("resolve data directory: %w", err)
		}
	}
	mgr, err := files.NewManager(home)
	if err != nil {
		return Config{}, err
	}

	cfg, err := readFile(mgr.ConfigPath())
	if err != nil {
		return Config{}, err
	}
	cfg.Home = mgr.BasePath()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	// later keys win, so BRIDGELOG_DATABASE_URL overrides DATABASE_URL.
	strs := []struct {
		key string
		dst *string
	}{
		{"BRIDGELOG_IDENTITY", &cfg.Identity},
		{"BRIDGELOG_STORE", &cfg.Store},
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"BRIDGELOG_DATABASE_URL", &cfg.DatabaseURL},
		{"BRIDGELOG_SQLITE_PATH", &cfg.SQLitePath},
		{"BRIDGELOG_FORECAST_URL", &cfg.ForecastURL},
		{"BRIDGELOG_MARINE_URL", &cfg.MarineURL},
		{"BRIDGELOG_LOCATION_LABEL", &cfg.LocationLabel},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"BRIDGELOG_SAVE_DEBOUNCE", &cfg.SaveDebounce},
		{"BRIDGELOG_ROLLOVER_INTERVAL", &cfg.RolloverInterval},
		{"BRIDGELOG_WEATHER_COOLDOWN", &cfg.WeatherCooldown},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.Identity == "" {
		c.Identity = DefaultIdentity
	}
	if c.Store == "" {
		c.Store = store.BackendFile
	}
	if c.SaveDebounce == 0 {
		c.SaveDebounce = DefaultSaveDebounce
	}
	if c.RolloverInterval == 0 {
		c.RolloverInterval = DefaultRolloverInterval
	}
	if c.WeatherCooldown == 0 {
		c.WeatherCooldown = DefaultWeatherCooldown
	}
	if c.ForecastURL == "" {
		c.ForecastURL = weather.DefaultForecastURL
	}
	if c.MarineURL == "" {
		c.MarineURL = weather.DefaultMarineURL
	}
	if c.LocationLabel == "" {
		c.LocationLabel = logbook.DefaultLocationLabel
	}
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	switch c.Store {
	case store.BackendFile, store.BackendSQLite:
	case store.BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("store postgres needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("%w %q", store.ErrUnknownBackend, c.Store)
	}
	if c.SaveDebounce < 0 || c.RolloverInterval <= 0 || c.WeatherCooldown < 0 {
		return errors.New("durations must be positive")
	}
	return nil
}

// Manager returns the file manager rooted at Home.
func (c Config) Manager() (*files.Manager, error) {
	return files.NewManager(c.Home)
}

// StoreOptions maps the configuration onto store.Open options.
func (c Config) StoreOptions(mgr *files.Manager) store.Options {
	return store.Options{
		Backend:     c.Store,
		Manager:     mgr,
		SQLitePath:  c.SQLitePath,
		DatabaseURL: c.DatabaseURL,
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
