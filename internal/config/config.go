package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/paths"
)

// EnvPrefix prefixes environment overrides, e.g. STELLAR_PROVIDERS_OMDB_API_KEY.
const EnvPrefix = "STELLAR"

type Config struct {
	Libraries   LibrariesConfig   `mapstructure:"libraries" toml:"libraries"`
	Watch       WatchConfig       `mapstructure:"watch" toml:"watch"`
	Providers   ProvidersConfig   `mapstructure:"providers" toml:"providers"`
	Organizer   OrganizerConfig   `mapstructure:"organizer" toml:"organizer"`
	Daemon      DaemonConfig      `mapstructure:"daemon" toml:"daemon"`
	Database    DatabaseConfig    `mapstructure:"database" toml:"database"`
	Activity    ActivityConfig    `mapstructure:"activity" toml:"activity"`
	Logging     logging.Config    `mapstructure:"logging" toml:"logging"`
	Permissions PermissionsConfig `mapstructure:"permissions" toml:"permissions"`
}

// LibrariesConfig holds the destination root per media kind. An empty root keeps the
// file next to its source.
type LibrariesConfig struct {
	Movies string `mapstructure:"movies" toml:"movies"`
	TV     string `mapstructure:"tv" toml:"tv"`
	Other  string `mapstructure:"other" toml:"other"`
}

// WatchConfig contains download directories watched by `stellar watch`.
type WatchConfig struct {
	Dirs []string `mapstructure:"dirs" toml:"dirs"`
}

type ProvidersConfig struct {
	OMDb           OMDbConfig           `mapstructure:"omdb" toml:"omdb"`
	TMDB           TMDBConfig           `mapstructure:"tmdb" toml:"tmdb"`
	TimeoutSeconds int                  `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit" toml:"rate_limit"`
	Retry          RetryConfig          `mapstructure:"retry" toml:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" toml:"circuit_breaker"`
}

type OMDbConfig struct {
	APIKey  string `mapstructure:"api_key" toml:"api_key"`
	BaseURL string `mapstructure:"base_url" toml:"base_url"`
}

type TMDBConfig struct {
	// APIKey is either a v3 key or a v4 read access token.
	APIKey   string `mapstructure:"api_key" toml:"api_key"`
	BaseURL  string `mapstructure:"base_url" toml:"base_url"`
	Language string `mapstructure:"language" toml:"language"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" toml:"burst"`
}

type RetryConfig struct {
	Attempts             int `mapstructure:"attempts" toml:"attempts"`
	BaseDelayMillis      int `mapstructure:"base_delay_ms" toml:"base_delay_ms"`
	MaxDelayMillis       int `mapstructure:"max_delay_ms" toml:"max_delay_ms"`
	MaxRetryAfterSeconds int `mapstructure:"max_retry_after_seconds" toml:"max_retry_after_seconds"`
}

type CircuitBreakerConfig struct {
	FailureThreshold     int `mapstructure:"failure_threshold" toml:"failure_threshold"`
	FailureWindowSeconds int `mapstructure:"failure_window_seconds" toml:"failure_window_seconds"`
	CooldownSeconds      int `mapstructure:"cooldown_seconds" toml:"cooldown_seconds"`
}

type OrganizerConfig struct {
	Workers  int  `mapstructure:"workers" toml:"workers"`
	DryRun   bool `mapstructure:"dry_run" toml:"dry_run"`
	Sidecars bool `mapstructure:"sidecars" toml:"sidecars"`
}

type DaemonConfig struct {
	HealthAddr    string   `mapstructure:"health_addr" toml:"health_addr"`
	SettleSeconds int      `mapstructure:"settle_seconds" toml:"settle_seconds"`
	// Browser origins allowed to read /stats; empty disables CORS headers.
	CORSOrigins   []string `mapstructure:"cors_origins" toml:"cors_origins"`
}

type DatabaseConfig struct {
	// Path of the SQLite history database; empty uses ~/.config/stellar/history.db.
	Path string `mapstructure:"path" toml:"path"`
}

type ActivityConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Dir     string `mapstructure:"dir" toml:"dir"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Watch: WatchConfig{Dirs: []string{}},
		Providers: ProvidersConfig{
			OMDb:           OMDbConfig{BaseURL: "https://www.omdbapi.com/"},
			TMDB:           TMDBConfig{BaseURL: "https://api.themoviedb.org/3", Language: "en-US"},
			TimeoutSeconds: 10,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 4,
				Burst:             4,
			},
			Retry: RetryConfig{
				Attempts:             3,
				BaseDelayMillis:      500,
				MaxDelayMillis:       8000,
				MaxRetryAfterSeconds: 60,
			},
			CircuitBreaker: CircuitBreakerConfig{
				FailureThreshold:     5,
				FailureWindowSeconds: 120,
				CooldownSeconds:      30,
			},
		},
		Organizer: OrganizerConfig{
			Workers:  1,
			Sidecars: true,
		},
		Daemon: DaemonConfig{
			HealthAddr:    ":8687",
			SettleSeconds: 30,
		},
		Activity: ActivityConfig{Enabled: true},
		Logging:  logging.DefaultConfig(),
	}
}

// Load reads ~/.config/stellar/config.toml over the defaults, then applies STELLAR_*
// environment overrides.
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFile(configPath)
}

// LoadFile is Load for an explicit path. A missing file yields defaults.
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Seeding viper with the defaults registers every key, so env overrides apply
	// even to keys the file omits.
	defaults, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("unable to encode defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("unable to load defaults: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	// TOML writes an unset list as "[]"; keep it unset.
	if len(cfg.Daemon.CORSOrigins) == 0 {
		cfg.Daemon.CORSOrigins = nil
	}
	return cfg, nil
}

// Save writes the configuration to ~/.config/stellar/config.toml.
func (c *Config) Save() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configFile)
}

// SaveTo writes the configuration as TOML to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	content, err := c.ToTOML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0600)
}

// ToTOML renders the configuration with a short header.
func (c *Config) ToTOML() ([]byte, error) {
	body, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("unable to encode config: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("# Stellar Configuration\n# Generated by: stellar config init\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Masked returns a copy with API keys masked, for display.
func (c *Config) Masked() *Config {
	out := *c
	out.Watch.Dirs = append([]string(nil), c.Watch.Dirs...)
	out.Providers.OMDb.APIKey = MaskSecret(c.Providers.OMDb.APIKey)
	out.Providers.TMDB.APIKey = MaskSecret(c.Providers.TMDB.APIKey)
	return &out
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// DatabasePath returns the configured history database path or the default one.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return "./history.db"
	}
	return dbPath
}

// ActivityDir returns the configured activity log directory or the default one.
func (c *Config) ActivityDir() string {
	if c.Activity.Dir != "" {
		return c.Activity.Dir
	}
	dir, err := paths.ActivityDir()
	if err != nil {
		return "./activity"
	}
	return dir
}

// ProviderTimeout is the per-request timeout of the metadata HTTP clients.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}

// SettleDelay is how long a watched file must stay unchanged before it is organized.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Daemon.SettleSeconds) * time.Second
}
