package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type field struct {
	name  string
	value string
}

// Validate checks value ranges and formats. All problems are reported together.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, f := range []field{
		{"libraries.movies", c.Libraries.Movies},
		{"libraries.tv", c.Libraries.TV},
		{"libraries.other", c.Libraries.Other},
	} {
		if f.value != "" && !filepath.IsAbs(f.value) {
			add("%s must be an absolute path, got %q", f.name, f.value)
		}
	}
	for _, dir := range c.Watch.Dirs {
		if !filepath.IsAbs(dir) {
			add("watch.dirs entry must be an absolute path, got %q", dir)
		}
	}

	for _, f := range []field{
		{"providers.omdb.base_url", c.Providers.OMDb.BaseURL},
		{"providers.tmdb.base_url", c.Providers.TMDB.BaseURL},
	} {
		if f.value == "" {
			continue
		}
		if u, err := url.Parse(f.value); err != nil || u.Scheme == "" || u.Host == "" {
			add("%s is not an absolute URL: %q", f.name, f.value)
		}
	}
	if c.Providers.TimeoutSeconds <= 0 {
		add("providers.timeout_seconds must be positive")
	}
	if c.Providers.RateLimit.RequestsPerSecond < 0 {
		add("providers.rate_limit.requests_per_second must not be negative")
	}
	if c.Providers.Retry.Attempts < 1 {
		add("providers.retry.attempts must be at least 1")
	}
	if c.Providers.Retry.BaseDelayMillis < 0 || c.Providers.Retry.MaxDelayMillis < c.Providers.Retry.BaseDelayMillis {
		add("providers.retry delays must satisfy 0 <= base_delay_ms <= max_delay_ms")
	}
	if c.Providers.CircuitBreaker.FailureThreshold < 1 {
		add("providers.circuit_breaker.failure_threshold must be at least 1")
	}

	if c.Organizer.Workers < 1 {
		add("organizer.workers must be at least 1")
	}
	if c.Daemon.SettleSeconds < 0 {
		add("daemon.settle_seconds must not be negative")
	}
	if c.Daemon.HealthAddr != "" {
		if _, _, err := net.SplitHostPort(c.Daemon.HealthAddr); err != nil {
			add("daemon.health_addr %q: %v", c.Daemon.HealthAddr, err)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	if _, err := c.Permissions.ParseFileMode(); err != nil {
		add("permissions.file_mode %q: %v", c.Permissions.FileMode, err)
	}
	if _, err := c.Permissions.ParseDirMode(); err != nil {
		add("permissions.dir_mode %q: %v", c.Permissions.DirMode, err)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}
