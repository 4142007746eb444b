package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/activity"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/config"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/database"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/metadata"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/metadata/omdb"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/metadata/tmdb"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/paths"
)

// readConfig loads --config or the default config file without validating it.
func readConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if logCfg.File == "" {
		if p, err := paths.LogPath(); err == nil {
			logCfg.File = p
		}
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		// No writable log dir: keep going with stderr only.
		return logging.NewWriter(os.Stderr, logCfg.Level)
	}
	return logger
}

// buildResolver wraps each configured provider in a rate limit and a circuit breaker.
// It returns nil when no provider has an API key or offline is set.
func buildResolver(cfg *config.Config, logger *logging.Logger, offline bool) (*metadata.Resolver, error) {
	if offline {
		return nil, nil
	}
	pc := cfg.Providers

	wrap := func(p metadata.Provider) metadata.Provider {
		p = metadata.Limit(p, pc.RateLimit.RequestsPerSecond, pc.RateLimit.Burst)
		return metadata.Guard(p, metadata.NewCircuitBreaker(
			pc.CircuitBreaker.FailureThreshold,
			time.Duration(pc.CircuitBreaker.FailureWindowSeconds)*time.Second,
			time.Duration(pc.CircuitBreaker.CooldownSeconds)*time.Second))
	}

	var primary, secondary metadata.Provider
	if pc.OMDb.APIKey != "" {
		c, err := omdb.New(pc.OMDb.APIKey, omdb.WithBaseURL(pc.OMDb.BaseURL), omdb.WithTimeout(cfg.ProviderTimeout()))
		if err != nil {
			return nil, err
		}
		primary = wrap(c)
	}
	if pc.TMDB.APIKey != "" {
		c, err := tmdb.New(pc.TMDB.APIKey,
			tmdb.WithBaseURL(pc.TMDB.BaseURL),
			tmdb.WithLanguage(pc.TMDB.Language),
			tmdb.WithTimeout(cfg.ProviderTimeout()))
		if err != nil {
			return nil, err
		}
		secondary = wrap(c)
	}
	if primary == nil && secondary == nil {
		logger.Info("stellar", "No metadata provider configured, naming from filenames only")
		return nil, nil
	}

	retrier := metadata.Retrier{
		Attempts:      pc.Retry.Attempts,
		BaseDelay:     time.Duration(pc.Retry.BaseDelayMillis) * time.Millisecond,
		MaxDelay:      time.Duration(pc.Retry.MaxDelayMillis) * time.Millisecond,
		MaxRetryAfter: time.Duration(pc.Retry.MaxRetryAfterSeconds) * time.Second,
	}
	return metadata.NewResolver(primary, secondary,
		metadata.WithRetrier(retrier),
		metadata.WithLogger(logger)), nil
}

// asResolver keeps a nil *metadata.Resolver from becoming a non-nil interface.
func asResolver(r *metadata.Resolver) organizer.Resolver {
	if r == nil {
		return nil
	}
	return r
}

// history bundles the recorders that outlive a single command: the JSONL activity
// log and the SQLite run.
type history struct {
	activity *activity.Logger
	db       *database.HistoryDB
	run      *database.Run
	logger   *logging.Logger
}

// openHistory opens whatever history sinks are available. Failures are logged; a
// missing history never blocks organizing.
func openHistory(ctx context.Context, cfg *config.Config, logger *logging.Logger, command string, dryRun bool) *history {
	h := &history{logger: logger}

	if cfg.Activity.Enabled {
		al, err := activity.NewLogger(cfg.ActivityDir())
		if err != nil {
			logger.Warn("stellar", "Activity log unavailable", logging.F("error", err.Error()))
		} else {
			h.activity = al
		}
	}

	db, err := database.Open(cfg.DatabasePath())
	if err != nil {
		logger.Warn("stellar", "History database unavailable", logging.F("error", err.Error()))
		return h
	}
	run, err := db.StartRun(ctx, command, dryRun)
	if err != nil {
		logger.Warn("stellar", "Failed to start history run", logging.F("error", err.Error()))
		db.Close()
		return h
	}
	h.db, h.run = db, run
	return h
}

func (h *history) recorders() []organizer.Recorder {
	var out []organizer.Recorder
	if h.activity != nil {
		out = append(out, h.activity)
	}
	if h.run != nil {
		out = append(out, h.run)
	}
	return out
}

func (h *history) Close() {
	if h.run != nil {
		if err := h.run.Finish(context.Background()); err != nil {
			h.logger.Warn("stellar", "Failed to finish history run", logging.F("error", err.Error()))
		}
	}
	if h.db != nil {
		h.db.Close()
	}
	if h.activity != nil {
		h.activity.Close()
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
