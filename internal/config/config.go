// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8050".
	Addr string `koanf:"addr"`

	// DatasetPath points at the medal records: a CSV file, or a SQLite
	// database when the extension is .db, .sqlite or .sqlite3.
	DatasetPath string `koanf:"dataset_path"`

	// DatasetTable names the SQLite table holding the records.
	DatasetTable string `koanf:"dataset_table"`

	// Team and Season restrict the working dataset.
	Team   string `koanf:"team"`
	Season string `koanf:"season"`

	// TopN caps the athlete and growth rankings.
	TopN int `koanf:"top_n"`

	// RecentWindowYears is the look-back used by the promising-by-sex chart.
	RecentWindowYears int `koanf:"recent_window_years"`

	// ForecastYears are the future years the regression is evaluated at.
	ForecastYears []int `koanf:"forecast_years"`

	// RateLimitRPS enables a per-client token bucket when > 0.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// RedisAddr enables the Redis usage recorder when non-empty.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// ChartWidth and ChartHeight size the PNG charts in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8050",
		DatasetPath:       "data/olympics_dataset.csv",
		DatasetTable:      "athlete_events",
		Team:              "Brazil",
		Season:            "Summer",
		TopN:              10,
		RecentWindowYears: 20,
		ForecastYears:     []int{2028, 2032},
		RateLimitRPS:      0,
		RateLimitBurst:    20,
		RedisPrefix:       "medaldash:usage",
		ChartWidth:        960,
		ChartHeight:       420,
	}
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatasetPath) == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Team) == "":
		return fmt.Errorf("%w: team must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Season) == "":
		return fmt.Errorf("%w: season must not be empty", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.RecentWindowYears < 0:
		return fmt.Errorf("%w: recent_window_years must not be negative", ErrInvalidConfig)
	case len(c.ForecastYears) == 0:
		return fmt.Errorf("%w: forecast_years must list at least one year", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting", ErrInvalidConfig)
	case c.ChartWidth < 1 || c.ChartHeight < 1:
		return fmt.Errorf("%w: chart dimensions must be positive", ErrInvalidConfig)
	}
	return nil
}
