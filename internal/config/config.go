// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package config loads and validates the bot configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	locale "github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"
)

const configEnv = "NIMBUS"

// Config represents the application's configuration structure.
type Config struct {
	BotToken string     `fig:"bot_token"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Weather struct {
		APIKey         string        `fig:"api_key"`
		RequestTimeout time.Duration `fig:"request_timeout" default:"10s"`
		// ProbeTimeout bounds the cheap city-existence checks
		ProbeTimeout time.Duration `fig:"probe_timeout" default:"5s"`
		// CacheTTL and ForecastCacheTTL bound how long provider responses
		// are reused before a fresh lookup
		CacheTTL         time.Duration `fig:"cache_ttl" default:"10m"`
		ForecastCacheTTL time.Duration `fig:"forecast_cache_ttl" default:"1h"`
	} `fig:"weather"`

	Defaults struct {
		// Allowed values: metric, imperial
		Units    string `fig:"units" default:"metric"`
		Language string `fig:"language"`
	} `fig:"defaults"`

	Limits struct {
		Favorites      int `fig:"favorites" default:"10"`
		CompareCities  int `fig:"compare_cities" default:"4"`
		SearchResults  int `fig:"search_results" default:"8"`
		GeocodeResults int `fig:"geocode_results" default:"10"`
	} `fig:"limits"`

	Store struct {
		File string `fig:"file"`
	} `fig:"store"`

	Digest struct {
		// Local wall-clock time in "HH:MM" format, empty disables the daily digest
		Time string `fig:"time"`
	} `fig:"digest"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Defaults.Units != "metric" && c.Defaults.Units != "imperial" {
		return fmt.Errorf("invalid units: %s", c.Defaults.Units)
	}
	if c.Defaults.Language == "" {
		c.Defaults.Language = detectLanguage()
	}
	if c.Limits.Favorites < 1 {
		return fmt.Errorf("invalid favorites limit: %d", c.Limits.Favorites)
	}
	if c.Limits.CompareCities < 2 {
		return fmt.Errorf("invalid compare cities limit: %d", c.Limits.CompareCities)
	}
	if c.Limits.SearchResults < 1 || c.Limits.SearchResults > c.Limits.GeocodeResults {
		return fmt.Errorf("invalid search results limit: %d", c.Limits.SearchResults)
	}
	if c.Digest.Time != "" {
		if _, err := time.Parse("15:04", c.Digest.Time); err != nil {
			return fmt.Errorf("invalid digest time: %w", err)
		}
	}
	if c.Store.File == "" {
		home, _ := os.UserHomeDir()
		c.Store.File = filepath.Join(home, ".config", "nimbus", "user_preferences.json")
	}

	return nil
}

// detectLanguage resolves the process locale into a short language code. Falls
// back to English when detection fails.
func detectLanguage() string {
	tag, err := locale.Detect()
	if err != nil {
		return "en"
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "en"
	}
	return base.String()
}
