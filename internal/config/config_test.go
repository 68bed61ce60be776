// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	const (
		expectDefaultUnits   = "metric"
		expectRequestTimeout = time.Second * 10
		expectProbeTimeout   = time.Second * 5
		expectFavorites      = 10
		expectCompareCities  = 4
		expectSearchResults  = 8
		expectGeocodeResults = 10
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Defaults.Units != expectDefaultUnits {
			t.Errorf("expected units to be: %s, got %s", expectDefaultUnits, conf.Defaults.Units)
		}
		if conf.Weather.RequestTimeout != expectRequestTimeout {
			t.Errorf("expected request timeout to be: %s, got %s", expectRequestTimeout,
				conf.Weather.RequestTimeout)
		}
		if conf.Weather.ProbeTimeout != expectProbeTimeout {
			t.Errorf("expected probe timeout to be: %s, got %s", expectProbeTimeout, conf.Weather.ProbeTimeout)
		}
		if conf.Limits.Favorites != expectFavorites {
			t.Errorf("expected favorites limit to be: %d, got %d", expectFavorites, conf.Limits.Favorites)
		}
		if conf.Limits.CompareCities != expectCompareCities {
			t.Errorf("expected compare cities limit to be: %d, got %d", expectCompareCities,
				conf.Limits.CompareCities)
		}
		if conf.Limits.SearchResults != expectSearchResults {
			t.Errorf("expected search results limit to be: %d, got %d", expectSearchResults,
				conf.Limits.SearchResults)
		}
		if conf.Limits.GeocodeResults != expectGeocodeResults {
			t.Errorf("expected geocode results limit to be: %d, got %d", expectGeocodeResults,
				conf.Limits.GeocodeResults)
		}
		if conf.Store.File == "" {
			t.Error("expected store file to have a default path")
		}
		if conf.Defaults.Language == "" {
			t.Error("expected default language to be detected or fall back to English")
		}
	})
	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("NIMBUS_DEFAULTS_UNITS", "imperial")
		t.Setenv("NIMBUS_LIMITS_FAVORITES", "5")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Defaults.Units != "imperial" {
			t.Errorf("expected units to be imperial, got %s", conf.Defaults.Units)
		}
		if conf.Limits.Favorites != 5 {
			t.Errorf("expected favorites limit to be 5, got %d", conf.Limits.Favorites)
		}
	})
	t.Run("invalid units fail validation", func(t *testing.T) {
		t.Setenv("NIMBUS_DEFAULTS_UNITS", "kelvin")
		_, err := New()
		if err == nil {
			t.Fatal("expected config validation to fail")
		}
		if !strings.Contains(err.Error(), "invalid units") {
			t.Errorf("expected error to contain 'invalid units', got %s", err)
		}
	})
	t.Run("invalid digest time fails validation", func(t *testing.T) {
		t.Setenv("NIMBUS_DIGEST_TIME", "25:99")
		_, err := New()
		if err == nil {
			t.Fatal("expected config validation to fail")
		}
	})
	t.Run("digest time in HH:MM format passes validation", func(t *testing.T) {
		t.Setenv("NIMBUS_DIGEST_TIME", "07:30")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Digest.Time != "07:30" {
			t.Errorf("expected digest time to be 07:30, got %s", conf.Digest.Time)
		}
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("config file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := "bot_token: test-token\nweather:\n  api_key: test-key\ndefaults:\n  units: imperial\n"
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config file: %s", err)
		}
		conf, err := NewFromFile(dir, "config.yaml")
		if err != nil {
			t.Fatalf("failed to load config from file: %s", err)
		}
		if conf.BotToken != "test-token" {
			t.Errorf("expected bot token to be 'test-token', got %s", conf.BotToken)
		}
		if conf.Weather.APIKey != "test-key" {
			t.Errorf("expected API key to be 'test-key', got %s", conf.Weather.APIKey)
		}
		if conf.Defaults.Units != "imperial" {
			t.Errorf("expected units to be imperial, got %s", conf.Defaults.Units)
		}
	})
	t.Run("missing config file fails", func(t *testing.T) {
		if _, err := NewFromFile(t.TempDir(), "nope.yaml"); err == nil {
			t.Fatal("expected loading a missing config file to fail")
		}
	})
}
