// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package main implements the nimbus Telegram weather bot.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nimbusbot/nimbus/internal/bot"
	"github.com/nimbusbot/nimbus/internal/config"
	"github.com/nimbusbot/nimbus/internal/http"
	"github.com/nimbusbot/nimbus/internal/i18n"
	"github.com/nimbusbot/nimbus/internal/logger"
	"github.com/nimbusbot/nimbus/internal/owm"
	"github.com/nimbusbot/nimbus/internal/prefs"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT,
		os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	// Read config
	confRead := false
	confPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// Read default config
	conf, err := config.New()
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	// If config file was specified, read it
	if *confPath != "" {
		file := filepath.Base(*confPath)
		path := filepath.Dir(*confPath)
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
		confRead = true
	}

	// Check if we have a config file in the default location
	if path, file := findConfigFile(); !confRead && (path != "" && file != "") {
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
	}

	log = logger.New(conf.LogLevel)
	if conf.BotToken == "" {
		log.Error("no Telegram bot token configured, set NIMBUS_BOT_TOKEN or the bot_token config key")
		os.Exit(1)
	}
	if conf.Weather.APIKey == "" {
		log.Error("no OpenWeatherMap API key configured, set NIMBUS_WEATHER_API_KEY or the weather.api_key config key")
		os.Exit(1)
	}

	translator, err := i18n.New()
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	store := prefs.NewStore(conf.Store.File, conf.Limits.Favorites, conf.Defaults.Units,
		conf.Defaults.Language, log)
	store.Load()

	weather := bot.NewCachedGateway(
		owm.New(http.New(log), log, conf.Weather.APIKey, conf.Weather.RequestTimeout,
			conf.Weather.ProbeTimeout),
		conf.Weather.CacheTTL, conf.Weather.ForecastCacheTTL)
	handler := bot.NewHandler(conf, store, weather, translator, log)

	telegram, err := bot.NewTelegram(conf.BotToken, handler, log)
	if err != nil {
		log.Error("failed to initialize Telegram transport", logger.Err(err))
		os.Exit(1)
	}

	if conf.Digest.Time != "" {
		digest, err := bot.NewDigest(conf.Digest.Time, store, weather, translator, telegram, log)
		if err != nil {
			log.Error("failed to initialize daily digest", logger.Err(err))
			os.Exit(1)
		}
		go func() {
			if err := digest.Run(ctx); err != nil {
				log.Error("daily digest stopped", logger.Err(err))
			}
		}()
	}

	log.Info("starting nimbus", slog.String("version", version), slog.String("commit", commit),
		slog.String("date", date))
	if err = telegram.Run(ctx); err != nil {
		log.Error("failed to run nimbus", logger.Err(err))
	}
	log.Info("shutting down nimbus")
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "nimbus", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
