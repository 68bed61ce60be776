// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nimbusbot/nimbus/internal/owm"
)

type cacheKey struct {
	Op   string
	City string
	Unit string
	Lang string
}

type cacheEntry struct {
	weather  *owm.WeatherSnapshot
	forecast *owm.ForecastSnapshot
	expiry   time.Time
}

// CachedGateway decorates a Gateway with a TTL cache for current weather and
// forecast lookups, so a popular city does not hit the provider on every
// request. Geocoding and existence probes pass through uncached.
type CachedGateway struct {
	Gateway
	weatherTTL  time.Duration
	forecastTTL time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

func NewCachedGateway(gateway Gateway, weatherTTL, forecastTTL time.Duration) *CachedGateway {
	return &CachedGateway{
		Gateway:     gateway,
		weatherTTL:  weatherTTL,
		forecastTTL: forecastTTL,
		cache:       make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedGateway) CurrentWeather(ctx context.Context, city, unit, lang string) (*owm.WeatherSnapshot, error) {
	key := newKey("weather", city, unit, lang)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		return entry.weather, nil
	}

	snap, err := c.Gateway.CurrentWeather(ctx, city, unit, lang)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{weather: snap, expiry: time.Now().Add(c.weatherTTL)}
	c.mu.Unlock()
	return snap, nil
}

func (c *CachedGateway) Forecast(ctx context.Context, city, unit, lang string) (*owm.ForecastSnapshot, error) {
	key := newKey("forecast", city, unit, lang)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		return entry.forecast, nil
	}

	snap, err := c.Gateway.Forecast(ctx, city, unit, lang)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{forecast: snap, expiry: time.Now().Add(c.forecastTTL)}
	c.mu.Unlock()
	return snap, nil
}

func newKey(op, city, unit, lang string) cacheKey {
	return cacheKey{
		Op:   op,
		City: strings.ToLower(strings.TrimSpace(city)),
		Unit: unit,
		Lang: lang,
	}
}
