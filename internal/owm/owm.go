// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package owm is the gateway to the OpenWeatherMap API. It translates the
// three logical queries of the bot into HTTP calls and normalizes results and
// failures into a small error vocabulary. The client holds no mutable state,
// so a single instance serves all concurrent requests.
package owm

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/nimbusbot/nimbus/internal/http"
	"github.com/nimbusbot/nimbus/internal/logger"
)

const (
	weatherEndpoint  = "https://api.openweathermap.org/data/2.5/weather"
	forecastEndpoint = "https://api.openweathermap.org/data/2.5/forecast"
	geocodeEndpoint  = "https://api.openweathermap.org/geo/1.0/direct"
)

// Client queries the OpenWeatherMap API.
type Client struct {
	apiKey         string
	requestTimeout time.Duration
	probeTimeout   time.Duration
	http           *http.Client
	log            *logger.Logger
}

func New(client *http.Client, log *logger.Logger, apiKey string, requestTimeout,
	probeTimeout time.Duration,
) *Client {
	if requestTimeout <= 0 {
		requestTimeout = http.DefaultTimeout
	}
	if probeTimeout <= 0 {
		probeTimeout = requestTimeout / 2
	}
	return &Client{
		apiKey:         apiKey,
		requestTimeout: requestTimeout,
		probeTimeout:   probeTimeout,
		http:           client,
		log:            log,
	}
}

// CurrentWeather fetches the current conditions for a city. A provider 404
// maps to ErrCityNotFound, everything else that goes wrong to TransientError.
func (c *Client) CurrentWeather(ctx context.Context, city, unit, lang string) (*WeatherSnapshot, error) {
	res := new(currentResponse)
	code, err := c.http.GetWithTimeout(ctx, weatherEndpoint, res, c.query(city, unit, lang),
		c.requestTimeout)
	if err != nil && code == 0 {
		c.log.Error("current weather request failed", "city", city, logger.Err(err))
		return nil, transient(err)
	}
	switch {
	case code == 404:
		return nil, ErrCityNotFound
	case code != 200:
		return nil, transientStatus(code)
	case err != nil:
		c.log.Error("failed to decode current weather response", "city", city, logger.Err(err))
		return nil, transient(err)
	}

	return newWeatherSnapshot(res), nil
}

// Forecast fetches the 5-day/3-hour forecast for a city and buckets it into
// calendar days. The error contract matches CurrentWeather.
func (c *Client) Forecast(ctx context.Context, city, unit, lang string) (*ForecastSnapshot, error) {
	res := new(forecastResponse)
	code, err := c.http.GetWithTimeout(ctx, forecastEndpoint, res, c.query(city, unit, lang),
		c.requestTimeout)
	if err != nil && code == 0 {
		c.log.Error("forecast request failed", "city", city, logger.Err(err))
		return nil, transient(err)
	}
	switch {
	case code == 404:
		return nil, ErrCityNotFound
	case code != 200:
		return nil, transientStatus(code)
	case err != nil:
		c.log.Error("failed to decode forecast response", "city", city, logger.Err(err))
		return nil, transient(err)
	}

	return newForecastSnapshot(res), nil
}

// Geocode resolves a free-text query into up to limit candidate cities in
// provider order. An empty result is a valid success, distinct from failure.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]CityMatch, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("appid", c.apiKey)
	values.Set("limit", strconv.Itoa(limit))

	var results []geocodeResult
	code, err := c.http.GetWithTimeout(ctx, geocodeEndpoint, &results, values, c.requestTimeout)
	if err != nil {
		c.log.Error("geocoding request failed", "query", query, logger.Err(err))
		return nil, transient(err)
	}
	if code != 200 {
		return nil, transientStatus(code)
	}

	matches := make([]CityMatch, 0, len(results))
	for _, res := range results {
		matches = append(matches, CityMatch{
			Name:      res.Name,
			Country:   res.Country,
			State:     res.State,
			Latitude:  res.Lat,
			Longitude: res.Lon,
		})
	}
	return matches, nil
}

// CityExists probes whether the provider knows the given city. All outcomes
// collapse to a boolean: only a full success response counts as existing,
// every failure mode, including timeouts, counts as not.
func (c *Client) CityExists(ctx context.Context, city, lang string) bool {
	target := new(struct{})
	code, err := c.http.GetWithTimeout(ctx, weatherEndpoint, target,
		c.query(city, "metric", lang), c.probeTimeout)
	if err != nil {
		c.log.Debug("city existence probe failed", "city", city, logger.Err(err))
		return false
	}
	return code == 200
}

func (c *Client) query(city, unit, lang string) url.Values {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", c.apiKey)
	values.Set("units", unit)
	values.Set("lang", lang)
	return values
}
