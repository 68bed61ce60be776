// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package owm

import "time"

// WeatherSnapshot is the normalized view of one current-conditions response.
// It is produced fresh per request, never cached and never mutated.
type WeatherSnapshot struct {
	City          string
	Country       string
	Temperature   float64
	FeelsLike     float64
	Humidity      int
	Pressure      int
	WindSpeed     float64
	WindDirection *float64 // degrees, nil when the provider omitted it
	CloudCover    int
	Visibility    *float64 // meters, nil when the provider omitted it
	Sunrise       time.Time
	Sunset        time.Time
	ConditionID   int
	Description   string
}

// ForecastDay is one calendar day of a forecast, reduced from the provider's
// 3-hour samples.
type ForecastDay struct {
	Date        time.Time // local midnight of the day
	MinTemp     float64
	MaxTemp     float64
	Condition   string // dominant condition group, e.g. "Rain"
	ConditionID int    // representative code from the dominant group
	Description string
	MaxPop      float64 // maximum precipitation probability, 0..1
}

// ForecastSnapshot is the normalized view of one 5-day forecast response,
// bucketed into at most five calendar days in chronological order.
type ForecastSnapshot struct {
	City    string
	Country string
	Days    []ForecastDay
}

// CityMatch is one candidate result of a geocoding query.
type CityMatch struct {
	Name      string
	Country   string
	State     string // optional region, empty when the provider omitted it
	Latitude  float64
	Longitude float64
}

// Wire types for the OpenWeatherMap JSON payloads.

type conditionData struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []conditionData `json:"weather"`
	Wind    struct {
		Speed float64  `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Visibility *float64 `json:"visibility"`
	Clouds     struct {
		All int `json:"all"`
	} `json:"clouds"`
}

type forecastSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []conditionData `json:"weather"`
	Pop     float64         `json:"pop"`
}

type forecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []forecastSample `json:"list"`
}

type geocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
