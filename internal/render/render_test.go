// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/nimbusbot/nimbus/internal/i18n"
	"github.com/nimbusbot/nimbus/internal/owm"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	tr, err := i18n.New()
	if err != nil {
		t.Fatalf("failed to create translator: %s", err)
	}
	return New(tr.Localizer("en"), tr.Humanizer("en"))
}

func float(v float64) *float64 { return &v }

func testSnapshot() *owm.WeatherSnapshot {
	return &owm.WeatherSnapshot{
		City:          "Cairo",
		Country:       "EG",
		Temperature:   31.4,
		FeelsLike:     33.8,
		Humidity:      48,
		Pressure:      1012,
		WindSpeed:     4.2,
		WindDirection: float(90),
		CloudCover:    20,
		Visibility:    float(8000),
		Sunrise:       time.Date(2026, 5, 12, 5, 3, 0, 0, time.UTC),
		Sunset:        time.Date(2026, 5, 12, 18, 41, 0, 0, time.UTC),
		ConditionID:   800,
		Description:   "clear sky",
	}
}

func TestRendererWeather(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("renders the full current-conditions block", func(t *testing.T) {
		msg := r.Weather(testSnapshot(), "metric")
		for _, want := range []string{
			"☀️", "Weather in Cairo, EG",
			"Temperature: 31°C", "Feels like: 34°C",
			"Humidity: 48%", "Pressure: 1012 hPa",
			"Wind: 4.2 m/s E", "Cloudiness: 20%",
			"Visibility: 8.0 km", "Conditions: Clear Sky",
			"Sunrise: 05:03", "Sunset: 18:41",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("weather message misses %q:\n%s", want, msg)
			}
		}
	})
	t.Run("uses imperial units when requested", func(t *testing.T) {
		msg := r.Weather(testSnapshot(), "imperial")
		if !strings.Contains(msg, "31°F") {
			t.Errorf("expected fahrenheit temperature, got:\n%s", msg)
		}
		if !strings.Contains(msg, "4.2 mph") {
			t.Errorf("expected wind speed in mph, got:\n%s", msg)
		}
	})
	t.Run("omits visibility when the station does not report it", func(t *testing.T) {
		snap := testSnapshot()
		snap.Visibility = nil
		msg := r.Weather(snap, "metric")
		if strings.Contains(msg, "Visibility") {
			t.Errorf("expected no visibility line, got:\n%s", msg)
		}
	})
	t.Run("renders missing wind direction as N/A", func(t *testing.T) {
		snap := testSnapshot()
		snap.WindDirection = nil
		msg := r.Weather(snap, "metric")
		if !strings.Contains(msg, "4.2 m/s N/A") {
			t.Errorf("expected N/A wind direction, got:\n%s", msg)
		}
	})
}

func TestRendererForecast(t *testing.T) {
	r := newTestRenderer(t)
	snap := &owm.ForecastSnapshot{
		City:    "Oslo",
		Country: "NO",
		Days: []owm.ForecastDay{
			{
				Date: time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC), MinTemp: 4.2, MaxTemp: 11.7,
				Condition: "Rain", ConditionID: 501, Description: "moderate rain", MaxPop: 0.65,
			},
			{
				Date: time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC), MinTemp: 6.1, MaxTemp: 14.3,
				Condition: "Clear", ConditionID: 800, Description: "clear sky", MaxPop: 0.1,
			},
		},
	}
	msg := r.Forecast(snap, "metric")

	t.Run("shows the rain chance when it is above twenty percent", func(t *testing.T) {
		if !strings.Contains(msg, "🌧️ 65%") {
			t.Errorf("expected rain chance line, got:\n%s", msg)
		}
	})
	t.Run("hides a marginal rain chance", func(t *testing.T) {
		if strings.Contains(msg, "10%") {
			t.Errorf("expected no rain chance for the clear day, got:\n%s", msg)
		}
	})
	t.Run("renders weekday, date and temperature span", func(t *testing.T) {
		for _, want := range []string{"Tuesday (05/12)", "4°C - 12°C", "Moderate Rain", "Wednesday (05/13)"} {
			if !strings.Contains(msg, want) {
				t.Errorf("forecast message misses %q:\n%s", want, msg)
			}
		}
	})
}

func TestRendererCompare(t *testing.T) {
	r := newTestRenderer(t)
	cold := testSnapshot()
	cold.City, cold.Temperature, cold.Humidity, cold.ConditionID, cold.Description = "Oslo", 8.5, 81, 500, "light rain"
	hot := testSnapshot()
	msg := r.Compare([]*owm.WeatherSnapshot{cold, hot}, "metric")

	t.Run("ranks the hotter city first", func(t *testing.T) {
		if strings.Index(msg, "🔥 Cairo") > strings.Index(msg, "🧊 Oslo") {
			t.Errorf("expected Cairo ranked above Oslo:\n%s", msg)
		}
	})
	t.Run("names the extremes in the highlights", func(t *testing.T) {
		for _, want := range []string{"Hottest: Cairo (31.4°C)", "Coldest: Oslo (8.5°C)", "Most humid: Oslo (81%)"} {
			if !strings.Contains(msg, want) {
				t.Errorf("compare message misses %q:\n%s", want, msg)
			}
		}
	})
}

func TestRendererAlerts(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("quiet conditions produce the all-clear", func(t *testing.T) {
		msg := r.AlertsMessage(testSnapshot(), "metric")
		if !strings.Contains(msg, "No weather alerts for Cairo, EG") {
			t.Errorf("expected all-clear message, got:\n%s", msg)
		}
	})
	t.Run("extreme heat trips the metric threshold", func(t *testing.T) {
		snap := testSnapshot()
		snap.Temperature = 38
		alerts := r.Alerts(snap, "metric")
		if len(alerts) != 1 || !strings.Contains(alerts[0], "heat") {
			t.Errorf("expected a single heat alert, got %v", alerts)
		}
	})
	t.Run("the same reading is harmless in fahrenheit", func(t *testing.T) {
		snap := testSnapshot()
		snap.Temperature = 38
		if alerts := r.Alerts(snap, "imperial"); len(alerts) != 0 {
			t.Errorf("expected no alerts for 38°F, got %v", alerts)
		}
	})
	t.Run("storm and wind alerts stack", func(t *testing.T) {
		snap := testSnapshot()
		snap.ConditionID = 212
		snap.WindSpeed = 14
		snap.Humidity = 90
		alerts := r.Alerts(snap, "metric")
		if len(alerts) != 3 {
			t.Errorf("expected wind, humidity and thunderstorm alerts, got %v", alerts)
		}
	})
	t.Run("snow alert covers the snow condition group", func(t *testing.T) {
		snap := testSnapshot()
		snap.ConditionID = 601
		alerts := r.Alerts(snap, "metric")
		if len(alerts) != 1 || !strings.Contains(alerts[0], "Snow") {
			t.Errorf("expected a snow alert, got %v", alerts)
		}
	})
}

func TestRendererSearchResults(t *testing.T) {
	r := newTestRenderer(t)
	matches := []owm.CityMatch{
		{Name: "Springfield", Country: "US", State: "Illinois"},
		{Name: "Luxembourg", Country: "LU", State: "Luxembourg"},
		{Name: "Oslo", Country: "NO"},
	}
	msg := r.SearchResults("spring", matches)

	t.Run("state is shown when it adds information", func(t *testing.T) {
		if !strings.Contains(msg, "1. Springfield, Illinois, US") {
			t.Errorf("expected state in the first entry:\n%s", msg)
		}
	})
	t.Run("state repeating the city name is dropped", func(t *testing.T) {
		if !strings.Contains(msg, "2. Luxembourg, LU") {
			t.Errorf("expected no duplicated state:\n%s", msg)
		}
	})
	t.Run("missing state is dropped", func(t *testing.T) {
		if !strings.Contains(msg, "3. Oslo, NO") {
			t.Errorf("expected plain city and country:\n%s", msg)
		}
	})
}

func TestRendererDigest(t *testing.T) {
	r := newTestRenderer(t)
	msg := r.Digest(testSnapshot(), "metric", "Waxing Gibbous")
	for _, want := range []string{"Daily weather digest for Cairo, EG", "Clear Sky, 31°C", "Moon phase: Waxing Gibbous"} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest message misses %q:\n%s", want, msg)
		}
	}
}
