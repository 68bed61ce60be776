// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package render formats normalized weather data into the HTML messages the
// bot sends. All user-facing text goes through the localizer.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
	"github.com/vorlif/spreak"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nimbusbot/nimbus/internal/owm"
)

// Renderer builds the reply messages for one language. Construct one per
// request via New; it is cheap and carries no mutable state.
type Renderer struct {
	loc   *spreak.Localizer
	hum   *humanize.Humanizer
	title cases.Caser
}

func New(loc *spreak.Localizer, hum *humanize.Humanizer) *Renderer {
	return &Renderer{
		loc:   loc,
		hum:   hum,
		title: cases.Title(language.Und),
	}
}

// Localizer exposes the underlying localizer for plain message lookups.
func (r *Renderer) Localizer() *spreak.Localizer {
	return r.loc
}

// TempUnit returns the display symbol for a unit system.
func TempUnit(unit string) string {
	if unit == "imperial" {
		return "°F"
	}
	return "°C"
}

func (r *Renderer) speedUnit(unit string) string {
	if unit == "imperial" {
		return r.loc.Get("mph")
	}
	return r.loc.Get("m/s")
}

// Weather renders a current-conditions snapshot the way the bot has always
// presented it: temperature block, wind, clouds, optional visibility and the
// sun times.
func (r *Renderer) Weather(snap *owm.WeatherSnapshot, unit string) string {
	tempUnit := TempUnit(unit)
	icon := ConditionIcon(snap.ConditionID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>\n\n", icon, r.loc.Getf("Weather in %s, %s", snap.City, snap.Country))
	fmt.Fprintf(&sb, "🌡️ %s: %.0f%s\n", r.loc.Get("Temperature"), math.Round(snap.Temperature), tempUnit)
	fmt.Fprintf(&sb, "🤔 %s: %.0f%s\n", r.loc.Get("Feels like"), math.Round(snap.FeelsLike), tempUnit)
	fmt.Fprintf(&sb, "💧 %s: %d%%\n", r.loc.Get("Humidity"), snap.Humidity)
	fmt.Fprintf(&sb, "📊 %s: %d hPa\n", r.loc.Get("Pressure"), snap.Pressure)
	fmt.Fprintf(&sb, "💨 %s: %.1f %s %s\n", r.loc.Get("Wind"), snap.WindSpeed, r.speedUnit(unit),
		WindDirection(snap.WindDirection))
	fmt.Fprintf(&sb, "☁️ %s: %d%%\n", r.loc.Get("Cloudiness"), snap.CloudCover)
	if snap.Visibility != nil {
		fmt.Fprintf(&sb, "👁️ %s: %.1f km\n", r.loc.Get("Visibility"), *snap.Visibility/1000)
	}
	fmt.Fprintf(&sb, "📝 %s: %s\n\n", r.loc.Get("Conditions"), r.title.String(snap.Description))
	fmt.Fprintf(&sb, "🌅 %s: %s\n", r.loc.Get("Sunrise"), snap.Sunrise.Format("15:04"))
	fmt.Fprintf(&sb, "🌇 %s: %s", r.loc.Get("Sunset"), snap.Sunset.Format("15:04"))
	return sb.String()
}

// Forecast renders a bucketed 5-day forecast. Weekday names are localized
// through the humanizer; the precipitation probability only shows up when it
// exceeds 20 percent.
func (r *Renderer) Forecast(snap *owm.ForecastSnapshot, unit string) string {
	tempUnit := TempUnit(unit)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s</b>\n\n", r.loc.Getf("5-day forecast for %s, %s", snap.City, snap.Country))
	for _, day := range snap.Days {
		fmt.Fprintf(&sb, "%s <b>%s (%s)</b>\n", ConditionIcon(day.ConditionID),
			r.hum.FormatTime(day.Date, "l"), day.Date.Format("01/02"))
		fmt.Fprintf(&sb, "   🌡️ %.0f%s - %.0f%s", day.MinTemp, tempUnit, day.MaxTemp, tempUnit)
		if pop := day.MaxPop * 100; pop > 20 {
			fmt.Fprintf(&sb, " | 🌧️ %.0f%%", pop)
		}
		fmt.Fprintf(&sb, "\n   📝 %s\n\n", r.title.String(day.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Compare renders a side-by-side ranking of several cities: temperature and
// humidity sorted descending, the conditions list in request order and the
// extremes as highlights.
func (r *Renderer) Compare(snaps []*owm.WeatherSnapshot, unit string) string {
	tempUnit := TempUnit(unit)

	nameWidth := 0
	for _, snap := range snaps {
		if w := runewidth.StringWidth(snap.City); w > nameWidth {
			nameWidth = w
		}
	}
	pad := func(name string) string {
		return runewidth.FillRight(name+":", nameWidth+1)
	}

	byTemp := make([]*owm.WeatherSnapshot, len(snaps))
	copy(byTemp, snaps)
	sort.SliceStable(byTemp, func(i, j int) bool { return byTemp[i].Temperature > byTemp[j].Temperature })

	byHumidity := make([]*owm.WeatherSnapshot, len(snaps))
	copy(byHumidity, snaps)
	sort.SliceStable(byHumidity, func(i, j int) bool { return byHumidity[i].Humidity > byHumidity[j].Humidity })

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚖️ <b>%s</b>\n\n", r.loc.Get("Weather comparison"))

	fmt.Fprintf(&sb, "<b>%s</b>\n", r.loc.Getf("Temperature (%s)", tempUnit))
	for i, snap := range byTemp {
		icon := "🌡️"
		switch i {
		case 0:
			icon = "🔥"
		case len(byTemp) - 1:
			icon = "🧊"
		}
		fmt.Fprintf(&sb, "%d. %s %s %.1f%s\n", i+1, icon, pad(snap.City), snap.Temperature, tempUnit)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "<b>%s</b>\n", r.loc.Get("Humidity"))
	for i, snap := range byHumidity {
		icon := "💨"
		switch i {
		case 0:
			icon = "💧"
		case len(byHumidity) - 1:
			icon = "🏜️"
		}
		fmt.Fprintf(&sb, "%d. %s %s %d%%\n", i+1, icon, pad(snap.City), snap.Humidity)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "<b>%s</b>\n", r.loc.Get("Conditions"))
	for _, snap := range snaps {
		fmt.Fprintf(&sb, "%s %s %s\n", ConditionIcon(snap.ConditionID), pad(snap.City),
			r.title.String(snap.Description))
	}
	sb.WriteString("\n")

	hottest, coldest, mostHumid := byTemp[0], byTemp[len(byTemp)-1], byHumidity[0]
	fmt.Fprintf(&sb, "<b>%s</b>\n", r.loc.Get("Highlights"))
	fmt.Fprintf(&sb, "🔥 %s: %s (%.1f%s)\n", r.loc.Get("Hottest"), hottest.City, hottest.Temperature, tempUnit)
	fmt.Fprintf(&sb, "🧊 %s: %s (%.1f%s)\n", r.loc.Get("Coldest"), coldest.City, coldest.Temperature, tempUnit)
	fmt.Fprintf(&sb, "💧 %s: %s (%d%%)", r.loc.Get("Most humid"), mostHumid.City, mostHumid.Humidity)
	return sb.String()
}

// Alerts derives the active warnings from a snapshot. The temperature and
// wind thresholds depend on the unit system the snapshot was fetched with.
func (r *Renderer) Alerts(snap *owm.WeatherSnapshot, unit string) []string {
	var alerts []string

	heat, cold, wind := 35.0, -10.0, 10.0
	if unit == "imperial" {
		heat, cold, wind = 95.0, 14.0, 22.0
	}
	switch {
	case snap.Temperature > heat:
		alerts = append(alerts, r.loc.Get("Extreme heat warning! Stay hydrated and avoid direct sun."))
	case snap.Temperature < cold:
		alerts = append(alerts, r.loc.Get("Extreme cold warning! Dress warmly and limit time outside."))
	}
	if snap.WindSpeed > wind {
		alerts = append(alerts, r.loc.Get("High wind alert! Secure loose objects."))
	}
	if snap.Humidity > 85 {
		alerts = append(alerts, r.loc.Get("High humidity alert! It may feel hotter than it is."))
	}
	switch {
	case snap.ConditionID < 300:
		alerts = append(alerts, r.loc.Get("Thunderstorm alert! Seek shelter indoors."))
	case snap.ConditionID >= 500 && snap.ConditionID < 600:
		alerts = append(alerts, r.loc.Get("Heavy rain alert! Expect reduced visibility."))
	case snap.ConditionID >= 600 && snap.ConditionID < 700:
		alerts = append(alerts, r.loc.Get("Snow alert! Roads may be slippery."))
	}
	return alerts
}

// AlertsMessage renders the alert list for a city, or the all-clear.
func (r *Renderer) AlertsMessage(snap *owm.WeatherSnapshot, unit string) string {
	place := fmt.Sprintf("%s, %s", snap.City, snap.Country)
	alerts := r.Alerts(snap, unit)
	if len(alerts) == 0 {
		return fmt.Sprintf("✅ %s", r.loc.Getf("No weather alerts for %s. Enjoy your day!", place))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ <b>%s</b>\n\n", r.loc.Getf("Weather alerts for %s:", place))
	for _, alert := range alerts {
		fmt.Fprintf(&sb, "• %s\n", alert)
	}
	fmt.Fprintf(&sb, "\n🌡️ %s: %.1f%s", r.loc.Get("Temperature"), snap.Temperature, TempUnit(unit))
	return sb.String()
}

// FullName renders a geocoding match as "City, State, Country", skipping the
// state when it is absent or repeats the city name.
func FullName(match owm.CityMatch) string {
	if match.State != "" && match.State != match.Name {
		return fmt.Sprintf("%s, %s, %s", match.Name, match.State, match.Country)
	}
	return fmt.Sprintf("%s, %s", match.Name, match.Country)
}

// SearchResults renders the numbered list of geocoding matches.
func (r *Renderer) SearchResults(query string, matches []owm.CityMatch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 <b>%s</b>\n\n", r.loc.Getf("Cities matching %q:", query))
	for i, match := range matches {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, FullName(match))
	}
	fmt.Fprintf(&sb, "\n%s", r.loc.Get("Tap a city to get its current weather."))
	return sb.String()
}

// MapLinks renders links to interactive weather maps centered on a resolved
// city.
func (r *Renderer) MapLinks(match owm.CityMatch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗺️ <b>%s</b>\n\n", r.loc.Getf("Weather maps for %s:", FullName(match)))
	fmt.Fprintf(&sb, "🌍 <a href=\"https://openweathermap.org/weathermap?zoom=10&lat=%.4f&lon=%.4f\">%s</a>\n",
		match.Latitude, match.Longitude, r.loc.Get("OpenWeatherMap"))
	fmt.Fprintf(&sb, "💨 <a href=\"https://www.windy.com/%.3f/%.3f\">%s</a>",
		match.Latitude, match.Longitude, r.loc.Get("Windy"))
	return sb.String()
}

// Digest renders the short daily summary that the scheduler sends for a
// user's default city.
func (r *Renderer) Digest(snap *owm.WeatherSnapshot, unit, moonPhase string) string {
	tempUnit := TempUnit(unit)

	var sb strings.Builder
	fmt.Fprintf(&sb, "☕ <b>%s</b>\n\n", r.loc.Getf("Daily weather digest for %s, %s:", snap.City, snap.Country))
	fmt.Fprintf(&sb, "%s %s, %.0f%s (%s %.0f%s)\n", ConditionIcon(snap.ConditionID),
		r.title.String(snap.Description), math.Round(snap.Temperature), tempUnit,
		r.loc.Get("feels like"), math.Round(snap.FeelsLike), tempUnit)
	fmt.Fprintf(&sb, "🌅 %s %s · 🌇 %s %s\n", r.loc.Get("Sunrise"), snap.Sunrise.Format("15:04"),
		r.loc.Get("Sunset"), snap.Sunset.Format("15:04"))
	fmt.Fprintf(&sb, "🌙 %s: %s", r.loc.Get("Moon phase"), r.loc.Get(moonPhase))
	return sb.String()
}
