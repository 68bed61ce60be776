// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package render

import "math"

// conditionRange maps a half-open range [From, To) of OpenWeatherMap condition
// codes to a display icon.
type conditionRange struct {
	From, To int
	Icon     string
}

// conditionIcons is ordered by ascending range; lookup is first-match. Codes
// that fall through every range render as clouds.
var conditionIcons = []conditionRange{
	{200, 300, "⛈️"}, // Thunderstorm
	{300, 400, "🌦️"}, // Drizzle
	{500, 600, "🌧️"}, // Rain
	{600, 700, "❄️"},  // Snow
	{700, 800, "🌫️"}, // Atmosphere (fog, mist, etc.)
	{800, 801, "☀️"},  // Clear sky
}

const cloudsIcon = "☁️"

// ConditionIcon returns the display icon for an OpenWeatherMap condition code.
func ConditionIcon(code int) string {
	for _, r := range conditionIcons {
		if code >= r.From && code < r.To {
			return r.Icon
		}
	}
	return cloudsIcon
}

// windSectors are the 16 compass sectors of 22.5° each, clockwise from north.
var windSectors = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// missingWindDirection is rendered when the provider omitted the wind degree
// value.
const missingWindDirection = "N/A"

// WindDirection buckets a wind degree value into one of the 16 compass
// sectors. A nil value renders as the neutral placeholder.
func WindDirection(degrees *float64) string {
	if degrees == nil {
		return missingWindDirection
	}
	return windSectors[int(math.Round(*degrees/22.5))%16]
}
