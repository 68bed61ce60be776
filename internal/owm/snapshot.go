// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package owm

import "time"

// maxForecastDays caps how many calendar days a forecast snapshot retains.
const maxForecastDays = 5

func newWeatherSnapshot(res *currentResponse) *WeatherSnapshot {
	snap := &WeatherSnapshot{
		City:          res.Name,
		Country:       res.Sys.Country,
		Temperature:   res.Main.Temp,
		FeelsLike:     res.Main.FeelsLike,
		Humidity:      res.Main.Humidity,
		Pressure:      res.Main.Pressure,
		WindSpeed:     res.Wind.Speed,
		WindDirection: res.Wind.Deg,
		CloudCover:    res.Clouds.All,
		Visibility:    res.Visibility,
		Sunrise:       time.Unix(res.Sys.Sunrise, 0),
		Sunset:        time.Unix(res.Sys.Sunset, 0),
	}
	if len(res.Weather) > 0 {
		snap.ConditionID = res.Weather[0].ID
		snap.Description = res.Weather[0].Description
	}
	return snap
}

// newForecastSnapshot buckets the provider's 3-hour samples into calendar
// days, derived from each sample's timestamp in local time. Within a day the
// dominant condition is the group with the most samples; ties resolve to the
// group seen first in provider order, and the representative condition code is
// drawn from the dominant group only.
func newForecastSnapshot(res *forecastResponse) *ForecastSnapshot {
	snap := &ForecastSnapshot{
		City:    res.City.Name,
		Country: res.City.Country,
	}

	type bucket struct {
		date    time.Time
		samples []forecastSample
	}
	var days []*bucket
	index := make(map[time.Time]*bucket)

	for _, sample := range res.List {
		ts := time.Unix(sample.Dt, 0)
		date := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		day, ok := index[date]
		if !ok {
			if len(days) == maxForecastDays {
				break
			}
			day = &bucket{date: date}
			index[date] = day
			days = append(days, day)
		}
		day.samples = append(day.samples, sample)
	}

	for _, day := range days {
		snap.Days = append(snap.Days, reduceDay(day.date, day.samples))
	}
	return snap
}

func reduceDay(date time.Time, samples []forecastSample) ForecastDay {
	day := ForecastDay{Date: date}

	counts := make(map[string]int)
	var groups []string
	for i, sample := range samples {
		if temp := sample.Main.Temp; i == 0 || temp < day.MinTemp {
			day.MinTemp = temp
		}
		if temp := sample.Main.Temp; i == 0 || temp > day.MaxTemp {
			day.MaxTemp = temp
		}
		if sample.Pop > day.MaxPop {
			day.MaxPop = sample.Pop
		}
		if len(sample.Weather) == 0 {
			continue
		}
		group := sample.Weather[0].Main
		if _, seen := counts[group]; !seen {
			groups = append(groups, group)
		}
		counts[group]++
	}

	// Scan groups in first-seen order so ties resolve to the earliest one.
	for _, group := range groups {
		if counts[group] > counts[day.Condition] {
			day.Condition = group
		}
	}
	for _, sample := range samples {
		if len(sample.Weather) > 0 && sample.Weather[0].Main == day.Condition {
			day.ConditionID = sample.Weather[0].ID
			day.Description = sample.Weather[0].Description
			break
		}
	}
	return day
}
