// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package bot holds the chat logic: turning incoming commands and inline
// keyboard taps into actions, dispatching them against the preference store
// and the weather gateway, and building the replies.
package bot

import "strings"

// Kind enumerates every action the bot knows how to handle. Incoming
// commands and callback payloads are parsed into a Kind exactly once at the
// transport edge; everything downstream switches on the closed set.
type Kind int

const (
	KindUnknown Kind = iota
	KindStart
	KindHelp
	KindWeather
	KindForecast
	KindSearch
	KindFavorites
	KindAddFavorite
	KindRemoveFavorite
	KindSettings
	KindAlerts
	KindCompare
	KindMap
	KindSetCity

	// Inline keyboard actions.
	KindToggleUnits
	KindChooseLanguage
	KindSetLanguage
	KindSetDefaultCity
	KindManageFavorites
	KindBackToSettings
	KindResetSettings
	KindHelpTopic
)

// Action is one parsed user intent. Arg carries the free-text payload (a
// city name, a language code, a help topic) when the Kind takes one.
type Action struct {
	Kind Kind
	Arg  string

	// FromKeyboard marks actions that arrived as callback queries, so the
	// reply can edit the originating message instead of sending a new one.
	FromKeyboard bool
}

// Callback payload prefixes. The payload travels through Telegram and comes
// back verbatim, so the city or code rides piggyback after the prefix.
const (
	cbWeather        = "weather_"
	cbAddFavorite    = "addfav_"
	cbRemoveFavorite = "removefav_callback_"
	cbSetLanguage    = "set_lang_"
	cbHelpTopic      = "help_"

	cbToggleUnits     = "toggle_units"
	cbChooseLanguage  = "choose_language"
	cbSetDefaultCity  = "set_default_city"
	cbManageFavorites = "manage_favorites"
	cbBackToSettings  = "back_to_settings"
	cbResetSettings   = "reset_settings"
)

// ParseCommand maps a slash command and its argument string to an Action.
func ParseCommand(command, args string) Action {
	args = strings.TrimSpace(args)
	switch command {
	case "start":
		return Action{Kind: KindStart}
	case "help":
		return Action{Kind: KindHelp}
	case "weather":
		return Action{Kind: KindWeather, Arg: args}
	case "forecast":
		return Action{Kind: KindForecast, Arg: args}
	case "search":
		return Action{Kind: KindSearch, Arg: args}
	case "favorites":
		return Action{Kind: KindFavorites}
	case "addfav":
		return Action{Kind: KindAddFavorite, Arg: args}
	case "removefav":
		return Action{Kind: KindRemoveFavorite, Arg: args}
	case "settings":
		return Action{Kind: KindSettings}
	case "alerts":
		return Action{Kind: KindAlerts, Arg: args}
	case "compare":
		return Action{Kind: KindCompare, Arg: args}
	case "map":
		return Action{Kind: KindMap, Arg: args}
	case "setcity":
		return Action{Kind: KindSetCity, Arg: args}
	default:
		return Action{Kind: KindUnknown}
	}
}

// ParseCallback maps an inline keyboard payload to an Action. Unrecognized
// payloads come back as KindUnknown rather than being guessed at.
func ParseCallback(data string) Action {
	act := Action{Kind: KindUnknown, FromKeyboard: true}
	switch {
	case data == cbToggleUnits:
		act.Kind = KindToggleUnits
	case data == cbChooseLanguage:
		act.Kind = KindChooseLanguage
	case data == cbSetDefaultCity:
		act.Kind = KindSetDefaultCity
	case data == cbManageFavorites:
		act.Kind = KindManageFavorites
	case data == cbBackToSettings:
		act.Kind = KindBackToSettings
	case data == cbResetSettings:
		act.Kind = KindResetSettings
	case strings.HasPrefix(data, cbRemoveFavorite):
		act.Kind, act.Arg = KindRemoveFavorite, strings.TrimPrefix(data, cbRemoveFavorite)
	case strings.HasPrefix(data, cbSetLanguage):
		act.Kind, act.Arg = KindSetLanguage, strings.TrimPrefix(data, cbSetLanguage)
	case strings.HasPrefix(data, cbHelpTopic):
		act.Kind, act.Arg = KindHelpTopic, strings.TrimPrefix(data, cbHelpTopic)
	case strings.HasPrefix(data, cbAddFavorite):
		act.Kind, act.Arg = KindAddFavorite, strings.TrimPrefix(data, cbAddFavorite)
	case strings.HasPrefix(data, cbWeather):
		act.Kind, act.Arg = KindWeather, strings.TrimPrefix(data, cbWeather)
	}
	return act
}
