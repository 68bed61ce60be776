// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vorlif/spreak"

	"github.com/nimbusbot/nimbus/internal/config"
	"github.com/nimbusbot/nimbus/internal/i18n"
	"github.com/nimbusbot/nimbus/internal/logger"
	"github.com/nimbusbot/nimbus/internal/owm"
	"github.com/nimbusbot/nimbus/internal/prefs"
	"github.com/nimbusbot/nimbus/internal/render"
)

// Gateway is the slice of the weather client the handler needs. It is an
// interface so the chat logic can be tested against a fake provider.
type Gateway interface {
	CurrentWeather(ctx context.Context, city, unit, lang string) (*owm.WeatherSnapshot, error)
	Forecast(ctx context.Context, city, unit, lang string) (*owm.ForecastSnapshot, error)
	Geocode(ctx context.Context, query string, limit int) ([]owm.CityMatch, error)
	CityExists(ctx context.Context, city, lang string) bool
}

// Button is one inline keyboard button. Data buttons round-trip through
// ParseCallback; URL buttons open an external link.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Reply is a transport-agnostic outgoing message. Edit asks the transport to
// rewrite the message the triggering keyboard was attached to.
type Reply struct {
	Text     string
	Keyboard [][]Button
	Edit     bool
}

// Handler turns parsed actions into replies. It owns no transport state and
// is safe for concurrent use.
type Handler struct {
	config  *config.Config
	store   *prefs.Store
	weather Gateway
	i18n    *i18n.Translator
	logger  *logger.Logger
}

func NewHandler(conf *config.Config, store *prefs.Store, weather Gateway, translator *i18n.Translator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		config:  conf,
		store:   store,
		weather: weather,
		i18n:    translator,
		logger:  log,
	}
}

// Handle dispatches one action for one user and returns the reply to send.
// It never returns an empty reply; failures degrade to a localized error
// message.
func (h *Handler) Handle(ctx context.Context, userID int64, act Action) Reply {
	user := h.store.GetOrCreate(userID)
	loc := h.i18n.Localizer(user.Language)
	r := render.New(loc, h.i18n.Humanizer(user.Language))

	switch act.Kind {
	case KindStart:
		return Reply{Text: h.startText(loc)}
	case KindHelp:
		return h.helpReply(loc, "overview", false)
	case KindHelpTopic:
		return h.helpReply(loc, act.Arg, true)
	case KindWeather:
		return h.weatherReply(ctx, user, r, loc, act.Arg)
	case KindForecast:
		return h.forecastReply(ctx, user, r, loc, act.Arg)
	case KindSearch:
		return h.searchReply(ctx, r, loc, act.Arg)
	case KindFavorites:
		return h.favoritesReply(user, loc)
	case KindAddFavorite:
		return h.addFavoriteReply(ctx, userID, user, loc, act.Arg)
	case KindRemoveFavorite:
		return h.removeFavoriteReply(userID, loc, act)
	case KindSettings:
		return h.settingsReply(user, loc, false)
	case KindAlerts:
		return h.alertsReply(ctx, user, r, loc, act.Arg)
	case KindCompare:
		return h.compareReply(ctx, user, r, loc, act.Arg)
	case KindMap:
		return h.mapReply(ctx, user, r, loc, act.Arg)
	case KindSetCity:
		return h.setCityReply(ctx, userID, user, loc, act.Arg)
	case KindToggleUnits:
		return h.settingsReply(h.store.ToggleUnit(userID), loc, true)
	case KindChooseLanguage:
		return h.languageReply(loc)
	case KindSetLanguage:
		return h.setLanguageReply(userID, act.Arg)
	case KindSetDefaultCity:
		return Reply{Text: loc.Get("Send /setcity followed by a city name to set your default city."), Edit: true}
	case KindManageFavorites:
		return h.manageFavoritesReply(user, loc)
	case KindBackToSettings:
		return h.settingsReply(user, loc, true)
	case KindResetSettings:
		reset := h.store.Reset(userID)
		return h.settingsReply(reset, h.i18n.Localizer(reset.Language), true)
	default:
		return Reply{Text: loc.Get("I don't know that command. Try /help for the list of commands.")}
	}
}

func (h *Handler) startText(loc *spreak.Localizer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 <b>%s</b>\n\n", loc.Get("Welcome to the weather bot!"))
	sb.WriteString(loc.Get("Send /weather followed by a city name to get the current conditions, or set a default city with /setcity and just send /weather."))
	sb.WriteString("\n\n")
	sb.WriteString(loc.Get("Use /help to see everything I can do."))
	return sb.String()
}

func (h *Handler) helpReply(loc *spreak.Localizer, topic string, fromKeyboard bool) Reply {
	var text string
	switch topic {
	case "commands":
		text = strings.Join([]string{
			"<b>" + loc.Get("Commands") + "</b>",
			"",
			"/weather &lt;city&gt; — " + loc.Get("current conditions"),
			"/forecast &lt;city&gt; — " + loc.Get("5-day forecast"),
			"/alerts &lt;city&gt; — " + loc.Get("active weather warnings"),
			"/compare &lt;city1, city2, ...&gt; — " + loc.Get("compare several cities"),
			"/search &lt;name&gt; — " + loc.Get("find a city by name"),
			"/map &lt;city&gt; — " + loc.Get("interactive weather maps"),
		}, "\n")
	case "favorites":
		text = strings.Join([]string{
			"<b>" + loc.Get("Favorites") + "</b>",
			"",
			"/favorites — " + loc.Get("list your saved cities"),
			"/addfav &lt;city&gt; — " + loc.Get("save a city"),
			"/removefav &lt;city&gt; — " + loc.Get("remove a saved city"),
			"",
			loc.Getf("You can save up to %d cities.", h.config.Limits.Favorites),
		}, "\n")
	case "settings":
		text = strings.Join([]string{
			"<b>" + loc.Get("Settings") + "</b>",
			"",
			"/settings — " + loc.Get("units, language and default city"),
			"/setcity &lt;city&gt; — " + loc.Get("set your default city"),
		}, "\n")
	default:
		text = "❓ <b>" + loc.Get("What do you want to know more about?") + "</b>"
	}

	keyboard := [][]Button{{
		{Label: loc.Get("Commands"), Data: cbHelpTopic + "commands"},
		{Label: loc.Get("Favorites"), Data: cbHelpTopic + "favorites"},
		{Label: loc.Get("Settings"), Data: cbHelpTopic + "settings"},
	}}
	return Reply{Text: text, Keyboard: keyboard, Edit: fromKeyboard}
}

// resolveCity picks the city to act on: the explicit argument wins, then the
// user's default city.
func (h *Handler) resolveCity(user prefs.Preferences, arg string) string {
	if arg != "" {
		return arg
	}
	return user.DefaultCity
}

func (h *Handler) weatherReply(ctx context.Context, user prefs.Preferences, r *render.Renderer,
	loc *spreak.Localizer, arg string,
) Reply {
	city := h.resolveCity(user, arg)
	if city == "" {
		return Reply{Text: loc.Get("Which city? Send /weather followed by a city name, or set a default with /setcity.")}
	}

	snap, err := h.weather.CurrentWeather(ctx, city, user.Unit, user.Language)
	if err != nil {
		return h.fetchErrorReply(loc, city, err)
	}

	reply := Reply{Text: r.Weather(snap, user.Unit)}
	if button, ok := h.favoriteSuggestion(user, loc, snap.City); ok {
		reply.Keyboard = [][]Button{{button}}
	}
	return reply
}

// favoriteSuggestion offers to save a city the user just looked up, as long
// as it is not already saved and the favorites list has room.
func (h *Handler) favoriteSuggestion(user prefs.Preferences, loc *spreak.Localizer, city string) (Button, bool) {
	if len(user.Favorites) >= h.config.Limits.Favorites {
		return Button{}, false
	}
	for _, fav := range user.Favorites {
		if strings.EqualFold(fav, city) {
			return Button{}, false
		}
	}
	return Button{
		Label: "⭐ " + loc.Getf("Add %s to favorites", city),
		Data:  cbAddFavorite + city,
	}, true
}

func (h *Handler) forecastReply(ctx context.Context, user prefs.Preferences, r *render.Renderer,
	loc *spreak.Localizer, arg string,
) Reply {
	city := h.resolveCity(user, arg)
	if city == "" {
		return Reply{Text: loc.Get("Which city? Send /forecast followed by a city name, or set a default with /setcity.")}
	}

	snap, err := h.weather.Forecast(ctx, city, user.Unit, user.Language)
	if err != nil {
		return h.fetchErrorReply(loc, city, err)
	}
	return Reply{Text: r.Forecast(snap, user.Unit)}
}

func (h *Handler) searchReply(ctx context.Context, r *render.Renderer, loc *spreak.Localizer,
	query string,
) Reply {
	if query == "" {
		return Reply{Text: loc.Get("What should I look for? Send /search followed by a city name.")}
	}

	matches, err := h.weather.Geocode(ctx, query, h.config.Limits.GeocodeResults)
	if err != nil {
		return h.fetchErrorReply(loc, query, err)
	}
	if len(matches) == 0 {
		return Reply{Text: loc.Getf("No cities found for %q.", query)}
	}
	if len(matches) > h.config.Limits.SearchResults {
		matches = matches[:h.config.Limits.SearchResults]
	}

	keyboard := make([][]Button, 0, len(matches))
	for _, match := range matches {
		keyboard = append(keyboard, []Button{{
			Label: render.FullName(match),
			Data:  cbWeather + match.Name,
		}})
	}
	return Reply{Text: r.SearchResults(query, matches), Keyboard: keyboard}
}

func (h *Handler) favoritesReply(user prefs.Preferences, loc *spreak.Localizer) Reply {
	if len(user.Favorites) == 0 {
		return Reply{Text: loc.Get("You have no favorite cities yet. Save one with /addfav followed by a city name.")}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⭐ <b>%s</b>\n\n", loc.Get("Your favorite cities:"))
	keyboard := make([][]Button, 0, len(user.Favorites))
	for i, city := range user.Favorites {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, city)
		keyboard = append(keyboard, []Button{{Label: city, Data: cbWeather + city}})
	}
	sb.WriteString("\n")
	sb.WriteString(loc.Get("Tap a city to get its current weather."))
	return Reply{Text: sb.String(), Keyboard: keyboard}
}

func (h *Handler) addFavoriteReply(ctx context.Context, userID int64, user prefs.Preferences,
	loc *spreak.Localizer, city string,
) Reply {
	if city == "" {
		return Reply{Text: loc.Get("Which city should I save? Send /addfav followed by a city name.")}
	}
	if !h.weather.CityExists(ctx, city, user.Language) {
		return Reply{Text: loc.Getf("I couldn't find %q, so I didn't save it. Try /search to find the right name.", city)}
	}

	updated, err := h.store.AddFavorite(userID, city)
	switch {
	case errors.Is(err, prefs.ErrDuplicateFavorite):
		return Reply{Text: loc.Getf("%s is already in your favorites.", city)}
	case errors.Is(err, prefs.ErrFavoritesFull):
		return Reply{Text: loc.Getf("Your favorites list is full (%d cities). Remove one with /removefav first.", h.config.Limits.Favorites)}
	case err != nil:
		h.logger.Error("failed to add favorite", logger.Err(err))
		return Reply{Text: loc.Get("Something unexpected went wrong. Please try again.")}
	}
	return Reply{Text: loc.Getf("Saved %s to your favorites (%d/%d).", city, len(updated.Favorites), h.config.Limits.Favorites)}
}

func (h *Handler) removeFavoriteReply(userID int64, loc *spreak.Localizer, act Action) Reply {
	if act.Arg == "" {
		return Reply{Text: loc.Get("Which city should I remove? Send /removefav followed by a city name.")}
	}

	removed, err := h.store.RemoveFavorite(userID, act.Arg)
	if errors.Is(err, prefs.ErrNotFavorite) {
		return Reply{Text: loc.Getf("%s is not in your favorites.", act.Arg)}
	}
	if err != nil {
		h.logger.Error("failed to remove favorite", logger.Err(err))
		return Reply{Text: loc.Get("Something unexpected went wrong. Please try again.")}
	}

	if act.FromKeyboard {
		return h.manageFavoritesReply(h.store.GetOrCreate(userID), loc)
	}
	return Reply{Text: loc.Getf("Removed %s from your favorites.", removed)}
}

func (h *Handler) settingsReply(user prefs.Preferences, loc *spreak.Localizer, edit bool) Reply {
	defaultCity := user.DefaultCity
	if defaultCity == "" {
		defaultCity = loc.Get("not set")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚙️ <b>%s</b>\n\n", loc.Get("Your settings"))
	fmt.Fprintf(&sb, "🌡️ %s: %s\n", loc.Get("Units"), loc.Get(user.Unit))
	fmt.Fprintf(&sb, "🌐 %s: %s\n", loc.Get("Language"), i18n.Name(user.Language))
	fmt.Fprintf(&sb, "🏙️ %s: %s\n", loc.Get("Default city"), defaultCity)
	fmt.Fprintf(&sb, "⭐ %s: %d/%d", loc.Get("Favorites"), len(user.Favorites), h.config.Limits.Favorites)

	keyboard := [][]Button{
		{{Label: loc.Get("Toggle units"), Data: cbToggleUnits}},
		{{Label: loc.Get("Change language"), Data: cbChooseLanguage}},
		{{Label: loc.Get("Set default city"), Data: cbSetDefaultCity}},
		{{Label: loc.Get("Manage favorites"), Data: cbManageFavorites}},
		{{Label: loc.Get("Reset settings"), Data: cbResetSettings}},
	}
	return Reply{Text: sb.String(), Keyboard: keyboard, Edit: edit}
}

func (h *Handler) languageReply(loc *spreak.Localizer) Reply {
	keyboard := make([][]Button, 0, len(i18n.Languages)+1)
	for _, lang := range i18n.Languages {
		keyboard = append(keyboard, []Button{{Label: i18n.Name(lang), Data: cbSetLanguage + lang}})
	}
	keyboard = append(keyboard, []Button{{Label: "« " + loc.Get("Back"), Data: cbBackToSettings}})
	return Reply{Text: "🌐 <b>" + loc.Get("Choose your language:") + "</b>", Keyboard: keyboard, Edit: true}
}

func (h *Handler) setLanguageReply(userID int64, lang string) Reply {
	if !i18n.Supported(lang) {
		loc := h.i18n.Localizer(h.store.GetOrCreate(userID).Language)
		return Reply{Text: loc.Get("That language is not available."), Edit: true}
	}
	updated := h.store.SetLanguage(userID, lang)
	// Confirm in the language that was just chosen.
	return h.settingsReply(updated, h.i18n.Localizer(lang), true)
}

func (h *Handler) manageFavoritesReply(user prefs.Preferences, loc *spreak.Localizer) Reply {
	text := "⭐ <b>" + loc.Get("Tap a city to remove it from your favorites.") + "</b>"
	if len(user.Favorites) == 0 {
		text = loc.Get("You have no favorite cities yet. Save one with /addfav followed by a city name.")
	}

	keyboard := make([][]Button, 0, len(user.Favorites)+1)
	for _, city := range user.Favorites {
		keyboard = append(keyboard, []Button{{Label: "🗑️ " + city, Data: cbRemoveFavorite + city}})
	}
	keyboard = append(keyboard, []Button{{Label: "« " + loc.Get("Back"), Data: cbBackToSettings}})
	return Reply{Text: text, Keyboard: keyboard, Edit: true}
}

func (h *Handler) alertsReply(ctx context.Context, user prefs.Preferences, r *render.Renderer,
	loc *spreak.Localizer, arg string,
) Reply {
	city := h.resolveCity(user, arg)
	if city == "" {
		return Reply{Text: loc.Get("Which city? Send /alerts followed by a city name, or set a default with /setcity.")}
	}

	snap, err := h.weather.CurrentWeather(ctx, city, user.Unit, user.Language)
	if err != nil {
		return h.fetchErrorReply(loc, city, err)
	}
	return Reply{Text: r.AlertsMessage(snap, user.Unit)}
}

func (h *Handler) compareReply(ctx context.Context, user prefs.Preferences, r *render.Renderer,
	loc *spreak.Localizer, arg string,
) Reply {
	var cities []string
	for _, part := range strings.Split(arg, ",") {
		if city := strings.TrimSpace(part); city != "" {
			cities = append(cities, city)
		}
	}
	if len(cities) < 2 {
		return Reply{Text: loc.Get("Give me at least two cities, separated by commas: /compare London, Paris")}
	}
	if len(cities) > h.config.Limits.CompareCities {
		return Reply{Text: loc.Getf("I can compare up to %d cities at a time.", h.config.Limits.CompareCities)}
	}

	snaps := make([]*owm.WeatherSnapshot, 0, len(cities))
	for _, city := range cities {
		snap, err := h.weather.CurrentWeather(ctx, city, user.Unit, user.Language)
		if err != nil {
			return h.fetchErrorReply(loc, city, err)
		}
		snaps = append(snaps, snap)
	}
	return Reply{Text: r.Compare(snaps, user.Unit)}
}

func (h *Handler) mapReply(ctx context.Context, user prefs.Preferences, r *render.Renderer,
	loc *spreak.Localizer, arg string,
) Reply {
	city := h.resolveCity(user, arg)
	if city == "" {
		return Reply{Text: loc.Get("Which city? Send /map followed by a city name, or set a default with /setcity.")}
	}

	matches, err := h.weather.Geocode(ctx, city, 1)
	if err != nil {
		return h.fetchErrorReply(loc, city, err)
	}
	if len(matches) == 0 {
		return Reply{Text: loc.Getf("No cities found for %q.", city)}
	}
	return Reply{Text: r.MapLinks(matches[0])}
}

func (h *Handler) setCityReply(ctx context.Context, userID int64, user prefs.Preferences,
	loc *spreak.Localizer, city string,
) Reply {
	if city == "" {
		return Reply{Text: loc.Get("Which city? Send /setcity followed by a city name.")}
	}
	if !h.weather.CityExists(ctx, city, user.Language) {
		return Reply{Text: loc.Getf("I couldn't find %q. Try /search to find the right name.", city)}
	}
	h.store.SetDefaultCity(userID, city)
	return Reply{Text: loc.Getf("Your default city is now %s.", city)}
}

// fetchErrorReply maps provider failures to user-facing messages. Transient
// upstream trouble and unknown cities read differently on purpose.
func (h *Handler) fetchErrorReply(loc *spreak.Localizer, city string, err error) Reply {
	var transientErr *owm.TransientError
	switch {
	case errors.Is(err, owm.ErrCityNotFound):
		return Reply{Text: loc.Getf("I couldn't find %q. Check the spelling or try /search.", city)}
	case errors.As(err, &transientErr) && transientErr.Timeout:
		return Reply{Text: loc.Get("The weather service took too long to answer. Please try again.")}
	case errors.As(err, &transientErr):
		return Reply{Text: loc.Get("The weather service is unavailable right now. Please try again later.")}
	default:
		h.logger.Error("unexpected weather lookup failure", logger.Err(err))
		return Reply{Text: loc.Get("Something unexpected went wrong. Please try again.")}
	}
}
