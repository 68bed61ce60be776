// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package i18n bundles the translation catalogs shipped with the bot. The
// message source language is English; every other language is loaded from the
// embedded locale directory and falls back to English for missing entries.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/vorlif/humanize"
	arTimes "github.com/vorlif/humanize/locale/ar"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"
)

//go:embed locale/*
var locales embed.FS

// Languages lists the language codes the bot offers in its settings menu.
var Languages = []string{"en", "ar"}

// Translator hands out per-language localizers and humanizers. It is safe for
// concurrent use.
type Translator struct {
	bundle     *spreak.Bundle
	humanizers *humanize.Collection
}

func New() (*Translator, error) {
	localeFS, err := fs.Sub(locales, "locale")
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}

	tags := make([]interface{}, 0, len(Languages))
	for _, lang := range Languages {
		tags = append(tags, language.Make(lang))
	}

	bundle, err := spreak.NewBundle(
		spreak.WithSourceLanguage(language.English),
		spreak.WithFallbackLanguage(language.English),
		spreak.WithDomainFs(spreak.NoDomain, localeFS),
		spreak.WithLanguage(tags...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create i18n bundle: %w", err)
	}

	return &Translator{
		bundle:     bundle,
		humanizers: humanize.MustNew(humanize.WithLocale(arTimes.New())),
	}, nil
}

// Localizer returns a localizer for the given language code. Unknown codes
// resolve to the English fallback.
func (t *Translator) Localizer(lang string) *spreak.Localizer {
	return spreak.NewLocalizer(t.bundle, language.Make(lang))
}

// Humanizer returns a date/time humanizer for the given language code.
func (t *Translator) Humanizer(lang string) *humanize.Humanizer {
	return t.humanizers.CreateHumanizer(language.Make(lang))
}

// Name returns the native display name for a supported language code.
func Name(lang string) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return lang
}

var languageNames = map[string]string{
	"en": "English",
	"ar": "العربية",
}

// Supported reports whether the bot ships a catalog for the given code.
func Supported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
