// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package prefs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nimbusbot/nimbus/internal/logger"
)

var (
	// ErrDuplicateFavorite is returned when a city is already on the favorites list.
	ErrDuplicateFavorite = errors.New("city is already a favorite")
	// ErrFavoritesFull is returned when the favorites list reached its cap.
	ErrFavoritesFull = errors.New("favorites list is full")
	// ErrNotFavorite is returned when a city is not on the favorites list.
	ErrNotFavorite = errors.New("city is not a favorite")
)

// Store is a durable mapping from user id to Preferences. The whole table is
// rewritten on every mutation and the in-memory state stays authoritative even
// when a write fails. All read-modify-persist sequences run under the store
// mutex so concurrent commands from the same user cannot lose updates.
type Store struct {
	file         string
	maxFavorites int
	defaultUnit  string
	defaultLang  string
	log          *logger.Logger

	mu    sync.Mutex
	users map[int64]*Preferences
}

func NewStore(file string, maxFavorites int, defaultUnit, defaultLang string, log *logger.Logger) *Store {
	return &Store{
		file:         file,
		maxFavorites: maxFavorites,
		defaultUnit:  defaultUnit,
		defaultLang:  defaultLang,
		log:          log,
		users:        make(map[int64]*Preferences),
	}
}

// Load reads the preference table from disk. A missing or unreadable file is
// not an error: the bot starts with an empty table and logs the cause.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("failed to read preferences file", logger.Err(err))
		}
		return
	}

	table := make(map[string]*Preferences)
	if err := json.Unmarshal(data, &table); err != nil {
		s.log.Error("failed to parse preferences file", logger.Err(err))
		return
	}

	for key, prefs := range table {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.log.Warn("skipping preferences entry with invalid user id", "key", key)
			continue
		}
		if prefs == nil {
			prefs = &Preferences{}
		}
		s.normalize(prefs)
		s.users[id] = prefs
	}
	s.log.Info("loaded user preferences", "users", len(s.users))
}

// Save serializes the entire table to disk. Failures are logged, never
// surfaced: the in-memory state remains authoritative.
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
}

// GetOrCreate returns the preferences for the given user. First access creates
// a default record and persists it immediately, so every user the bot has ever
// seen is durably known.
func (s *Store) GetOrCreate(userID int64) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(userID).Clone()
}

// Reset overwrites the user's record with fresh defaults.
func (s *Store) Reset(userID int64) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.defaults()
	s.users[userID] = prefs
	s.persist()
	return prefs.Clone()
}

// AddFavorite appends a city to the user's favorites. Duplicates are detected
// case-insensitively and the configured cap is enforced here, not in the
// request layer.
func (s *Store) AddFavorite(userID int64, city string) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getOrCreate(userID)
	for _, fav := range prefs.Favorites {
		if strings.EqualFold(fav, city) {
			return prefs.Clone(), ErrDuplicateFavorite
		}
	}
	if len(prefs.Favorites) >= s.maxFavorites {
		return prefs.Clone(), ErrFavoritesFull
	}
	prefs.Favorites = append(prefs.Favorites, city)
	s.persist()
	return prefs.Clone(), nil
}

// RemoveFavorite removes a city from the user's favorites, matching
// case-insensitively. It returns the stored spelling of the removed city.
func (s *Store) RemoveFavorite(userID int64, city string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getOrCreate(userID)
	for i, fav := range prefs.Favorites {
		if strings.EqualFold(fav, city) {
			prefs.Favorites = append(prefs.Favorites[:i], prefs.Favorites[i+1:]...)
			s.persist()
			return fav, nil
		}
	}
	return "", ErrNotFavorite
}

// ToggleUnit switches the user between metric and imperial.
func (s *Store) ToggleUnit(userID int64) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getOrCreate(userID)
	if prefs.Unit == "metric" {
		prefs.Unit = "imperial"
	} else {
		prefs.Unit = "metric"
	}
	s.persist()
	return prefs.Clone()
}

// SetLanguage stores the user's language code. The code is validated against
// the localization table by the caller.
func (s *Store) SetLanguage(userID int64, lang string) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getOrCreate(userID)
	prefs.Language = lang
	s.persist()
	return prefs.Clone()
}

// SetDefaultCity stores the user's default city.
func (s *Store) SetDefaultCity(userID int64, city string) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.getOrCreate(userID)
	prefs.DefaultCity = city
	s.persist()
	return prefs.Clone()
}

// All returns a copy of the whole table, keyed by user id.
func (s *Store) All() map[int64]Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := make(map[int64]Preferences, len(s.users))
	for id, prefs := range s.users {
		table[id] = prefs.Clone()
	}
	return table
}

func (s *Store) getOrCreate(userID int64) *Preferences {
	if prefs, ok := s.users[userID]; ok {
		return prefs
	}
	prefs := s.defaults()
	s.users[userID] = prefs
	s.persist()
	return prefs
}

func (s *Store) defaults() *Preferences {
	return &Preferences{
		Unit:      s.defaultUnit,
		Language:  s.defaultLang,
		Favorites: []string{},
	}
}

// normalize repairs known legacy shapes: a null favorites list becomes an
// empty one and missing unit or language fall back to the defaults.
func (s *Store) normalize(prefs *Preferences) {
	if prefs.Favorites == nil {
		prefs.Favorites = []string{}
	}
	if prefs.Unit == "" {
		prefs.Unit = s.defaultUnit
	}
	if prefs.Language == "" {
		prefs.Language = s.defaultLang
	}
}

// persist writes the whole table to disk. Callers must hold the store mutex.
func (s *Store) persist() {
	table := make(map[string]*Preferences, len(s.users))
	for id, prefs := range s.users {
		table[strconv.FormatInt(id, 10)] = prefs
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		s.log.Error("failed to serialize user preferences", logger.Err(err))
		return
	}
	if dir := filepath.Dir(s.file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Error("failed to create preferences directory", logger.Err(err))
			return
		}
	}
	if err := os.WriteFile(s.file, data, 0o600); err != nil {
		s.log.Error("failed to write preferences file", logger.Err(err))
	}
}
