// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package prefs

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/nimbusbot/nimbus/internal/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	file := filepath.Join(t.TempDir(), "user_preferences.json")
	return NewStore(file, 10, "metric", "en", logger.NewLogger(slog.LevelError, io.Discard))
}

func TestStore_GetOrCreate(t *testing.T) {
	t.Run("first access creates and persists a default record", func(t *testing.T) {
		store := testStore(t)
		prefs := store.GetOrCreate(1234)

		if prefs.Unit != "metric" {
			t.Errorf("expected default unit to be metric, got %s", prefs.Unit)
		}
		if prefs.Language != "en" {
			t.Errorf("expected default language to be en, got %s", prefs.Language)
		}
		if len(prefs.Favorites) != 0 {
			t.Errorf("expected favorites to be empty, got %v", prefs.Favorites)
		}
		if prefs.DefaultCity != "" {
			t.Errorf("expected default city to be unset, got %s", prefs.DefaultCity)
		}
		if _, err := os.Stat(store.file); err != nil {
			t.Errorf("expected preferences file to exist after first access: %s", err)
		}
	})
	t.Run("second access returns the same record without duplicating it", func(t *testing.T) {
		store := testStore(t)
		store.GetOrCreate(1234)
		if _, err := store.AddFavorite(1234, "London"); err != nil {
			t.Fatalf("failed to add favorite: %s", err)
		}

		prefs := store.GetOrCreate(1234)
		if !reflect.DeepEqual(prefs.Favorites, []string{"London"}) {
			t.Errorf("expected favorites to survive repeated access, got %v", prefs.Favorites)
		}
		if len(store.All()) != 1 {
			t.Errorf("expected exactly one record, got %d", len(store.All()))
		}
	})
	t.Run("returned record is a copy and does not alias store state", func(t *testing.T) {
		store := testStore(t)
		if _, err := store.AddFavorite(1, "London"); err != nil {
			t.Fatalf("failed to add favorite: %s", err)
		}
		prefs := store.GetOrCreate(1)
		prefs.Favorites[0] = "mutated"

		if store.GetOrCreate(1).Favorites[0] != "London" {
			t.Error("expected store state to be unaffected by caller mutation")
		}
	})
}

func TestStore_AddFavorite(t *testing.T) {
	t.Run("adding the same city in a different case is rejected", func(t *testing.T) {
		store := testStore(t)
		if _, err := store.AddFavorite(1, "London"); err != nil {
			t.Fatalf("failed to add favorite: %s", err)
		}
		_, err := store.AddFavorite(1, "LONDON")
		if !errors.Is(err, ErrDuplicateFavorite) {
			t.Errorf("expected %s, got %v", ErrDuplicateFavorite, err)
		}
		if got := len(store.GetOrCreate(1).Favorites); got != 1 {
			t.Errorf("expected favorites length to stay 1, got %d", got)
		}
	})
	t.Run("the cap is enforced in the store", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "prefs.json")
		store := NewStore(file, 2, "metric", "en", logger.NewLogger(slog.LevelError, io.Discard))
		for _, city := range []string{"London", "Paris"} {
			if _, err := store.AddFavorite(1, city); err != nil {
				t.Fatalf("failed to add favorite %s: %s", city, err)
			}
		}
		_, err := store.AddFavorite(1, "Tokyo")
		if !errors.Is(err, ErrFavoritesFull) {
			t.Errorf("expected %s, got %v", ErrFavoritesFull, err)
		}
	})
	t.Run("insertion order is preserved", func(t *testing.T) {
		store := testStore(t)
		cities := []string{"Tokyo", "London", "Paris"}
		for _, city := range cities {
			if _, err := store.AddFavorite(1, city); err != nil {
				t.Fatalf("failed to add favorite %s: %s", city, err)
			}
		}
		if got := store.GetOrCreate(1).Favorites; !reflect.DeepEqual(got, cities) {
			t.Errorf("expected favorites in insertion order %v, got %v", cities, got)
		}
	})
}

func TestStore_RemoveFavorite(t *testing.T) {
	t.Run("removal matches case-insensitively and reports the stored spelling", func(t *testing.T) {
		store := testStore(t)
		if _, err := store.AddFavorite(1, "New York"); err != nil {
			t.Fatalf("failed to add favorite: %s", err)
		}
		removed, err := store.RemoveFavorite(1, "new york")
		if err != nil {
			t.Fatalf("failed to remove favorite: %s", err)
		}
		if removed != "New York" {
			t.Errorf("expected removed city to be 'New York', got %s", removed)
		}
		if got := len(store.GetOrCreate(1).Favorites); got != 0 {
			t.Errorf("expected favorites to be empty, got %d entries", got)
		}
	})
	t.Run("removing an unknown city fails", func(t *testing.T) {
		store := testStore(t)
		if _, err := store.RemoveFavorite(1, "Atlantis"); !errors.Is(err, ErrNotFavorite) {
			t.Errorf("expected %s, got %v", ErrNotFavorite, err)
		}
	})
}

func TestStore_Reset(t *testing.T) {
	t.Run("reset yields defaults regardless of prior mutations", func(t *testing.T) {
		store := testStore(t)
		if _, err := store.AddFavorite(1, "London"); err != nil {
			t.Fatalf("failed to add favorite: %s", err)
		}
		store.SetLanguage(1, "ar")
		store.ToggleUnit(1)
		store.SetDefaultCity(1, "Cairo")

		store.Reset(1)
		prefs := store.GetOrCreate(1)
		if prefs.Unit != "metric" || prefs.Language != "en" || prefs.DefaultCity != "" ||
			len(prefs.Favorites) != 0 {
			t.Errorf("expected defaults after reset, got %+v", prefs)
		}
	})
}

func TestStore_ToggleUnit(t *testing.T) {
	t.Run("toggling flips between metric and imperial", func(t *testing.T) {
		store := testStore(t)
		if got := store.ToggleUnit(1); got.Unit != "imperial" {
			t.Errorf("expected unit to be imperial after first toggle, got %s", got.Unit)
		}
		if got := store.ToggleUnit(1); got.Unit != "metric" {
			t.Errorf("expected unit to be metric after second toggle, got %s", got.Unit)
		}
	})
}

func TestStore_LoadSave(t *testing.T) {
	t.Run("save and load round-trip an equivalent table", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "prefs.json")
		log := logger.NewLogger(slog.LevelError, io.Discard)

		store := NewStore(file, 10, "metric", "en", log)
		if _, err := store.AddFavorite(42, "London"); err != nil {
			t.Fatalf("failed to add favorite: %s", err)
		}
		store.SetLanguage(42, "ar")
		store.SetDefaultCity(42, "Cairo")
		store.GetOrCreate(7)

		fresh := NewStore(file, 10, "metric", "en", log)
		fresh.Load()
		if !reflect.DeepEqual(fresh.All(), store.All()) {
			t.Errorf("expected loaded table to equal saved table:\n got: %+v\nwant: %+v",
				fresh.All(), store.All())
		}
	})
	t.Run("null favorites are normalized to an empty list", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "prefs.json")
		raw := `{"99": {"unit": "imperial", "language": "ar", "favorites": null, "default_city": "Cairo"}}`
		if err := os.WriteFile(file, []byte(raw), 0o600); err != nil {
			t.Fatalf("failed to write preferences file: %s", err)
		}

		store := NewStore(file, 10, "metric", "en", logger.NewLogger(slog.LevelError, io.Discard))
		store.Load()
		prefs := store.GetOrCreate(99)
		if prefs.Favorites == nil || len(prefs.Favorites) != 0 {
			t.Errorf("expected favorites to be an empty list, got %v", prefs.Favorites)
		}
		if prefs.Unit != "imperial" || prefs.Language != "ar" || prefs.DefaultCity != "Cairo" {
			t.Errorf("expected remaining fields to survive the load, got %+v", prefs)
		}
	})
	t.Run("a missing preferences file yields an empty table", func(t *testing.T) {
		store := testStore(t)
		store.Load()
		if len(store.All()) != 0 {
			t.Errorf("expected empty table, got %d entries", len(store.All()))
		}
	})
	t.Run("a corrupt preferences file yields an empty table", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "prefs.json")
		if err := os.WriteFile(file, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("failed to write preferences file: %s", err)
		}
		store := NewStore(file, 10, "metric", "en", logger.NewLogger(slog.LevelError, io.Discard))
		store.Load()
		if len(store.All()) != 0 {
			t.Errorf("expected empty table, got %d entries", len(store.All()))
		}
	})
	t.Run("an unwritable file keeps the in-memory state authoritative", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore(dir, 10, "metric", "en", logger.NewLogger(slog.LevelError, io.Discard))
		if _, err := store.AddFavorite(1, "London"); err != nil {
			t.Fatalf("expected mutation to succeed despite write failure, got %s", err)
		}
		if got := store.GetOrCreate(1).Favorites; !reflect.DeepEqual(got, []string{"London"}) {
			t.Errorf("expected in-memory state to hold the favorite, got %v", got)
		}
	})
}

func TestStore_Concurrency(t *testing.T) {
	t.Run("concurrent mutations on one user do not lose updates", func(t *testing.T) {
		store := testStore(t)
		var wg sync.WaitGroup
		cities := []string{"London", "Paris", "Tokyo", "Cairo", "Oslo"}
		for _, city := range cities {
			wg.Add(1)
			go func(city string) {
				defer wg.Done()
				if _, err := store.AddFavorite(1, city); err != nil {
					t.Errorf("failed to add favorite %s: %s", city, err)
				}
			}(city)
		}
		wg.Wait()

		if got := len(store.GetOrCreate(1).Favorites); got != len(cities) {
			t.Errorf("expected %d favorites, got %d", len(cities), got)
		}
	})
}
