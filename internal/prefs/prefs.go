// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

// Package prefs owns the durable per-user settings of the bot.
package prefs

// Preferences holds the per-user settings. The JSON field names are the
// on-disk format and must stay stable.
type Preferences struct {
	Unit        string   `json:"unit"`
	Language    string   `json:"language"`
	Favorites   []string `json:"favorites"`
	DefaultCity string   `json:"default_city"`
}

// Clone returns a deep copy so callers never alias the store-owned record.
func (p *Preferences) Clone() Preferences {
	clone := *p
	clone.Favorites = make([]string, len(p.Favorites))
	copy(clone.Favorites, p.Favorites)
	return clone
}
