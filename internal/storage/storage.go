// Package storage provides durable keyed stores for medications and
// reminder instances with range queries by date. Two providers are
// available: a single-file JSON store and a SQLite store.
package storage

import "errors"

// Settings holds user-tunable engine defaults.
type Settings struct {
	HorizonDays         int `json:"horizon_days"`
	AdherenceWindowDays int `json:"adherence_window_days"`
}

// DefaultSettings are applied on first initialization.
func DefaultSettings() Settings {
	return Settings{
		HorizonDays:         30,
		AdherenceWindowDays: 30,
	}
}

var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("storage not initialized, run 'medikeep init' first")
)
