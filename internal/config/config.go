// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Layer optional YAML file and environment variables on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"os"
)

// Source names for the session row source.
const (
	SourceSheets = "sheets"
	SourceDemo   = "demo"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5500".
	Addr string `koanf:"addr"`

	// Source selects the session row source: "sheets" or "demo".
	Source string `koanf:"source"`

	// SheetID is the spreadsheet key holding the session worksheet.
	SheetID string `koanf:"sheet_id"`

	// Worksheet names the tab read for session rows.
	Worksheet string `koanf:"worksheet"`

	// CredentialsFile points at the service-account JSON used for the
	// Sheets API. Defaults to GOOGLE_APPLICATION_CREDENTIALS when set.
	CredentialsFile string `koanf:"credentials_file"`

	// DatabasePath is the sqlite file backing snapshots and movement flags.
	DatabasePath string `koanf:"database_path"`

	// CacheTTLSeconds bounds reuse of a fetched row set. 0 disables caching.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// DemoPlayers and DemoDays size the generated data set in demo mode.
	DemoPlayers int `koanf:"demo_players"`
	DemoDays    int `koanf:"demo_days"`
}

// New creates a Config populated with defaults.
func New() *Config {
	creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if creds == "" {
		creds = "credentials.json"
	}
	return &Config{
		LogLevel:        "info",
		Addr:            ":5500",
		Source:          SourceSheets,
		SheetID:         "",
		Worksheet:       "Sesiones",
		CredentialsFile: creds,
		DatabasePath:    "rank.db",
		CacheTTLSeconds: 15,
		DemoPlayers:     40,
		DemoDays:        21,
	}
}
