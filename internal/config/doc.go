// Package config loads, normalizes, validates, and persists jtools settings.
//
// The current layout is a TOML file (default ~/.config/jtools/config.toml)
// with connection, ui, import, and logging sections. When it is missing, Load
// upgrades the older JSON files (jtools-config.json, then the connection-only
// jellyfin-config.json) and saves the result in the current layout. At run
// time, Connection.Effective fills empty connection fields from JELLYFIN_URL,
// JELLYFIN_API_KEY, and JELLYFIN_USER_ID, which may come from a .env file via
// LoadEnvFile. Those values are never written back by Save.
//
// Always obtain settings through this package so commands receive trimmed
// values, defaults, and validation errors tagged as configuration failures.
package config
