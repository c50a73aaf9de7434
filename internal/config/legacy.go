package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"jtools/internal/services"
)

// legacyConnection is the connection-only JSON layout (schema 0).
type legacyConnection struct {
	ServerURL string  `json:"serverUrl"`
	APIToken  string  `json:"apiToken"`
	UserID    *string `json:"userId"`
	Timeout   int64   `json:"timeout"`
}

// legacyApp is the JSON app settings layout (schema 1).
type legacyApp struct {
	JellyfinConfig     *legacyConnection `json:"jellyfinConfig"`
	UIScale            *float64          `json:"uiScale"`
	RememberConnection *bool             `json:"rememberConnection"`
	EnableRealTimeLogs *bool             `json:"enableRealTimeLogs"`
	ShowDetailedLogs   *bool             `json:"showDetailedLogs"`
}

func (l legacyConnection) upgrade() Connection {
	conn := Connection{
		ServerURL: l.ServerURL,
		APIToken:  l.APIToken,
		TimeoutMS: l.Timeout,
	}
	if l.UserID != nil {
		conn.UserID = *l.UserID
	}
	if conn.TimeoutMS <= 0 {
		conn.TimeoutMS = defaultTimeoutMS
	}
	return conn
}

func (l legacyApp) upgrade() Config {
	cfg := Default()
	if l.JellyfinConfig != nil {
		cfg.Connection = l.JellyfinConfig.upgrade()
	}
	if l.UIScale != nil {
		cfg.UI.Scale = *l.UIScale
	}
	if l.RememberConnection != nil {
		cfg.UI.RememberConnection = *l.RememberConnection
	}
	if l.EnableRealTimeLogs != nil {
		cfg.UI.EnableRealtimeLogs = *l.EnableRealTimeLogs
	}
	if l.ShowDetailedLogs != nil {
		cfg.UI.ShowDetailedLogs = *l.ShowDetailedLogs
	}
	return cfg
}

// legacySearchDirs lists where legacy JSON files may live: the working
// directory first, then the directory of the TOML config.
func legacySearchDirs(configPath string) []string {
	dirs := make([]string, 0, 2)
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if configPath != "" {
		dir := filepath.Dir(configPath)
		if len(dirs) == 0 || dirs[0] != dir {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// loadLegacy upgrades the newest legacy file found in dirs. The app settings
// file wins over the connection-only file in the same directory. It returns
// nil when no legacy file exists.
func loadLegacy(dirs []string) (*Config, string, error) {
	for _, dir := range dirs {
		appPath := filepath.Join(dir, LegacyAppFile)
		var app legacyApp
		found, err := readLegacyJSON(appPath, &app)
		if err != nil {
			return nil, "", err
		}
		if found {
			cfg := app.upgrade()
			return &cfg, appPath, nil
		}

		connPath := filepath.Join(dir, LegacyConnectionFile)
		var conn legacyConnection
		found, err = readLegacyJSON(connPath, &conn)
		if err != nil {
			return nil, "", err
		}
		if found {
			cfg := Default()
			cfg.Connection = conn.upgrade()
			return &cfg, connPath, nil
		}
	}
	return nil, "", nil
}

func readLegacyJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, services.Wrap(services.ErrConfiguration, "config", "read legacy", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, services.Wrap(services.ErrConfiguration, "config", "parse legacy", path, err)
	}
	return true, nil
}

// LoadLegacyConnection reads a connection-only JSON file.
func LoadLegacyConnection(path string) (Connection, error) {
	var conn legacyConnection
	found, err := readLegacyJSON(path, &conn)
	if err != nil {
		return Connection{}, err
	}
	if !found {
		return Connection{}, services.Wrap(services.ErrNotFound, "config", "read legacy", path, fs.ErrNotExist)
	}
	return conn.upgrade(), nil
}
