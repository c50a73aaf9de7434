package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"jtools/internal/fileutil"
	"jtools/internal/services"
)

// Connection holds the Jellyfin server credentials.
type Connection struct {
	ServerURL string `toml:"server_url" json:"serverUrl" validate:"required,startswith=http://|startswith=https://"`
	APIToken  string `toml:"api_token" json:"apiToken" validate:"required"`
	UserID    string `toml:"user_id,omitempty" json:"userId,omitempty"`
	TimeoutMS int64  `toml:"timeout_ms" json:"timeout" validate:"gt=0"`
}

// UI contains presentation preferences shared with interactive front ends.
type UI struct {
	Scale              float64 `toml:"ui_scale" validate:"gte=0.5,lte=3"`
	RememberConnection bool    `toml:"remember_connection"`
	EnableRealtimeLogs bool    `toml:"enable_realtime_logs"`
	ShowDetailedLogs   bool    `toml:"show_detailed_logs"`
}

// Import contains pacing and resilience settings for bulk favorite imports.
type Import struct {
	ItemDelayMS       int     `toml:"item_delay_ms" validate:"gte=200"`
	MutationDelayMS   int     `toml:"mutation_delay_ms" validate:"gte=100"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	CircuitBreaker    bool    `toml:"circuit_breaker"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Dir    string `toml:"dir,omitempty"`
}

// Config encapsulates all persisted settings for jtools.
//
// Configuration sections:
//   - Connection: server URL, API token, default user, request timeout
//   - UI: presentation preferences and whether connections are remembered
//   - Import: pacing between favorite toggles and circuit breaker settings
//   - Logging: log format, level, and optional rotating log directory
type Config struct {
	SchemaVersion int        `toml:"schema_version"`
	DeviceID      string     `toml:"device_id"`
	Connection    Connection `toml:"connection" validate:"-"`
	UI            UI         `toml:"ui"`
	Import        Import     `toml:"import"`
	Logging       Logging    `toml:"logging"`

	// MigratedFrom names the legacy file this config was upgraded from, if any.
	MigratedFrom string `toml:"-"`
}

// Timeout returns the request timeout as a duration.
func (c Connection) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Configured reports whether credentials have been provided.
func (c Connection) Configured() bool {
	return strings.TrimSpace(c.APIToken) != ""
}

// MaskedToken returns the token shortened for display.
func (c Connection) MaskedToken() string {
	token := strings.TrimSpace(c.APIToken)
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 10:
		return token[:len(token)/2] + "..."
	default:
		return token[:10] + "..."
	}
}

// Merge returns c with every non-empty field of override applied on top.
func (c Connection) Merge(override Connection) Connection {
	if v := strings.TrimSpace(override.ServerURL); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(override.APIToken); v != "" {
		c.APIToken = v
	}
	if v := strings.TrimSpace(override.UserID); v != "" {
		c.UserID = v
	}
	if override.TimeoutMS > 0 {
		c.TimeoutMS = override.TimeoutMS
	}
	return c
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigFile)
}

// Load locates, parses, and validates a configuration file. When no TOML
// config exists, legacy JSON files are upgraded into the current layout and
// saved at the resolved path. The returned bool reports whether a config
// (current or legacy) was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
		if cfg.SchemaVersion > SchemaVersion {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "load",
				fmt.Sprintf("%s uses schema_version %d; this build understands up to %d", resolvedPath, cfg.SchemaVersion, SchemaVersion), nil)
		}
	} else {
		migrated, source, err := loadLegacy(legacySearchDirs(resolvedPath))
		if err != nil {
			return nil, "", false, err
		}
		if migrated != nil {
			cfg = *migrated
			cfg.MigratedFrom = source
			exists = true
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	if cfg.MigratedFrom != "" {
		if err := Save(resolvedPath, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("save migrated config: %w", err)
		}
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "open", path, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "parse", path, err)
	}
	if cfg.SchemaVersion == 0 {
		cfg.SchemaVersion = SchemaVersion
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if fileutil.Exists(defaultPath) {
		return defaultPath, true, nil
	}
	if fileutil.Exists(projectPath) {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Save writes cfg as TOML to path, holding an advisory lock so concurrent
// invocations do not interleave writes. A device id is assigned if missing.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("save config: nil config")
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(expanded + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	cfg.SchemaVersion = SchemaVersion
	if strings.TrimSpace(cfg.DeviceID) == "" {
		cfg.DeviceID = NewDeviceID()
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// The file carries the API token.
	if err := fileutil.WriteFileAtomic(expanded, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Delete removes the config at path together with any legacy JSON files next
// to it or in the working directory. It returns the removed paths.
func Delete(path string) ([]string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	candidates := []string{expanded}
	for _, dir := range legacySearchDirs(expanded) {
		candidates = append(candidates,
			filepath.Join(dir, LegacyAppFile),
			filepath.Join(dir, LegacyConnectionFile),
		)
	}

	var removed []string
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		if err := os.Remove(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("remove %s: %w", candidate, err)
		}
		removed = append(removed, candidate)
	}
	_ = os.Remove(expanded + ".lock")
	return removed, nil
}

// NewDeviceID returns a fresh client device identifier.
func NewDeviceID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// StateDir returns the directory for runtime state such as lock files.
func StateDir() (string, error) {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "jtools"), nil
	}
	return expandPath("~/.local/state/jtools")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
