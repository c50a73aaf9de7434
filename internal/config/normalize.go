package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.DeviceID = strings.TrimSpace(c.DeviceID)
	if c.DeviceID == "" {
		c.DeviceID = NewDeviceID()
	}
	if err := c.normalizeConnection(); err != nil {
		return err
	}
	c.normalizeUI()
	c.normalizeImport()
	return c.normalizeLogging()
}

func (c *Config) normalizeConnection() error {
	c.Connection = c.Connection.Normalized()
	if raw := strings.TrimSpace(os.Getenv("JELLYFIN_TIMEOUT_MS")); raw != "" && c.Connection.TimeoutMS <= 0 {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("JELLYFIN_TIMEOUT_MS: %w", err)
		}
		c.Connection.TimeoutMS = value
	}
	if c.Connection.TimeoutMS <= 0 {
		c.Connection.TimeoutMS = defaultTimeoutMS
	}
	return nil
}

// Normalized trims the connection fields and removes a trailing slash from
// the server URL.
func (c Connection) Normalized() Connection {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.APIToken = strings.TrimSpace(c.APIToken)
	c.UserID = strings.TrimSpace(c.UserID)
	return c
}

// Effective returns the connection a run should use: empty fields fall back
// to JELLYFIN_URL, JELLYFIN_API_KEY, and JELLYFIN_USER_ID, then to the
// default server URL and timeout. The result must not be saved; environment
// values never reach the config file.
func (c Connection) Effective() Connection {
	c = c.Normalized()
	if c.ServerURL == "" {
		c.ServerURL = strings.TrimRight(strings.TrimSpace(os.Getenv("JELLYFIN_URL")), "/")
	}
	if c.APIToken == "" {
		c.APIToken = strings.TrimSpace(os.Getenv("JELLYFIN_API_KEY"))
	}
	if c.UserID == "" {
		c.UserID = strings.TrimSpace(os.Getenv("JELLYFIN_USER_ID"))
	}
	return c.WithDefaults()
}

// WithDefaults fills an empty server URL and a non-positive timeout.
func (c Connection) WithDefaults() Connection {
	if c.ServerURL == "" {
		c.ServerURL = defaultServerURL
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = defaultTimeoutMS
	}
	return c
}

func (c *Config) normalizeUI() {
	if c.UI.Scale == 0 {
		c.UI.Scale = defaultUIScale
	}
}

func (c *Config) normalizeImport() {
	if c.Import.ItemDelayMS == 0 {
		c.Import.ItemDelayMS = defaultItemDelayMS
	}
	if c.Import.MutationDelayMS == 0 {
		c.Import.MutationDelayMS = defaultMutationDelayMS
	}
	if c.Import.RequestsPerSecond == 0 {
		c.Import.RequestsPerSecond = defaultRequestsPerSecond
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = expanded
	}
	return nil
}
