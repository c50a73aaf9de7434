package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"jtools/internal/config"
	"jtools/internal/services"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("JELLYFIN_URL", "")
	t.Setenv("JELLYFIN_API_KEY", "")
	t.Setenv("JELLYFIN_USER_ID", "")
	return home
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(home, ".config", "jtools", "config.toml")
	if resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if cfg.Connection.ServerURL != "" {
		t.Fatalf("stored server url should stay empty, got %q", cfg.Connection.ServerURL)
	}
	if got := cfg.Connection.Effective().ServerURL; got != "http://localhost:8096" {
		t.Fatalf("unexpected default server url: %q", got)
	}
	if cfg.Connection.TimeoutMS != 30000 {
		t.Fatalf("unexpected default timeout: %d", cfg.Connection.TimeoutMS)
	}
	if cfg.UI.Scale != 1.0 || !cfg.UI.RememberConnection || !cfg.UI.EnableRealtimeLogs || cfg.UI.ShowDetailedLogs {
		t.Fatalf("unexpected ui defaults: %+v", cfg.UI)
	}
	if cfg.Import.ItemDelayMS != 200 || cfg.Import.MutationDelayMS != 100 {
		t.Fatalf("unexpected import defaults: %+v", cfg.Import)
	}
	if cfg.DeviceID == "" {
		t.Fatal("expected generated device id")
	}
	if cfg.Connection.Configured() {
		t.Fatal("expected no credentials by default")
	}
}

func TestEffectiveConnectionUsesEnvFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("JELLYFIN_URL", "https://media.example.com/")
	t.Setenv("JELLYFIN_API_KEY", "env-token")
	t.Setenv("JELLYFIN_USER_ID", "env-user")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Connection.ServerURL != "" || cfg.Connection.APIToken != "" || cfg.Connection.UserID != "" {
		t.Fatalf("environment leaked into stored connection: %+v", cfg.Connection)
	}
	conn := cfg.Connection.Effective()
	if conn.ServerURL != "https://media.example.com" {
		t.Fatalf("expected env url without trailing slash, got %q", conn.ServerURL)
	}
	if conn.APIToken != "env-token" || conn.UserID != "env-user" {
		t.Fatalf("unexpected env connection: %+v", conn)
	}

	stored := config.Connection{ServerURL: "http://file.local", APIToken: "file-token", UserID: "file-user", TimeoutMS: 1000}
	if got := stored.Effective(); got != stored {
		t.Fatalf("env must not override stored values: %+v", got)
	}
}

func TestLoadMigrationDoesNotPersistEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JELLYFIN_API_KEY", "env-secret-token")
	t.Setenv("JELLYFIN_USER_ID", "env-user")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	legacy := `{"serverUrl":"http://old.example:8096","apiToken":"","timeout":15000}`
	if err := os.WriteFile(filepath.Join(dir, config.LegacyConnectionFile), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Connection.APIToken != "" {
		t.Fatalf("stored token = %q, want empty", cfg.Connection.APIToken)
	}
	if got := cfg.Connection.Effective().APIToken; got != "env-secret-token" {
		t.Fatalf("effective token = %q", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migrated config: %v", err)
	}
	for _, secret := range []string{"env-secret-token", "env-user"} {
		if strings.Contains(string(data), secret) {
			t.Fatalf("migrated config contains environment value %q:\n%s", secret, data)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.Default()
	cfg.Connection = config.Connection{ServerURL: "http://jf.local:8096", APIToken: "abc123", UserID: "u1", TimeoutMS: 5000}
	cfg.UI.Scale = 1.5
	cfg.Logging.Level = "debug"
	if err := config.Save(path, &cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if loaded.Connection != cfg.Connection {
		t.Fatalf("connection mismatch: got %+v want %+v", loaded.Connection, cfg.Connection)
	}
	if loaded.UI.Scale != 1.5 || loaded.Logging.Level != "debug" {
		t.Fatalf("unexpected loaded values: %+v %+v", loaded.UI, loaded.Logging)
	}
	if loaded.DeviceID == "" || loaded.DeviceID != cfg.DeviceID {
		t.Fatalf("expected device id to persist, got %q want %q", loaded.DeviceID, cfg.DeviceID)
	}
}

func TestLoadRejectsInvalidUIScale(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTOML(t, path, map[string]any{"ui": map[string]any{"ui_scale": 4.0}})

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "ui.ui_scale") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeTOML(t, path, map[string]any{"schema_version": config.SchemaVersion + 1})

	if _, _, _, err := config.Load(path); err == nil || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for newer schema, got %v", err)
	}
}

func TestLoadMigratesLegacyConnectionFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	legacy := `{"serverUrl":"http://old.example:8096","apiToken":"legacy-token","userId":"u9","timeout":15000,"extra":true}`
	if err := os.WriteFile(filepath.Join(dir, config.LegacyConnectionFile), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected migrated config to count as existing")
	}
	if cfg.MigratedFrom != filepath.Join(dir, config.LegacyConnectionFile) {
		t.Fatalf("unexpected migration source %q", cfg.MigratedFrom)
	}
	want := config.Connection{ServerURL: "http://old.example:8096", APIToken: "legacy-token", UserID: "u9", TimeoutMS: 15000}
	if cfg.Connection != want {
		t.Fatalf("connection = %+v, want %+v", cfg.Connection, want)
	}
	if !cfg.UI.RememberConnection || cfg.UI.Scale != 1.0 {
		t.Fatalf("expected default ui settings after migration, got %+v", cfg.UI)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected migrated config to be saved: %v", err)
	}

	reloaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.MigratedFrom != "" {
		t.Fatal("second load should read the saved TOML file")
	}
	if reloaded.Connection != want {
		t.Fatalf("reloaded connection = %+v", reloaded.Connection)
	}
}

func TestLoadMigratesLegacyAppFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	legacy := `{
  "jellyfinConfig": {"serverUrl": "https://jf.example", "apiToken": "tok", "timeout": 30000},
  "uiScale": 1.25,
  "rememberConnection": false,
  "showDetailedLogs": true
}`
	if err := os.WriteFile(filepath.Join(dir, config.LegacyAppFile), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UI.Scale != 1.25 || cfg.UI.RememberConnection || !cfg.UI.ShowDetailedLogs || !cfg.UI.EnableRealtimeLogs {
		t.Fatalf("unexpected ui after migration: %+v", cfg.UI)
	}
	if cfg.Connection.ServerURL != "https://jf.example" || cfg.Connection.UserID != "" {
		t.Fatalf("unexpected connection after migration: %+v", cfg.Connection)
	}
}

func TestLoadRejectsMalformedLegacyFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.LegacyConnectionFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}
	_, _, _, err := config.Load(filepath.Join(dir, "config.toml"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestConnectionValidate(t *testing.T) {
	tests := []struct {
		name    string
		conn    config.Connection
		wantErr string
	}{
		{"valid http", config.Connection{ServerURL: "http://localhost:8096", APIToken: "t", TimeoutMS: 1}, ""},
		{"valid https", config.Connection{ServerURL: "https://jf.example", APIToken: "t", TimeoutMS: 1}, ""},
		{"missing token", config.Connection{ServerURL: "http://localhost", APIToken: "  ", TimeoutMS: 1}, "api_token"},
		{"missing url", config.Connection{APIToken: "t", TimeoutMS: 1}, "connection.server_url must be set"},
		{"bad scheme", config.Connection{ServerURL: "ftp://jf", APIToken: "t", TimeoutMS: 1}, "http:// or https://"},
		{"zero timeout", config.Connection{ServerURL: "http://jf", APIToken: "t"}, "connection.timeout_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestConnectionMergeAndMask(t *testing.T) {
	base := config.Connection{ServerURL: "http://a", APIToken: "0123456789abcdef", UserID: "u1", TimeoutMS: 1000}
	merged := base.Merge(config.Connection{ServerURL: " http://b ", UserID: ""})
	if merged.ServerURL != "http://b" || merged.UserID != "u1" || merged.APIToken != base.APIToken {
		t.Fatalf("unexpected merge: %+v", merged)
	}
	if got := base.MaskedToken(); got != "0123456789..." {
		t.Fatalf("MaskedToken() = %q", got)
	}
	if got := (config.Connection{APIToken: "short"}).MaskedToken(); strings.Contains(got, "short") {
		t.Fatalf("short token should not be shown in full: %q", got)
	}
	if got := (config.Connection{}).MaskedToken(); got != "(not set)" {
		t.Fatalf("MaskedToken() for empty = %q", got)
	}
}

func TestDeleteRemovesConfigAndLegacyFiles(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := config.Default()
	if err := config.Save(path, &cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	legacy := filepath.Join(dir, config.LegacyConnectionFile)
	if err := os.WriteFile(legacy, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	removed, err := config.Delete(path)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed files, got %v", removed)
	}
	for _, p := range []string{path, legacy} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed", p)
		}
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("JELLYFIN_API_KEY", "from-shell")
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("JELLYFIN_API_KEY=from-file\nJELLYFIN_USER_ID=file-user\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("JELLYFIN_USER_ID", "")
	os.Unsetenv("JELLYFIN_USER_ID")

	if err := config.LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("JELLYFIN_API_KEY"); got != "from-shell" {
		t.Fatalf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("JELLYFIN_USER_ID"); got != "file-user" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if err := config.LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func writeTOML(t *testing.T, path string, value any) {
	t.Helper()
	data, err := toml.Marshal(value)
	if err != nil {
		t.Fatalf("marshal toml: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
}
