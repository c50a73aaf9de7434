package testsupport

import (
	"path/filepath"
	"testing"

	"jtools/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. HOME and
// the Jellyfin environment fallbacks are isolated so the host environment
// never leaks into a test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	isolateEnv(t, base)

	cfgVal := config.Default()
	cfgVal.DeviceID = "test-device"
	cfgVal.Connection = config.Connection{
		ServerURL: "http://jellyfin.test",
		APIToken:  "test-token",
		TimeoutMS: 5000,
	}
	cfgVal.Import.ItemDelayMS = 200
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithServer points the connection at url, typically an httptest server.
func WithServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Connection.ServerURL = url
	}
}

// WithUser sets the configured default user.
func WithUser(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Connection.UserID = id
	}
}

// WithoutCredentials clears the API token.
func WithoutCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Connection.APIToken = ""
	}
}

// WithLogDir enables file logging under the temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// SaveConfig writes cfg to a config.toml in a fresh temp directory and
// returns its path.
func SaveConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("config.Save: %v", err)
	}
	return path
}

func isolateEnv(t testing.TB, base string) {
	t.Helper()
	t.Setenv("HOME", base)
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	for _, key := range []string{"JELLYFIN_URL", "JELLYFIN_API_KEY", "JELLYFIN_USER_ID", "JELLYFIN_TIMEOUT_MS"} {
		t.Setenv(key, "")
	}
}
