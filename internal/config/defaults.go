package config

const (
	// SchemaVersion is the app config layout written by Save.
	SchemaVersion = 2

	defaultServerURL          = "http://localhost:8096"
	defaultTimeoutMS          = 30000
	defaultUIScale            = 1.0
	defaultRememberConnection = true
	defaultRealtimeLogs       = true
	defaultDetailedLogs       = false
	defaultItemDelayMS        = 200
	defaultMutationDelayMS    = 100
	defaultRequestsPerSecond  = 20
	defaultCircuitBreaker     = true
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultConfigFile         = "~/.config/jtools/config.toml"
	projectConfigFile         = "jtools.toml"

	// LegacyConnectionFile is the connection-only JSON file written by
	// early releases.
	LegacyConnectionFile = "jellyfin-config.json"
	// LegacyAppFile is the JSON app settings file written before the TOML layout.
	LegacyAppFile = "jtools-config.json"
)

// Default returns a Config populated with repository defaults. The connection
// server URL stays empty so JELLYFIN_URL can still apply at run time.
func Default() Config {
	return Config{
		SchemaVersion: SchemaVersion,
		Connection: Connection{
			TimeoutMS: defaultTimeoutMS,
		},
		UI: UI{
			Scale:              defaultUIScale,
			RememberConnection: defaultRememberConnection,
			EnableRealtimeLogs: defaultRealtimeLogs,
			ShowDetailedLogs:   defaultDetailedLogs,
		},
		Import: Import{
			ItemDelayMS:       defaultItemDelayMS,
			MutationDelayMS:   defaultMutationDelayMS,
			RequestsPerSecond: defaultRequestsPerSecond,
			CircuitBreaker:    defaultCircuitBreaker,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
