package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"jtools/internal/catalog"
	"jtools/internal/config"
	"jtools/internal/logging"
	"jtools/internal/services/jellyfin"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

// loadEnv reads a .env file from the working directory so the JELLYFIN_*
// fallbacks apply before the config is normalized.
func (c *commandContext) loadEnv() error {
	return config.LoadEnvFile(".env")
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// targetConfigPath returns the path config writes go to without loading the
// file.
func (c *commandContext) targetConfigPath() (string, error) {
	if flag := c.configFlagValue(); flag != "" {
		return config.ExpandPath(flag)
	}
	return config.DefaultConfigPath()
}

// loggerFor builds the process logger once. Console output goes to the
// command's stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.OptionsFromConfig(cfg)
		opts.Writer = cmd.ErrOrStderr()
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			opts.Level = *c.logLevelFlag
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			opts.Format = *c.logFormatFlag
		}
		c.logger, c.loggerErr = logging.New(opts)
	})
	return c.logger, c.loggerErr
}

// connectionFlags are the per-command connection overrides.
type connectionFlags struct {
	server  string
	token   string
	user    string
	timeout time.Duration
}

func (f *connectionFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.server, "server", "s", "", "Jellyfin server URL (overrides config and JELLYFIN_URL)")
	flags.StringVarP(&f.token, "token", "t", "", "Jellyfin API token (overrides config and JELLYFIN_API_KEY)")
	flags.StringVarP(&f.user, "user", "u", "", "User id (defaults to the configured user, then the first server user)")
	flags.DurationVar(&f.timeout, "timeout", 0, "Request timeout, e.g. 30s")
}

func (f connectionFlags) override() config.Connection {
	return config.Connection{
		ServerURL: f.server,
		APIToken:  f.token,
		UserID:    f.user,
		TimeoutMS: f.timeout.Milliseconds(),
	}
}

// connection merges flags over the configured connection, applies the
// environment fallbacks, and validates the result before any network call.
func (c *commandContext) connection(flags connectionFlags) (config.Connection, error) {
	stored, err := c.storedConnection(flags)
	if err != nil {
		return config.Connection{}, err
	}
	conn := stored.Effective()
	if err := conn.Validate(); err != nil {
		return config.Connection{}, err
	}
	return conn, nil
}

// storedConnection merges flags over the configured connection without the
// environment fallbacks. This is what gets written back to the config file.
func (c *commandContext) storedConnection(flags connectionFlags) (config.Connection, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return config.Connection{}, err
	}
	return cfg.Connection.Merge(flags.override()).Normalized(), nil
}

func newCatalog(cfg *config.Config, conn config.Connection, logger *slog.Logger) catalog.Catalog {
	client := jellyfin.New(jellyfin.Options{
		BaseURL:           conn.ServerURL,
		APIKey:            conn.APIToken,
		Timeout:           conn.Timeout(),
		DeviceID:          cfg.DeviceID,
		Version:           version,
		MutationDelay:     millis(cfg.Import.MutationDelayMS),
		RequestsPerSecond: cfg.Import.RequestsPerSecond,
		Logger:            logger,
	})
	if !cfg.Import.CircuitBreaker {
		return client
	}
	return jellyfin.NewBreakerClient(client, jellyfin.DefaultBreakerSettings(), logger)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func orNotSet(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return value
}

func describeThreshold(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
