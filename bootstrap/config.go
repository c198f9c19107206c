package bootstrap

import (
	"fmt"
	"strings"

	"github.com/kbukum/invoxia/auth"
	"github.com/kbukum/invoxia/config"
	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/observability"
	"github.com/kbukum/invoxia/plugin"
	"github.com/kbukum/invoxia/server"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/version"
)

// ServiceName names the binary, the config search paths and the logger.
const ServiceName = "invoxia"

// EnvAliases maps config keys to the plain environment variables deploy
// platforms set.
var EnvAliases = map[string][]string{
	"auth.jwt.secret":      {"JWT_SECRET"},
	"auth.jwt.expires_in":  {"JWT_EXPIRES_IN"},
	"database.dsn":         {"DATABASE_URL"},
	"server.port":          {"PORT"},
	"environment":          {"APP_ENV"},
	"webhook.verify_token": {"WHATSAPP_VERIFY_TOKEN"},
	"webhook.app_secret":   {"WHATSAPP_APP_SECRET"},
}

// Config is the whole application configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	APIPrefix string                      `yaml:"api_prefix" mapstructure:"api_prefix"`
	Server    server.Config               `yaml:"server" mapstructure:"server"`
	Database  database.Config             `yaml:"database" mapstructure:"database"`
	Auth      auth.Config                 `yaml:"auth" mapstructure:"auth"`
	Webhook   service.WebhookConfig       `yaml:"webhook" mapstructure:"webhook"`
	CORS      middleware.CORSConfig       `yaml:"cors" mapstructure:"cors"`
	Security  middleware.SecurityConfig   `yaml:"security" mapstructure:"security"`
	RateLimit middleware.RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Metrics   observability.MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Tracing   observability.TracerConfig  `yaml:"tracing" mapstructure:"tracing"`
	Plugins   plugin.Config               `yaml:"plugins" mapstructure:"plugins"`
}

// Load reads the configuration from path (or the standard search paths
// when empty), .env files and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	opts := []config.LoaderOption{config.WithEnvAliases(EnvAliases)}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	c.ServiceConfig.ApplyDefaults()
	if c.APIPrefix == "" {
		c.APIPrefix = "/api"
	}

	// A postgres URL without an explicit driver selects postgres.
	if c.Database.Driver == "" && isPostgresURL(c.Database.DSN) {
		c.Database.Driver = database.DriverPostgres
	}

	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Webhook.ApplyDefaults()
	c.CORS.ApplyDefaults()
	c.Security.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
	c.Metrics.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate checks every section. A missing JWT secret stops startup.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with / (got: %s)", c.APIPrefix)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Webhook.Prefix, "/") {
		return fmt.Errorf("webhook.prefix must start with / (got: %s)", c.Webhook.Prefix)
	}
	if c.Tracing.Enabled {
		if err := c.Tracing.Validate(); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}
	return nil
}

func isPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
