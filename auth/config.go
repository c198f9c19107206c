package auth

import (
	"fmt"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/auth/password"
)

// Config holds all authentication configuration.
type Config struct {
	JWT      jwt.Config      `mapstructure:"jwt"`
	Password password.Config `mapstructure:"password"`
}

// ApplyDefaults sets defaults on both sub-configurations.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks both sub-configurations.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	return nil
}

// Describe returns a human-readable one-liner for the startup summary.
// Example: "JWT(HS256) ttl=7d argon2id(m=65536,t=3,p=4)"
func (c *Config) Describe() string {
	return fmt.Sprintf("JWT(%s) ttl=%s argon2id(m=%d,t=%d,p=%d)",
		c.JWT.Method, c.JWT.ExpiresIn,
		c.Password.Argon2Memory, c.Password.Argon2Time, c.Password.Argon2Threads)
}
