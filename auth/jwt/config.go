package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines supported HMAC signing algorithms.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// DefaultExpiresIn is the token lifetime used when none is configured.
const DefaultExpiresIn = "7d"

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt: secret is required")

// Config configures the token service.
type Config struct {
	// Secret is the HMAC signing key. Mandatory, there is no default.
	Secret string `mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// ExpiresIn is the token lifetime: a Go duration ("12h") or a day
	// count ("7d"). Default: 7d.
	ExpiresIn string `mapstructure:"expires_in"`

	// Issuer is the "iss" claim (optional).
	Issuer string `mapstructure:"issuer"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.ExpiresIn == "" {
		c.ExpiresIn = DefaultExpiresIn
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	switch c.Method {
	case HS256, HS384, HS512:
	default:
		return fmt.Errorf("jwt: unsupported signing method: %s", c.Method)
	}
	if _, err := ParseTTL(c.ExpiresIn); err != nil {
		return err
	}
	return nil
}

// TTL returns the parsed token lifetime.
func (c *Config) TTL() time.Duration {
	ttl, err := ParseTTL(c.ExpiresIn)
	if err != nil {
		ttl, _ = ParseTTL(DefaultExpiresIn)
	}
	return ttl
}

// ParseTTL parses a lifetime such as "7d", "36h" or "90m".
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("jwt: invalid expires_in %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("jwt: invalid expires_in %q", s)
	}
	return d, nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}
