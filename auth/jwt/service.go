// Package jwt issues and verifies the signed identity tokens carried in
// the Authorization header.
//
// Tokens are stateless: expiry is the only bound on their lifetime and
// nothing is stored server side.
//
//	svc, err := jwt.NewService(&cfg, log)
//	token, err := svc.Issue(jwt.Subject{UserID: u.ID, TenantID: u.TenantID, Role: "ADMIN"})
//	claims, err := svc.Verify(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
)

// InvalidTokenMessage is the only message callers ever see for a token
// that fails verification.
const InvalidTokenMessage = "Invalid or expired token"

// Claims is the token payload.
type Claims struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	gojwt.RegisteredClaims
}

// IssuedAtTime returns the iat claim, or the zero time.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns the exp claim, or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Subject is the identity a token is issued for.
type Subject struct {
	UserID   string
	TenantID string
	Email    string
	Role     string
}

// Service signs and verifies tokens with a process-wide secret.
type Service struct {
	cfg Config
	ttl time.Duration
	now func() time.Time
	log *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the token service. It fails when no secret is
// configured, which callers treat as a startup error.
func NewService(cfg *Config, log *logger.Logger, opts ...Option) (*Service, error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		cfg: c,
		ttl: c.TTL(),
		now: time.Now,
		log: log.WithComponent("jwt"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for sub with iat=now and exp=now+TTL.
func (s *Service) Issue(sub Subject) (string, error) {
	if sub.UserID == "" || sub.TenantID == "" {
		return "", errors.New("jwt: userId and tenantId are required")
	}
	now := s.now()
	claims := &Claims{
		UserID:   sub.UserID,
		TenantID: sub.TenantID,
		Email:    sub.Email,
		Role:     sub.Role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   sub.UserID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := gojwt.NewWithClaims(s.cfg.signingMethod(), claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claims. Every failure
// is an Unauthorized error with the same message; the cause is only logged.
func (s *Service) Verify(token string) (*Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		s.log.Warn("token verification failed", logger.Fields(logger.FieldError, err.Error()))
		return nil, apperrors.Unauthorized(InvalidTokenMessage).WithCause(err)
	}
	return claims, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("jwt: invalid token")
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, errors.New("jwt: token is missing identity claims")
	}
	return claims, nil
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	return opts
}
