package plugin

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/config"
	"github.com/kbukum/invoxia/observability"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/validation"
)

// Built-in plugin names, in registration order.
const (
	NameRequestID     = "requestId"
	NameRequestLogger = "requestLogger"
	NameMetrics       = "metrics"
	NameTracing       = "tracing"
	NameJWT           = "jwt"
	NameAuth          = "auth"
	NameErrorHandler  = "errorHandler"
	NameValidation    = "validation"
	NameCORS          = "cors"
	NameHelmet        = "helmet"
	NameRateLimit     = "rateLimit"
)

// BuiltinOptions carries the settings the built-in plugins need.
type BuiltinOptions struct {
	Service       observability.ServiceInfo
	JWT           jwt.Config
	WebhookPrefix string
	CORS          middleware.CORSConfig
	Security      middleware.SecurityConfig
	RateLimit     middleware.RateLimitConfig
	Metrics       observability.MetricsConfig
	Tracing       observability.TracerConfig
}

type tracingOptions struct {
	service observability.ServiceInfo
	config  observability.TracerConfig
}

// Builtins returns the built-in descriptors in dependency order.
func Builtins(opts BuiltinOptions) []Descriptor {
	return []Descriptor{
		{Name: NameRequestID, Activate: activateRequestID},
		{Name: NameRequestLogger, Activate: activateRequestLogger},
		{
			Name:         NameMetrics,
			Activate:     Typed(activateMetrics),
			Options:      opts.Metrics,
			Environments: []string{config.EnvDevelopment, config.EnvStaging, config.EnvProduction},
		},
		{
			Name:         NameTracing,
			Activate:     Typed(activateTracing),
			Options:      tracingOptions{service: opts.Service, config: opts.Tracing},
			Disabled:     !opts.Tracing.Enabled,
			Environments: []string{config.EnvStaging, config.EnvProduction},
		},
		{Name: NameJWT, Activate: Typed(activateJWT), Options: opts.JWT},
		{Name: NameAuth, Activate: activateAuth},
		{Name: NameErrorHandler, Activate: Typed(activateErrorHandler), Options: opts.WebhookPrefix},
		{Name: NameValidation, Activate: activateValidation},
		{Name: NameCORS, Activate: Typed(activateCORS), Options: opts.CORS},
		{Name: NameHelmet, Activate: Typed(activateHelmet), Options: opts.Security},
		{
			Name:         NameRateLimit,
			Activate:     Typed(activateRateLimit),
			Options:      opts.RateLimit,
			Environments: []string{config.EnvProduction},
		},
	}
}

func activateRequestID(_ context.Context, h *Host, _ any) error {
	h.Engine.Use(middleware.RequestID())
	return nil
}

func activateRequestLogger(_ context.Context, h *Host, _ any) error {
	h.Engine.Use(middleware.RequestLogger(h.Log.WithComponent("http")))
	return nil
}

func activateMetrics(_ context.Context, h *Host, cfg observability.MetricsConfig) error {
	cfg.ApplyDefaults()
	m := observability.NewMetrics(cfg)
	h.SetMetrics(m)
	h.Engine.Use(middleware.Metrics(m))
	return nil
}

func activateTracing(ctx context.Context, h *Host, opts tracingOptions) error {
	if err := opts.config.Validate(); err != nil {
		return err
	}
	tp, err := observability.InitTracer(ctx, opts.service, opts.config, h.Log)
	if err != nil {
		return err
	}
	h.OnShutdown(tp.Shutdown)
	h.Engine.Use(middleware.Tracing())
	return nil
}

func activateJWT(_ context.Context, h *Host, cfg jwt.Config) error {
	svc, err := jwt.NewService(&cfg, h.Log)
	if err != nil {
		return err
	}
	h.SetTokens(svc)
	return nil
}

func activateAuth(_ context.Context, h *Host, _ any) error {
	tokens, err := h.Tokens()
	if err != nil {
		return err
	}
	h.SetAuthenticator(middleware.Authenticate(tokens))
	return nil
}

func activateErrorHandler(_ context.Context, h *Host, webhookPrefix string) error {
	h.Engine.Use(middleware.ErrorHandler(middleware.ErrorHandlerConfig{WebhookPrefix: webhookPrefix}, h.Log.WithComponent("errors")))
	h.Engine.NoRoute(middleware.NotFoundHandler())
	return nil
}

func activateValidation(_ context.Context, h *Host, _ any) error {
	h.SetValidator(validation.Default())
	return nil
}

func activateCORS(_ context.Context, h *Host, cfg middleware.CORSConfig) error {
	if h.Env == config.EnvDevelopment {
		cfg.AllowedOrigins = []string{"*"}
	}
	cfg.AllowCredentials = true
	h.Engine.Use(middleware.CORS(cfg))
	return nil
}

func activateHelmet(_ context.Context, h *Host, cfg middleware.SecurityConfig) error {
	cfg.HSTS = h.Env == config.EnvProduction
	h.Engine.Use(middleware.SecurityHeaders(cfg))
	return nil
}

func activateRateLimit(_ context.Context, h *Host, cfg middleware.RateLimitConfig) error {
	if m := h.Metrics(); m != nil {
		cfg.OnLimit = func(*gin.Context) { m.RateLimited.Inc() }
	}
	h.Engine.Use(middleware.RateLimit(cfg))
	return nil
}
