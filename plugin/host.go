package plugin

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/observability"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/validation"
)

// Capability errors returned when a route asks for something no plugin
// installed.
var (
	ErrNoTokens        = stderrors.New("plugin: token service not installed (register the jwt plugin)")
	ErrNoAuthenticator = stderrors.New("plugin: authenticate decorator not installed (register the auth plugin)")
	ErrNoValidator     = stderrors.New("plugin: validate decorator not installed (register the validation plugin)")
)

// Host is what plugins act on: the gin engine plus the capabilities earlier
// plugins installed for later plugins and routes.
type Host struct {
	Engine *gin.Engine
	Env    string
	Log    *logger.Logger

	mu           sync.RWMutex
	tokens       *jwt.Service
	authenticate gin.HandlerFunc
	validator    *validation.Engine
	metrics      *observability.Metrics
	shutdown     []func(context.Context) error
}

// NewHost creates a host for engine in the given environment.
func NewHost(engine *gin.Engine, env string, log *logger.Logger) *Host {
	if log == nil {
		log = logger.Nop()
	}
	return &Host{Engine: engine, Env: env, Log: log}
}

// SetTokens installs the token service.
func (h *Host) SetTokens(s *jwt.Service) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tokens = s
}

// Tokens returns the token service.
func (h *Host) Tokens() (*jwt.Service, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tokens == nil {
		return nil, ErrNoTokens
	}
	return h.tokens, nil
}

// SetAuthenticator installs the authenticate decorator.
func (h *Host) SetAuthenticator(fn gin.HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.authenticate = fn
}

// Authenticator returns the authenticate decorator.
func (h *Host) Authenticator() (gin.HandlerFunc, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.authenticate == nil {
		return nil, ErrNoAuthenticator
	}
	return h.authenticate, nil
}

// SetValidator installs the engine used by the validate decorator.
func (h *Host) SetValidator(e *validation.Engine) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.validator = e
}

// Validator returns a decorator factory for per-route schemas.
func (h *Host) Validator() (func(middleware.Schemas) gin.HandlerFunc, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.validator == nil {
		return nil, ErrNoValidator
	}
	e := h.validator
	return func(s middleware.Schemas) gin.HandlerFunc { return middleware.Validate(e, s) }, nil
}

// SetMetrics installs the Prometheus collectors.
func (h *Host) SetMetrics(m *observability.Metrics) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metrics = m
}

// Metrics returns the collectors, or nil when the metrics plugin did not run.
func (h *Host) Metrics() *observability.Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.metrics
}

// OnShutdown registers cleanup run by Shutdown in reverse order.
func (h *Host) OnShutdown(fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = append(h.shutdown, fn)
}

// Shutdown runs the registered cleanups, newest first.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	fns := h.shutdown
	h.shutdown = nil
	h.mu.Unlock()

	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
