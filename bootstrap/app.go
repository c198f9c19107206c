package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/invoxia/api"
	"github.com/kbukum/invoxia/auth/password"
	"github.com/kbukum/invoxia/authz"
	"github.com/kbukum/invoxia/component"
	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/observability"
	"github.com/kbukum/invoxia/plugin"
	"github.com/kbukum/invoxia/server"
	"github.com/kbukum/invoxia/server/endpoint"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/store"
)

// App owns the process lifecycle: it starts the database, registers the
// plugins and routes, serves, and shuts everything down in reverse order.
type App struct {
	Name       string
	Version    string
	Cfg        *Config
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary
	Host       *plugin.Host
	Store      *store.Store

	db     *database.Component
	server *server.Server

	gracefulTimeout time.Duration
	started         time.Time

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New validates cfg and builds the application. Nothing is started yet.
func New(cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	log := o.logger
	if log == nil {
		log = logger.New(&cfg.Logging, cfg.Name)
	}

	srv, err := server.New(cfg.Server, cfg.Debug, log)
	if err != nil {
		return nil, err
	}
	srv.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(log),
		Logger:          log,
		Summary:         NewSummary(cfg.Name, cfg.Version, cfg.Environment),
		Host:            plugin.NewHost(srv.GinEngine(), cfg.Environment, log.WithComponent("plugins")),
		db:              database.NewComponent(cfg.Database, log).WithAutoMigrate(store.Models()...),
		server:          srv,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if err := app.Components.Register(app.db); err != nil {
		return nil, err
	}
	return app, nil
}

// Handler returns the HTTP handler, including the server-level middleware.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run starts the application and blocks until a shutdown signal or ctx
// cancellation, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Prepare(ctx); err != nil {
		_ = a.stop()
		return err
	}
	if err := a.serve(ctx); err != nil {
		_ = a.stop()
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// Prepare starts the database, registers plugins and routes. After it
// returns the handler is complete but nothing is listening.
func (a *App) Prepare(ctx context.Context) error {
	a.started = time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":        a.Name,
		"version":     a.Version,
		"environment": a.Cfg.Environment,
	})

	a.Logger.Info("Phase 1: Starting components")
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	a.Store = store.New(a.db.DB().GormDB)

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	a.Logger.Info("Phase 2: Registering plugins and routes")
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}
	return nil
}

func (a *App) configure(ctx context.Context) error {
	cfg := a.Cfg
	descriptors := cfg.Plugins.Apply(plugin.Builtins(plugin.BuiltinOptions{
		Service: observability.ServiceInfo{
			Name:        cfg.Name,
			Version:     cfg.Version,
			Environment: cfg.Environment,
		},
		JWT:           cfg.Auth.JWT,
		WebhookPrefix: cfg.Webhook.Prefix,
		CORS:          cfg.CORS,
		Security:      cfg.Security,
		RateLimit:     cfg.RateLimit,
		Metrics:       cfg.Metrics,
		Tracing:       cfg.Tracing,
	}))

	outcome := plugin.NewRegistrar(a.Host, a.Logger).Register(ctx, descriptors)
	a.Summary.SetPlugins(outcome)
	if err := outcome.Err(); err != nil {
		if cfg.Plugins.ShouldFail() {
			return err
		}
		a.Logger.Warn("Continuing with failed plugins", logger.Fields("errors", len(outcome.Errors)))
	}

	tokens, err := a.Host.Tokens()
	if err != nil {
		return err
	}
	svcs := api.Services{
		Auth:    service.NewAuthService(a.Store, password.NewHasher(cfg.Auth.Password), tokens, a.Logger),
		Tenant:  service.NewTenantService(a.Store, a.Logger),
		Contact: service.NewContactService(a.Store, a.Logger),
		Webhook: service.NewWebhookService(cfg.Webhook, a.Store, a.Logger),
	}
	return api.Register(a.Host, svcs, api.Options{
		APIPrefix:     cfg.APIPrefix,
		WebhookPrefix: cfg.Webhook.Prefix,
		Checker:       authz.DefaultPolicy(),
		Health:        endpoint.Health("Invoxia API is running", a.started, a.Components.HealthAll),
	})
}

// serve starts the HTTP server last so no request sees a half-built router.
func (a *App) serve(ctx context.Context) error {
	a.Logger.Info("Phase 3: Serving")
	if err := a.Components.Register(server.NewComponent(a.server)); err != nil {
		return err
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields("error", err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	elapsed := time.Since(a.started)
	a.Summary.SetStartupDuration(elapsed)
	a.Logger.Info("Application started", logger.DurationFields("startup", elapsed))
	a.Summary.Display(os.Stdout, a.Components)
	return nil
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops everything Prepare and Run started.
func (a *App) Shutdown() error {
	return a.stop()
}

func (a *App) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields("error", err.Error()))
		shutdownErr = err
	}

	// Plugin cleanups such as the tracer flush run once the server is down.
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields("error", err.Error()))
		shutdownErr = err
	}
	if err := a.Host.Shutdown(ctx); err != nil {
		a.Logger.Error("Plugin shutdown error", logger.Fields("error", err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
