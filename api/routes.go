package api

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/authz"
	"github.com/kbukum/invoxia/plugin"
	"github.com/kbukum/invoxia/server/endpoint"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/validation"
)

// DefaultAPIPrefix is the group every JSON route lives under.
const DefaultAPIPrefix = "/api"

// Services are the domain services the handlers call.
type Services struct {
	Auth    *service.AuthService
	Tenant  *service.TenantService
	Contact *service.ContactService
	Webhook *service.WebhookService
}

// Options tunes route registration.
type Options struct {
	APIPrefix     string
	WebhookPrefix string
	// Checker decides role permissions. Defaults to authz.DefaultPolicy.
	Checker authz.Checker
	// Health serves GET <APIPrefix>/health when set.
	Health gin.HandlerFunc
}

func (o *Options) applyDefaults() {
	if o.APIPrefix == "" {
		o.APIPrefix = DefaultAPIPrefix
	}
	if o.WebhookPrefix == "" {
		o.WebhookPrefix = service.DefaultWebhookPrefix
	}
	if o.Checker == nil {
		o.Checker = authz.DefaultPolicy()
	}
}

// Register mounts every route on the host engine. It must run after the
// plugin batch: the authenticate and validate decorators come from the host,
// and the metrics endpoint must sit behind every middleware the batch added.
func Register(host *plugin.Host, svcs Services, opts Options) error {
	if svcs.Auth == nil || svcs.Tenant == nil || svcs.Contact == nil || svcs.Webhook == nil {
		return stderrors.New("api: all services are required")
	}
	authenticate, err := host.Authenticator()
	if err != nil {
		return err
	}
	validate, err := host.Validator()
	if err != nil {
		return err
	}
	opts.applyDefaults()

	r := &router{validate: validate, authenticate: authenticate, checker: opts.Checker}
	api := host.Engine.Group(opts.APIPrefix)

	if opts.Health != nil {
		api.GET("/health", opts.Health)
	}
	api.GET("/version", endpoint.Version())
	if m := host.Metrics(); m != nil {
		host.Engine.GET(m.Path(), gin.WrapH(m.Handler()))
	}

	ah := &authHandler{svc: svcs.Auth}
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", r.public(body[SignupRequest](), ah.signup)...)
	authGroup.POST("/signin", r.public(body[SigninRequest](), ah.signin)...)
	authGroup.GET("/profile", r.protected(middleware.Schemas{}, "", ah.profile)...)
	authGroup.PATCH("/change-password", r.protected(body[ChangePasswordRequest](), "", ah.changePassword)...)
	authGroup.PATCH("/whatsapp", r.protected(body[LinkWhatsAppRequest](), "", ah.linkWhatsApp)...)

	th := &tenantHandler{svc: svcs.Tenant}
	tenant := api.Group("/tenant")
	tenant.GET("", r.protected(middleware.Schemas{}, authz.TenantRead, th.settings)...)
	tenant.GET("/afip-status", r.protected(middleware.Schemas{}, authz.TenantRead, th.afipStatus)...)
	tenant.POST("/credentials", r.protected(body[TenantCredentialsRequest](), authz.TenantWrite, th.credentials)...)
	tenant.PUT("/:id", r.protected(middleware.Schemas{
		Params: validation.For[IDParams](),
		Body:   validation.For[UpdateTenantRequest](),
	}, authz.TenantWrite, th.update)...)

	ch := &contactHandler{svc: svcs.Contact}
	contacts := api.Group("/contacts")
	contacts.POST("", r.protected(body[CreateContactRequest](), authz.ContactWrite, ch.create)...)
	contacts.GET("", r.protected(middleware.Schemas{Query: validation.For[ListContactsQuery]()}, authz.ContactRead, ch.list)...)
	contacts.GET("/:id", r.protected(params(), authz.ContactRead, ch.get)...)
	contacts.PUT("/:id", r.protected(middleware.Schemas{
		Params: validation.For[IDParams](),
		Body:   validation.For[UpdateContactRequest](),
	}, authz.ContactWrite, ch.update)...)
	contacts.DELETE("/:id", r.protected(params(), authz.ContactWrite, ch.remove)...)

	wh := &webhookHandler{svc: svcs.Webhook}
	host.Engine.GET(opts.WebhookPrefix, r.public(middleware.Schemas{Query: validation.For[WebhookVerifyQuery]()}, wh.verify)...)
	host.Engine.POST(opts.WebhookPrefix, wh.receive)

	host.Log.Info("Routes registered", map[string]interface{}{
		"api_prefix":     opts.APIPrefix,
		"webhook_prefix": opts.WebhookPrefix,
	})
	return nil
}

// router assembles per-route chains in the fixed order
// validate, authenticate, authorize, handler.
type router struct {
	validate     func(middleware.Schemas) gin.HandlerFunc
	authenticate gin.HandlerFunc
	checker      authz.Checker
}

func (r *router) public(schemas middleware.Schemas, h gin.HandlerFunc) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if !schemas.Empty() {
		chain = append(chain, r.validate(schemas))
	}
	return append(chain, h)
}

func (r *router) protected(schemas middleware.Schemas, permission string, h gin.HandlerFunc) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if !schemas.Empty() {
		chain = append(chain, r.validate(schemas))
	}
	chain = append(chain, r.authenticate)
	if permission != "" {
		chain = append(chain, middleware.RequirePermission(r.checker, permission))
	}
	return append(chain, h)
}

func body[T any]() middleware.Schemas {
	return middleware.Schemas{Body: validation.For[T]()}
}

func params() middleware.Schemas {
	return middleware.Schemas{Params: validation.For[IDParams]()}
}
