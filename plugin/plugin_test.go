package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/config"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/observability"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHost(env string) *Host {
	return NewHost(gin.New(), env, logger.Nop())
}

func noop(context.Context, *Host, any) error { return nil }

func TestRegister_ContinuesAfterError(t *testing.T) {
	r := NewRegistrar(newTestHost(config.EnvTest), logger.Nop())
	out := r.Register(context.Background(), []Descriptor{
		{Name: "first", Activate: noop},
		{Name: "second", Activate: func(context.Context, *Host, any) error { return errors.New("boom") }},
		{Name: "third", Activate: noop},
	})

	if !slices.Equal(out.Registered, []string{"first", "third"}) {
		t.Errorf("registered = %v", out.Registered)
	}
	if len(out.Errors) != 1 || out.Errors[0].Name != "second" || out.Errors[0].Reason != "boom" {
		t.Errorf("errors = %v", out.Errors)
	}
	if out.OK() || out.Err() == nil || !strings.Contains(out.Err().Error(), "second: boom") {
		t.Errorf("expected outcome error, got %v", out.Err())
	}
}

func TestRegister_SkipRules(t *testing.T) {
	tests := []struct {
		name       string
		desc       Descriptor
		wantReason string
	}{
		{
			name:       "disabled wins over matching environment",
			desc:       Descriptor{Name: "p", Activate: noop, Disabled: true, Environments: []string{config.EnvTest}},
			wantReason: ReasonDisabled,
		},
		{
			name:       "disabled with no environments",
			desc:       Descriptor{Name: "p", Activate: noop, Disabled: true},
			wantReason: ReasonDisabled,
		},
		{
			name:       "environment mismatch",
			desc:       Descriptor{Name: "p", Activate: noop, Environments: []string{config.EnvProduction}},
			wantReason: "Not enabled for test environment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activated := false
			tt.desc.Activate = func(context.Context, *Host, any) error { activated = true; return nil }

			out := NewRegistrar(newTestHost(config.EnvTest), nil).Register(context.Background(), []Descriptor{tt.desc})
			if activated {
				t.Error("skipped descriptor must not be activated")
			}
			if len(out.Skipped) != 1 || out.Skipped[0].Reason != tt.wantReason {
				t.Errorf("skipped = %v", out.Skipped)
			}
			if len(out.Registered) != 0 || len(out.Errors) != 0 {
				t.Errorf("unexpected outcome %+v", out)
			}
		})
	}
}

func TestRegister_Failures(t *testing.T) {
	out := NewRegistrar(newTestHost(config.EnvTest), nil).Register(context.Background(), []Descriptor{
		{Name: "panics", Activate: func(context.Context, *Host, any) error { panic("kaboom") }},
		{Name: "nil"},
		{Name: "typed", Activate: Typed(func(context.Context, *Host, string) error { return nil }), Options: 42},
		{Name: "ok", Activate: noop},
		{Name: "ok", Activate: noop},
	})

	if !slices.Equal(out.Registered, []string{"ok"}) {
		t.Errorf("registered = %v", out.Registered)
	}
	names := make([]string, len(out.Errors))
	for i, f := range out.Errors {
		names[i] = f.Name
	}
	if !slices.Equal(names, []string{"panics", "nil", "typed", "ok"}) {
		t.Errorf("errors = %v", out.Errors)
	}
	if !strings.Contains(out.Errors[0].Reason, "kaboom") {
		t.Errorf("panic reason = %q", out.Errors[0].Reason)
	}
	if out.Errors[3].Reason != "duplicate plugin name" {
		t.Errorf("duplicate reason = %q", out.Errors[3].Reason)
	}
}

func TestRegister_PassesOptions(t *testing.T) {
	var got string
	out := NewRegistrar(newTestHost(config.EnvTest), nil).Register(context.Background(), []Descriptor{{
		Name:     "typed",
		Activate: Typed(func(_ context.Context, _ *Host, opts string) error { got = opts; return nil }),
		Options:  "value",
	}})
	if !out.OK() || got != "value" {
		t.Errorf("options not passed: %q %+v", got, out)
	}
}

func TestConfig_Apply(t *testing.T) {
	enabled, disabled := true, false
	cfg := Config{Overrides: map[string]Override{
		"ratelimit": {Enabled: &enabled, Environments: []string{config.EnvTest}},
		"cors":      {Enabled: &disabled},
	}}
	base := []Descriptor{
		{Name: NameRateLimit, Environments: []string{config.EnvProduction}},
		{Name: NameCORS},
		{Name: NameHelmet},
	}

	got := cfg.Apply(base)
	if !got[0].AppliesTo(config.EnvTest) || got[0].Disabled {
		t.Errorf("rateLimit override not applied: %+v", got[0])
	}
	if !got[1].Disabled {
		t.Error("cors override not applied")
	}
	if got[2].Disabled {
		t.Error("helmet must be untouched")
	}
	if !slices.Equal(base[0].Environments, []string{config.EnvProduction}) {
		t.Error("Apply must not mutate its input")
	}
	if !cfg.ShouldFail() {
		t.Error("fail_on_error should default to true")
	}
}

func TestHost_Shutdown(t *testing.T) {
	h := newTestHost(config.EnvTest)
	var order []int
	h.OnShutdown(func(context.Context) error { order = append(order, 1); return nil })
	h.OnShutdown(func(context.Context) error { order = append(order, 2); return errors.New("late") })

	err := h.Shutdown(context.Background())
	if err == nil || err.Error() != "late" {
		t.Errorf("unexpected error %v", err)
	}
	if !slices.Equal(order, []int{2, 1}) {
		t.Errorf("order = %v", order)
	}
	if err := h.Shutdown(context.Background()); err != nil {
		t.Errorf("second shutdown should be a no-op, got %v", err)
	}
}

func TestHost_MissingCapabilities(t *testing.T) {
	h := newTestHost(config.EnvTest)
	if _, err := h.Tokens(); !errors.Is(err, ErrNoTokens) {
		t.Errorf("expected ErrNoTokens, got %v", err)
	}
	if _, err := h.Authenticator(); !errors.Is(err, ErrNoAuthenticator) {
		t.Errorf("expected ErrNoAuthenticator, got %v", err)
	}
	if _, err := h.Validator(); !errors.Is(err, ErrNoValidator) {
		t.Errorf("expected ErrNoValidator, got %v", err)
	}
}

func builtinOptions(secret string) BuiltinOptions {
	return BuiltinOptions{
		Service:       observability.ServiceInfo{Name: "invoxia-test"},
		JWT:           jwt.Config{Secret: secret},
		WebhookPrefix: "/wa/webhook",
	}
}

func TestBuiltins_Order(t *testing.T) {
	var names []string
	for _, d := range Builtins(builtinOptions("s")) {
		names = append(names, d.Name)
	}
	want := []string{
		NameRequestID, NameRequestLogger, NameMetrics, NameTracing, NameJWT, NameAuth,
		NameErrorHandler, NameValidation, NameCORS, NameHelmet, NameRateLimit,
	}
	if !slices.Equal(names, want) {
		t.Errorf("order = %v", names)
	}
}

func TestBuiltins_MissingSecret(t *testing.T) {
	h := newTestHost(config.EnvTest)
	out := NewRegistrar(h, nil).Register(context.Background(), Builtins(builtinOptions("")))

	if len(out.Errors) != 2 || out.Errors[0].Name != NameJWT || out.Errors[1].Name != NameAuth {
		t.Fatalf("errors = %v", out.Errors)
	}
	if !slices.Contains(out.Registered, NameErrorHandler) {
		t.Error("later plugins must still register")
	}
}

type loginBody struct {
	Email string `json:"email" validate:"required,email"`
}

func TestBuiltins_Pipeline(t *testing.T) {
	h := newTestHost(config.EnvTest)
	out := NewRegistrar(h, nil).Register(context.Background(), Builtins(builtinOptions("secret")))
	if !out.OK() {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}

	wantSkipped := []string{NameMetrics, NameTracing, NameRateLimit}
	var skipped []string
	for _, s := range out.Skipped {
		skipped = append(skipped, s.Name)
	}
	if !slices.Equal(skipped, wantSkipped) {
		t.Errorf("skipped = %v, want %v", skipped, wantSkipped)
	}

	authn, err := h.Authenticator()
	if err != nil {
		t.Fatal(err)
	}
	validate, err := h.Validator()
	if err != nil {
		t.Fatal(err)
	}
	h.Engine.POST("/api/me", validate(middleware.Schemas{Body: validation.For[loginBody]()}), authn,
		func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name     string
		body     string
		auth     bool
		wantCode int
		wantErr  string
	}{
		{"validation runs before authentication", `{}`, false, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing token", `{"email":"a@b.com"}`, false, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"authenticated", `{"email":"a@b.com"}`, true, http.StatusOK, ""},
	}
	tokens, _ := h.Tokens()
	token, _ := tokens.Issue(jwt.Subject{UserID: "u1", TenantID: "t1"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/me", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rr := httptest.NewRecorder()
			h.Engine.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, rr.Code, rr.Body.String())
			}
			if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers missing")
			}
			if rr.Header().Get(middleware.HeaderRequestID) == "" {
				t.Error("request id missing")
			}
			if tt.wantErr == "" {
				return
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			if body.Error.Code != tt.wantErr {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.wantErr)
			}
		})
	}

	t.Run("unknown route", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Engine.ServeHTTP(rr, httptest.NewRequest("GET", "/nope", http.NoBody))
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})
}
