package middleware_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/authz"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/observability"
	"github.com/kbukum/invoxia/resilience"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const webhookPrefix = "/wa/webhook"

type errorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
		RequestID  string `json:"requestId"`
	} `json:"error"`
}

func newEngine(mws ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.Use(middleware.RequestID(), middleware.ErrorHandler(middleware.ErrorHandlerConfig{WebhookPrefix: webhookPrefix}, logger.Nop()))
	e.Use(mws...)
	e.NoRoute(middleware.NotFoundHandler())
	return e
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rr.Body.String())
	}
	return body
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	e := newEngine()
	var seen string
	e.GET("/", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rr := do(e, "GET", "/", "")
	id := rr.Header().Get(middleware.HeaderRequestID)
	if id == "" {
		t.Fatal("expected X-Request-Id in response headers")
	}
	if seen != id {
		t.Errorf("context request id = %q, want %q", seen, id)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := newEngine()
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := do(e, "GET", "/", "", "X-Request-Id", "existing-id")
	if got := rr.Header().Get(middleware.HeaderRequestID); got != "existing-id" {
		t.Errorf("expected existing-id, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// ErrorHandler
// ---------------------------------------------------------------------------

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		handler     gin.HandlerFunc
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "typed failure used as is",
			path:        "/api/x",
			handler:     func(c *gin.Context) { _ = c.Error(errors.Conflict("Email already registered")) },
			wantStatus:  http.StatusConflict,
			wantCode:    "CONFLICT",
			wantMessage: "Email already registered",
		},
		{
			name:        "untyped failure is scrubbed",
			path:        "/api/x",
			handler:     func(c *gin.Context) { _ = c.Error(fmt.Errorf("pq: connection refused")) },
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_SERVER_ERROR",
			wantMessage: errors.GenericInternalMessage,
		},
		{
			name: "schema violations become validation",
			path: "/api/x",
			handler: func(c *gin.Context) {
				_ = c.Error(validation.Errors{{Path: "email", Reason: "Required"}})
			},
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_ERROR",
			wantMessage: "Validation failed: email: Required",
		},
		{
			name:        "panic is recovered",
			path:        "/api/x",
			handler:     func(*gin.Context) { panic("boom") },
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_SERVER_ERROR",
			wantMessage: errors.GenericInternalMessage,
		},
		{
			name:        "not found default message",
			path:        "/api/x",
			handler:     func(c *gin.Context) { _ = c.Error(errors.NotFound("Contact", "42")) },
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "Contact with identifier '42' not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			e.GET(tt.path, tt.handler)

			rr := do(e, "GET", tt.path, "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			body := decodeError(t, rr)
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.wantCode)
			}
			if body.Error.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Error.Message, tt.wantMessage)
			}
			if body.Error.StatusCode != tt.wantStatus {
				t.Errorf("statusCode = %d, want %d", body.Error.StatusCode, tt.wantStatus)
			}
			if body.Error.RequestID == "" || body.Error.RequestID != rr.Header().Get(middleware.HeaderRequestID) {
				t.Errorf("requestId %q does not match header", body.Error.RequestID)
			}
		})
	}
}

func TestErrorHandler_WebhookAlways200(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		want    string
	}{
		{"typed", func(c *gin.Context) { _ = c.Error(errors.Authorization("Verification failed")) }, "Verification failed"},
		{"untyped", func(c *gin.Context) { _ = c.Error(fmt.Errorf("driver exploded")) }, errors.GenericInternalMessage},
		{"panic", func(*gin.Context) { panic("boom") }, errors.GenericInternalMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			e.POST(webhookPrefix, tt.handler)

			rr := do(e, "POST", webhookPrefix, `{}`)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["message"] != tt.want || len(body) != 1 {
				t.Errorf("unexpected body %v", body)
			}
		})
	}
}

func TestNotFoundHandler(t *testing.T) {
	e := newEngine()
	rr := do(e, "GET", "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if msg := decodeError(t, rr).Error.Message; msg != "Route with identifier 'GET /nope' not found" {
		t.Errorf("unexpected message %q", msg)
	}
}

// ---------------------------------------------------------------------------
// Authenticate / RequirePermission
// ---------------------------------------------------------------------------

func newTokens(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.NewService(&jwt.Config{Secret: "test-secret"}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens(t)
	token, err := tokens.Issue(jwt.Subject{UserID: "u1", TenantID: "t1", Role: "USER"})
	if err != nil {
		t.Fatal(err)
	}

	e := newEngine()
	e.GET("/me", middleware.Authenticate(tokens), func(c *gin.Context) {
		claims, _ := middleware.ClaimsFrom(c)
		c.String(http.StatusOK, claims.UserID+"/"+claims.TenantID)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer invalid-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rr *httptest.ResponseRecorder
			if tt.header == "" {
				rr = do(e, "GET", "/me", "")
			} else {
				rr = do(e, "GET", "/me", "", "Authorization", tt.header)
			}
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if tt.want == http.StatusOK {
				if rr.Body.String() != "u1/t1" {
					t.Errorf("unexpected body %q", rr.Body.String())
				}
				return
			}
			body := decodeError(t, rr)
			if body.Error.Code != "UNAUTHORIZED" || body.Error.Message != jwt.InvalidTokenMessage {
				t.Errorf("unexpected error %+v", body.Error)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tokens := newTokens(t)
	e := newEngine()
	e.PUT("/tenant", middleware.Authenticate(tokens), middleware.RequirePermission(authz.DefaultPolicy(), authz.TenantWrite),
		func(c *gin.Context) { c.Status(http.StatusNoContent) })

	user, _ := tokens.Issue(jwt.Subject{UserID: "u1", TenantID: "t1", Role: "USER"})
	admin, _ := tokens.Issue(jwt.Subject{UserID: "u2", TenantID: "t1", Role: "ADMIN"})

	rr := do(e, "PUT", "/tenant", "", "Authorization", "Bearer "+user)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Error.Code != "AUTHORIZATION_ERROR" || body.Error.Message != "Insufficient permissions" {
		t.Errorf("unexpected error %+v", body.Error)
	}

	rr = do(e, "PUT", "/tenant", "", "Authorization", "Bearer "+admin)
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for admin, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

type signinBody struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type itemParams struct {
	ID string `uri:"id" validate:"uuid"`
}

type pageQuery struct {
	Page  int `form:"page" validate:"gte=1"`
	Limit int `form:"limit" validate:"gte=1,lte=20"`
}

func (q *pageQuery) ApplyDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

type keyHeaders struct {
	APIKey string `header:"x-api-key" validate:"required"`
}

func TestValidate_Body(t *testing.T) {
	e := newEngine()
	e.POST("/signin",
		middleware.Validate(validation.Default(), middleware.Schemas{Body: validation.For[signinBody]()}),
		func(c *gin.Context) {
			c.String(http.StatusOK, middleware.Body[signinBody](c).Identifier)
		})

	tests := []struct {
		name    string
		body    string
		want    int
		message string
	}{
		{"valid", `{"identifier":"a@b.com","password":"x"}`, http.StatusOK, ""},
		{"empty body reports every field", "", http.StatusBadRequest, "Validation failed: identifier: Required, password: Required"},
		{"missing one", `{"identifier":"a@b.com"}`, http.StatusBadRequest, "Validation failed: password: Required"},
		{"malformed", `{"identifier":`, http.StatusBadRequest, "Validation failed: body: Malformed JSON"},
		{"wrong type", `{"identifier":1,"password":"x"}`, http.StatusBadRequest, "Validation failed: identifier: Expected string, received number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(e, "POST", "/signin", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, rr.Code, rr.Body.String())
			}
			if tt.want == http.StatusOK {
				if rr.Body.String() != "a@b.com" {
					t.Errorf("unexpected body %q", rr.Body.String())
				}
				return
			}
			body := decodeError(t, rr)
			if body.Error.Code != "VALIDATION_ERROR" || body.Error.Message != tt.message {
				t.Errorf("unexpected error %+v", body.Error)
			}
		})
	}
}

func TestValidate_QueryParamsHeaders(t *testing.T) {
	e := newEngine()
	schemas := middleware.Schemas{
		Query:   validation.For[pageQuery](),
		Params:  validation.For[itemParams](),
		Headers: validation.For[keyHeaders](),
	}
	e.GET("/items/:id", middleware.Validate(validation.Default(), schemas), func(c *gin.Context) {
		q := middleware.Query[pageQuery](c)
		p := middleware.Params[itemParams](c)
		h := middleware.Headers[keyHeaders](c)
		c.String(http.StatusOK, fmt.Sprintf("%d/%d/%s/%s/%s", q.Page, q.Limit, p.ID, h.APIKey, c.GetHeader("X-Api-Key")))
	})

	const id = "0b7e3e0a-7a43-4a8e-9a53-4cf0e1b1f001"

	t.Run("all parts valid with defaults", func(t *testing.T) {
		rr := do(e, "GET", "/items/"+id, "", "X-Api-Key", "k1")
		want := "1/20/" + id + "/k1/k1"
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Fatalf("got %d %q, want %q", rr.Code, rr.Body.String(), want)
		}
	})

	tests := []struct {
		name    string
		path    string
		headers []string
		message string
	}{
		{"query aggregates fields", "/items/" + id + "?page=-1&limit=50", []string{"X-Api-Key", "k"},
			"Validation failed: page: Must be greater than or equal to 1, limit: Must be less than or equal to 20"},
		{"query checked before params", "/items/bad?limit=99", nil,
			"Validation failed: limit: Must be less than or equal to 20"},
		{"params", "/items/bad", []string{"X-Api-Key", "k"}, "Validation failed: id: Invalid UUID"},
		{"headers", "/items/" + id, nil, "Validation failed: x-api-key: Required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(e, "GET", tt.path, "", tt.headers...)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if msg := decodeError(t, rr).Error.Message; msg != tt.message {
				t.Errorf("message = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestValidate_BodyTooLarge(t *testing.T) {
	e := newEngine()
	e.POST("/signin",
		middleware.Validate(validation.Default(), middleware.Schemas{Body: validation.For[signinBody]()}),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	h := middleware.Chain(middleware.BodySizeLimit("16"))(e)

	rr := do(h, "POST", "/signin", `{"identifier":"someone@example.com","password":"secret"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr).Error.Message; msg != "Validation failed: body: Payload too large" {
		t.Errorf("unexpected message %q", msg)
	}
}

// ---------------------------------------------------------------------------
// CORS / security headers
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	e := newEngine(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com", "*.railway.app"},
		AllowCredentials: true,
	}))
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.example.com", true},
		{"https://preview.railway.app", true},
		{"https://evil.example.org", false},
		{"https://railway.app.evil.org", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			rr := do(e, "GET", "/x", "", "Origin", tt.origin)
			got := rr.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && got != tt.origin {
				t.Errorf("expected origin to be allowed, got %q", got)
			}
			if !tt.allowed && got != "" {
				t.Errorf("expected origin to be rejected, got %q", got)
			}
			if tt.allowed && rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("expected credentials header")
			}
		})
	}

	t.Run("preflight", func(t *testing.T) {
		rr := do(e, "OPTIONS", "/x", "", "Origin", "https://app.example.com")
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
		if rr.Header().Get("Access-Control-Max-Age") != "86400" {
			t.Errorf("unexpected max age %q", rr.Header().Get("Access-Control-Max-Age"))
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		t.Run(fmt.Sprintf("hsts=%v", hsts), func(t *testing.T) {
			e := newEngine(middleware.SecurityHeaders(middleware.SecurityConfig{HSTS: hsts}))
			e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			rr := do(e, "GET", "/x", "")
			if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff")
			}
			if rr.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("missing frame options")
			}
			if got := rr.Header().Get("Strict-Transport-Security") != ""; got != hsts {
				t.Errorf("HSTS present = %v, want %v", got, hsts)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Rate limit / metrics
// ---------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	limited := 0
	e := newEngine(middleware.RateLimit(middleware.RateLimitConfig{
		LimiterConfig: resilience.LimiterConfig{Rate: 0.001, Burst: 1},
		OnLimit:       func(*gin.Context) { limited++ },
	}))
	e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	if rr := do(e, "GET", "/x", ""); rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}
	rr := do(e, "GET", "/x", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	if code := decodeError(t, rr).Error.Code; code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("unexpected code %s", code)
	}
	if limited != 1 {
		t.Errorf("OnLimit called %d times", limited)
	}
}

func TestMetrics(t *testing.T) {
	m := observability.NewMetrics(observability.MetricsConfig{})
	e := newEngine(middleware.Metrics(m))
	e.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(e, "GET", "/items/1", "")
	do(e, "GET", "/items/2", "")

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}
