package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/component"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/server/endpoint"
	"github.com/kbukum/invoxia/server/middleware"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 3000 || cfg.Host != "0.0.0.0" || cfg.MaxBodySize != "1MB" || cfg.ShutdownTimeout != 10 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"port too high", Config{Port: 70000}},
		{"negative read timeout", Config{Port: 80, ReadTimeout: -1}},
		{"negative shutdown timeout", Config{Port: 80, ShutdownTimeout: -1}},
		{"bad body size", Config{Port: 80, MaxBodySize: "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestServer_StartStop(t *testing.T) {
	srv, err := New(Config{Host: "127.0.0.1", Port: 0, ShutdownTimeout: 1}, false, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	srv.GinEngine().GET("/api/health", endpoint.Health("up", time.Now(), nil))
	sc := NewComponent(srv)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = sc.Stop(context.Background()) }()

	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_UseWrapsEngine(t *testing.T) {
	srv, err := New(Config{}, false, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	srv.Use(middleware.BodySizeLimit("4"))
	srv.GinEngine().POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest("POST", "/echo", strings.NewReader("too long body")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected body limit to apply, got %d", rr.Code)
	}
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	RespondCreated(c, "Contact created", map[string]string{"id": "1"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var body struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "Contact created" || body.Data["id"] != "1" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name       string
		checks     []component.Health
		wantCode   int
		wantStatus string
	}{
		{"ok", []component.Health{{Name: "db", Status: component.StatusHealthy}}, http.StatusOK, "ok"},
		{"degraded", []component.Health{{Name: "db", Status: component.StatusDegraded}}, http.StatusOK, "degraded"},
		{"unhealthy", []component.Health{{Name: "db", Status: component.StatusUnhealthy}}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := gin.New()
			e.GET("/health", endpoint.Health("Invoxia API", time.Now(), func(context.Context) []component.Health { return tt.checks }))

			rr := httptest.NewRecorder()
			e.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body endpoint.HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.wantStatus || body.Message != "Invoxia API" || len(body.Components) != 1 {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/kbukum/invoxia/api.(*AuthHandler).Signin-fm", "AuthHandler.Signin"},
		{"github.com/kbukum/invoxia/server/endpoint.Health.func1", "Health"},
		{"main.main.func1", "main"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := formatHandlerName(tt.in); got != tt.want {
				t.Errorf("formatHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestComponent_Routes(t *testing.T) {
	srv, _ := New(Config{}, false, logger.Nop())
	h := func(*gin.Context) {}
	srv.GinEngine().POST("/b", h)
	srv.GinEngine().GET("/b", h)
	srv.GinEngine().GET("/a", h)

	routes := NewComponent(srv).Routes()
	if len(routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(routes))
	}
	got := routes[0].Method + routes[0].Path + " " + routes[1].Method + routes[1].Path + " " + routes[2].Method + routes[2].Path
	if got != "GET/a GET/b POST/b" {
		t.Errorf("unexpected order %q", got)
	}
}
