package jwt

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/invoxia/errors"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(&Config{Secret: "test-secret"}, nil, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Kind != apperrors.KindUnauthorized || appErr.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401 unauthorized, got %s/%d", appErr.Kind, appErr.HTTPStatus)
	}
	if appErr.Message != InvalidTokenMessage {
		t.Errorf("cause leaked into message: %q", appErr.Message)
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(&Config{}, nil)
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc := newTestService(t)
	if svc.TTL() != 7*24*time.Hour {
		t.Errorf("expected 7 day default ttl, got %s", svc.TTL())
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := newTestService(t, WithClock(func() time.Time { return now }))

	tests := []Subject{
		{UserID: "u1", TenantID: "t1", Email: "a@b.co", Role: "ADMIN"},
		{UserID: "u2", TenantID: "t2", Role: "USER"},
	}
	for _, sub := range tests {
		t.Run(sub.UserID, func(t *testing.T) {
			token, err := svc.Issue(sub)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			claims, err := svc.Verify(token)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if claims.UserID != sub.UserID || claims.TenantID != sub.TenantID || claims.Email != sub.Email || claims.Role != sub.Role {
				t.Errorf("claims mismatch: %+v vs %+v", claims, sub)
			}
			if !claims.IssuedAtTime().Equal(now) {
				t.Errorf("iat = %s, want %s", claims.IssuedAtTime(), now)
			}
			if !claims.ExpiresAtTime().Equal(now.Add(7 * 24 * time.Hour)) {
				t.Errorf("exp = %s", claims.ExpiresAtTime())
			}
		})
	}
}

func TestIssue_RequiresIdentity(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Issue(Subject{UserID: "u1"}); err == nil {
		t.Error("expected error without tenant id")
	}
}

func TestVerify_Expired(t *testing.T) {
	past := time.Now().Add(-8 * 24 * time.Hour)
	issuer := newTestService(t, WithClock(func() time.Time { return past }))
	token, err := issuer.Issue(Subject{UserID: "u1", TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = newTestService(t).Verify(token)
	assertUnauthorized(t, err)
	if !errors.Is(err, gojwt.ErrTokenExpired) {
		t.Errorf("expected expiry cause, got %v", err)
	}
}

func TestVerify_Failures(t *testing.T) {
	svc := newTestService(t)
	good, err := svc.Issue(Subject{UserID: "u1", TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewService(&Config{Secret: "another-secret"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := other.Issue(Subject{UserID: "u1", TenantID: "t1"})

	noneToken, _ := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{
		UserID: "u1", TenantID: "t1",
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)

	noExp, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{UserID: "u1", TenantID: "t1"}).
		SignedString([]byte("test-secret"))

	noIdentity, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))

	parts := strings.Split(good, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"userId":"evil","tenantId":"t1","exp":9999999999}`))
	tampered := strings.Join(parts, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", tampered},
		{"wrong secret", foreign},
		{"alg none", noneToken},
		{"no expiry", noExp},
		{"no identity", noIdentity},
		{"truncated", strings.Join(strings.Split(good, ".")[:2], ".")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assertUnauthorized(t, err)
		})
	}
}

func TestVerify_Issuer(t *testing.T) {
	a, _ := NewService(&Config{Secret: "s", Issuer: "invoxia"}, nil)
	b, _ := NewService(&Config{Secret: "s", Issuer: "someone-else"}, nil)
	token, err := b.Issue(Subject{UserID: "u", TenantID: "t"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Verify(token)
	assertUnauthorized(t, err)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"0d", 0, true},
		{"-1h", 0, true},
		{"forever", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Secret: "s"}, false},
		{"missing secret", Config{}, true},
		{"bad method", Config{Secret: "s", Method: "RS256"}, true},
		{"bad ttl", Config{Secret: "s", ExpiresIn: "soon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
