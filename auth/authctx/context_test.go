package authctx

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/invoxia/auth/jwt"
)

func TestSetGet(t *testing.T) {
	claims := &jwt.Claims{UserID: "u1", TenantID: "t1"}
	ctx := Set(context.Background(), claims)

	got, ok := Get(ctx)
	if !ok || got != claims {
		t.Fatalf("Get() = %v, %v", got, ok)
	}
	got, err := From(ctx)
	if err != nil || got.UserID != "u1" {
		t.Fatalf("From() = %v, %v", got, err)
	}
}

func TestMissing(t *testing.T) {
	if _, ok := Get(context.Background()); ok {
		t.Error("expected no claims")
	}
	if _, err := From(context.Background()); !errors.Is(err, ErrNoClaims) {
		t.Errorf("expected ErrNoClaims, got %v", err)
	}
	if _, ok := Get(Set(context.Background(), nil)); ok {
		t.Error("nil claims must not count as present")
	}
}
