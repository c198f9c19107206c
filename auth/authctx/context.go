// Package authctx attaches verified identity claims to a request context.
//
// Claims live only for the request that decoded them:
//
//	ctx = authctx.Set(ctx, claims)     // authentication middleware
//	claims, err := authctx.From(ctx)   // handlers
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/invoxia/auth/jwt"
)

type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims is returned when claims are not found in the context.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores verified claims in the context.
func Set(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get returns the claims stored in ctx, if any.
func Get(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.Claims)
	return claims, ok && claims != nil
}

// From returns the claims stored in ctx or ErrNoClaims.
func From(ctx context.Context) (*jwt.Claims, error) {
	claims, ok := Get(ctx)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}
