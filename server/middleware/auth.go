package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/auth/authctx"
	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/authz"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// Authenticate requires a valid bearer token. Every failure (missing header,
// wrong scheme, bad token) is raised as the same Unauthorized error. On
// success the claims are attached to the request context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWith(c, errors.Unauthorized(jwt.InvalidTokenMessage))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			if !errors.IsKind(err, errors.KindUnauthorized) {
				err = errors.Unauthorized(jwt.InvalidTokenMessage).WithCause(err)
			}
			abortWith(c, err)
			return
		}

		ctx := authctx.Set(c.Request.Context(), claims)
		ctx = logger.ContextWithUserID(ctx, claims.UserID)
		ctx = logger.ContextWithTenantID(ctx, claims.TenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission rejects callers whose role lacks permission. It must run
// after Authenticate.
func RequirePermission(checker authz.Checker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authctx.Get(c.Request.Context())
		if !ok {
			abortWith(c, errors.Unauthorized(jwt.InvalidTokenMessage))
			return
		}
		if !checker.HasPermission(claims.Role, permission) {
			abortWith(c, errors.Authorization("Insufficient permissions").
				WithDetail("permission", permission))
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims attached by Authenticate.
func ClaimsFrom(c *gin.Context) (*jwt.Claims, bool) {
	return authctx.Get(c.Request.Context())
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// abortWith hands err to the error handler and stops the chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
