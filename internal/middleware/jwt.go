package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-management/internal/auth"
	"github.com/iliyamo/user-management/internal/model"
)

// identityKey is the single context key carrying the caller identity.
const identityKey = "identity"

// Identity is the authenticated caller, extracted from a verified
// access token. Handlers read it through CurrentUser instead of
// fishing untyped claims out of the context.
type Identity struct {
	UserID uint64
	Email  string
	Role   model.Role
}

// JWTAuth returns middleware that validates a Bearer access token with
// the issuer's access key and stores the typed Identity in the request
// context. Protected routes must be wrapped with it so downstream
// middleware and handlers can call CurrentUser.
func JWTAuth(issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := issuer.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(identityKey, Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
			return next(c)
		}
	}
}

// CurrentUser returns the caller identity stored by JWTAuth. The bool
// is false on routes that were not wrapped with it.
func CurrentUser(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
