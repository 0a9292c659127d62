package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-management/internal/model"
)

// Two authorization policies exist for route guards. RequireMinRole is
// the hierarchical policy (VIEWER < USER < ADMIN, "at least" checks)
// and is what the route table uses. RequireRole enforces exact
// membership in a closed set, for declarations that must not admit a
// higher role implicitly. Both assume JWTAuth ran earlier.

// RequireMinRole aborts with 403 unless the caller's role meets or
// exceeds the required privilege level.
func RequireMinRole(required model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentUser(c)
			if !ok || !model.HasMinimumRole(id.Role, required) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireRole aborts with 403 unless the caller's role is one of the
// listed roles exactly.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentUser(c)
			if !ok || !allowed[id.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
