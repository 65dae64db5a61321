// Package middleware carries the request pipeline stages: bearer
// authentication first, then the role and permission gates. Identity is
// attached to the echo context explicitly; there is no shared mutable
// request state.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/societyos/authhub/internal/authz"
	"github.com/societyos/authhub/internal/tokens"
)

const identityKey = "authhub.identity"

type Identity struct {
	UserID uint
	Role   authz.Role
}

func setIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the authenticated caller; ok is false when the
// request never passed RequireAuth.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

type BearerAuth struct {
	Tokens *tokens.Service
}

func NewBearerAuth(svc *tokens.Service) *BearerAuth {
	return &BearerAuth{Tokens: svc}
}

// RequireAuth establishes identity from the Authorization header. Expired,
// malformed and badly signed tokens all read the same to the caller.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		userID, role, err := m.Tokens.ParseAccess(parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		setIdentity(c, Identity{UserID: userID, Role: authz.Role(role)})
		return next(c)
	}
}

// RequireRole passes iff the caller's role is in the allowed set. Flat
// membership: no hierarchy between roles.
func RequireRole(allowed ...authz.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			for _, role := range allowed {
				if id.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden: insufficient role")
		}
	}
}

// RequirePermissions passes iff the caller holds every required permission,
// from the role policy or direct grants. The 403 body names what is
// missing.
func RequirePermissions(engine *authz.Engine, required ...authz.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			missing, err := engine.Missing(c.Request().Context(), id.UserID, id.Role, required...)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "error checking permissions")
			}
			if len(missing) > 0 {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{
					"message": "forbidden: insufficient permissions",
					"missing": missing,
				})
			}
			return next(c)
		}
	}
}
