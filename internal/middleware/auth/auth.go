package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/tokens"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

const (
	claimsKey = "auth.claims"
	tokenKey  = "auth.token"
)

type Checker interface {
	CheckAccess(ctx context.Context, token string, requiredRoles []string) (*tokens.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(msg string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, transport.ErrorResponse{Error: "unauthorized", Message: msg})
}

// RequireAuth admits requests carrying a live bearer token and stores its
// claims on the context.
func RequireAuth(chk Checker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("mw", "require_auth")

			token, ok := BearerToken(c.Request())
			if !ok {
				l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
				return unauthorized("missing bearer token")
			}

			claims, err := chk.CheckAccess(ctx, token, nil)
			if err != nil {
				l.Warn("auth_failed", "status", 401, "error", err)
				return unauthorized("invalid credentials")
			}

			c.Set(claimsKey, claims)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// RequireRoles admits requests whose claims carry at least one of roles.
// It must run after RequireAuth.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return unauthorized("missing bearer token")
			}
			if !claims.HasAnyRole(roles) {
				logging.FromContext(c.Request().Context()).Warn("access_denied", "status", 403, "user_id", claims.UserID, "required", roles)
				return echo.NewHTTPError(http.StatusForbidden, transport.ErrorResponse{Error: "forbidden", Message: "not enough rights"})
			}
			return next(c)
		}
	}
}

func ClaimsFrom(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(claimsKey).(*tokens.Claims)
	return claims
}

func TokenFrom(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
