package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func toUserResponse(u *models.User, roles []string) transport.UserResponse {
	return transport.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

func toTokenResponse(p *service.TokenPair) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        p.TokenType,
		AccessExpiresAt:  p.AccessExpiresAt.UTC(),
		RefreshExpiresAt: p.RefreshExpiresAt.UTC(),
	}
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return badBody(err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("signup_error", "status", 422, "error", err)
		return validationError(err)
	}

	user, err := h.Svc.Signup(ctx, service.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return fail(l, "signup_failed", err)
	}

	return c.JSON(http.StatusOK, toUserResponse(user, nil))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badBody(err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", 422, "error", err)
		return validationError(err)
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password, c.Request().UserAgent())
	if err != nil {
		return fail(l, "login_failed", err)
	}

	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if err := h.Svc.Logout(ctx, authmw.TokenFrom(c), c.Request().UserAgent()); err != nil {
		return fail(l, "logout_failed", err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "logged out"})
}

// Refresh takes the refresh token from the body, or from the bearer header
// when the body has none.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return badBody(err)
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		token, _ = authmw.BearerToken(c.Request())
	}
	if token == "" {
		l.Warn("refresh_error", "status", 401, "reason", "missing refresh token")
		return apiError(http.StatusUnauthorized, "unauthorized", "missing refresh token")
	}

	pair, err := h.Svc.Refresh(ctx, token, c.Request().UserAgent())
	if err != nil {
		return fail(l, "refresh_failed", err)
	}

	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

func (h *AuthHTTP) CheckAccess(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_check_access")

	token, ok := authmw.BearerToken(c.Request())
	if !ok {
		l.Warn("check_access_failed", "status", 401, "reason", "missing bearer token")
		return apiError(http.StatusUnauthorized, "unauthorized", "missing bearer token")
	}

	claims, err := h.Svc.CheckAccess(ctx, token, allowRoles(c))
	if err != nil {
		return fail(l, "check_access_failed", err)
	}

	return c.JSON(http.StatusOK, transport.CheckAccessResponse{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	})
}

// allowRoles reads allow_roles given either repeated or comma separated.
func allowRoles(c echo.Context) []string {
	var roles []string
	for _, v := range c.QueryParams()["allow_roles"] {
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
	}
	return roles
}
